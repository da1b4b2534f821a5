// Package report renders the -v debug output `parlay check` prints
// (SPEC_FULL.md §2 CLI, §7.3): a kernel's phase table (field/global →
// read/write/reduceop) and the list of Brans a compile produced,
// formatted with github.com/jedib0t/go-pretty/v6/table the way
// sarchlab-zeonica's PrintState renders register/buffer tables instead
// of raw struct dumps.
package report

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"parlay/internal/compiler"
	"parlay/internal/phase"
)

// PhaseTable renders one kernel's field/global use as a table: name,
// read?, write?, reduce op (if any), centered?.
func PhaseTable(kernelName string, result *phase.Result) string {
	t := table.NewWriter()
	t.SetTitle("phase: " + kernelName)
	t.AppendHeader(table.Row{"name", "read", "write", "reduce", "centered"})

	for f, pt := range result.FieldUse {
		t.AppendRow(table.Row{f.Name(), pt.Read, pt.Write, reduceOpText(pt), pt.Centered})
	}
	for g, pt := range result.GlobalUse {
		t.AppendRow(table.Row{g.Name(), pt.Read, pt.Write, reduceOpText(pt), "-"})
	}
	return t.Render()
}

func reduceOpText(pt *phase.PhaseType) string {
	if !pt.HasOp {
		return "-"
	}
	return string(pt.ReduceOp)
}

// BranTable renders the Brans a compile session produced: kernel name,
// universe, backend, task handle.
func BranTable(brans []*compiler.Bran) string {
	t := table.NewWriter()
	t.SetTitle("compiled tasks")
	t.AppendHeader(table.Row{"kernel", "universe", "backend", "task"})
	for _, b := range brans {
		t.AppendRow(table.Row{b.Kernel.Name, b.Universe.Name(), b.Backend, b.TaskHandle.String()})
	}
	return t.Render()
}
