// Package commands holds the parlay CLI's subcommands, each a thin
// cobra.Command wrapping internal/program, internal/compiler and
// internal/lower.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parlay/internal/compiler"
	"parlay/internal/config"
	"parlay/internal/logx"
	"parlay/internal/program"
	"parlay/internal/report"
	"parlay/internal/store"
)

// NewCheckCmd builds `parlay check <file>`: parse, specialize, check
// and phase-analyze every declared kernel without running the control
// program, printing phase tables when -v is set.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and compile every kernel in a .prl file without running it",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().BoolP("verbose", "v", false, "print phase tables for each kernel")
	cmd.Flags().String("backend", "single", "target backend recorded on each compiled task")
	cmd.Flags().String("config", "", "path to a parlay.yaml overriding backend/partitions/n_bd")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	backend, _ := cmd.Flags().GetString("backend")
	configPath, _ := cmd.Flags().GetString("config")

	log := logx.Default(verbose)
	cfg := config.LoadOrDefault(configPath)
	if cmd.Flags().Changed("backend") && backend != "" {
		cfg.Backend = backend
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	prog, err := program.Parse(string(src), args[0])
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	log.Debugf("parsed %s: %d relation(s), %d kernel(s)", args[0], len(prog.Env.Relations), len(prog.Functions))

	ctx := compiler.NewContext().WithBackend(cfg.Backend)
	ctx.Partitions = cfg.Partitions
	ctx.NBD = cfg.NBD
	ctx.Debug = cfg.Debug || verbose

	st := store.NewStore()
	var brans []*compiler.Bran
	var failed bool
	for name, fn := range prog.Functions {
		rel, ok := prog.Env.Relations[fn.Params[0].RelName]
		if !ok {
			fmt.Fprintf(os.Stderr, "kernel %s: unknown relation %q\n", name, fn.Params[0].RelName)
			failed = true
			continue
		}
		bran, err := compiler.CompileKernel(ctx, prog.Env, fn, rel, nil, st)
		if err != nil {
			fmt.Fprintf(os.Stderr, "kernel %s: %v\n", name, err)
			failed = true
			continue
		}
		brans = append(brans, bran)
		if verbose {
			fmt.Println(report.PhaseTable(name, bran.Phase))
			log.Debugv("germ:"+name, bran.Germ)
		}
	}
	if verbose && len(brans) > 0 {
		fmt.Println(report.BranTable(brans))
	}
	if failed {
		return fmt.Errorf("one or more kernels failed to compile")
	}
	fmt.Printf("ok: %d kernel(s) compiled\n", len(brans))
	return nil
}
