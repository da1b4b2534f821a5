package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parlay/internal/compiler"
	"parlay/internal/config"
	"parlay/internal/logx"
	"parlay/internal/lower"
	"parlay/internal/program"
	"parlay/internal/store"
)

// NewRunCmd builds `parlay run <file>`: parse, compile every declared
// kernel (specializing and checking it in place), then drive the
// recorded control program to completion against a fresh Store.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Parse, compile and execute a .prl control program",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	cmd.Flags().BoolP("verbose", "v", false, "print debug progress")
	cmd.Flags().String("backend", "single", "target backend recorded on each compiled task")
	cmd.Flags().String("config", "", "path to a parlay.yaml overriding backend/partitions/n_bd")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
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

	ctx := compiler.NewContext().WithBackend(cfg.Backend)
	ctx.Partitions = cfg.Partitions
	ctx.NBD = cfg.NBD
	ctx.Debug = cfg.Debug || verbose

	st := store.NewStore()
	for name, fn := range prog.Functions {
		rel, ok := prog.Env.Relations[fn.Params[0].RelName]
		if !ok {
			return fmt.Errorf("kernel %s: unknown relation %q", name, fn.Params[0].RelName)
		}
		if _, err := compiler.CompileKernel(ctx, prog.Env, fn, rel, nil, st); err != nil {
			return fmt.Errorf("kernel %s: %w", name, err)
		}
		log.Debugf("compiled kernel %s over %s", name, rel.Name())
	}

	interp := lower.NewInterp(args[0], prog.Env.Relations, st)
	driver := lower.NewDriver(interp, args[0])
	if err := driver.Run(prog.Stmts); err != nil {
		return fmt.Errorf("running %s: %w", args[0], err)
	}
	fmt.Printf("ok: %s ran to completion\n", args[0])
	return nil
}
