package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/bank"
	"github.com/abhisek/drillgym/internal/engines"
	"github.com/abhisek/drillgym/internal/infinite"
	"github.com/abhisek/drillgym/internal/mix"
	"github.com/abhisek/drillgym/internal/problemgen"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Inspect the built-in engines",
}

var enginesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger("")
		if err != nil {
			return err
		}
		c, err := newContent(cmd.Context(), logger)
		if err != nil {
			logger.Warn("LLM provider not configured, listing offline engines", zap.Error(err))
		}
		set, err := buildEngines(c, logger)
		if err != nil {
			return err
		}

		fmt.Printf("%-16s  %-28s  %s\n", "ID", "Name", "Kind")
		fmt.Println(strings.Repeat("─", 56))
		for _, id := range set.Sorted() {
			g, _ := set.Get(id)
			fmt.Printf("%-16s  %-28s  %s\n", id, g.Name(), engineKind(g))
			if m, ok := g.(*mix.Engine); ok {
				fmt.Printf("%-16s  └ %s\n", "", strings.Join(m.Sources(), ", "))
			}
		}
		fmt.Printf("\n%d engines\n", set.Len())
		return nil
	},
}

var enginesCheckCmd = &cobra.Command{
	Use:   "check [engine...]",
	Short: "Generate problems at every level and check each engine accepts its own answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		trials, _ := cmd.Flags().GetInt("trials")
		parallel, _ := cmd.Flags().GetInt("parallel")

		logger, err := newLogger("")
		if err != nil {
			return err
		}
		// Offline: adaptive banks are checked against their static entries.
		set, err := buildEngines(content{}, logger)
		if err != nil {
			return err
		}

		gens := set.All()
		if len(args) > 0 {
			gens = gens[:0:0]
			for _, id := range args {
				g, ok := set.Get(id)
				if !ok {
					return fmt.Errorf("unknown engine %q", id)
				}
				gens = append(gens, g)
			}
		}

		failures, err := engines.Check(cmd.Context(), gens, trials, parallel)
		if err != nil {
			return err
		}
		for _, f := range failures {
			fmt.Println(f)
		}
		if len(failures) > 0 {
			return fmt.Errorf("%d problems failed self-consistency", len(failures))
		}
		fmt.Printf("%d engines ok (%d trials per level)\n", len(gens), trials)
		return nil
	},
}

// engineKind labels an engine by how it produces problems.
func engineKind(g problemgen.Generator) string {
	switch g.(type) {
	case *infinite.Adapter:
		return "adaptive"
	case *bank.Generator:
		return "bank"
	case *mix.Engine:
		return "mix"
	default:
		return "computed"
	}
}

func init() {
	enginesCheckCmd.Flags().Int("trials", 50, "Problems generated per engine and level")
	enginesCheckCmd.Flags().Int("parallel", 4, "Engines checked concurrently")

	enginesCmd.AddCommand(enginesListCmd)
	enginesCmd.AddCommand(enginesCheckCmd)
}
