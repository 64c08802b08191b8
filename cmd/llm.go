package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/drillgym/internal/contentgen"
	"github.com/abhisek/drillgym/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Exercise the configured LLM provider",
}

var llmGenerateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a batch of problems for a topic and print them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		level, _ := cmd.Flags().GetInt("level")
		hint, _ := cmd.Flags().GetString("context")
		steps, _ := cmd.Flags().GetBool("steps")

		logger, err := newLogger("")
		if err != nil {
			return err
		}
		c, err := newContent(cmd.Context(), logger)
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}
		if c.provider == nil {
			return errors.New("no LLM provider configured; set DRILLGYM_LLM_PROVIDER or a provider API key")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLM.Timeout)
		defer cancel()

		gcfg := contentgen.DefaultConfig()
		src := contentgen.NewLLMSource(c.provider, gcfg, logger)
		problems, err := src.Fetch(ctx, contentgen.Request{
			Topic:      strings.Join(args, " "),
			Context:    hint,
			Count:      count,
			Difficulty: level,
		})
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}

		model := c.provider.ModelID()
		fmt.Printf("Model: %s", model)
		if cost := llm.LookupCost(model); cost != nil {
			fmt.Printf("  (%s in / %s out per MTok)", formatCost(cost.InputPerMTok), formatCost(cost.OutputPerMTok))
		}
		fmt.Print("\n\n")

		solver := contentgen.NewStepSolver(c.provider, gcfg)
		for i, p := range problems {
			fmt.Printf("── %d/%d ──\n", i+1, len(problems))
			fmt.Println(p.Prompt)
			for j, ch := range p.Choices {
				fmt.Printf("  %d) %s\n", j+1, ch)
			}
			fmt.Printf("Answer: %s\n", p.Shown())
			if len(p.Accepted) > 0 {
				fmt.Printf("Also accepted: %s\n", strings.Join(p.Accepted, ", "))
			}
			if p.Explanation != "" {
				fmt.Printf("Explanation: %s\n", p.Explanation)
			}
			if steps {
				lines, err := solver.Solve(ctx, p)
				if err != nil {
					fmt.Printf("Steps unavailable: %v\n", err)
				}
				for k, l := range lines {
					fmt.Printf("  %d. %s\n", k+1, l)
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmGenerateCmd.Flags().IntP("count", "n", 3, "Problems to request")
	llmGenerateCmd.Flags().Int("level", 1, "Difficulty level (1-5)")
	llmGenerateCmd.Flags().String("context", "", "Extra instructions for the generator")
	llmGenerateCmd.Flags().Bool("steps", false, "Also ask for a worked solution per problem")

	llmCmd.AddCommand(llmGenerateCmd)
}
