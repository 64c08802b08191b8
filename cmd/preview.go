package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/drillgym/internal/problemgen"
)

var previewCmd = &cobra.Command{
	Use:   "preview <engine>",
	Short: "Answer a few problems from an engine on the console (no database)",
	Long: `Generate and interactively answer problems from one engine.

This is a stateless developer tool: no database, no timer, no progress.
Useful for evaluating problem quality and testing new banks.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("level", 1, "Difficulty level (1-5)")
	previewCmd.Flags().Int("count", 5, "Number of problems to generate")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	level, _ := cmd.Flags().GetInt("level")
	count, _ := cmd.Flags().GetInt("count")
	if level < problemgen.MinLevel || level > problemgen.MaxLevel {
		return fmt.Errorf("invalid level %d: must be %d-%d", level, problemgen.MinLevel, problemgen.MaxLevel)
	}

	logger, err := newLogger("")
	if err != nil {
		return err
	}
	c, err := newContent(ctx, logger)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	set, err := buildEngines(c, logger)
	if err != nil {
		return err
	}
	defer set.Wait()

	g, ok := set.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown engine %q", args[0])
	}
	gen := problemgen.Safe(g, logger)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Engine: %s (%s), level %d\n\n", gen.Name(), gen.ID(), level)

	var correct int
	for i := 1; i <= count; i++ {
		p := gen.Generate(ctx, level)

		fmt.Printf("── Problem %d/%d ──\n", i, count)
		if p.Context != "" {
			fmt.Printf("(%s)\n", p.Context)
		}
		fmt.Println(p.Prompt)
		for j, ch := range p.Choices {
			fmt.Printf("  %d) %s\n", j+1, ch)
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			fmt.Print("(skipped)\n\n")
			continue
		}

		v := gen.Validate(input, p)
		if v.Correct {
			correct++
			fmt.Println("\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %s\n", p.Shown())
		}
		if v.Feedback != "" {
			fmt.Println(v.Feedback)
		}
		if p.Explanation != "" {
			fmt.Printf("Explanation: %s\n", p.Explanation)
		}
		fmt.Println()
	}

	fmt.Printf("── Summary: %d/%d correct ──\n", correct, count)
	return nil
}
