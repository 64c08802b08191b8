package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		xp, err := st.TotalXP(ctx)
		if err != nil {
			return fmt.Errorf("query XP: %w", err)
		}
		progress, err := st.AllProgress(ctx)
		if err != nil {
			return fmt.Errorf("query progress: %w", err)
		}
		if len(progress) == 0 {
			fmt.Println("No practice recorded yet.")
			return nil
		}

		fmt.Printf("Total XP: %d\n\n", xp)

		fmt.Println("Progress")
		fmt.Println(strings.Repeat("─", 56))
		fmt.Printf("%-20s  %4s  %7s  %s\n", "Engine", "Box", "Highest", "Next review")
		fmt.Println(strings.Repeat("─", 56))
		for _, p := range progress {
			fmt.Printf("%-20s  %4d  %7d  %s\n",
				truncate(p.EngineID, 20), p.Box, p.HighestBox, formatReview(p.NextReview))
		}

		times, err := st.TimeStats(ctx, limit)
		if err != nil {
			return fmt.Errorf("query time stats: %w", err)
		}
		if len(times) > 0 {
			fmt.Println()
			fmt.Println("Time per Problem (slowest first)")
			fmt.Println(strings.Repeat("─", 56))
			fmt.Printf("%-20s  %8s  %8s  %8s\n", "Engine", "Avg", "Attempts", "Accuracy")
			fmt.Println(strings.Repeat("─", 56))
			for _, t := range times {
				var acc float64
				if t.Attempts > 0 {
					acc = float64(t.Correct) / float64(t.Attempts) * 100
				}
				fmt.Printf("%-20s  %8s  %8d  %7.0f%%\n",
					truncate(t.EngineID, 20), t.Average.Round(100*time.Millisecond), t.Attempts, acc)
			}
		}

		mistakes, err := st.ErrorDistribution(ctx)
		if err != nil {
			return fmt.Errorf("query mistakes: %w", err)
		}
		if len(mistakes) > 0 {
			fmt.Println()
			fmt.Println("Mistakes")
			fmt.Println(strings.Repeat("─", 32))
			for _, m := range mistakes {
				fmt.Printf("%-20s  %10d\n", m.ErrorType, m.Count)
			}
		}

		patterns, err := st.PatternDistribution(ctx)
		if err != nil {
			return fmt.Errorf("query patterns: %w", err)
		}
		if len(patterns) > 0 {
			fmt.Println()
			fmt.Println("Likely causes")
			fmt.Println(strings.Repeat("─", 32))
			for _, p := range patterns {
				fmt.Printf("%-20s  %10d\n", p.ErrorType, p.Count)
			}
		}

		trend, err := st.MonthlyTrend(ctx, 6)
		if err != nil {
			return fmt.Errorf("query monthly trend: %w", err)
		}
		if len(trend) > 0 {
			fmt.Println()
			fmt.Println("Monthly trend")
			fmt.Println(strings.Repeat("─", 32))
			for _, m := range trend {
				fmt.Printf("%-10s  %5.1f  %12d\n", m.Month, m.AvgGrade, m.Attempts)
			}
		}

		curve, err := st.Stamina(ctx, 200)
		if err != nil {
			return fmt.Errorf("query stamina: %w", err)
		}
		if len(curve) > 0 {
			fmt.Println()
			fmt.Println("Stamina (accuracy by question in a sitting)")
			fmt.Println(strings.Repeat("─", 32))
			for _, pt := range curve {
				fmt.Printf("%3d  %3d%%  %s\n", pt.Position, pt.Accuracy, strings.Repeat("█", pt.Accuracy/10))
			}
		}

		grade, err := st.PredictGrade(ctx)
		if err != nil {
			return fmt.Errorf("predict grade: %w", err)
		}
		fmt.Println()
		fmt.Printf("Predicted grade: %.1f (accuracy %.1f, coverage %.1f, stamina %.1f)\n",
			grade.Grade, grade.Accuracy, grade.Coverage, grade.Stamina)
		return nil
	},
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List engines due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		due, err := st.DueItems(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query due items: %w", err)
		}
		if len(due) == 0 {
			fmt.Println("Nothing due. Come back later.")
			return nil
		}
		for _, d := range due {
			fmt.Printf("%-20s  box %d  due %s\n", truncate(d.EngineID, 20), d.Box, formatReview(d.NextReview))
		}
		return nil
	},
}

func formatReview(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 10, "Number of engines in the time table")
	dueCmd.Flags().IntP("limit", "n", 20, "Maximum number of items")
}
