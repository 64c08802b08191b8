package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/drillgym/internal/drillui"
	"github.com/abhisek/drillgym/internal/session"
)

var drillCmd = &cobra.Command{
	Use:   "drill <engine>",
	Short: "Start a timed drill session",
	Long: `Start a timed drill session for one engine.

Enter submits, Ctrl+S reveals the solution, Ctrl+N moves on after a wrong
answer and Esc quits. Logs go to a file next to the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runDrill,
}

func runDrill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, dbPath, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	logger, err := newLogger(uiLogFile(dbPath))
	if err != nil {
		return err
	}
	defer logger.Sync()

	c, err := newContent(ctx, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
	}

	set, err := buildEngines(c, logger)
	if err != nil {
		return err
	}
	defer set.Wait()

	run, err := session.New(args[0], set, st, sessionOptions(c, logger)...)
	if errors.Is(err, session.ErrUnknownEngine) {
		return fmt.Errorf("%w\n\nRun `drillgym engines list` to see what is available", err)
	}
	if err != nil {
		return err
	}

	return drillui.Run(run, drillui.WithLogger(logger))
}
