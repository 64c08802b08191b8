package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [engine]",
	Short: "Reset learner progress for one engine, or all with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		var engineID string
		switch {
		case len(args) == 1 && all:
			return errors.New("use an engine id or --all, not both")
		case len(args) == 1:
			engineID = args[0]
		case !all:
			return errors.New("name an engine to reset, or pass --all")
		}

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Reset(cmd.Context(), engineID)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Printf("Removed progress for %d engine(s).\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Reset every engine")
}
