package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/internal/docio"
	"github.com/agentic-research/gatetree/internal/lint"
)

func init() {
	rootCmd.AddCommand(lintCmd)
}

var lintCmd = &cobra.Command{
	Use:   "lint [document...]",
	Short: "Report problems apply would recover from or ignore",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		total := 0
		for _, arg := range args {
			path, err := abs(arg)
			if err != nil {
				return err
			}
			doc, err := docio.Load(hostFS(), path)
			if err != nil {
				return err
			}
			for _, d := range lint.Lint(doc) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", arg, d)
				total++
			}
		}
		if total > 0 {
			return fmt.Errorf("%d problems", total)
		}
		return nil
	},
}
