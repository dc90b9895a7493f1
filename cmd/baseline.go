package cmd

import (
	"github.com/spf13/cobra"
)

var baselineFormat string

func init() {
	baselineCmd.Flags().StringVarP(&baselineFormat, "format", "f", "json", "Output format when writing to stdout (json|yaml)")
	rootCmd.AddCommand(baselineCmd)
}

var baselineCmd = &cobra.Command{
	Use:   "baseline [output]",
	Short: "Write the default configuration tree as a document",
	Long: `Builds the baseline tree for the configured simulator version and
material database and writes it to output (.json, .yaml or .yml), or to
stdout when output is omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, _, err := newWorkspace(cmd)
		if err != nil {
			return err
		}
		w.EnsureBaseline()
		doc, err := w.Export()
		if err != nil {
			return err
		}
		printWarnings(cmd, w.Warnings())

		out := ""
		if len(args) == 1 {
			out = args[0]
		}
		return writeDocument(cmd, doc, out, baselineFormat)
	},
}
