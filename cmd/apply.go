package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/internal/docio"
)

var (
	applyBase    string
	applyOut     string
	applyFormat  string
	applyPreview bool
	applyStrict  bool
)

func init() {
	applyCmd.Flags().StringVarP(&applyBase, "base", "b", "", "Document to merge onto (default: a fresh baseline)")
	applyCmd.Flags().StringVarP(&applyOut, "out", "o", "", "Write the merged document here instead of stdout")
	applyCmd.Flags().StringVarP(&applyFormat, "format", "f", "json", "Output format when writing to stdout (json|yaml)")
	applyCmd.Flags().BoolVar(&applyPreview, "preview", false, "Merge onto a copy and leave --base untouched")
	applyCmd.Flags().BoolVar(&applyStrict, "strict", false, "Fail when any warning was recovered")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply [document]",
	Short: "Merge a document onto a tree",
	Long: `Reconciles document onto the tree loaded from --base (or a fresh
baseline). Parameters are matched by label, missing children are created
from their meta hints and nothing present is ever removed. Recovered
problems are printed as warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, _, err := newWorkspace(cmd)
		if err != nil {
			return err
		}
		if err := openProject(w, applyBase); err != nil {
			return fmt.Errorf("load base: %w", err)
		}

		path, err := abs(args[0])
		if err != nil {
			return err
		}
		in, err := docio.Load(hostFS(), path)
		if err != nil {
			return err
		}

		out := applyOut
		if applyPreview {
			merged, warnings, err := w.Preview(in)
			if err != nil {
				return err
			}
			printWarnings(cmd, warnings)
			if applyStrict && len(warnings) > 0 {
				return fmt.Errorf("%d warnings", len(warnings))
			}
			return writeDocument(cmd, merged, out, applyFormat)
		}

		warnings, err := w.ImportDocument(in)
		if err != nil {
			return err
		}
		printWarnings(cmd, warnings)
		if applyStrict && len(warnings) > 0 {
			return fmt.Errorf("%d warnings", len(warnings))
		}
		doc, err := w.Export()
		if err != nil {
			return err
		}
		return writeDocument(cmd, doc, out, applyFormat)
	},
}
