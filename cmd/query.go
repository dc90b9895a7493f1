package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/internal/docio"
	"github.com/agentic-research/gatetree/internal/snapshot"
)

func init() {
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query [document] [jsonpath]",
	Short: "Evaluate a JSONPath expression against a document",
	Long: `Evaluates jsonpath against the document and prints one JSON value per
match, for example:

  gatetree query sim.json '$..children[?(@.kind == "volume")].name'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := abs(args[0])
		if err != nil {
			return err
		}
		doc, err := docio.Load(hostFS(), path)
		if err != nil {
			return err
		}
		results, err := snapshot.Query(doc, args[1])
		if err != nil {
			return err
		}
		for _, r := range results {
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}
		return nil
	},
}
