package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/internal/catalog"
)

// templateLists returns the catalog entries per category.
func templateLists() map[string][]string {
	processes := make([]string, 0, len(catalog.PhysicsProcesses))
	for _, p := range catalog.PhysicsProcesses {
		processes = append(processes, p.Name)
	}
	return map[string][]string{
		"sources":       catalog.SourceKinds,
		"distributions": catalog.DistributionKinds,
		"shapes":        catalog.Shapes(),
		"repeaters":     catalog.RepeaterKinds(),
		"systems":       catalog.SystemTypes,
		"modules":       catalog.Modules,
		"physics-lists": catalog.PhysicsLists,
		"processes":     processes,
	}
}

func templateCategories() []string {
	lists := templateLists()
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates [category]",
	Short: "List the kinds the template catalog can build",
	Long:  "Lists the catalog entries of category, or every category when omitted.\nCategories: " + strings.Join(templateCategories(), ", "),
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lists := templateLists()
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			entries, ok := lists[args[0]]
			if !ok {
				return fmt.Errorf("unknown category %q (want one of %s)", args[0], strings.Join(templateCategories(), ", "))
			}
			for _, e := range entries {
				fmt.Fprintln(out, e)
			}
			return nil
		}
		for _, name := range templateCategories() {
			fmt.Fprintf(out, "%s: %s\n", name, strings.Join(lists[name], ", "))
		}
		return nil
	},
}
