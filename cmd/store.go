package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/config"
	"github.com/agentic-research/gatetree/internal/docio"
	"github.com/agentic-research/gatetree/internal/store"
)

var (
	storeProject string
	storeNote    string
	storeFormat  string
)

func init() {
	storeCmd.PersistentFlags().StringVar(&storeProject, "name", "", "Project name (default: from config)")
	storeSaveCmd.Flags().StringVarP(&storeNote, "note", "n", "", "Revision note")
	storeLoadCmd.Flags().StringVarP(&storeFormat, "format", "f", "json", "Output format when writing to stdout (json|yaml)")

	storeCmd.AddCommand(storeSaveCmd, storeLoadCmd, storeListCmd, storeFindCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStore() (*store.Store, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	if storeProject != "" {
		cfg.Project = storeProject
	}
	s, err := store.Open(cfg.Store)
	return s, cfg, err
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Keep document revisions in the revision database",
}

var storeSaveCmd = &cobra.Command{
	Use:   "save [document]",
	Short: "Save a document as the newest revision of the project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := abs(args[0])
		if err != nil {
			return err
		}
		doc, err := docio.Load(hostFS(), path)
		if err != nil {
			return err
		}
		s, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		v, _ := cfg.Version()
		rev, err := s.Save(cmd.Context(), cfg.Project, v.String(), storeNote, doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s revision %d\n", rev.Project, rev.ID)
		return nil
	},
}

var storeLoadCmd = &cobra.Command{
	Use:   "load [revision] [output]",
	Short: "Write a revision (\"latest\" for the newest) as a document",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		var (
			rev store.Revision
			doc *api.Document
		)
		if args[0] == "latest" {
			rev, doc, err = s.Latest(cmd.Context(), cfg.Project)
		} else {
			id, perr := strconv.ParseInt(args[0], 10, 64)
			if perr != nil {
				return fmt.Errorf("revision %q: want a number or \"latest\"", args[0])
			}
			rev, doc, err = s.Get(cmd.Context(), id)
		}
		if err != nil {
			return err
		}
		out := ""
		if len(args) == 2 {
			out = args[1]
		}
		if err := writeDocument(cmd, doc, out, storeFormat); err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s revision %d to %s\n", rev.Project, rev.ID, out)
		}
		return nil
	},
}

func printRevisions(cmd *cobra.Command, revs []store.Revision) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROJECT\tCREATED\tVERSION\tNOTE")
	for _, r := range revs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Project, r.Created.Local().Format(time.DateTime), r.Version, r.Note)
	}
	return tw.Flush()
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the revisions of the project, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		revs, err := s.List(cmd.Context(), cfg.Project)
		if err != nil {
			return err
		}
		return printRevisions(cmd, revs)
	},
}

var storeFindCmd = &cobra.Command{
	Use:   "find [label]",
	Short: "List every revision containing a parameter label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		revs, err := s.FindLabel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printRevisions(cmd, revs)
	},
}
