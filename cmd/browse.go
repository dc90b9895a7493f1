package cmd

import (
	"fmt"

	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/internal/docio"
	"github.com/agentic-research/gatetree/internal/treefs"
)

func init() {
	rootCmd.AddCommand(lsCmd, catCmd)
}

func openTree(path string) (*treefs.TreeFS, error) {
	p, err := abs(path)
	if err != nil {
		return nil, err
	}
	doc, err := docio.Load(hostFS(), p)
	if err != nil {
		return nil, err
	}
	return treefs.New(doc), nil
}

var lsCmd = &cobra.Command{
	Use:   "ls [document] [dir]",
	Short: "List the children and parameters of a node in a document",
	Long: `Browses a document as a read-only file tree: nodes are directories,
parameters are files named after their label and every directory holds a
` + treefs.MetaFile + ` describing the node.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := openTree(args[0])
		if err != nil {
			return err
		}
		dir := "/"
		if len(args) == 2 {
			dir = args[1]
		}
		infos, err := tree.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, fi := range infos {
			name := fi.Name()
			if fi.IsDir() {
				name += "/"
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat [document] [file]",
	Short: "Print a parameter (or " + treefs.MetaFile + ") of a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := openTree(args[0])
		if err != nil {
			return err
		}
		data, err := util.ReadFile(tree, args[1])
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}
