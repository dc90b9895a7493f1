package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/internal/workspace"
)

var (
	projectPath string
	sourceType  string
	distType    string
	shapeFlag   string
	repeatFlag  string
	unitFlag    string
)

func init() {
	for _, c := range []*cobra.Command{addCmd, removeCmd, enableCmd, disableCmd, setCmd, duplicateCmd, systemCmd} {
		c.PersistentFlags().StringVarP(&projectPath, "project", "p", "gatetree.json", "Document to edit (created from a baseline when missing)")
		rootCmd.AddCommand(c)
	}
	addSourceCmd.Flags().StringVarP(&sourceType, "type", "t", "gps", "Source type")
	addDistributionCmd.Flags().StringVarP(&distType, "type", "t", "Flat", "Distribution type")
	addVolumeCmd.Flags().StringVarP(&shapeFlag, "shape", "s", "box", "Volume shape")
	addVolumeCmd.Flags().StringVarP(&repeatFlag, "repeater", "r", "", "Repeater kind")
	setCmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "Unit to select")

	addCmd.AddCommand(addSourceCmd, addDistributionCmd, addVolumeCmd, addProcessCmd, addModuleCmd)
	systemCmd.AddCommand(systemMarkCmd, systemAttachCmd, systemCandidatesCmd)
}

// editProject loads the project document, runs fn and saves the result
// back in the project's format.
func editProject(cmd *cobra.Command, fn func(w *workspace.Workspace) error) error {
	w, _, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	if err := openProject(w, projectPath); err != nil {
		return err
	}
	if err := fn(w); err != nil {
		return err
	}
	printWarnings(cmd, w.Warnings())
	path, err := abs(projectPath)
	if err != nil {
		return err
	}
	return w.ExportFile(path)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a node from the template catalog to the project",
}

var addSourceCmd = &cobra.Command{
	Use:   "source [name]",
	Short: "Add a source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			n, err := w.AddSource(args[0], sourceType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.Path())
			return nil
		})
	},
}

var addDistributionCmd = &cobra.Command{
	Use:   "distribution [name]",
	Short: "Add a named distribution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			n, err := w.AddDistribution(args[0], distType)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.Path())
			return nil
		})
	},
}

var addVolumeCmd = &cobra.Command{
	Use:   "volume [parent] [name]",
	Short: "Add a volume under the world or one of its descendants",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			n, err := w.AddVolume(args[0], args[1], shapeFlag, repeatFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.Path())
			return nil
		})
	},
}

var addProcessCmd = &cobra.Command{
	Use:   "process [name]",
	Short: "Add a physics process",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			return w.AddPhysicsProcess(args[0])
		})
	},
}

var addModuleCmd = &cobra.Command{
	Use:   "module [name]",
	Short: "Insert a digitizer module into the singles chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			return w.AddDigitizerModule(args[0])
		})
	},
}

var duplicateCmd = &cobra.Command{
	Use:   "duplicate [path]",
	Short: "Copy a volume and its daughters next to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			n, err := w.DuplicateVolume(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.Path())
			return nil
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [path]",
	Short: "Remove a source, distribution or volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			return w.Remove(args[0])
		})
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable [path]",
	Short: "Enable a node and its descendants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			return w.SetEnabled(args[0], true)
		})
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable [path]",
	Short: "Disable a node and its descendants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			return w.SetEnabled(args[0], false)
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set [path] [label] [values...]",
	Short: "Set every parameter with a label on a node",
	Long: `Overwrites the slots of every parameter labelled label on the node at
path. Arguments are converted per slot: true and false in toggle slots,
finite numbers in text slots. Anything else is stored as given.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make([]any, 0, len(args)-2)
		for _, a := range args[2:] {
			values = append(values, a)
		}
		var unit *string
		if unitFlag != "" {
			unit = &unitFlag
		}
		return editProject(cmd, func(w *workspace.Workspace) error {
			n, _, err := w.SetParameter(args[0], args[1], values, unit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d updated\n", n)
			return nil
		})
	},
}

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Manage detector systems",
}

var systemMarkCmd = &cobra.Command{
	Use:   "mark [path] [type]",
	Short: "Make a world daughter the root of a system (empty type clears it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		systemType := ""
		if len(args) == 2 {
			systemType = args[1]
		}
		return editProject(cmd, func(w *workspace.Workspace) error {
			return w.MarkSystemRoot(args[0], systemType)
		})
	},
}

var systemAttachCmd = &cobra.Command{
	Use:   "attach [path] [system] [level]",
	Short: "Attach a volume to a level of an enclosing system",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProject(cmd, func(w *workspace.Workspace) error {
			return w.AttachToSystem(args[0], args[1], args[2])
		})
	},
}

var systemCandidatesCmd = &cobra.Command{
	Use:   "candidates [path]",
	Short: "List the systems a volume can be attached to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, _, err := newWorkspace(cmd)
		if err != nil {
			return err
		}
		if err := openProject(w, projectPath); err != nil {
			return err
		}
		names, err := w.AttachCandidates(args[0])
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
