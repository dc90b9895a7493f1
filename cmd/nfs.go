package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/internal/treefs"
)

var nfsMountPoint string

func init() {
	nfsCmd.Flags().StringVar(&nfsMountPoint, "mount", "", "Also mount the export read-only at this directory (uses sudo)")
	rootCmd.AddCommand(nfsCmd)
}

var nfsCmd = &cobra.Command{
	Use:   "nfs [document]",
	Short: "Export a document's tree over NFS",
	Long: `Serves the file tree that ls and cat browse as a read-only NFSv3
export on a localhost port, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := openTree(args[0])
		if err != nil {
			return err
		}
		srv, err := treefs.NewServer(tree)
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()
		fmt.Fprintf(cmd.OutOrStdout(), "nfs listening on localhost:%d\n", srv.Port())

		if nfsMountPoint != "" {
			if err := treefs.Mount(srv.Port(), nfsMountPoint); err != nil {
				return err
			}
			defer func() {
				if err := treefs.Unmount(nfsMountPoint); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "mounted at %s\n", nfsMountPoint)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		return nil
	},
}
