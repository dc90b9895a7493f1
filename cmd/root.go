package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/config"
	"github.com/agentic-research/gatetree/internal/docio"
	"github.com/agentic-research/gatetree/internal/snapshot"
	"github.com/agentic-research/gatetree/internal/workspace"
)

var (
	configPath  string
	verbose     bool
	gateVersion string
	materialDB  string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVar(&gateVersion, "gate-version", "", "Simulator version (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&materialDB, "materials", "m", "", "Material database (overrides config)")
}

var rootCmd = &cobra.Command{
	Use:   "gatetree",
	Short: "gatetree: build, merge and store GATE macro configuration trees",
	Long: `gatetree builds GATE simulation configuration trees from a template
catalog, saves them as portable JSON or YAML documents and merges such
documents back onto fresh trees by parameter label.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// hostFS resolves every path from the filesystem root; command
// arguments are made absolute first.
func hostFS() billy.Filesystem {
	return osfs.New(string(filepath.Separator))
}

func abs(path string) (string, error) {
	if path == "" || path == "-" {
		return path, nil
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return p, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig() (config.Config, error) {
	fs := hostFS()
	path, err := abs(configPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(fs, path)
	if err != nil {
		return cfg, err
	}
	if gateVersion != "" {
		cfg.GateVersion = gateVersion
	}
	if materialDB != "" {
		cfg.MaterialDatabase = materialDB
	}
	if cfg.MaterialDatabase, err = abs(cfg.MaterialDatabase); err != nil {
		return cfg, err
	}
	if cfg.Store, err = abs(cfg.Store); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newWorkspace(cmd *cobra.Command) (*workspace.Workspace, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, cfg, err
	}
	w := workspace.New(workspace.Options{
		FS:     hostFS(),
		Dir:    dir,
		Logger: newLogger(cmd.ErrOrStderr(), cfg.Level()),
		Config: cfg,
	})
	return w, cfg, nil
}

// openProject imports the document at path when it exists, otherwise
// starts from a baseline.
func openProject(w *workspace.Workspace, path string) error {
	if path == "" {
		w.EnsureBaseline()
		return nil
	}
	p, err := abs(path)
	if err != nil {
		return err
	}
	_, err = w.ImportFile(p)
	if errors.Is(err, docio.ErrNotFound) {
		w.EnsureBaseline()
		return nil
	}
	return err
}

// writeDocument saves doc to path, or prints it in format when path is
// empty or "-".
func writeDocument(cmd *cobra.Command, doc *api.Document, path, format string) error {
	if path == "" || path == "-" {
		f, err := snapshot.ParseFormat(format)
		if err != nil {
			return err
		}
		data, err := f.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	p, err := abs(path)
	if err != nil {
		return err
	}
	return docio.Save(hostFS(), p, doc)
}

func printWarnings(cmd *cobra.Command, warnings []snapshot.Warning) {
	for _, warn := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warn)
	}
}
