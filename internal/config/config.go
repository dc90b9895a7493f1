// Package config loads the host configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/gatetree/internal/catalog"
	"github.com/agentic-research/gatetree/internal/version"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "gatetree.hcl"

// Config holds the settings shared by every command.
type Config struct {
	// GateVersion selects version-dependent digitizer addressing.
	GateVersion string `hcl:"gate_version,optional"`
	// MaterialDatabase is loaded before building a baseline.
	MaterialDatabase   string   `hcl:"material_database,optional"`
	SensitiveDetectors []string `hcl:"sensitive_detectors,optional"`
	CoincidenceChain   string   `hcl:"coincidence_chain,optional"`
	// Store is the revision database path.
	Store    string `hcl:"store,optional"`
	Project  string `hcl:"project,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		GateVersion:        version.Fallback.String(),
		SensitiveDetectors: append([]string(nil), catalog.DefaultSensitiveDetectors...),
		CoincidenceChain:   catalog.DefaultCoincidenceChain,
		Store:              "gatetree.db",
		Project:            "default",
		LogLevel:           "info",
	}
}

// Load reads path from fs. A missing file yields Default. Fields absent
// from the file keep their default.
func Load(fs billy.Filesystem, path string) (Config, error) {
	cfg := Default()
	src, err := util.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(filepath.Base(path), src)
}

// Parse decodes HCL source. filename is used in diagnostics and must end
// in .hcl.
func Parse(filename string, src []byte) (Config, error) {
	var file Config
	if err := hclsimple.Decode(filename, src, nil, &file); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	return Default().merge(file), nil
}

func (c Config) merge(o Config) Config {
	if o.GateVersion != "" {
		c.GateVersion = o.GateVersion
	}
	if o.MaterialDatabase != "" {
		c.MaterialDatabase = o.MaterialDatabase
	}
	if len(o.SensitiveDetectors) > 0 {
		c.SensitiveDetectors = o.SensitiveDetectors
	}
	if o.CoincidenceChain != "" {
		c.CoincidenceChain = o.CoincidenceChain
	}
	if o.Store != "" {
		c.Store = o.Store
	}
	if o.Project != "" {
		c.Project = o.Project
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	return c
}

// Version normalizes GateVersion. On failure the fallback version is
// returned with the parse error.
func (c Config) Version() (version.Version, error) {
	return version.Normalize(c.GateVersion)
}

// CatalogContext builds the catalog inputs for v and materials.
func (c Config) CatalogContext(v version.Version, materials []string) catalog.Context {
	return catalog.Context{
		Version:            v,
		Materials:          materials,
		SensitiveDetectors: append([]string(nil), c.SensitiveDetectors...),
		CoincidenceChain:   c.CoincidenceChain,
	}
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
