package config

import (
	"log/slog"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gatetree/internal/version"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(memfs.New(), FileName)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	v, err := cfg.Version()
	require.NoError(t, err)
	assert.Equal(t, version.Fallback, v)
}

func TestLoad(t *testing.T) {
	fs := memfs.New()
	src := `
gate_version        = "9.3"
material_database   = "data/GateMaterials.db"
sensitive_detectors = ["crystal", "pixel"]
log_level           = "debug"
`
	require.NoError(t, util.WriteFile(fs, FileName, []byte(src), 0o644))

	cfg, err := Load(fs, FileName)
	require.NoError(t, err)
	assert.Equal(t, "data/GateMaterials.db", cfg.MaterialDatabase)
	assert.Equal(t, []string{"crystal", "pixel"}, cfg.SensitiveDetectors)
	assert.Equal(t, "Coincidences", cfg.CoincidenceChain)
	assert.Equal(t, "gatetree.db", cfg.Store)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	v, err := cfg.Version()
	require.NoError(t, err)
	assert.Equal(t, version.Threshold, v)

	ctx := cfg.CatalogContext(v, []string{"Air"})
	assert.Equal(t, []string{"crystal", "pixel"}, ctx.SensitiveDetectors)
	assert.Equal(t, []string{"Air"}, ctx.Materials)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(FileName, []byte(`gate_version = `))
	assert.Error(t, err)

	_, err = Parse(FileName, []byte(`unknown_key = 1`))
	assert.Error(t, err)
}

func TestBadVersionFallsBack(t *testing.T) {
	cfg := Default()
	cfg.GateVersion = "not-a-version"
	v, err := cfg.Version()
	assert.Error(t, err)
	assert.Equal(t, version.Fallback, v)
}
