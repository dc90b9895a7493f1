package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/catalog"
	"github.com/agentic-research/gatetree/internal/snapshot"
	"github.com/agentic-research/gatetree/internal/version"
)

func ptr(s string) *string { return &s }

func messages(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}

func TestLintBaselineIsClean(t *testing.T) {
	for _, v := range []string{"9.2", "9.3"} {
		t.Run(v, func(t *testing.T) {
			ver, err := version.Normalize(v)
			require.NoError(t, err)
			doc := snapshot.Build(catalog.Baseline(catalog.Context{Version: ver, Materials: []string{"Air", "LSO"}}))
			assert.Empty(t, Lint(doc))
		})
	}
}

func TestLint(t *testing.T) {
	doc := &api.Document{Root: api.NodeSnapshot{
		Name: "gate", Kind: "root",
		Children: []api.NodeSnapshot{
			{Name: "source", Kind: "sources", Children: []api.NodeSnapshot{
				{Name: "src", Kind: "source", Meta: api.Meta{SourceType: "laser"}},
				{Name: "src", Kind: "source", Meta: api.Meta{SourceType: "gps"}},
			}},
			{Name: "distributions", Kind: "distributions", Children: []api.NodeSnapshot{
				{Name: "d", Kind: "distribution", Meta: api.Meta{DistributionType: "Poisson"}},
			}},
			{Name: "stray", Kind: "volume", Meta: api.Meta{Shape: "box"}},
			{Name: "world", Kind: "world", Children: []api.NodeSnapshot{
				{
					Name: "pet", Kind: "volume",
					Meta: api.Meta{Shape: "cylinder", SystemType: "cylindricalPET", SystemName: "pet", Repeater: "spiral"},
					Children: []api.NodeSnapshot{
						{Name: "rs", Kind: "volume", Meta: api.Meta{Shape: "cylinder", SystemName: "pet", SystemLevel: "rsector"}},
						{Name: "x", Kind: "volume", Meta: api.Meta{Shape: "box", SystemName: "pet", SystemLevel: "ring"}},
						{Name: "y", Kind: "volume", Meta: api.Meta{Shape: "box", SystemName: "other", SystemLevel: "crystal"}},
						{Name: "z", Kind: "volume", Meta: api.Meta{Shape: "blob"},
							Parameters: []api.ParameterSnapshot{
								{Label: "X Length", Values: []any{1.0}, Unit: ptr("furlong")},
								{Label: "", Values: []any{}},
								{Label: "Visible", Values: []any{"True"}, Unit: ptr("include")},
							}},
					},
				},
			}},
			{Name: "odd", Kind: "gadget"},
		},
	}}

	assert.Equal(t, []string{
		`gate/source/src: unknown source type "laser", gps will be used`,
		`gate/source: duplicate child name "src"`,
		`gate/distributions/d: unknown distribution type "Poisson", Flat will be used`,
		`gate/stray: volume outside the world cannot be created`,
		`gate/world/pet: unknown repeater "spiral"`,
		`gate/world/pet/rs: level "rsector" of cylindricalPET expects a box, not a cylinder`,
		`gate/world/pet/x: cylindricalPET has no level "ring"`,
		`gate/world/pet/y: attached to "other", which is not an enclosing system`,
		`gate/world/pet/z: unknown shape "blob", box will be used`,
		`gate/world/pet/z: "X Length": unknown unit "furlong"`,
		`gate/world/pet/z: parameter without label cannot be matched`,
		`gate/odd: unknown kind "gadget"`,
	}, messages(Lint(doc)))
}

func TestLintSystemRootPlacement(t *testing.T) {
	doc := &api.Document{Root: api.NodeSnapshot{
		Name: "gate", Kind: "root",
		Children: []api.NodeSnapshot{{
			Name: "world", Kind: "world",
			Children: []api.NodeSnapshot{{
				Name: "a", Kind: "volume", Meta: api.Meta{Shape: "box"},
				Children: []api.NodeSnapshot{{
					Name: "b", Kind: "volume", Meta: api.Meta{Shape: "box", SystemType: "warpDrive"},
				}},
			}},
		}},
	}}
	assert.Equal(t, []string{
		`gate/world/a/b: unknown system type "warpDrive"`,
		`gate/world/a/b: system root is not a daughter of the world`,
	}, messages(Lint(doc)))
}
