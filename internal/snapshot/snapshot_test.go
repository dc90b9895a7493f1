package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/catalog"
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/version"
)

var materials = []string{"Air", "Water", "LSO"}

func newCatalog(v version.Version) *catalog.Catalog {
	return catalog.New(catalog.Context{Version: v, Materials: materials})
}

// populated builds a baseline and adds one of each dynamic node kind,
// with some values changed away from their defaults.
func populated(t *testing.T, c *catalog.Catalog) *model.Node {
	t.Helper()
	root := c.Baseline()
	root.ParametersByLabel(catalog.MaterialDatabaseLabel)[0].SetValues([]any{"/data/GateMaterials.db"})

	sources := root.ChildByName("source")
	src := sources.AddChild(c.Source("src", "gps"))
	updated, refused := src.UpdateParameters("Particle", []any{"e+"}, nil)
	require.Equal(t, 1, updated)
	require.Empty(t, refused)
	sources.AddChild(c.Source("beam", "PencilBeam"))

	dists := root.ChildByName("distributions")
	g := dists.AddChild(c.Distribution("g1", "Gaussian"))
	g.UpdateParameters("sigma", []any{2.5}, nil)

	world := root.ChildByName("world")
	ring := world.AddChild(c.Volume("ring", "cylinder"))
	params, ok := c.Repeater(ring.Address, "ring")
	require.True(t, ok)
	ring.AppendParameters(params...)
	ring.Repeater = "ring"
	ring.SetSystemRoot("cylindricalPET")

	crystal := ring.AddChild(c.Volume("crystal", "box"))
	cm := "cm"
	updated, refused = crystal.UpdateParameters("X Length", []any{3}, &cm)
	require.Equal(t, 1, updated)
	require.Empty(t, refused)
	crystal.UpdateParameters("Material", []any{"LSO"}, nil)
	crystal.AttachToSystem("ring", "crystal")

	phantom := world.AddChild(c.Volume("phantom", "sphere"))
	phantom.SetEnabled(false)
	return root
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []version.Version{version.Fallback, version.Threshold} {
		t.Run(v.String(), func(t *testing.T) {
			c := newCatalog(v)
			want := Build(populated(t, c))

			data, err := Encode(want)
			require.NoError(t, err)
			doc, err := Decode(data)
			require.NoError(t, err)

			var warnings Collector
			target := c.Baseline()
			require.NoError(t, NewReconciler(c, &warnings).Apply(target, doc))
			assert.Empty(t, warnings.Warnings())

			assert.Equal(t, want, Build(target))
			assert.Equal(t, "/data/GateMaterials.db", Build(target).MaterialDatabasePath)

			crystal := target.Find("gate/world/ring/crystal")
			require.NotNil(t, crystal)
			assert.Equal(t, "cm", crystal.ParametersByLabel("X Length")[0].Unit)
			assert.Equal(t, "crystal", crystal.SystemLevel)
			assert.False(t, target.Find("gate/world/phantom").Enabled)
			assert.Equal(t, "ring", target.Find("gate/world/ring").Repeater)
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	c := newCatalog(version.Threshold)
	want := Build(populated(t, c))

	data, err := EncodeYAML(want)
	require.NoError(t, err)
	got, err := DecodeYAML(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestApplyIdempotent(t *testing.T) {
	c := newCatalog(version.Fallback)
	doc := Build(populated(t, c))

	target := c.Baseline()
	r := NewReconciler(c, nil)
	require.NoError(t, r.Apply(target, doc))
	once := Build(target)
	require.NoError(t, r.Apply(target, doc))

	assert.Equal(t, once, Build(target))
	assert.Len(t, target.ChildByName("source").Children, 2)
	assert.Len(t, target.Find("gate/world/ring").ParametersByLabel("Repeater: ring"), 1)
}

func TestApplyLabelFanOut(t *testing.T) {
	n := model.NewNode("rep", "/rep", model.KindGeneric,
		model.NewParameter("/rep/linear/setRepeatNumber", "Repeat Number", []model.SlotKind{model.SlotText}, []any{1}),
		model.NewParameter("/rep/ring/setRepeatNumber", "Repeat Number", []model.SlotKind{model.SlotText}, []any{1}),
		model.NewParameter("/rep/other", "Other", []model.SlotKind{model.SlotText}, []any{1}),
	)
	doc := &api.Document{Root: api.NodeSnapshot{
		Name:       "rep",
		Parameters: []api.ParameterSnapshot{{Label: "Repeat Number", Values: []any{8}}},
	}}
	require.NoError(t, NewReconciler(newCatalog(version.Fallback), nil).Apply(n, doc))

	assert.Equal(t, []any{8.0}, n.Parameters[0].Defaults)
	assert.Equal(t, []any{8.0}, n.Parameters[1].Defaults)
	assert.Equal(t, []any{8.0}, n.Parameters[1].Values)
	assert.Equal(t, []any{1.0}, n.Parameters[2].Defaults)
}

func TestApplyCreatesDistribution(t *testing.T) {
	c := newCatalog(version.Fallback)
	target := c.Baseline()
	doc := &api.Document{Root: api.NodeSnapshot{
		Name: "gate",
		Children: []api.NodeSnapshot{{
			Name: "distributions",
			Children: []api.NodeSnapshot{{
				Name: "g1",
				Meta: api.Meta{DistributionType: "Gaussian"},
			}},
		}},
	}}
	require.NoError(t, NewReconciler(c, nil).Apply(target, doc))

	g1 := target.Find("gate/distributions/g1")
	require.NotNil(t, g1)
	assert.Equal(t, "Gaussian", g1.Subtype)
	want := catalog.Distribution("g1", "Gaussian")
	require.Len(t, g1.Parameters, len(want.Parameters))
	for i, p := range want.Parameters {
		assert.Equal(t, p.Address, g1.Parameters[i].Address)
		assert.Equal(t, p.Defaults, g1.Parameters[i].Defaults)
	}
}

func TestApplyKeepsUnmentionedChildren(t *testing.T) {
	c := newCatalog(version.Fallback)
	target := c.Baseline()
	target.ChildByName("source").AddChild(c.Source("extra", "gps"))

	doc := &api.Document{Root: api.NodeSnapshot{
		Name:     "gate",
		Children: []api.NodeSnapshot{{Name: "source"}},
	}}
	require.NoError(t, NewReconciler(c, nil).Apply(target, doc))
	assert.NotNil(t, target.Find("gate/source/extra"))
	assert.Len(t, target.Children, 9)
}

func TestApplyReportsRecoveredConditions(t *testing.T) {
	c := newCatalog(version.Fallback)
	target := c.Baseline()
	furlong := "furlong"
	doc := &api.Document{Root: api.NodeSnapshot{
		Name: "gate",
		Children: []api.NodeSnapshot{
			{Name: "physics", Children: []api.NodeSnapshot{{Name: "mystery", Kind: "generic"}}},
			{Name: "vis", Parameters: []api.ParameterSnapshot{{Label: "No Such Label", Values: []any{1}}}},
			{Name: "world", Parameters: []api.ParameterSnapshot{{Label: "X Length", Values: []any{1}, Unit: &furlong}}},
			// shape outside the world is not creatable
			{Name: "output", Children: []api.NodeSnapshot{{Name: "cube", Meta: api.Meta{Shape: "box"}}}},
		},
	}}
	var warnings Collector
	require.NoError(t, NewReconciler(c, &warnings).Apply(target, doc))

	var kinds []WarningKind
	for _, w := range warnings.Warnings() {
		kinds = append(kinds, w.Kind)
	}
	assert.Equal(t, []WarningKind{UncreatableChild, UnmatchedParameter, UnknownUnit, UncreatableChild}, kinds)
	assert.Nil(t, target.Find("gate/physics/mystery"))
	assert.Nil(t, target.Find("gate/output/cube"))
	assert.Equal(t, []any{1.0}, target.Find("gate/world").ParametersByLabel("X Length")[0].Defaults)
}

func TestDecodeMalformed(t *testing.T) {
	for name, in := range map[string]string{
		"not json":        `{`,
		"not an object":   `[]`,
		"missing root":    `{"schemaVersion":"2.0"}`,
		"null root":       `{"root":null}`,
		"child not node":  `{"root":{"name":"gate","children":[1]}}`,
		"params not list": `{"root":{"name":"gate","parameters":{}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(in))
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}

	_, err := Decode([]byte(`{"root":{"name":"gate","children":[{"name":"a"},"b"]}}`))
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "$.root.children[1]", me.Path)
}

func TestDecodeLegacyKeys(t *testing.T) {
	doc, err := Decode([]byte(`{
		"schema": "2.0",
		"material_db_path": "GateMaterials.db",
		"root": {
			"name": "gate",
			"node_type": "root",
			"parameters": [{"label": "Zoom", "values": 2}],
			"children": [{
				"name": "g",
				"meta": {"distribution_type": "Gaussian", "system_level": "crystal", "enabled": 0}
			}]
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "2.0", doc.SchemaVersion)
	assert.Equal(t, "GateMaterials.db", doc.MaterialDatabasePath)
	assert.Equal(t, "root", doc.Root.Kind)
	assert.Equal(t, []any{2.0}, doc.Root.Parameters[0].Values)

	meta := doc.Root.Children[0].Meta
	assert.Equal(t, "Gaussian", meta.DistributionType)
	assert.Equal(t, "crystal", meta.SystemLevel)
	require.NotNil(t, meta.Enabled)
	assert.False(t, *meta.Enabled)
}

func TestBuildSkipsPresentationOnly(t *testing.T) {
	root := catalog.Baseline(catalog.Context{Version: version.Fallback})
	doc := Build(root)

	output := doc.Root.Children[4]
	require.Equal(t, "output", output.Name)
	for _, p := range output.Parameters {
		assert.NotEqual(t, "[ASCII Output]", p.Label)
	}
	digitizer := doc.Root.Children[3]
	for _, p := range digitizer.Parameters {
		assert.NotEqual(t, "Selected module (for UI)", p.Label)
	}
	assert.Empty(t, doc.MaterialDatabasePath)
	assert.True(t, doc.Root.Meta.IsZero())
}

func TestQuery(t *testing.T) {
	c := newCatalog(version.Fallback)
	doc := Build(populated(t, c))

	names, err := Query(doc, "$.root.children[?(@.name == 'source')].children[*].name")
	require.NoError(t, err)
	assert.Equal(t, []any{"src", "beam"}, names)

	shapes, err := Query(doc, "$..meta.shape")
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"cylinder", "box", "sphere"}, shapes)

	_, err = Query(doc, "$[")
	assert.Error(t, err)
}

func TestImporter(t *testing.T) {
	c := newCatalog(version.Threshold)
	data, err := Encode(Build(populated(t, c)))
	require.NoError(t, err)

	var seen *api.Document
	im := &Importer{
		Baseline:   c.Baseline,
		Reconciler: NewReconciler(c, nil),
		OnDocument: func(d *api.Document) error {
			seen = d
			return nil
		},
	}
	root, err := im.Import(nil, data, JSON)
	require.NoError(t, err)
	state, _ := im.State()
	assert.Equal(t, Done, state)
	require.NotNil(t, seen)
	assert.Equal(t, "/data/GateMaterials.db", seen.MaterialDatabasePath)
	assert.NotNil(t, root.Find("gate/world/ring/crystal"))

	_, err = im.Import(root, []byte(`[1,2]`), JSON)
	assert.ErrorIs(t, err, ErrMalformedDocument)
	state, cause := im.State()
	assert.Equal(t, Failed, state)
	assert.ErrorIs(t, cause, ErrMalformedDocument)
}
