package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gatetree/api"
)

func doc(labels ...string) *api.Document {
	d := &api.Document{
		SchemaVersion: api.SchemaVersion,
		Root: api.NodeSnapshot{
			Name:       "gate",
			Kind:       "root",
			Parameters: []api.ParameterSnapshot{},
			Children:   []api.NodeSnapshot{},
		},
	}
	child := api.NodeSnapshot{Name: "world", Kind: "world", Parameters: []api.ParameterSnapshot{}, Children: []api.NodeSnapshot{}}
	for _, l := range labels {
		child.Parameters = append(child.Parameters, api.ParameterSnapshot{Label: l, Values: []any{1.0}})
	}
	d.Root.Children = append(d.Root.Children, child)
	return d
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "revisions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLatest(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, _, err := s.Latest(ctx, "pet")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := s.Save(ctx, "pet", "9.2.0", "initial", doc("X Length"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "pet", "9.3.0", "", doc("X Length", "Zoom"))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	rev, got, err := s.Latest(ctx, "pet")
	require.NoError(t, err)
	assert.Equal(t, second.ID, rev.ID)
	assert.Equal(t, "9.3.0", rev.Version)
	assert.Equal(t, doc("X Length", "Zoom"), got)

	rev, got, err = s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "initial", rev.Note)
	assert.Equal(t, doc("X Length"), got)

	revs, err := s.List(ctx, "pet")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, second.ID, revs[0].ID)
}

func TestProjectsAndFindLabel(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	a, err := s.Save(ctx, "pet", "9.2.0", "", doc("X Length"))
	require.NoError(t, err)
	b, err := s.Save(ctx, "spect", "9.2.0", "", doc("Zoom"))
	require.NoError(t, err)
	c, err := s.Save(ctx, "spect", "9.2.0", "", doc("X Length", "Zoom"))
	require.NoError(t, err)

	projects, err := s.Projects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pet", "spect"}, projects)

	revs, err := s.FindLabel(ctx, "X Length")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, []int64{a.ID, c.ID}, []int64{revs[0].ID, revs[1].ID})

	revs, err = s.FindLabel(ctx, "Zoom")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, b.ID, revs[0].ID)

	revs, err = s.FindLabel(ctx, "Nothing")
	require.NoError(t, err)
	assert.Empty(t, revs)
}
