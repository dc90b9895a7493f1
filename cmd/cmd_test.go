package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/config"
	"github.com/agentic-research/gatetree/internal/docio"
	"github.com/agentic-research/gatetree/internal/workspace"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setup writes a config file pointing the revision store into a temp dir.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := `store = "` + filepath.ToSlash(filepath.Join(dir, "revisions.db")) + `"
project = "test"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, config.FileName)}, args...))
	err := rootCmd.Execute()
	resetFlags(rootCmd)
	return out.String(), errOut.String(), err
}

func load(t *testing.T, path string) *api.Document {
	t.Helper()
	doc, err := docio.Load(hostFS(), path)
	require.NoError(t, err)
	return doc
}

func childNames(n api.NodeSnapshot) []string {
	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Name
	}
	return names
}

func TestBaselineCommand(t *testing.T) {
	dir := setup(t)
	out := filepath.Join(dir, "base.yaml")

	_, _, err := run(t, dir, "baseline", out)
	require.NoError(t, err)

	doc := load(t, out)
	assert.Equal(t, api.SchemaVersion, doc.SchemaVersion)
	assert.Equal(t, "gate", doc.Root.Name)
	assert.Contains(t, childNames(doc.Root), "world")
	assert.Contains(t, childNames(doc.Root), "source")

	stdout, _, err := run(t, dir, "baseline", "--format", "yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "schemaVersion:"), stdout)
}

func TestEditCommands(t *testing.T) {
	dir := setup(t)
	project := filepath.Join(dir, "sim.json")

	stdout, _, err := run(t, dir, "add", "source", "beam", "--type", "PencilBeam", "-p", project)
	require.NoError(t, err)
	assert.Equal(t, "gate/source/beam\n", stdout)

	stdout, _, err = run(t, dir, "add", "volume", "world", "crystal", "--shape", "box", "-p", project)
	require.NoError(t, err)
	assert.Equal(t, "gate/world/crystal\n", stdout)

	stdout, _, err = run(t, dir, "set", "world/crystal", "X Length", "3", "--unit", "cm", "-p", project)
	require.NoError(t, err)
	assert.Equal(t, "1 updated\n", stdout)

	_, _, err = run(t, dir, "set", "world/crystal", "No Such Label", "1", "-p", project)
	require.ErrorIs(t, err, workspace.ErrParameterNotFound)

	_, _, err = run(t, dir, "set", "world", "SetVisible", "false", "-p", project)
	require.NoError(t, err)
	stdout, _, err = run(t, dir, "query", project, "$..children[?(@.name == 'world')].parameters[?(@.label == 'SetVisible')].values[0]")
	require.NoError(t, err)
	assert.Equal(t, "false\n", stdout)

	_, _, err = run(t, dir, "set", "world", "Y Length", "nan", "-p", project)
	require.NoError(t, err)
	stdout, _, err = run(t, dir, "query", project, "$..children[?(@.name == 'world')].parameters[?(@.label == 'Y Length')].values[0]")
	require.NoError(t, err)
	assert.Equal(t, "\"nan\"\n", stdout)

	_, _, err = run(t, dir, "disable", "world/crystal", "-p", project)
	require.NoError(t, err)

	stdout, _, err = run(t, dir, "query", project, "$.root.children[?(@.name == 'world')].children[*].name")
	require.NoError(t, err)
	assert.Equal(t, "\"crystal\"\n", stdout)

	stdout, _, err = run(t, dir, "query", project, "$..children[?(@.name == 'beam')].meta.sourceType")
	require.NoError(t, err)
	assert.Equal(t, "\"PencilBeam\"\n", stdout)

	stdout, _, err = run(t, dir, "query", project, "$..children[?(@.name == 'crystal')].meta.enabled")
	require.NoError(t, err)
	assert.Equal(t, "false\n", stdout)

	_, _, err = run(t, dir, "remove", "world", "-p", project)
	require.ErrorIs(t, err, workspace.ErrNotRemovable)
}

func TestApplyCommand(t *testing.T) {
	dir := setup(t)
	in := filepath.Join(dir, "in.json")
	doc := `{
  "schemaVersion": "2.0",
  "root": {
    "name": "gate",
    "kind": "root",
    "children": [
      {"name": "source", "kind": "sources", "children": [
        {"name": "src", "kind": "source", "meta": {"sourceType": "gps"},
         "parameters": [{"label": "Bogus", "values": [1]}]}
      ]}
    ]
  }
}`
	require.NoError(t, os.WriteFile(in, []byte(doc), 0o644))

	out := filepath.Join(dir, "out.json")
	_, stderr, err := run(t, dir, "apply", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Bogus")

	merged := load(t, out)
	var sources api.NodeSnapshot
	for _, c := range merged.Root.Children {
		if c.Name == "source" {
			sources = c
		}
	}
	assert.Equal(t, []string{"src"}, childNames(sources))

	_, _, err = run(t, dir, "apply", in, "--strict")
	require.Error(t, err)

	_, _, err = run(t, dir, "apply", filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, docio.ErrNotFound)
}

func TestStoreCommands(t *testing.T) {
	dir := setup(t)
	base := filepath.Join(dir, "base.json")
	_, _, err := run(t, dir, "baseline", base)
	require.NoError(t, err)

	stdout, _, err := run(t, dir, "store", "save", base, "--note", "first")
	require.NoError(t, err)
	assert.Equal(t, "saved test revision 1\n", stdout)

	stdout, _, err = run(t, dir, "store", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "first")

	stdout, _, err = run(t, dir, "store", "find", "Material Database")
	require.NoError(t, err)
	assert.Contains(t, stdout, "test")

	out := filepath.Join(dir, "restored.json")
	_, _, err = run(t, dir, "store", "load", "latest", out)
	require.NoError(t, err)
	assert.Equal(t, load(t, base), load(t, out))

	_, _, err = run(t, dir, "store", "load", "latest", "--name", "other")
	require.Error(t, err)
}

func TestBrowseCommands(t *testing.T) {
	dir := setup(t)
	project := filepath.Join(dir, "sim.json")
	_, _, err := run(t, dir, "add", "volume", "world", "crystal", "-p", project)
	require.NoError(t, err)

	stdout, _, err := run(t, dir, "ls", project, "world")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, "_meta.json", lines[0])
	assert.Contains(t, lines, "crystal/")
	assert.Contains(t, lines, "X Length")

	stdout, _, err = run(t, dir, "cat", project, "world/crystal/_meta.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"shape": "box"`)

	_, _, err = run(t, dir, "cat", project, "world/nope")
	require.Error(t, err)
}

func TestLintCommand(t *testing.T) {
	dir := setup(t)
	good := filepath.Join(dir, "good.json")
	_, _, err := run(t, dir, "baseline", good)
	require.NoError(t, err)
	_, _, err = run(t, dir, "lint", good)
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("root:\n  name: gate\n  kind: gadget\n"), 0o644))
	stdout, _, err := run(t, dir, "lint", good, bad)
	require.Error(t, err)
	assert.Contains(t, stdout, `unknown kind "gadget"`)
}

func TestTemplatesCommand(t *testing.T) {
	dir := setup(t)
	stdout, _, err := run(t, dir, "templates", "shapes")
	require.NoError(t, err)
	assert.Contains(t, strings.Split(stdout, "\n"), "box")

	stdout, _, err = run(t, dir, "templates")
	require.NoError(t, err)
	assert.Contains(t, stdout, "repeaters: linear, ring")

	_, _, err = run(t, dir, "templates", "nope")
	require.Error(t, err)
}

func callTool(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestToolServer(t *testing.T) {
	w := workspace.New(workspace.Options{FS: memfs.New(), Config: config.Default()})
	ts := newToolServer(w)
	require.NotNil(t, ts.build())

	text, isErr := callTool(t, ts.baseline, nil)
	require.False(t, isErr, text)
	assert.Contains(t, text, `"schemaVersion": "2.0"`)

	text, isErr = callTool(t, ts.addNode, map[string]any{"kind": "volume", "name": "ring", "type": "cylinder", "repeater": "ring"})
	require.False(t, isErr, text)
	assert.Equal(t, "gate/world/ring", text)

	text, isErr = callTool(t, ts.addNode, map[string]any{"kind": "vis", "name": "x"})
	assert.True(t, isErr, text)

	text, isErr = callTool(t, ts.setParameter, map[string]any{"path": "world/ring", "label": "Repeat Number", "values": "[8]"})
	require.False(t, isErr, text)
	assert.True(t, strings.HasPrefix(text, "1 updated"), text)

	text, isErr = callTool(t, ts.setParameter, map[string]any{"path": "world/ring", "label": "Repeat Number", "values": "8"})
	assert.True(t, isErr, text)

	text, isErr = callTool(t, ts.query, map[string]any{"expression": "$..meta.repeater"})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"ring"`)

	doc := `{"root": {"name": "gate", "kind": "root", "children": [
	  {"name": "source", "kind": "sources", "children": [
	    {"name": "beam", "kind": "source", "meta": {"sourceType": "PencilBeam"}}]}]}}`
	text, isErr = callTool(t, ts.preview, map[string]any{"document": doc})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"PencilBeam"`)

	text, _ = callTool(t, ts.query, map[string]any{"expression": "$..meta.sourceType"})
	assert.NotContains(t, text, "PencilBeam")

	text, isErr = callTool(t, ts.apply, map[string]any{"document": doc})
	require.False(t, isErr, text)
	assert.Equal(t, "applied\nno warnings", text)

	text, _ = callTool(t, ts.query, map[string]any{"expression": "$..meta.sourceType"})
	assert.Contains(t, text, "PencilBeam")

	text, isErr = callTool(t, ts.apply, map[string]any{"document": "{"})
	assert.True(t, isErr, text)

	text, isErr = callTool(t, ts.lint, nil)
	require.False(t, isErr, text)
	assert.Equal(t, "no problems", text)

	text, isErr = callTool(t, ts.export, map[string]any{"format": "yaml"})
	require.False(t, isErr, text)
	assert.True(t, strings.HasPrefix(text, "schemaVersion:"), text)

	text, isErr = callTool(t, ts.templates, map[string]any{"category": "modules"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "adder")
}

func TestToolServerApplyWarnings(t *testing.T) {
	w := workspace.New(workspace.Options{FS: memfs.New(), Config: config.Default()})
	ts := newToolServer(w)
	bad := `{"root": {"name": "gate", "children": [{"name": "physics", "children": [{"name": "ghost"}]}]}}`
	good := `{"root": {"name": "gate", "children": [{"name": "output", "meta": {"enabled": false}}]}}`

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			text, isErr := callTool(t, ts.apply, map[string]any{"document": bad})
			assert.False(t, isErr, text)
			assert.Contains(t, text, "ghost")
		}()
		go func() {
			defer wg.Done()
			text, isErr := callTool(t, ts.apply, map[string]any{"document": good})
			assert.False(t, isErr, text)
			assert.Equal(t, "applied\nno warnings", text)
		}()
	}
	wg.Wait()
}
