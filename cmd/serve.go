package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/agentic-research/gatetree/internal/lint"
	"github.com/agentic-research/gatetree/internal/snapshot"
	"github.com/agentic-research/gatetree/internal/workspace"
)

const serverVersion = "0.1.0"

var serveProject string

func init() {
	serveCmd.Flags().StringVarP(&serveProject, "project", "p", "", "Document to load at startup")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configuration tree as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, _, err := newWorkspace(cmd)
		if err != nil {
			return err
		}
		if err := openProject(w, serveProject); err != nil {
			return err
		}
		return server.ServeStdio(newToolServer(w).build())
	},
}

// toolServer exposes one workspace to MCP clients.
type toolServer struct {
	w *workspace.Workspace
}

func newToolServer(w *workspace.Workspace) *toolServer {
	return &toolServer{w: w}
}

func (t *toolServer) build() *server.MCPServer {
	s := server.NewMCPServer("gatetree", serverVersion, server.WithToolCapabilities(true))

	s.AddTool(mcp.NewTool("baseline",
		mcp.WithDescription("Discard the current tree, build the default one and return it as a JSON document"),
	), t.baseline)

	s.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Return the current tree as a document"),
		mcp.WithString("format", mcp.Description("json (default) or yaml")),
	), t.export)

	s.AddTool(mcp.NewTool("apply_document",
		mcp.WithDescription("Merge a document onto the current tree by parameter label and report recovered warnings"),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document text")),
		mcp.WithString("format", mcp.Description("json (default) or yaml")),
	), t.apply)

	s.AddTool(mcp.NewTool("preview_document",
		mcp.WithDescription("Merge a document onto a copy of the current tree and return the result without changing the tree"),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document text")),
		mcp.WithString("format", mcp.Description("json (default) or yaml")),
	), t.preview)

	s.AddTool(mcp.NewTool("query_document",
		mcp.WithDescription("Evaluate a JSONPath expression against the current tree's document"),
		mcp.WithString("expression", mcp.Required(), mcp.Description("JSONPath, e.g. $..children[?(@.kind == 'volume')].name")),
	), t.query)

	s.AddTool(mcp.NewTool("lint_document",
		mcp.WithDescription("Check the current tree for unknown kinds, shapes, units and misplaced system attachments"),
	), t.lint)

	s.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the kinds the template catalog can build"),
		mcp.WithString("category", mcp.Description("One of "+strings.Join(templateCategories(), ", ")+"; all when omitted")),
	), t.templates)

	s.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a source, distribution or volume from the template catalog"),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("source", "distribution", "volume")),
		mcp.WithString("name", mcp.Required()),
		mcp.WithString("type", mcp.Description("Source type, distribution type or volume shape")),
		mcp.WithString("parent", mcp.Description("Parent path for volumes (default world)")),
		mcp.WithString("repeater", mcp.Description("Repeater kind for volumes")),
	), t.addNode)

	s.AddTool(mcp.NewTool("set_parameter",
		mcp.WithDescription("Set every parameter with a label on a node"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Node path, e.g. world/box")),
		mcp.WithString("label", mcp.Required()),
		mcp.WithString("values", mcp.Required(), mcp.Description("JSON array of slot values")),
		mcp.WithString("unit", mcp.Description("Unit to select")),
	), t.setParameter)

	return s
}

func warningsText(warnings []snapshot.Warning) string {
	if len(warnings) == 0 {
		return "no warnings"
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

func documentResult(format string, marshal func(snapshot.Format) ([]byte, error)) (*mcp.CallToolResult, error) {
	f, err := snapshot.ParseFormat(format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := marshal(f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *toolServer) baseline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.w.Reset()
	t.w.EnsureBaseline()
	return t.export(ctx, req)
}

func (t *toolServer) export(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.w.Export()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return documentResult(req.GetString("format", "json"), func(f snapshot.Format) ([]byte, error) {
		return f.Marshal(doc)
	})
}

func (t *toolServer) apply(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := snapshot.ParseFormat(req.GetString("format", "json"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	warnings, err := t.w.Import([]byte(text), f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("applied\n" + warningsText(warnings)), nil
}

func (t *toolServer) preview(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := snapshot.ParseFormat(req.GetString("format", "json"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := f.Unmarshal([]byte(text))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	merged, warnings, err := t.w.Preview(in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := f.Marshal(merged)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(warningsText(warnings) + "\n\n" + string(data)), nil
}

func (t *toolServer) query(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := t.w.Export()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := snapshot.Query(doc, expr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *toolServer) lint(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.w.Export()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	diags := lint.Lint(doc)
	if len(diags) == 0 {
		return mcp.NewToolResultText("no problems"), nil
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.String()
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (t *toolServer) templates(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lists := templateLists()
	if category := req.GetString("category", ""); category != "" {
		entries, ok := lists[category]
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown category %q", category)), nil
		}
		return mcp.NewToolResultText(strings.Join(entries, "\n")), nil
	}
	var b strings.Builder
	for _, name := range templateCategories() {
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(lists[name], ", "))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (t *toolServer) addNode(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subtype := req.GetString("type", "")

	var path string
	switch kind {
	case "source":
		n, err := t.w.AddSource(name, subtype)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path = n.Path()
	case "distribution":
		n, err := t.w.AddDistribution(name, subtype)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path = n.Path()
	case "volume":
		if subtype == "" {
			subtype = "box"
		}
		n, err := t.w.AddVolume(req.GetString("parent", "world"), name, subtype, req.GetString("repeater", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path = n.Path()
	default:
		return mcp.NewToolResultError(fmt.Sprintf("kind %q: want source, distribution or volume", kind)), nil
	}
	return mcp.NewToolResultText(path), nil
}

func (t *toolServer) setParameter(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, err := req.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("values")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var values []any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("values: want a JSON array: %v", err)), nil
	}
	var unit *string
	if u := req.GetString("unit", ""); u != "" {
		unit = &u
	}
	n, warnings, err := t.w.SetParameter(path, label, values, unit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d updated\n%s", n, warningsText(warnings))), nil
}
