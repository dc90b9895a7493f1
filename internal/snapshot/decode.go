package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/model"
)

// Decode reads a JSON document. Unknown keys are ignored, and the key
// spellings of older documents are accepted.
func Decode(data []byte) (*api.Document, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}
	return FromValue(v)
}

// DecodeYAML reads a YAML document with the same leniency as Decode.
func DecodeYAML(data []byte) (*api.Document, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &MalformedError{Reason: err.Error()}
	}
	return FromValue(v)
}

// FromValue converts a generic decoded value (maps, slices, scalars)
// into a document.
func FromValue(v any) (*api.Document, error) {
	top, ok := asMap(v)
	if !ok {
		return nil, &MalformedError{Path: "$", Reason: "document is not an object"}
	}
	doc := &api.Document{
		SchemaVersion:        scalarString(first(top, "schemaVersion", "schema")),
		MaterialDatabasePath: scalarString(first(top, "materialDatabasePath", "material_db_path")),
	}
	rv := first(top, "root")
	if rv == nil {
		return nil, &MalformedError{Path: "$.root", Reason: "missing root"}
	}
	root, err := decodeNode(rv, "$.root")
	if err != nil {
		return nil, err
	}
	doc.Root = root
	return doc, nil
}

func decodeNode(v any, path string) (api.NodeSnapshot, error) {
	m, ok := asMap(v)
	if !ok {
		return api.NodeSnapshot{}, &MalformedError{Path: path, Reason: "node is not an object"}
	}
	n := api.NodeSnapshot{
		Name:       scalarString(m["name"]),
		Kind:       scalarString(first(m, "kind", "node_type")),
		Parameters: []api.ParameterSnapshot{},
		Children:   []api.NodeSnapshot{},
	}
	if mv := m["meta"]; mv != nil {
		meta, ok := asMap(mv)
		if !ok {
			return n, &MalformedError{Path: path + ".meta", Reason: "meta is not an object"}
		}
		n.Meta = decodeMeta(meta)
	}

	params, err := asList(m["parameters"], path+".parameters")
	if err != nil {
		return n, err
	}
	for i, pv := range params {
		ps, err := decodeParameter(pv, fmt.Sprintf("%s.parameters[%d]", path, i))
		if err != nil {
			return n, err
		}
		n.Parameters = append(n.Parameters, ps)
	}

	children, err := asList(m["children"], path+".children")
	if err != nil {
		return n, err
	}
	for i, cv := range children {
		c, err := decodeNode(cv, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return n, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func decodeMeta(m map[string]any) api.Meta {
	meta := api.Meta{
		Role:             scalarString(m["role"]),
		SystemType:       scalarString(first(m, "systemType", "system_type")),
		SystemName:       scalarString(first(m, "systemName", "system_name")),
		SystemLevel:      scalarString(first(m, "systemLevel", "system_level")),
		SourceType:       scalarString(first(m, "sourceType", "source_type")),
		DistributionType: scalarString(first(m, "distributionType", "distribution_type")),
		Shape:            scalarString(m["shape"]),
		Repeater:         scalarString(m["repeater"]),
	}
	if ev, ok := m["enabled"]; ok && ev != nil {
		if b, ok := truth(ev); ok {
			meta.Enabled = &b
		}
	}
	return meta
}

func decodeParameter(v any, path string) (api.ParameterSnapshot, error) {
	m, ok := asMap(v)
	if !ok {
		return api.ParameterSnapshot{}, &MalformedError{Path: path, Reason: "parameter is not an object"}
	}
	ps := api.ParameterSnapshot{Label: scalarString(m["label"])}
	switch vals := m["values"].(type) {
	case nil:
		ps.Values = []any{}
	case []any:
		ps.Values = make([]any, len(vals))
		for i, e := range vals {
			ps.Values[i] = model.NormalizeValue(e)
		}
	default:
		ps.Values = []any{model.NormalizeValue(vals)}
	}
	if uv, ok := m["unit"]; ok && uv != nil {
		u := scalarString(uv)
		ps.Unit = &u
	}
	return ps, nil
}

// first returns the value of the first present key.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[fmt.Sprint(k)] = e
		}
		return out, true
	}
	return nil, false
}

func asList(v any, path string) ([]any, error) {
	switch l := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return l, nil
	}
	return nil, &MalformedError{Path: path, Reason: "not a list"}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func truth(v any) (bool, bool) {
	switch b := model.NormalizeValue(v).(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, true
	case string:
		if p, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return p, true
		}
	}
	return false, false
}
