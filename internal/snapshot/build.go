// Package snapshot converts between live node trees and portable
// documents, and reconciles documents onto existing trees.
package snapshot

import (
	"slices"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/catalog"
	"github.com/agentic-research/gatetree/internal/model"
)

// Build serializes the tree under root. The material database path is
// read from the root's material database row when it is set.
func Build(root *model.Node) *api.Document {
	doc := &api.Document{
		SchemaVersion:        api.SchemaVersion,
		MaterialDatabasePath: MaterialDatabasePath(root),
	}
	if root != nil {
		doc.Root = buildNode(root)
	}
	return doc
}

// MaterialDatabasePath returns the path held by the root's material
// database row, or "".
func MaterialDatabasePath(root *model.Node) string {
	if root == nil {
		return ""
	}
	for _, p := range root.ParametersByLabel(catalog.MaterialDatabaseLabel) {
		if len(p.Defaults) > 0 {
			if s, ok := p.Defaults[0].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func buildNode(n *model.Node) api.NodeSnapshot {
	s := api.NodeSnapshot{
		Name:       n.Name,
		Kind:       string(n.Kind),
		Meta:       buildMeta(n),
		Parameters: []api.ParameterSnapshot{},
		Children:   []api.NodeSnapshot{},
	}
	for _, p := range n.Parameters {
		if p.PresentationOnly() {
			continue
		}
		ps := api.ParameterSnapshot{
			Label:  p.Label,
			Values: slices.Clone(p.Defaults),
		}
		if ps.Values == nil {
			ps.Values = []any{}
		}
		if p.Unit != "" {
			u := p.Unit
			ps.Unit = &u
		}
		s.Parameters = append(s.Parameters, ps)
	}
	for _, c := range n.Children {
		s.Children = append(s.Children, buildNode(c))
	}
	return s
}

func buildMeta(n *model.Node) api.Meta {
	m := api.Meta{
		Role:        n.Role,
		SystemType:  n.SystemType,
		SystemName:  n.SystemName,
		SystemLevel: n.SystemLevel,
	}
	switch n.Kind {
	case model.KindSource:
		m.SourceType = n.Subtype
	case model.KindDistribution:
		m.DistributionType = n.Subtype
	case model.KindVolume:
		m.Shape = n.Subtype
		m.Repeater = n.Repeater
	}
	if !n.Enabled {
		off := false
		m.Enabled = &off
	}
	return m
}
