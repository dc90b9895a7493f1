// Package lint checks a snapshot document for problems that apply would
// only report as warnings, or would not notice at all.
package lint

import (
	"fmt"
	"slices"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/catalog"
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/units"
)

type Diagnostic struct {
	// Path of the offending node, e.g. "gate/world/ring".
	Path    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}

var kinds = []model.Kind{
	model.KindRoot, model.KindPhysics, model.KindSources, model.KindSource,
	model.KindDistributions, model.KindDistribution, model.KindDigitizer,
	model.KindOutput, model.KindAcquisition, model.KindVerbose, model.KindVis,
	model.KindWorld, model.KindVolume, model.KindGeneric,
}

func knownUnit(u string) bool {
	for _, f := range units.Families {
		if slices.Contains(f.Units, u) {
			return true
		}
	}
	return slices.Contains(units.InclusionSwitch, u)
}

// system is an enclosing system root seen on the way down.
type system struct {
	name, typ string
}

// Lint walks doc and returns its diagnostics in tree order.
func Lint(doc *api.Document) []Diagnostic {
	var l linter
	l.node(&doc.Root, "", nil, nil)
	return l.diags
}

type linter struct {
	diags []Diagnostic
}

func (l *linter) add(path, format string, args ...any) {
	l.diags = append(l.diags, Diagnostic{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (l *linter) node(n *api.NodeSnapshot, parentPath string, parent *api.NodeSnapshot, systems []system) {
	path := n.Name
	if parentPath != "" {
		path = parentPath + "/" + n.Name
	}
	kind := model.Kind(n.Kind)

	if n.Name == "" {
		l.add(path, "node has no name")
	}
	if !slices.Contains(kinds, kind) {
		l.add(path, "unknown kind %q", n.Kind)
	}

	switch kind {
	case model.KindSource:
		if t := n.Meta.SourceType; t != "" && !slices.Contains(catalog.SourceKinds, t) {
			l.add(path, "unknown source type %q, gps will be used", t)
		}
	case model.KindDistribution:
		if t := n.Meta.DistributionType; t != "" && !slices.Contains(catalog.DistributionKinds, t) {
			l.add(path, "unknown distribution type %q, Flat will be used", t)
		}
	case model.KindVolume:
		if parent != nil && parent.Kind != string(model.KindWorld) && parent.Kind != string(model.KindVolume) {
			l.add(path, "volume outside the world cannot be created")
		}
		if s := n.Meta.Shape; s != "" && !catalog.KnownShape(s) {
			l.add(path, "unknown shape %q, %s will be used", s, catalog.DefaultShape)
		}
		if r := n.Meta.Repeater; r != "" && !slices.Contains(catalog.RepeaterKinds(), r) {
			l.add(path, "unknown repeater %q", r)
		}
	}

	systems = l.system(n, path, parent, systems)
	l.parameters(n, path)

	seen := make(map[string]bool, len(n.Children))
	for i := range n.Children {
		c := &n.Children[i]
		if seen[c.Name] {
			l.add(path, "duplicate child name %q", c.Name)
		}
		seen[c.Name] = true
		l.node(c, path, n, systems)
	}
}

// system checks the system attributes of n and returns the systems
// enclosing its children.
func (l *linter) system(n *api.NodeSnapshot, path string, parent *api.NodeSnapshot, systems []system) []system {
	m := n.Meta
	if m.SystemType != "" && m.SystemLevel == "" {
		if !catalog.KnownSystem(m.SystemType) {
			l.add(path, "unknown system type %q", m.SystemType)
		}
		if parent == nil || parent.Kind != string(model.KindWorld) {
			l.add(path, "system root is not a daughter of the world")
		}
		name := m.SystemName
		if name == "" {
			name = n.Name
		}
		return append(slices.Clip(systems), system{name: name, typ: m.SystemType})
	}
	if m.SystemLevel == "" {
		return systems
	}

	idx := slices.IndexFunc(systems, func(s system) bool { return s.name == m.SystemName })
	if idx < 0 {
		l.add(path, "attached to %q, which is not an enclosing system", m.SystemName)
		return systems
	}
	sys := systems[idx]
	if !slices.Contains(catalog.SystemLevels(sys.typ), m.SystemLevel) {
		l.add(path, "%s has no level %q", sys.typ, m.SystemLevel)
	} else if want, _ := catalog.LevelShape(sys.typ, m.SystemLevel); want != catalog.ShapeAny && m.Shape != "" && want != m.Shape {
		l.add(path, "level %q of %s expects a %s, not a %s", m.SystemLevel, sys.typ, want, m.Shape)
	}
	return systems
}

func (l *linter) parameters(n *api.NodeSnapshot, path string) {
	for _, p := range n.Parameters {
		if p.Label == "" {
			l.add(path, "parameter without label cannot be matched")
			continue
		}
		if p.Unit != nil && *p.Unit != "" && !knownUnit(*p.Unit) {
			l.add(path, "%q: unknown unit %q", p.Label, *p.Unit)
		}
	}
}
