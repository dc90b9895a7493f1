package snapshot

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/model"
)

// Factory builds the node kinds that can be created while applying a
// document. *catalog.Catalog implements it.
type Factory interface {
	Distribution(name, kind string) *model.Node
	Source(name, kind string) *model.Node
	Volume(name, shape string) *model.Node
	Repeater(base, kind string) ([]*model.Parameter, bool)
}

// Reconciler merges documents onto live trees. Merging is additive: it
// creates and overwrites but never deletes or reorders children.
type Reconciler struct {
	factory  Factory
	reporter Reporter
}

// NewReconciler returns a reconciler creating missing nodes with f and
// reporting recovered conditions to r. A nil r discards them.
func NewReconciler(f Factory, r Reporter) *Reconciler {
	if r == nil {
		r = Discard
	}
	return &Reconciler{factory: f, reporter: r}
}

// Apply merges doc onto root in place. The only error is
// ErrMalformedDocument, returned before anything is touched.
func (r *Reconciler) Apply(root *model.Node, doc *api.Document) error {
	if root == nil {
		return &MalformedError{Reason: "no target tree"}
	}
	if doc == nil {
		return &MalformedError{Reason: "no document"}
	}
	r.applyNode(root, &doc.Root)
	return nil
}

func (r *Reconciler) applyNode(n *model.Node, s *api.NodeSnapshot) {
	r.applyMeta(n, s.Meta)
	r.applyParameters(n, s.Parameters)

	for i := range s.Children {
		cs := &s.Children[i]
		child := n.ChildByName(cs.Name)
		if child == nil {
			child = r.create(n, cs)
			if child == nil {
				continue
			}
		}
		r.applyNode(child, cs)
	}
}

func (r *Reconciler) applyMeta(n *model.Node, m api.Meta) {
	if m.Role != "" {
		n.Role = m.Role
	}
	if m.SystemType != "" {
		n.SystemType = m.SystemType
	}
	if m.SystemName != "" {
		n.SystemName = m.SystemName
	}
	if m.SystemLevel != "" {
		n.SystemLevel = m.SystemLevel
	}
	if m.Enabled != nil {
		n.SetEnabled(*m.Enabled)
	}
	if m.Repeater != "" && n.Kind == model.KindVolume && n.Repeater == "" {
		r.attachRepeater(n, m.Repeater)
	}
}

func (r *Reconciler) attachRepeater(n *model.Node, kind string) {
	params, ok := r.factory.Repeater(n.Address, kind)
	if !ok {
		r.reporter.Report(Warning{
			Kind:    UncreatableChild,
			Path:    n.Path(),
			Message: fmt.Sprintf("unknown repeater %q", kind),
		})
		return
	}
	n.AppendParameters(params...)
	n.Repeater = kind
}

// labelIndex maps each label to the positions of the parameters carrying it.
func labelIndex(params []*model.Parameter) map[string]*roaring.Bitmap {
	idx := make(map[string]*roaring.Bitmap, len(params))
	for i, p := range params {
		bm, ok := idx[p.Label]
		if !ok {
			bm = roaring.New()
			idx[p.Label] = bm
		}
		bm.Add(uint32(i))
	}
	return idx
}

func (r *Reconciler) applyParameters(n *model.Node, snaps []api.ParameterSnapshot) {
	if len(snaps) == 0 {
		return
	}
	idx := labelIndex(n.Parameters)
	for _, ps := range snaps {
		if ps.Label == "" {
			continue
		}
		group, ok := idx[ps.Label]
		if !ok {
			r.reporter.Report(Warning{
				Kind:    UnmatchedParameter,
				Path:    n.Path(),
				Message: fmt.Sprintf("no parameter labelled %q", ps.Label),
			})
			continue
		}
		it := group.Iterator()
		for it.HasNext() {
			p := n.Parameters[it.Next()]
			p.SetValues(ps.Values)
			if ps.Unit != nil && *ps.Unit != p.Unit && !p.SetUnit(*ps.Unit) {
				r.reporter.Report(Warning{
					Kind:    UnknownUnit,
					Path:    n.Path(),
					Message: fmt.Sprintf("%s: unit %q is not one of %v", p.Address, *ps.Unit, p.Units),
				})
			}
		}
	}
}

// create builds the missing child described by s under parent, or
// reports why it cannot.
func (r *Reconciler) create(parent *model.Node, s *api.NodeSnapshot) *model.Node {
	var child *model.Node
	switch {
	case parent.Kind == model.KindDistributions && s.Meta.DistributionType != "":
		child = r.factory.Distribution(s.Name, s.Meta.DistributionType)
	case parent.Kind == model.KindSources && s.Meta.SourceType != "":
		child = r.factory.Source(s.Name, s.Meta.SourceType)
	case s.Meta.Shape != "" && parent.UnderWorld():
		child = r.factory.Volume(s.Name, s.Meta.Shape)
	}
	if child == nil {
		r.reporter.Report(Warning{
			Kind:    UncreatableChild,
			Path:    parent.Path() + "/" + s.Name,
			Message: fmt.Sprintf("no builder for %s child %q under %s", s.Kind, s.Name, parent.Kind),
		})
		return nil
	}
	parent.AddChild(child)
	return child
}
