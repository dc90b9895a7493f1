package workspace

import (
	"fmt"
	"slices"

	"github.com/agentic-research/gatetree/internal/catalog"
	"github.com/agentic-research/gatetree/internal/model"
)

// MarkSystemRoot makes the world daughter at path the root of a detector
// system. An empty systemType clears it.
func (w *Workspace) MarkSystemRoot(path, systemType string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.find(path)
	if err != nil {
		return err
	}
	if n.Kind != model.KindVolume || n.Parent == nil || n.Parent.Kind != model.KindWorld {
		return fmt.Errorf("%s: a system root must be a daughter of the world: %w", path, ErrInvalidParent)
	}
	if systemType != "" && !catalog.KnownSystem(systemType) {
		return fmt.Errorf("system %q: %w", systemType, ErrUnknownKind)
	}
	n.SetSystemRoot(systemType)
	return nil
}

// AttachToSystem places the volume at path at a level of the system
// rooted at one of its ancestors.
func (w *Workspace) AttachToSystem(path, systemName, level string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.find(path)
	if err != nil {
		return err
	}
	var sys *model.Node
	for _, c := range candidates(n) {
		if c.SystemName == systemName {
			sys = c
			break
		}
	}
	if sys == nil {
		return fmt.Errorf("%s: no enclosing system %q: %w", path, systemName, ErrInvalidParent)
	}
	if !slices.Contains(catalog.SystemLevels(sys.SystemType), level) {
		return fmt.Errorf("%s has no level %q: %w", sys.SystemType, level, ErrUnknownKind)
	}
	if want, _ := catalog.LevelShape(sys.SystemType, level); want != catalog.ShapeAny && want != n.Subtype {
		w.log.Warn("volume shape differs from system level shape",
			"path", n.Path(), "shape", n.Subtype, "level", level, "want", want)
	}
	n.AttachToSystem(systemName, level)
	return nil
}

// AttachCandidates returns the names of the systems the volume at path
// can be attached to: those rooted at one of its strict ancestors.
func (w *Workspace) AttachCandidates(path string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.find(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, c := range candidates(n) {
		names = append(names, c.SystemName)
	}
	return names, nil
}

func candidates(n *model.Node) []*model.Node {
	var out []*model.Node
	if n.Parent == nil {
		return nil
	}
	_ = n.Parent.WalkUp(func(cur *model.Node) bool {
		if cur.IsSystemRoot() {
			out = append(out, cur)
		}
		return true
	})
	return out
}

// ShapeHint is the shape a volume needs at a system level, ShapeAny when
// unconstrained.
func ShapeHint(systemType, level string) (string, bool) {
	return catalog.LevelShape(systemType, level)
}
