package workspace

import (
	"fmt"
	"slices"

	"github.com/agentic-research/gatetree/internal/catalog"
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/snapshot"
)

// AddSource creates a source under the source container. A taken name
// gets a numeric suffix.
func (w *Workspace) AddSource(name, kind string) (*model.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sources, err := w.container(model.KindSources)
	if err != nil {
		return nil, err
	}
	n := w.catalog.Source(sources.UniqueChildName(name), kind)
	if n.Subtype != kind {
		w.log.Info("unknown source kind, using default", "kind", kind, "default", n.Subtype)
	}
	return sources.AddChild(n), nil
}

// AddDistribution creates a distribution under the distributions container.
func (w *Workspace) AddDistribution(name, kind string) (*model.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	dists, err := w.container(model.KindDistributions)
	if err != nil {
		return nil, err
	}
	n := w.catalog.Distribution(dists.UniqueChildName(name), kind)
	return dists.AddChild(n), nil
}

// AddVolume creates a volume of the given shape under the world or one
// of its volumes, with an optional repeater.
func (w *Workspace) AddVolume(parentPath, name, shape, repeater string) (*model.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureBaseline()
	parent, err := w.find(parentPath)
	if err != nil {
		return nil, err
	}
	if !parent.UnderWorld() {
		return nil, fmt.Errorf("%s is not inside the world: %w", parent.Path(), ErrInvalidParent)
	}
	if repeater != "" && !slices.Contains(catalog.RepeaterKinds(), repeater) {
		return nil, fmt.Errorf("repeater %q: %w", repeater, ErrUnknownKind)
	}
	n := w.catalog.Volume(parent.UniqueChildName(name), shape)
	if repeater != "" {
		params, _ := w.catalog.Repeater(n.Address, repeater)
		n.AppendParameters(params...)
		n.Repeater = repeater
	}
	return parent.AddChild(n), nil
}

// DuplicateVolume copies the volume at path, values and daughters
// included, next to the original under a fresh name.
func (w *Workspace) DuplicateVolume(path string) (*model.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	src, err := w.find(path)
	if err != nil {
		return nil, err
	}
	if src.Kind != model.KindVolume || src.Parent == nil {
		return nil, fmt.Errorf("%s: only volumes can be duplicated: %w", path, ErrInvalidParent)
	}
	name := src.Parent.UniqueChildName(src.Name)
	dup := w.catalog.Volume(name, src.Subtype)

	src.Parent.AddChild(dup)

	// Rebuilding from the snapshot keeps addresses derived from the new name.
	doc := snapshot.Build(src)
	doc.Root.Name = name
	if err := snapshot.NewReconciler(w.catalog, w.reporter()).Apply(dup, doc); err != nil {
		src.Parent.RemoveChild(dup)
		return nil, err
	}
	if dup.IsSystemRoot() {
		dup.SetSystemRoot(dup.SystemType)
	}
	return dup, nil
}

// AddPhysicsProcess enables a physics process on the physics node.
func (w *Workspace) AddPhysicsProcess(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	physics, err := w.container(model.KindPhysics)
	if err != nil {
		return err
	}
	p, ok := catalog.Process(name)
	if !ok {
		return fmt.Errorf("process %q: %w", name, ErrUnknownKind)
	}
	if physics.ParameterByAddress(p.Address) != nil {
		return fmt.Errorf("process %q: %w", name, ErrAlreadyPresent)
	}
	physics.AppendParameters(p)
	return nil
}

// RemovePhysicsProcess drops a physics process row.
func (w *Workspace) RemovePhysicsProcess(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	physics, err := w.container(model.KindPhysics)
	if err != nil {
		return err
	}
	address := catalog.ProcessAddress(name)
	if physics.RemoveParameters(func(p *model.Parameter) bool { return p.Address == address }) == 0 {
		return fmt.Errorf("process %q: %w", name, ErrParameterNotFound)
	}
	return nil
}

// AddDigitizerModule inserts a module into the singles chain of the
// first sensitive detector.
func (w *Workspace) AddDigitizerModule(module string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !catalog.KnownModule(module) {
		return fmt.Errorf("digitizer module %q: %w", module, ErrUnknownKind)
	}
	digitizer, err := w.container(model.KindDigitizer)
	if err != nil {
		return err
	}
	params := w.catalog.Module(module)
	for _, p := range params {
		if !p.PresentationOnly() && digitizer.ParameterByAddress(p.Address) != nil {
			return fmt.Errorf("digitizer module %q: %w", module, ErrAlreadyPresent)
		}
	}
	digitizer.AppendParameters(params...)
	return nil
}

// Remove detaches a node created after the baseline: a source, a
// distribution or a volume.
func (w *Workspace) Remove(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.find(path)
	if err != nil {
		return err
	}
	switch n.Kind {
	case model.KindSource, model.KindDistribution, model.KindVolume:
	default:
		return fmt.Errorf("%s: %w", path, ErrNotRemovable)
	}
	n.Parent.RemoveChild(n)
	return nil
}

// SetEnabled enables or disables the node at path and its subtree.
func (w *Workspace) SetEnabled(path string, enabled bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.find(path)
	if err != nil {
		return err
	}
	n.SetEnabled(enabled)
	return nil
}

// SetParameter overwrites every parameter labelled label on the node at
// path. String values are converted to the slot kinds (see
// model.Parameter.ParseValues). A unit that a parameter does not offer
// is reported and skipped for that parameter. It returns the number of
// parameters updated and the warnings raised by this call.
func (w *Workspace) SetParameter(path, label string, values []any, unit *string) (int, []snapshot.Warning, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.find(path)
	if err != nil {
		return 0, nil, err
	}
	updated, refused := n.UpdateParameters(label, values, unit)
	if updated == 0 {
		return 0, nil, fmt.Errorf("%s: %q: %w", path, label, ErrParameterNotFound)
	}
	var call snapshot.Collector
	rep := snapshot.Tee(&call, w.reporter())
	for _, address := range refused {
		rep.Report(snapshot.Warning{
			Kind:    snapshot.UnknownUnit,
			Path:    n.Path(),
			Message: fmt.Sprintf("%s: unit %q not offered", address, *unit),
		})
	}
	return updated, call.Warnings(), nil
}
