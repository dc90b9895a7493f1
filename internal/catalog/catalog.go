// Package catalog builds every node kind of the configuration tree from
// a small set of discriminant tags.
package catalog

import (
	"slices"
	"sync"

	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/version"
)

// DefaultCoincidenceChain names the coincidence sorter when none is configured.
const DefaultCoincidenceChain = "Coincidences"

// DefaultSensitiveDetectors is used when no detector is configured.
var DefaultSensitiveDetectors = []string{"crystal"}

// Context carries the inputs that change what the builders produce.
type Context struct {
	Version            version.Version
	Materials          []string
	SensitiveDetectors []string
	CoincidenceChain   string
}

func (c Context) withDefaults() Context {
	if c.Version == (version.Version{}) {
		c.Version = version.Fallback
	}
	if len(c.SensitiveDetectors) == 0 {
		c.SensitiveDetectors = DefaultSensitiveDetectors
	}
	if c.CoincidenceChain == "" {
		c.CoincidenceChain = DefaultCoincidenceChain
	}
	return c
}

// Catalog is a Context-bound view of the builders. It is safe for
// concurrent use.
type Catalog struct {
	mu  sync.RWMutex
	ctx Context
}

// New returns a catalog for ctx, filling unset fields with defaults.
func New(ctx Context) *Catalog {
	return &Catalog{ctx: ctx.withDefaults()}
}

// Context returns a copy of the current context.
func (c *Catalog) Context() Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.ctx
	out.Materials = slices.Clone(c.ctx.Materials)
	out.SensitiveDetectors = slices.Clone(c.ctx.SensitiveDetectors)
	return out
}

// Version is the simulator version the catalog builds for.
func (c *Catalog) Version() version.Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx.Version
}

// SetVersion changes the version used by later builds. Existing nodes
// are not touched.
func (c *Catalog) SetVersion(v version.Version) {
	c.mu.Lock()
	c.ctx.Version = v
	c.mu.Unlock()
}

// Materials returns the material names offered by volume builders.
func (c *Catalog) Materials() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.ctx.Materials)
}

// SetMaterials replaces the material names.
func (c *Catalog) SetMaterials(names []string) {
	c.mu.Lock()
	c.ctx.Materials = slices.Clone(names)
	c.mu.Unlock()
}

// Volume builds a world daughter offering the current materials.
func (c *Catalog) Volume(name, shape string) *model.Node {
	return Volume(name, shape, c.Materials())
}

// Source builds a source of the given kind.
func (c *Catalog) Source(name, kind string) *model.Node {
	return Source(name, kind)
}

// Distribution builds a distribution of the given kind.
func (c *Catalog) Distribution(name, kind string) *model.Node {
	return Distribution(name, kind)
}

// Repeater builds the parameter block of a repeater on the volume at base.
func (c *Catalog) Repeater(base, kind string) ([]*model.Parameter, bool) {
	return Repeater(base, kind)
}

// Module builds a digitizer module inserted into the singles chain of
// the first sensitive detector.
func (c *Catalog) Module(module string) []*model.Parameter {
	ctx := c.Context()
	return Module(ctx.Version.SinglesChainBase(ctx.SensitiveDetectors[0], "Singles"), module)
}

// Baseline builds a fresh tree for the current context.
func (c *Catalog) Baseline() *model.Node {
	return Baseline(c.Context())
}
