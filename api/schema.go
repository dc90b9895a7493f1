package api

// SchemaVersion is written into every document produced by this module.
const SchemaVersion = "2.0"

// Document represents a persisted configuration tree.
// It is the portable form of a live node tree and carries no tree addresses.
type Document struct {
	// Version of the document schema. Accepted leniently on read.
	SchemaVersion string `json:"schemaVersion" yaml:"schemaVersion"`
	// MaterialDatabasePath points at the material database the tree was built against.
	MaterialDatabasePath string `json:"materialDatabasePath,omitempty" yaml:"materialDatabasePath,omitempty"`
	// Root of the node tree.
	Root NodeSnapshot `json:"root" yaml:"root"`
}

// NodeSnapshot represents one node of the tree.
type NodeSnapshot struct {
	// Name of the node, unique among its siblings.
	Name string `json:"name" yaml:"name"`
	// Kind is the coarse category of the node (root, sources, world, ...).
	Kind string `json:"kind" yaml:"kind"`
	// Meta carries the hints needed to recreate the node when it is missing.
	Meta Meta `json:"meta" yaml:"meta"`
	// Parameters are matched by label on apply, never by address.
	Parameters []ParameterSnapshot `json:"parameters" yaml:"parameters"`
	// Children in tree order.
	Children []NodeSnapshot `json:"children" yaml:"children"`
}

// Meta holds the optional node attributes.
type Meta struct {
	Role             string `json:"role,omitempty" yaml:"role,omitempty"`
	SystemType       string `json:"systemType,omitempty" yaml:"systemType,omitempty"`
	SystemName       string `json:"systemName,omitempty" yaml:"systemName,omitempty"`
	SystemLevel      string `json:"systemLevel,omitempty" yaml:"systemLevel,omitempty"`
	SourceType       string `json:"sourceType,omitempty" yaml:"sourceType,omitempty"`
	DistributionType string `json:"distributionType,omitempty" yaml:"distributionType,omitempty"`
	Shape            string `json:"shape,omitempty" yaml:"shape,omitempty"`
	Repeater         string `json:"repeater,omitempty" yaml:"repeater,omitempty"`
	// Enabled is only written when a node is disabled.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// IsZero reports whether no attribute is set.
func (m Meta) IsZero() bool {
	return m == Meta{}
}

// ParameterSnapshot represents the restorable state of one parameter.
type ParameterSnapshot struct {
	// Label is the human-readable parameter name. Several parameters may share it.
	Label string `json:"label" yaml:"label"`
	// Values holds one entry per slot.
	Values []any `json:"values" yaml:"values"`
	// Unit is the chosen unit, if the parameter has unit choices.
	Unit *string `json:"unit,omitempty" yaml:"unit,omitempty"`
}
