package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jinzhu/copier"
)

// Kind is the coarse category of a node. It selects the section of the
// template catalog that applies to the node's children.
type Kind string

const (
	KindRoot          Kind = "root"
	KindPhysics       Kind = "physics"
	KindSources       Kind = "sources"
	KindSource        Kind = "source"
	KindDistributions Kind = "distributions"
	KindDistribution  Kind = "distribution"
	KindDigitizer     Kind = "digitizer"
	KindOutput        Kind = "output"
	KindAcquisition   Kind = "acquisition"
	KindVerbose       Kind = "verbose"
	KindVis           Kind = "vis"
	KindWorld         Kind = "world"
	KindVolume        Kind = "volume"
	KindGeneric       Kind = "generic"
)

// maxDepth bounds ancestor walks. Attachment is single-owner so a walk
// that exceeds it means the tree was corrupted.
const maxDepth = 1 << 12

// ErrCycle is returned when an ancestor walk does not terminate.
var ErrCycle = errors.New("node tree contains a cycle")

// Node is one entry of the configuration tree. It exclusively owns its
// parameters and children; Parent is a non-owning back-reference.
type Node struct {
	Name    string
	Address string
	Kind    Kind
	// Subtype is the discriminant the node was built from. Fixed at creation.
	Subtype    string
	Parameters []*Parameter
	Children   []*Node
	Parent     *Node `copier:"-"`
	Enabled    bool

	Role        string
	SystemType  string
	SystemName  string
	SystemLevel string
	// Repeater is the repeater kind applied to a volume, if any.
	Repeater string
}

// NewNode returns an enabled node owning params.
func NewNode(name, address string, kind Kind, params ...*Parameter) *Node {
	return &Node{
		Name:       name,
		Address:    address,
		Kind:       kind,
		Parameters: params,
		Enabled:    true,
	}
}

// AddChild appends c, detaching it from any previous parent. Attaching n
// or one of its ancestors would create a cycle and panics.
func (n *Node) AddChild(c *Node) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == c {
			panic(fmt.Sprintf("model: attaching %q under %q would create a cycle", c.Name, n.Name))
		}
	}
	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}

// RemoveChild detaches c. It reports false when c is not a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	i := slices.Index(n.Children, c)
	if i < 0 {
		return false
	}
	n.Children = slices.Delete(n.Children, i, i+1)
	c.Parent = nil
	return true
}

// ChildByName returns the first child named name, or nil.
func (n *Node) ChildByName(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// UniqueChildName returns base if no child uses it, otherwise the first
// free name of base_2, base_3, ...
func (n *Node) UniqueChildName(base string) string {
	if n.ChildByName(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if n.ChildByName(name) == nil {
			return name
		}
	}
}

// WalkUp calls fn on n and then on each ancestor until fn returns false or
// the root is reached.
func (n *Node) WalkUp(fn func(*Node) bool) error {
	cur := n
	for depth := 0; cur != nil; depth++ {
		if depth > maxDepth {
			return ErrCycle
		}
		if !fn(cur) {
			return nil
		}
		if cur.Parent == cur {
			return ErrCycle
		}
		cur = cur.Parent
	}
	return nil
}

// HasAncestorKind reports whether n or one of its ancestors is of kind k.
func (n *Node) HasAncestorKind(k Kind) bool {
	found := false
	_ = n.WalkUp(func(cur *Node) bool {
		if cur.Kind == k {
			found = true
			return false
		}
		return true
	})
	return found
}

// UnderWorld reports whether n is the world node or lies below it.
func (n *Node) UnderWorld() bool {
	return n.HasAncestorKind(KindWorld)
}

// Root returns the top of the tree n belongs to.
func (n *Node) Root() *Node {
	root := n
	_ = n.WalkUp(func(cur *Node) bool {
		root = cur
		return true
	})
	return root
}

// Path is the slash-joined list of names from the root down to n.
func (n *Node) Path() string {
	var names []string
	_ = n.WalkUp(func(cur *Node) bool {
		names = append(names, cur.Name)
		return true
	})
	slices.Reverse(names)
	return strings.Join(names, "/")
}

// Find resolves a slash-separated path of child names below n. An empty
// path returns n.
func (n *Node) Find(path string) *Node {
	cur := n
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		cur = cur.ChildByName(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning an error from fn stops the walk.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// SetEnabled sets the enabled flag on n and all its descendants.
func (n *Node) SetEnabled(enabled bool) {
	_ = n.Walk(func(cur *Node) error {
		cur.Enabled = enabled
		return nil
	})
}

// IsSystemRoot reports whether n defines a detector system.
func (n *Node) IsSystemRoot() bool {
	return n.SystemType != ""
}

// SetSystemRoot makes n the root of a system of the given type, named
// after n. An empty type clears the system.
func (n *Node) SetSystemRoot(systemType string) {
	n.SystemType = systemType
	n.SystemName = ""
	if systemType != "" {
		n.SystemName = n.Name
	}
}

// AttachToSystem places n at a level of the named system.
func (n *Node) AttachToSystem(systemName, level string) {
	n.SystemName = systemName
	n.SystemLevel = level
}

// ParametersByLabel returns every parameter labelled label, in order.
func (n *Node) ParametersByLabel(label string) []*Parameter {
	var out []*Parameter
	for _, p := range n.Parameters {
		if p.Label == label {
			out = append(out, p)
		}
	}
	return out
}

// ParameterByAddress returns the first parameter at address, or nil.
func (n *Node) ParameterByAddress(address string) *Parameter {
	for _, p := range n.Parameters {
		if p.Address == address {
			return p
		}
	}
	return nil
}

// UpdateParameters overwrites the values, and the unit when unit is not
// nil, of every parameter labelled label. Values are converted to each
// parameter's slot kinds with ParseValues. It returns the number of
// parameters updated and the addresses of those that refused the unit.
func (n *Node) UpdateParameters(label string, values []any, unit *string) (updated int, refused []string) {
	for _, p := range n.ParametersByLabel(label) {
		p.SetValues(p.ParseValues(values))
		if unit != nil && !p.SetUnit(*unit) {
			refused = append(refused, p.Address)
		}
		updated++
	}
	return updated, refused
}

// AppendParameters adds params after the existing ones.
func (n *Node) AppendParameters(params ...*Parameter) {
	n.Parameters = append(n.Parameters, params...)
}

// RemoveParameters drops every parameter for which match returns true
// and returns how many were removed.
func (n *Node) RemoveParameters(match func(*Parameter) bool) int {
	before := len(n.Parameters)
	n.Parameters = slices.DeleteFunc(n.Parameters, match)
	return before - len(n.Parameters)
}

// Clone returns a deep copy of the subtree rooted at n. The copy is
// detached: its Parent is nil.
func (n *Node) Clone() *Node {
	out := &Node{}
	if err := copier.CopyWithOption(out, n, copier.Option{DeepCopy: true}); err != nil {
		panic("model: clone node: " + err.Error())
	}
	relink(out, nil)
	return out
}

func relink(n, parent *Node) {
	n.Parent = parent
	for _, c := range n.Children {
		relink(c, n)
	}
}

func (n *Node) String() string {
	return n.Name
}
