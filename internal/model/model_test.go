package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParameterPadsSlots(t *testing.T) {
	p := NewParameter("/a/setPoint", "Point", []SlotKind{SlotText, SlotText, SlotToggle}, []any{1})
	assert.Equal(t, []any{float64(1), float64(0), false}, p.Defaults)
	assert.Equal(t, p.Defaults, p.Values)

	p = NewParameter("/a/x", "X", []SlotKind{SlotText}, []any{1, 2, 3})
	assert.Equal(t, []any{float64(1)}, p.Defaults, "extra values are trimmed")
}

func TestWithUnitsNormalizesChoice(t *testing.T) {
	lengths := []string{"m", "cm", "mm"}
	p := NewParameter("/a", "A", []SlotKind{SlotText}, nil).WithUnits(lengths, 2)
	assert.Equal(t, "mm", p.Unit)

	p = NewParameter("/a", "A", []SlotKind{SlotText}, nil).WithUnits(lengths, 99)
	assert.Equal(t, "m", p.Unit, "out of range index falls back to the first unit")

	p = NewParameter("/a", "A", []SlotKind{SlotText}, nil).WithUnits(nil, 0)
	assert.Empty(t, p.Unit)
}

func TestSetUnit(t *testing.T) {
	p := NewParameter("/a", "A", []SlotKind{SlotText}, nil).WithUnits([]string{"s", "ms"}, 0)
	assert.True(t, p.SetUnit("ms"))
	assert.Equal(t, "ms", p.Unit)
	assert.False(t, p.SetUnit("furlong"))
	assert.Equal(t, "ms", p.Unit)
}

func TestPresentationOnly(t *testing.T) {
	tests := []struct {
		name string
		p    *Parameter
		want bool
	}{
		{"selector marker", NewParameter("/d/__ui_selected_module", "Sel", []SlotKind{SlotChoice}, nil), true},
		{"label only", NewParameter("__section__/output/ascii", "[ASCII]", []SlotKind{SlotLabel}, nil), true},
		{"text", NewParameter("/a", "A", []SlotKind{SlotText}, nil), false},
		{"label mixed with text", NewParameter("/a", "A", []SlotKind{SlotLabel, SlotText}, nil), false},
		{"no slots", NewParameter("/a", "A", nil, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.PresentationOnly())
		})
	}
}

func TestParseSlotKind(t *testing.T) {
	k, ok := ParseSlotKind("dropdown")
	require.True(t, ok)
	assert.Equal(t, SlotChoice, k)
	assert.Equal(t, "DropDown", k.String())

	_, ok = ParseSlotKind("slider")
	assert.False(t, ok)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, float64(3), NormalizeValue(int64(3)))
	assert.Equal(t, float64(2.5), NormalizeValue(float32(2.5)))
	assert.Equal(t, "x", NormalizeValue("x"))
	assert.Equal(t, true, NormalizeValue(true))
	assert.Nil(t, NormalizeValue(nil))
	assert.Equal(t, []any{float64(1), "a"}, NormalizeValue([]any{1, "a"}))
}

func TestParseValues(t *testing.T) {
	p := NewParameter("/a/set", "A", []SlotKind{SlotToggle, SlotText, SlotText, SlotText, SlotChoice}, nil)
	got := p.ParseValues([]any{"false", " 3.5", "nan", math.NaN(), "1e9"})
	assert.Equal(t, []any{false, 3.5, "nan", "NaN", "1e9"}, got)

	// Unparsable toggles and values past the last slot keep their form.
	assert.Equal(t, []any{"maybe", 2.0}, p.ParseValues([]any{"maybe", 2, "x", "y", "z", "2"})[:2])
	assert.Equal(t, 2.0, p.ParseValues([]any{"maybe", 2, "x", "y", "z", "2"})[5])
}

func TestParameterClone(t *testing.T) {
	p := NewParameter("/a", "A", []SlotKind{SlotChoice, SlotText}, []any{"red", 2}).
		WithChoices(0, []string{"red", "blue"}).
		WithUnits([]string{"m", "cm"}, 1)

	c := p.Clone()
	assert.Equal(t, p.Address, c.Address)
	assert.Equal(t, p.Defaults, c.Defaults)
	assert.Equal(t, p.Choices[0], c.Choices[0])
	assert.Equal(t, "cm", c.Unit)

	c.Defaults[0] = "blue"
	c.Choices[0][0] = "green"
	assert.Equal(t, "red", p.Defaults[0])
	assert.Equal(t, "red", p.Choices[0][0])
}

func tree() (root, world, box, source *Node) {
	root = NewNode("gate", "/gate", KindRoot)
	world = root.AddChild(NewNode("world", "", KindWorld))
	box = world.AddChild(NewNode("box1", "/box1", KindVolume))
	source = root.AddChild(NewNode("source", "/source", KindSources))
	return
}

func TestAddChildSetsParent(t *testing.T) {
	root, world, box, _ := tree()
	assert.Same(t, root, world.Parent)
	assert.Same(t, world, box.Parent)
	assert.Equal(t, "gate/world/box1", box.Path())
	assert.Same(t, root, box.Root())
}

func TestAddChildMovesBetweenParents(t *testing.T) {
	root, world, box, _ := tree()
	root.AddChild(box)
	assert.Empty(t, world.Children)
	assert.Same(t, root, box.Parent)
}

func TestAddChildRejectsCycles(t *testing.T) {
	root, world, _, _ := tree()
	assert.Panics(t, func() { world.AddChild(root) })
	assert.Panics(t, func() { world.AddChild(world) })
}

func TestUnderWorld(t *testing.T) {
	root, world, box, source := tree()
	nested := box.AddChild(NewNode("crystal", "/crystal", KindVolume))

	assert.True(t, world.UnderWorld())
	assert.True(t, box.UnderWorld())
	assert.True(t, nested.UnderWorld())
	assert.False(t, source.UnderWorld())
	assert.False(t, root.UnderWorld())
}

func TestWalkUpDetectsSelfParent(t *testing.T) {
	n := NewNode("loop", "", KindGeneric)
	n.Parent = n
	err := n.WalkUp(func(*Node) bool { return true })
	assert.ErrorIs(t, err, ErrCycle)
	assert.False(t, n.UnderWorld())
}

func TestUniqueChildName(t *testing.T) {
	_, _, _, source := tree()
	assert.Equal(t, "src", source.UniqueChildName("src"))
	source.AddChild(NewNode("src", "", KindSource))
	assert.Equal(t, "src_2", source.UniqueChildName("src"))
	source.AddChild(NewNode("src_2", "", KindSource))
	assert.Equal(t, "src_3", source.UniqueChildName("src"))
}

func TestFind(t *testing.T) {
	root, _, box, _ := tree()
	assert.Same(t, box, root.Find("world/box1"))
	assert.Same(t, box, root.Find("/world/box1/"))
	assert.Same(t, root, root.Find(""))
	assert.Nil(t, root.Find("world/missing"))
}

func TestSetEnabledCascades(t *testing.T) {
	root, world, box, source := tree()
	world.SetEnabled(false)
	assert.False(t, world.Enabled)
	assert.False(t, box.Enabled)
	assert.True(t, root.Enabled)
	assert.True(t, source.Enabled)
}

func TestSystemAttributes(t *testing.T) {
	_, _, box, _ := tree()
	box.SetSystemRoot("cylindricalPET")
	assert.True(t, box.IsSystemRoot())
	assert.Equal(t, "box1", box.SystemName)

	box.SetSystemRoot("")
	assert.False(t, box.IsSystemRoot())
	assert.Empty(t, box.SystemName)

	box.AttachToSystem("pet", "rsector")
	assert.Equal(t, "pet", box.SystemName)
	assert.Equal(t, "rsector", box.SystemLevel)
}

func TestUpdateParametersFansOutByLabel(t *testing.T) {
	n := NewNode("rep", "", KindVolume,
		NewParameter("/rep/linear/setRepeatNumber", "Repeat Number", []SlotKind{SlotText}, []any{1}),
		NewParameter("/rep/ring/setRepeatNumber", "Repeat Number", []SlotKind{SlotText}, []any{1}).WithUnits([]string{"m"}, 0),
		NewParameter("/rep/other", "Other", []SlotKind{SlotText}, []any{1}),
	)
	unit := "m"
	updated, refused := n.UpdateParameters("Repeat Number", []any{4}, &unit)
	assert.Equal(t, 2, updated)
	assert.Equal(t, []string{"/rep/linear/setRepeatNumber"}, refused)
	for _, p := range n.ParametersByLabel("Repeat Number") {
		assert.Equal(t, []any{float64(4)}, p.Defaults)
		assert.Equal(t, []any{float64(4)}, p.Values)
	}
	assert.Equal(t, []any{float64(1)}, n.ParameterByAddress("/rep/other").Defaults)
}

func TestRemoveParameters(t *testing.T) {
	n := NewNode("physics", "/physics", KindPhysics,
		NewParameter("/addPhysicsList", "Physics List", []SlotKind{SlotChoice}, nil),
		NewParameter("/physics/Compton", "Compton Process", []SlotKind{SlotChoice, SlotChoice}, nil),
	)
	removed := n.RemoveParameters(func(p *Parameter) bool { return p.Address == "/physics/Compton" })
	assert.Equal(t, 1, removed)
	assert.Len(t, n.Parameters, 1)
}

func TestNodeClone(t *testing.T) {
	root, world, box, _ := tree()
	box.AppendParameters(NewParameter("/box1/geometry/setXLength", "X Length", []SlotKind{SlotText}, []any{10}))

	c := world.Clone()
	require.Len(t, c.Children, 1)
	assert.Nil(t, c.Parent)
	assert.Same(t, c, c.Children[0].Parent)
	assert.Equal(t, "box1", c.Children[0].Name)

	c.Children[0].Parameters[0].SetValues([]any{99})
	assert.Equal(t, []any{float64(10)}, box.Parameters[0].Defaults)
	assert.Same(t, root, world.Parent)
}
