// Package model defines configuration nodes and the parameters they own.
package model

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/agentic-research/gatetree/internal/units"
	"github.com/jinzhu/copier"
)

// SlotKind is the edit kind of one scalar slot of a parameter.
type SlotKind int

const (
	SlotText   SlotKind = iota // free text
	SlotChoice                 // enumerated choice
	SlotToggle                 // boolean
	SlotFile                   // file reference
	SlotLabel                  // presentation only
)

var slotNames = [...]string{"TextArea", "DropDown", "CheckBox", "Select", "Label"}

func (k SlotKind) String() string {
	if int(k) < len(slotNames) {
		return slotNames[k]
	}
	return "Unknown"
}

// ParseSlotKind maps an edit kind name to its SlotKind, ignoring case.
func ParseSlotKind(s string) (SlotKind, bool) {
	for i, n := range slotNames {
		if strings.EqualFold(n, s) {
			return SlotKind(i), true
		}
	}
	return 0, false
}

// UIMarker in an address flags an internal selector that carries no state.
const UIMarker = "__ui_"

// Parameter is one configurable field group of a node.
type Parameter struct {
	// Address identifies the macro command. Stable for the lifetime of the node.
	Address string
	// Label is the display name. Not unique within a node.
	Label string
	Slots []SlotKind
	// Defaults is the persisted value per slot.
	Defaults []any
	// Values is the live value per slot.
	Values []any
	// Choices holds the options of each SlotChoice slot, nil elsewhere.
	Choices [][]string
	// Units are the candidate units, all from one family.
	Units []string
	// Unit is the chosen element of Units, or "" when there are none.
	Unit string
}

// NewParameter builds a parameter whose default and current values are
// padded to one entry per slot.
func NewParameter(address, label string, slots []SlotKind, defaults []any) *Parameter {
	p := &Parameter{
		Address: address,
		Label:   label,
		Slots:   slots,
		Choices: make([][]string, len(slots)),
	}
	p.Defaults = p.fit(defaults)
	p.Values = p.fit(defaults)
	return p
}

// WithChoices sets the option list of one slot.
func (p *Parameter) WithChoices(slot int, options []string) *Parameter {
	if slot >= 0 && slot < len(p.Choices) {
		p.Choices[slot] = slices.Clone(options)
	}
	return p
}

// WithUnits sets the candidate units and chooses the one at index. An
// index out of range chooses the first unit.
func (p *Parameter) WithUnits(list []string, index int) *Parameter {
	p.Units = slices.Clone(list)
	p.Unit = ""
	if len(p.Units) == 0 {
		return p
	}
	if index < 0 || index >= len(p.Units) {
		index = 0
	}
	p.Unit = p.Units[index]
	return p
}

// SetValues overwrites both default and current values.
func (p *Parameter) SetValues(values []any) {
	p.Defaults = p.fit(values)
	p.Values = p.fit(values)
}

// ParseValues converts edited values to the kinds of p's slots: "true"
// and "false" become booleans in toggle slots, finite numbers become
// float64 in text slots. Anything else, NaN and infinities included, is
// kept as text.
func (p *Parameter) ParseValues(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		kind := SlotText
		if i < len(p.Slots) {
			kind = p.Slots[i]
		}
		out[i] = parseSlot(kind, v)
	}
	return out
}

func parseSlot(kind SlotKind, v any) any {
	switch x := NormalizeValue(v).(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return strconv.FormatFloat(x, 'g', -1, 64)
		}
		return x
	case string:
		switch kind {
		case SlotToggle:
			if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
				return b
			}
		case SlotText:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return f
			}
		}
		return x
	default:
		return x
	}
}

// SetUnit chooses u. It reports false, leaving the choice untouched, when
// u is not one of the candidate units.
func (p *Parameter) SetUnit(u string) bool {
	if !slices.Contains(p.Units, u) {
		return false
	}
	p.Unit = u
	return true
}

// PresentationOnly reports whether the parameter carries no restorable
// state: an internal selector address, or label slots only.
func (p *Parameter) PresentationOnly() bool {
	if strings.Contains(p.Address, UIMarker) {
		return true
	}
	if len(p.Slots) == 0 {
		return false
	}
	for _, k := range p.Slots {
		if k != SlotLabel {
			return false
		}
	}
	return true
}

// UnitFamily names the unit family of Units.
func (p *Parameter) UnitFamily() string {
	return units.Classify(p.Units)
}

// Clone returns a deep copy.
func (p *Parameter) Clone() *Parameter {
	out := &Parameter{}
	if err := copier.CopyWithOption(out, p, copier.Option{DeepCopy: true}); err != nil {
		panic("model: clone parameter: " + err.Error())
	}
	return out
}

// fit normalizes values and pads or trims them to the slot count. Extra
// values are kept when the parameter has no slots at all.
func (p *Parameter) fit(values []any) []any {
	if len(p.Slots) == 0 {
		if values == nil {
			return nil
		}
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = NormalizeValue(v)
		}
		return out
	}
	out := make([]any, len(p.Slots))
	for i, k := range p.Slots {
		if i < len(values) {
			out[i] = NormalizeValue(values[i])
		} else {
			out[i] = k.zero()
		}
	}
	return out
}

func (k SlotKind) zero() any {
	switch k {
	case SlotText:
		return float64(0)
	case SlotToggle:
		return false
	case SlotFile:
		return nil
	default:
		return ""
	}
}

// NormalizeValue converts numbers to float64 so values compare equal
// after a trip through any document codec.
func NormalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = NormalizeValue(e)
		}
		return out
	}
	return v
}
