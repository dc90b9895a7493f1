package catalog

import (
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/units"
)

type repeaterBuilder func(b string) []*model.Parameter

var repeaterBuilders = map[string]repeaterBuilder{
	"linear": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/linear/setRepeatNumber", "Repeat Number", 1),
			measureN(b+"/linear/setRepeatVector", "Repeat Vector (X, Y, Z)", units.Length, 3, 3, 0, 0, 1),
			choice(b+"/linear/autoCenter", "Auto Center", "true", booleans...),
		}
	},
	"ring": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/ring/setRepeatNumber", "Repeat Number", 1),
			measureN(b+"/ring/setPoint1", "Axis Point 1 (X, Y, Z)", units.Length, 3, 3, 0, 1, 0),
			measureN(b+"/ring/setPoint2", "Axis Point 2 (X, Y, Z)", units.Length, 3, 3, 0, 0, 0),
			measure(b+"/ring/setFirstAngle", "First Angle", 0, units.Angle, 3),
			measure(b+"/ring/setAngularSpan", "Angular Span", 360, units.Angle, 3),
			toggle(b+"/ring/enableAutoRotation", "Auto Rotation", true),
		}
	},
	"cubicArray": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/cubicArray/setRepeatNumberX", "Repeat X", 1),
			text(b+"/cubicArray/setRepeatNumberY", "Repeat Y", 1),
			text(b+"/cubicArray/setRepeatNumberZ", "Repeat Z", 1),
			measureN(b+"/cubicArray/setRepeatVector", "Repeat Vector (X, Y, Z)", units.Length, 3, 3, 0, 5, 15),
			choice(b+"/cubicArray/autoCenter", "Auto Center", "true", booleans...),
		}
	},
	"quadrant": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/quadrant/setLineNumber", "Line Number", 5),
			measure(b+"/quadrant/setOrientation", "Orientation", 90, units.Angle, 3),
			measure(b+"/quadrant/setCopySpacing", "Copy Spacing", 6, units.Length, 3),
			measure(b+"/quadrant/setMaxRange", "Max Range", 30, units.Length, 3),
		}
	},
	"sphere": func(b string) []*model.Parameter {
		return []*model.Parameter{
			measure(b+"/sphere/setRadius", "Sphere Radius", 25, units.Length, 3),
			text(b+"/sphere/setRepeatNumberWithTheta", "Repeat With Theta", 10),
			text(b+"/sphere/setRepeatNumberWithPhi", "Repeat With Phi", 3),
			measure(b+"/sphere/setThetaAngle", "Theta Angle", 36, units.Angle, 3),
			measure(b+"/sphere/setPhiAngle", "Phi Angle", 20, units.Angle, 3),
		}
	},
	"genericRepeater": func(b string) []*model.Parameter {
		return []*model.Parameter{
			file(b+"/genericRepeater/setPlacementsFilename", "Placement File"),
			choice(b+"/genericRepeater/useRelativeTranslation", "Relative Translation", "1", "0", "1"),
		}
	},
}

var repeaterOrder = []string{"linear", "ring", "cubicArray", "quadrant", "sphere", "genericRepeater"}

// RepeaterKinds lists the repeater kinds in display order.
func RepeaterKinds() []string {
	return append([]string(nil), repeaterOrder...)
}

// Repeater returns the parameter block of a repeater attached to the
// volume at base. It reports false for an unknown kind.
func Repeater(base, kind string) ([]*model.Parameter, bool) {
	build, ok := repeaterBuilders[kind]
	if !ok {
		return nil, false
	}
	params := []*model.Parameter{
		label(base+"/repeaters/insert "+kind, "Repeater: "+kind),
	}
	return append(params, build(base)...), true
}
