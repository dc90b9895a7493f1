package catalog

import (
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/units"
)

// DefaultShape is built when a requested shape is unknown.
const DefaultShape = "box"

type fieldKind int

const (
	fieldMeasure fieldKind = iota
	fieldFile
	fieldUnitChoice
)

type shapeField struct {
	sub   string
	label string
	kind  fieldKind
	units []string
}

func length(sub, label string) shapeField { return shapeField{sub, label, fieldMeasure, units.Length} }
func angle(sub, label string) shapeField  { return shapeField{sub, label, fieldMeasure, units.Angle} }

// shapeFields maps each shape to its geometry parameters. Every measure
// defaults to the unit at index 3 of its family (mm, deg).
var shapeFields = map[string][]shapeField{
	"box": {
		length("setXLength", "X Length"),
		length("setYLength", "Y Length"),
		length("setZLength", "Z Length"),
	},
	"sphere": {
		length("setRmin", "Internal Radius"),
		length("setRmax", "External Radius"),
		angle("setPhiStart", "Start Phi Angle"),
		angle("setDeltaPhi", "Phi Angular Span"),
		angle("setThetaStart", "Start Theta Angle"),
		angle("setDeltaTheta", "Theta Angular Span"),
	},
	"cylinder": {
		length("setRmin", "Internal Radius"),
		length("setRmax", "External Radius"),
		length("setHeight", "Height"),
		angle("setPhiStart", "Start Phi Angle"),
		angle("setDeltaPhi", "Phi Angular Span"),
	},
	"cone": {
		length("setRmin1", "Internal Radius 1"),
		length("setRmax1", "External Radius 1"),
		length("setRmin2", "Internal Radius 2"),
		length("setRmax2", "External Radius 2"),
		length("setHeight", "Height"),
		angle("setPhiStart", "Start Phi Angle"),
		angle("setDeltaPhi", "Phi Angular Span"),
	},
	"ellipsoid": {
		length("setXLength", "Half Axis Length X"),
		length("setYLength", "Half Axis Length Y"),
		length("setZLength", "Half Axis Length Z"),
		length("setZBottomCut", "Z Bottom Cut"),
		length("setZTopCut", "Z Top Cut"),
	},
	"elliptical tube": {
		length("setLong", "Semimajor Axis Length"),
		length("setShort", "Semiminor Axis Length"),
		length("setHeight", "Height"),
	},
	"hexagon": {
		length("setRadius", "Radius"),
		length("setHeight", "Height"),
	},
	"wedge": {
		length("setNarrowerXLength", "Shorter Side Length X"),
		length("setXLength", "Wedge Length X"),
		length("setYLength", "Wedge Length Y"),
		length("setZLength", "Wedge Length Z"),
	},
	"tet-mesh-box": {
		{"setPathToELEFile", "Path to .ele File", fieldFile, nil},
		{"setUnitOfLength", "Unit of Length", fieldUnitChoice, units.Length},
		{"setPathToAttributeMap", "Path to Attribute Map", fieldFile, nil},
	},
}

var shapeOrder = []string{
	"box", "sphere", "cylinder", "cone", "ellipsoid",
	"elliptical tube", "hexagon", "wedge", "tet-mesh-box",
}

// Shapes lists the world-daughter shapes in display order.
func Shapes() []string {
	return append([]string(nil), shapeOrder...)
}

// KnownShape reports whether shape has a builder.
func KnownShape(shape string) bool {
	_, ok := shapeFields[shape]
	return ok
}

// Volume builds a world daughter of the given shape. Unknown shapes fall
// back to DefaultShape. The material choice offers materials.
func Volume(name, shape string, materials []string) *model.Node {
	if !KnownShape(shape) {
		shape = DefaultShape
	}
	base := "/" + name

	var params []*model.Parameter
	for _, f := range shapeFields[shape] {
		address := base + "/geometry/" + f.sub
		switch f.kind {
		case fieldFile:
			params = append(params, file(address, f.label))
		case fieldUnitChoice:
			params = append(params, choice(address, f.label, f.units[0], f.units...))
		default:
			params = append(params, measure(address, f.label, 0, f.units, 3))
		}
	}
	params = append(params, choice(base+"/setMaterial", "Material", "", materials...))
	params = append(params, Placement(base)...)
	params = append(params, Motion(base)...)
	params = append(params, Visualization(name)...)

	n := model.NewNode(name, base, model.KindVolume, params...)
	n.Subtype = shape
	return n
}
