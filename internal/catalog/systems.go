package catalog

import "slices"

// ShapeAny marks a system level without a shape constraint.
const ShapeAny = "any"

// SystemTypes are the detector systems volumes can be attached to.
var SystemTypes = []string{
	"scanner", "CTscanner", "cylindricalPET", "CPET", "SPECTHead", "ecat", "ecatAccel", "OPET", "OpticalSystem",
}

type systemLevel struct {
	name  string
	shape string
}

var systemLevels = map[string][]systemLevel{
	"scanner":        {{"level1", ShapeAny}, {"level2", ShapeAny}, {"level3", ShapeAny}, {"level4", ShapeAny}, {"level5", ShapeAny}},
	"CTscanner":      {{"module", "box"}, {"cluster", "box"}, {"pixel", "box"}},
	"cylindricalPET": {{"rsector", "box"}, {"module", "box"}, {"submodule", "box"}, {"crystal", "box"}, {"layer", "box"}},
	"CPET":           {{"sector", "cylinder"}, {"cassette", "cylinder"}, {"module", "box"}, {"crystal", "box"}, {"layer", "box"}},
	"SPECTHead":      {{"crystal", ShapeAny}, {"pixel", ShapeAny}},
	"ecat":           {{"block", "box"}, {"crystal", "box"}},
	"ecatAccel":      {{"block", "box"}, {"crystal", "box"}},
	"OPET":           {{"rsector", "box"}, {"module", "box"}, {"submodule", "box"}, {"crystal", "box"}, {"layer", "wedge"}},
	"OpticalSystem":  {{"crystal", ShapeAny}, {"pixel", ShapeAny}},
}

// KnownSystem reports whether systemType is a known system.
func KnownSystem(systemType string) bool {
	return slices.Contains(SystemTypes, systemType)
}

// SystemLevels lists the levels of a system, outermost first.
func SystemLevels(systemType string) []string {
	var out []string
	for _, l := range systemLevels[systemType] {
		out = append(out, l.name)
	}
	return out
}

// LevelShape is the shape a volume must have to sit at level, ShapeAny
// when unconstrained. It reports false for an unknown system or level.
func LevelShape(systemType, level string) (string, bool) {
	for _, l := range systemLevels[systemType] {
		if l.name == level {
			return l.shape, true
		}
	}
	return "", false
}

// ViewerTypes are the visualization drivers.
var ViewerTypes = []string{"-", "OGL", "OGLS", "OGLSQt", "OGLSX", "OGLI", "OGLIQt", "OGLIX", "DAWNFILE", "VRML2FILE"}
