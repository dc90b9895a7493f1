package catalog

import (
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/units"
)

var (
	Colors     = []string{"white", "gray", "black", "red", "green", "blue", "cyan", "magenta", "yellow"}
	LineStyles = []string{"dashed", "dotted", "unbroken"}
)

// Placement is the translation and rotation block of a volume.
func Placement(base string) []*model.Parameter {
	b := base + "/placement/"
	return []*model.Parameter{
		measureN(b+"setTranslation", "Set Translation", units.Length, 3, 3, 0, 0, 0),
		measure(b+"setPhiOfTranslation", "Phi Angle (XY Plane)", 0, units.Angle, 3),
		measure(b+"setThetaOfTranslation", "Theta Angle (Z Axis)", 0, units.Angle, 3),
		measure(b+"setMagOfTranslation", "Translation Magnitude", 0, units.Length, 3),
		choice(b+"setRotationAxis", "Rotation Axis", axes[0], axes...),
		measure(b+"setRotationAngle", "Rotation Angle", 0, units.Angle, 3),
		choice(b+"setAxis", "Axis", axes[0], axes...),
		choice(b+"alignToX", "Align To Axis", axes[0], axes...),
	}
}

// Motion is the movement block of a volume. Each movement is enabled by
// its own insert command.
func Motion(base string) []*model.Parameter {
	insert := func(kind, caption string) *model.Parameter {
		return toggle(base+"/moves/insert "+kind, caption, false)
	}
	return []*model.Parameter{
		insert("translation", "Enable Translational Movement"),
		measureN(base+"/translation/setSpeed", "Translation Speed", units.Speed, 1, 3, 0, 0, 0),
		insert("rotation", "Enable Rotational Movement"),
		measure(base+"/rotation/setSpeed", "Rotation Speed", 0, units.AngularSpeed, 0),
		choice(base+"/rotation/setAxis", "Moving Rotation Axis", axes[0], axes...),
		insert("orbiting", "Enable Orbiting Movement"),
		measure(base+"/orbiting/setSpeed", "Orbiting Speed", 0, units.AngularSpeed, 0),
		measureN(base+"/orbiting/setPoint1", "Orbiting Point 1", units.Length, 3, 3, 0, 0, 0),
		measureN(base+"/orbiting/setPoint2", "Orbiting Point 2", units.Length, 3, 3, 0, 0, 0),
		insert("osc-trans", "Enable Wobbling Movement"),
		measureN(base+"/osc-trans/setAmplitude", "Wobbling Amplitude", units.Length, 3, 3, 0, 0, 0),
		measure(base+"/osc-trans/setFrequency", "Wobbling Frequency", 0, units.Frequency, 0),
		measure(base+"/osc-trans/setPeriod", "Wobbling Period", 0, units.Time, 0),
		measure(base+"/osc-trans/setPhase", "Wobbling Phase", 0, units.Angle, 3),
		insert("eccent-rot", "Enable Eccentric Rotation"),
		measureN(base+"/eccent-rot/setShiftXYZ", "Eccentric Rot Shift", units.Length, 3, 3, 0, 0, 0),
		measure(base+"/eccent-rot/setSpeed", "Eccentric Rot Speed", 0, units.AngularSpeed, 0),
		insert("genericMove", "Enable Generic Movement"),
		file(base+"/genericMove/setPlacementsFilename", "Generic Movement Filepath"),
		insert("genericRepeaterMove", "Enable Generic Repeater Move"),
		file(base+"/genericRepeaterMove/setPlacementsFilename", "Generic Repeater Filepath"),
		toggle(base+"/genericRepeaterMove/useRelativeTranslation", "Use Relative Translation", false),
	}
}

// Visualization is the display block of a volume. Its unit slot is the
// include/exclude switch rather than a physical unit.
func Visualization(name string) []*model.Parameter {
	b := "/" + name + "/vis/"
	sw := func(p *model.Parameter) *model.Parameter { return p.WithUnits(units.InclusionSwitch, 0) }
	return []*model.Parameter{
		sw(choice(b+"setColor", "Color", Colors[0], Colors...)),
		sw(toggle(b+"setVisible", "IsVisible", true)),
		sw(toggle(b+"setDaughtersInvisible", "Hide Daughters", false)),
		sw(choice(b+"setLineStyle", "Line Style", LineStyles[0], LineStyles...)),
		sw(text(b+"setLineWidth", "Line Width", 0)),
		sw(toggle(b+"forceSolid", "Force Solid", false)),
		sw(toggle(b+"forceWireframe", "Force Wireframe", false)),
	}
}
