package catalog

import (
	"slices"

	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/units"
)

// DefaultSourceKind is the most general source kind and the fallback for
// unknown kinds.
const DefaultSourceKind = "gps"

var (
	SourceKinds = []string{
		"gps", "fastI124", "PencilBeam", "TPSPencilBeam", "fastY90",
		"Extended", "voxelized", "linacBeam", "phaseSpace",
	}
	Particles      = []string{"gamma", "e+", "e-", "proton", "neutron", "ion", "GenericIon"}
	EnergyTypes    = []string{"Mono", "Lin", "Pow", "Exp", "Gauss", "Brem", "Bbody", "Cdg", "UserSpectrum", "Arb", "Epn", "Fluor18"}
	AngularTypes   = []string{"iso"}
	SourceDomains  = []string{"Point", "Beam", "Plane", "Surface", "Volume"}
	ShapesByDomain = map[string][]string{
		"Point":   {"(none)"},
		"Beam":    {"(none)"},
		"Plane":   {"Circle", "Annulus", "Ellipsoid", "Square", "Rectangle"},
		"Surface": {"Sphere", "Ellipsoid", "Cylinder", "Para"},
		"Volume":  {"Sphere", "Ellipsoid", "Cylinder", "Para"},
	}
	ExtendedModels = []string{"sg", "pPs", "oPs", "Ps"}
)

type sourceBuilder func(base string) []*model.Parameter

// Kinds without a dedicated builder (voxelized, linacBeam, phaseSpace) use
// the gps block.
var sourceBuilders = map[string]sourceBuilder{
	"gps":           gpsParams,
	"PencilBeam":    pencilBeamParams,
	"TPSPencilBeam": tpsPencilBeamParams,
	"fastI124":      fastI124Params,
	"fastY90":       fastY90Params,
	"Extended":      extendedParams,
}

// Source builds a source of the given kind under the source container.
func Source(name, kind string) *model.Node {
	if !slices.Contains(SourceKinds, kind) {
		kind = DefaultSourceKind
	}
	base := "/source/" + name

	params := []*model.Parameter{
		measureN(base+"/setActivity", "Activity", units.ActivityDose, 0, 2, 0.0, "Bq"),
		text(base+"/setIntensity", "Intensity (priority)", 0),
	}
	build, ok := sourceBuilders[kind]
	if !ok {
		build = gpsParams
	}
	params = append(params, build(base)...)

	visualize := model.NewParameter(base+"/visualize", "Visualize (count, color, px)",
		[]model.SlotKind{model.SlotText, model.SlotChoice, model.SlotText},
		[]any{0, "yellow", 2}).WithChoices(1, Colors)
	params = append(params, visualize)

	n := model.NewNode(name, base, model.KindSource, params...)
	n.Subtype = kind
	return n
}

func gpsParams(base string) []*model.Parameter {
	g := base + "/gps/"
	return []*model.Parameter{
		choice(g+"particle", "Particle", Particles[0], Particles...),
		textN(g+"ion", "Ion(Z,A,Q,E_keV)", 4, 0, 0, 0, 0),
		toggle(base+"/setForcedUnstableFlag", "Forced Unstable", false),
		measure(base+"/setForcedHalfLife", "Half-life", 0, units.Time, 0),

		choice(g+"energytype", "Energy distribution", "Mono", EnergyTypes...),
		measure(g+"monoenergy", "Mono energy", 0, units.Energy, 1),
		file(g+"setSpectrumFile", "UserSpectrum file"),

		choice(g+"angtype", "Angular type", AngularTypes[0], AngularTypes...),
		measure(g+"mintheta", "min theta", 0, units.Angle, 3),
		measure(g+"maxtheta", "max theta", 0, units.Angle, 3),
		measure(g+"minphi", "min phi", 0, units.Angle, 3),
		measure(g+"maxphi", "max phi", 0, units.Angle, 3),

		choice(g+"type", "Domain", "Point", SourceDomains...),
		choice(g+"shape", "Shape", "Sphere", ShapesByDomain["Volume"]...),
		measure(g+"radius", "radius", 0, units.Length, 3),
		measure(g+"halfz", "half z", 0, units.Length, 3),
		measure(g+"halfx", "half x", 0, units.Length, 3),
		measure(g+"halfy", "half y", 0, units.Length, 3),

		measureN(g+"centre", "centre (x,y,z)", units.Length, 3, 3, 0, 0, 0),
		text(base+"/attachTo", "Attach to volume", ""),
		text(g+"confine", "Confine (vol_phys)", ""),

		choice(base+"/setType", "Special type", " - ", " - ", "backtoback"),
		toggle(base+"/setAccolinearityFlag", "Accolinearity", false),
		measure(base+"/setAccoValue", "Accolinearity FWHM", 0, units.Angle, 3),
	}
}

func pencilBeamParams(base string) []*model.Parameter {
	return []*model.Parameter{
		choice(base+"/setParticleType", "Particle", "proton", Particles...),
		textN(base+"/setIonProperties", "Ion(Z,A,Q,E_keV)", 4, 0, 0, 0, 0),
		measure(base+"/setEnergy", "Mean Energy", 0, units.Energy, 2),
		measure(base+"/setSigmaEnergy", "Sigma Energy", 0, units.Energy, 2),
		measureN(base+"/setPosition", "Position (x,y,z)", units.Length, 3, 3, 0, 0, 0),
		measure(base+"/setSigmaX", "Sigma X", 0, units.Length, 3),
		measure(base+"/setSigmaY", "Sigma Y", 0, units.Length, 3),
		measure(base+"/setSigmaTheta", "Sigma Theta", 0, units.Angle, 3),
		measure(base+"/setSigmaPhi", "Sigma Phi", 0, units.Angle, 3),
		text(base+"/setEllipseXThetaEmittance", "Emittance X-Theta (mm·mrad)", 0),
		text(base+"/setEllipseYPhiEmittance", "Emittance Y-Phi (mm·mrad)", 0),
		choice(base+"/setEllipseXThetaRotationNorm", "X-Theta Rotation", "negative", "negative", "positive"),
		choice(base+"/setEllipseYPhiRotationNorm", "Y-Phi Rotation", "negative", "negative", "positive"),
		textN(base+"/setRotationAxis", "Rotation Axis (x,y,z)", 3, 0, 0, 0),
		measure(base+"/setRotationAngle", "Rotation Angle", 0, units.Angle, 3),
		toggle(base+"/setTestFlag", "Test flag", false),
	}
}

func tpsPencilBeamParams(base string) []*model.Parameter {
	return []*model.Parameter{
		choice(base+"/setParticleType", "Particle", "proton", Particles...),
		file(base+"/setPlan", "Plan description file"),
		text(base+"/setNotAllowedFieldID", "Not allowed Field IDs (csv)", ""),
		text(base+"/setAllowedFieldID", "Allowed Field ID", ""),
		text(base+"/selectLayerID", "Select Layer ID", ""),
		text(base+"/selectSpotID", "Select Spot ID", ""),
		toggle(base+"/setFlatGenerationFlag", "Flat generation", false),
		toggle(base+"/setSortedSpotGenerationFlag", "Sorted spot generation", false),
		file(base+"/setSourceDescriptionFile", "Source description file"),
		toggle(base+"/setSpotIntensityAsNbIons", "Spot intensity is #ions", true),
		toggle(base+"/setBeamConvergence", "Beam convergence", false),
		toggle(base+"/setBeamConvergenceXTheta", "Convergent X-Theta", false),
		toggle(base+"/setBeamConvergenceYPhi", "Convergent Y-Phi", false),
		toggle(base+"/setSigmaEnergyInMeVFlag", "SigmaEnergy in MeV", false),
		toggle(base+"/setTestFlag", "Test flag", false),
	}
}

func extendedParams(base string) []*model.Parameter {
	return []*model.Parameter{
		choice(base+"/setType", "Extended model", "sg", ExtendedModels...),
		measure(base+"/setEmissionEnergy", "Emission energy (sg only)", 511, units.Energy, 1),
		textN(base+"/setFixedEmissionDirection", "Fixed dir (x,y,z)", 3, 0, 0, 1),
		toggle(base+"/setEnableFixedEmissionDirection", "Enable fixed dir", false),
		toggle(base+"/setEnableDeexcitation", "Enable de-excitation gamma", false),
		measure(base+"/setPromptGammaEnergy", "Prompt gamma energy", 0.0, units.Energy, 1),
		measureN(base+"/setPostroniumLifetime", "Positronium lifetime (pPs/oPs,value,unit)", units.Time, 0, 3, "pPs", 0.125, "ns"),
		textN(base+"/setPositroniumFraction", "Ps fraction (pPs/oPs,prob)", 2, "pPs", 0.5),
	}
}

func fastI124Params(base string) []*model.Parameter {
	return []*model.Parameter{
		choice(base+"/setType", "Type", "fastI124", "fastI124"),
		toggle(base+"/setForcedUnstableFlag", "Forced Unstable", true),
		measure(base+"/setForcedHalfLife", "Half-life", 0, units.Time, 0),
	}
}

func fastY90Params(base string) []*model.Parameter {
	return []*model.Parameter{
		measure(base+"/setMinBremEnergy", "Min Brem Energy", 0, units.Energy, 1),
		text(base+"/setPositronProbability", "Positron probability", 0),
		file(base+"/loadVoxelizedPhantom", "Load voxelized phantom (hdr)"),
		measureN(base+"/setVoxelizedPhantomPosition", "Voxel pos (x,y,z)", units.Length, 3, 3, 0, 0, 0),
	}
}
