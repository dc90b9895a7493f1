package catalog

import (
	"fmt"

	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/units"
	"github.com/agentic-research/gatetree/internal/version"
)

// ManagerFunctions are the digitizer manager insertables.
var ManagerFunctions = []string{"SinglesDigitizer", "CoincidenceSorter"}

type moduleBuilder func(base string) []*model.Parameter

// insertModule is the command row that inserts a module into a chain.
func insertModule(base, module string) *model.Parameter {
	return choice(base+"/insert "+module, "Insert "+module, module, module)
}

var moduleBuilders = map[string]moduleBuilder{
	"adder": func(b string) []*model.Parameter {
		return []*model.Parameter{label(b+"/adder/__info", "adder (energy-weighted centroid). No parameters.")}
	},
	"adderCompton": func(b string) []*model.Parameter {
		return []*model.Parameter{label(b+"/adderCompton/__info",
			"adderCompton (>=9.3): add e- edep to previous photon in same volume; position stays at photon.")}
	},
	"readout": func(b string) []*model.Parameter {
		return []*model.Parameter{
			choice(b+"/readout/setPolicy", "Readout policy", "TakeEnergyWinner", "TakeEnergyWinner", "TakeEnergyCentroid"),
			text(b+"/readout/setDepth", "Depth (winner policy)", 1),
			text(b+"/setReadoutVolume", "Readout volume name (alternative to depth)", ""),
			toggle(b+"/readout/forceReadoutVolumeForEnergyCentroid", "Force readout volume for energy centroid", false),
		}
	},
	"energyResolution": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/energyResolution/fwhm", "FWHM (fraction @ Eref)", 0.15),
			measure(b+"/energyResolution/energyOfReference", "Reference energy", 511.0, units.Energy, 1),
			text(b+"/energyResolution/fwhmMin", "FWHM min (fraction)", 0.0),
			text(b+"/energyResolution/fwhmMax", "FWHM max (fraction)", 0.0),
			measure(b+"/energyResolution/slope", "Linear slope (1/Energy)", 0.0, units.Energy, 1),
		}
	},
	"timeResolution": func(b string) []*model.Parameter {
		return []*model.Parameter{
			measure(b+"/timeResolution/fwhm", "Time FWHM", 1.4, units.Time, 0),
			measure(b+"/timeResolution/CTR", "Coincidence Time Resolution (CTR)", 0.0, units.Time, 0),
			measure(b+"/timeResolution/DOIdimention4CTR", "DOI dimension for CTR approx", 0.0, units.Length, 3),
		}
	},
	"spatialResolution": func(b string) []*model.Parameter {
		return []*model.Parameter{
			measure(b+"/spatialResolution/fwhm", "FWHM (isotropic)", 0.0, units.Length, 3),
			measure(b+"/spatialResolution/fwhmX", "FWHM X", 0.0, units.Length, 3),
			measure(b+"/spatialResolution/fwhmY", "FWHM Y", 0.0, units.Length, 3),
			measure(b+"/spatialResolution/fwhmZ", "FWHM Z", 0.0, units.Length, 3),
			toggle(b+"/spatialResolution/confineInsideOfSmallestElement", "Confine inside smallest element", true),
			toggle(b+"/spatialResolution/useTruncatedGaussian", "Use truncated Gaussian near edges", true),
			choice(b+"/spatialResolution/nameAxis", "Distribution axis (for 2D map)", "XY", "XY"),
			text(b+"/spatialResolution/fwhmDistrib2D", "2D FWHM distribution name", ""),
			text(b+"/spatialResolution/fwhmYdistrib", "1D FWHM distribution for Y", ""),
		}
	},
	"energyFraming": func(b string) []*model.Parameter {
		sa := b + "/energyFraming/solidAngleWeighted/"
		return []*model.Parameter{
			measure(b+"/energyFraming/setMin", "Energy min", 0.0, units.Energy, 1),
			measure(b+"/energyFraming/setMax", "Energy max", 0.0, units.Energy, 1),
			choice(b+"/energyFraming/setLaw", "Energy policy (law)", "classic", "classic", "solidAngleWeighted"),
			measure(sa+"setRentangleLengthX", "Pixel length X (solidAngleWeighted)", 0.0, units.Length, 3),
			measure(sa+"setRentangleLengthY", "Pixel length Y (solidAngleWeighted)", 0.0, units.Length, 3),
			measure(sa+"setZSense4Readout", "Z sense for readout (+1 or -1; length-like)", 0.0, units.Length, 3),
		}
	},
	"clustering": func(b string) []*model.Parameter {
		return []*model.Parameter{
			measure(b+"/clustering/setAcceptedDistance", "Accepted distance", 5.0, units.Length, 3),
			toggle(b+"/clustering/setRejectionMultipleClusters", "Reject events with multiple clusters (same vol)", false),
		}
	},
	"efficiency": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/efficiency/setUniqueEfficiency", "Unique efficiency (0..1)", 1.0),
			choice(b+"/efficiency/setMode", "Mode", "unique", "unique", "energy", "crystal"),
			text(b+"/efficiency/setEfficiency", "Efficiency distribution name", ""),
			text(b+"/efficiency/enableLevel", "Enable level (hierarchy index)", 0),
			text(b+"/efficiency/disableLevel", "Disable level (hierarchy index)", 0),
		}
	},
	"pileup": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/pileup/setDepth", "Pile-up depth (hierarchy index)", 1),
			text(b+"/pileup/setPileupVolume", "Pile-up volume name (alternative to depth)", ""),
			measure(b+"/pileup/setPileup", "Signal formation time", 100.0, units.Time, 0),
		}
	},
	"deadtime": func(b string) []*model.Parameter {
		return []*model.Parameter{
			measure(b+"/deadtime/setDeadTime", "Dead time", 100000.0, units.Time, 0),
			choice(b+"/deadtime/setMode", "Dead-time model", "paralysable", "paralysable", "nonparalysable"),
			text(b+"/deadtime/chooseDTVolume", "Dead-time volume name", ""),
			text(b+"/deadtime/setBufferSize", "Buffer size (value, unit)", 1),
			text(b+"/deadtime/setBufferMode", "Buffer mode (0: shared, 1: freed-on-send)", 0),
		}
	},
	"noise": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/noise/setDeltaTDistribution", "Inter-event Δt distribution name", ""),
			text(b+"/noise/setEnergyDistribution", "Energy distribution name", ""),
		}
	},
	"merger": func(b string) []*model.Parameter {
		return []*model.Parameter{
			insertModule(b, "merger"),
			text(b+"/addInput", "Add Singles input (e.g. Singles_crystal1)", ""),
		}
	},
	"intrinsicResolution": func(b string) []*model.Parameter {
		ir := b + "/intrinsicResolution/"
		return []*model.Parameter{
			insertModule(b, "intrinsicResolution"),
			text(ir+"setIntrinsicResolution", "Intrinsic resolution (fraction, e.g. 0.088)", 0.088),
			measure(ir+"setEnergyOfReference", "Energy of reference", 511, units.Energy, 1),
			text(ir+"setTECoef", "Transfer efficiency (0..1)", 0.28),
			text(ir+"setLightOutput", "Light yield (photons per MeV)", 27000),
			text(ir+"setUniqueQE", "Quantum efficiency (0..1)", 0.10),
			text(ir+"setXtalkEdgesFraction", "Crosstalk fraction to edges", 0.10),
			text(ir+"setXtalkCornersFraction", "Crosstalk fraction to corners", 0.05),
			file(ir+"useFileDataForQE", "QE file (per module, 8x8 etc.)"),
		}
	},
	"crosstalk": func(b string) []*model.Parameter {
		return []*model.Parameter{
			insertModule(b, "crosstalk"),
			text(b+"/crosstalk/setEdgesFraction", "Edges energy fraction", 0.10),
			text(b+"/crosstalk/setCornersFraction", "Corners energy fraction", 0.05),
		}
	},
	"buffer": func(b string) []*model.Parameter {
		return []*model.Parameter{
			insertModule(b, "buffer"),
			text(b+"/buffer/setBufferSize", "Buffer size (count of Singles)", 64),
			measure(b+"/buffer/setReadFrequency", "Read frequency", 10, units.Frequency, 0),
			text(b+"/buffer/setMode", "Read mode (0: event-by-event, 1: empty whole buffer)", 1),
		}
	},
	"gridDiscretizator": func(b string) []*model.Parameter {
		g := b + "/gridDiscretizator/"
		return []*model.Parameter{
			insertModule(b, "gridDiscretizator"),
			text(g+"setNumberStripsX", "Number of strips/pixels X", 1),
			text(g+"setNumberStripsY", "Number of strips/pixels Y", 1),
			measure(g+"setStripOffsetX", "Strip offset X", 0.0, units.Length, 3),
			measure(g+"setStripOffsetY", "Strip offset Y", 0.0, units.Length, 3),
			measure(g+"setStripOffsetZ", "Strip offset Z", 0.0, units.Length, 3),
			measure(g+"setStripWidthX", "Strip/pixel width X", 0.3, units.Length, 3),
			measure(g+"setStripWidthY", "Strip/pixel width Y", 0.3, units.Length, 3),
			measure(g+"setStripWidthZ", "Strip/pixel width Z", 0.3, units.Length, 3),
			text(g+"setNumberReadOutBlocksX", "Readout blocks X", 1),
			text(g+"setNumberReadOutBlocksY", "Readout blocks Y", 1),
		}
	},
	"adderComptPhotIdeal": func(b string) []*model.Parameter {
		return []*model.Parameter{
			insertModule(b, "adderComptPhotIdeal"),
			toggle(b+"/adderComptPhotIdeal/rejectEvtOtherProcesses", "Reject events with other processes", false),
		}
	},
	"doIModel": func(b string) []*model.Parameter {
		d := b + "/doIModel/"
		return []*model.Parameter{
			insertModule(b, "doIModel"),
			textN(d+"setAxis", "DoI growth axis (x,y,z)", 3, 0, 0, 1),
			choice(d+"setDoIModel", "DoI model", "dualLayer", "dualLayer", "DoIBlurrNegExp"),
			measure(d+"DoIBlurrNegExp/setExpInvDecayConst", "Exp inverse decay constant", 1.4, units.Length, 3),
			measure(d+"DoIBlurrNegExp/setCrysEntranceFWHM", "FWHM at entrance (max uncertainty)", 1.4, units.Length, 3),
		}
	},
	"timeDelay": func(b string) []*model.Parameter {
		return []*model.Parameter{
			insertModule(b, "timeDelay"),
			measure(b+"/timeDelay/setTimeDelay", "Time delay", 12, units.Time, 0),
		}
	},
	"multipleRejection": func(b string) []*model.Parameter {
		return []*model.Parameter{
			insertModule(b, "multipleRejection"),
			choice(b+"/multipleRejection/setMultipleDefinition", "Multiplicity definition", "volumeID", "volumeID", "volumeName"),
			toggle(b+"/multipleRejection/setEventRejection", "Reject whole event (1) or only local pulses (0)", true),
		}
	},
	"virtualSegmentation": func(b string) []*model.Parameter {
		v := b + "/virtualSegmentation/"
		return []*model.Parameter{
			insertModule(b, "virtualSegmentation"),
			choice(v+"nameAxis", "Axes to segment", "XYZ", "X", "Y", "Z", "XY", "XZ", "YZ", "XYZ"),
			measure(v+"pitch", "Pitch (all axes)", 1.0, units.Length, 3),
			measure(v+"pitchX", "Pitch X (override)", nil, units.Length, 3),
			measure(v+"pitchY", "Pitch Y (override)", nil, units.Length, 3),
			measure(v+"pitchZ", "Pitch Z (override)", nil, units.Length, 3),
			toggle(v+"useMacroGenerator", "Generate segmented geometry macro", false),
		}
	},
}

// Modules lists the digitizer modules in display order.
var Modules = []string{
	"adder", "adderCompton", "readout", "energyResolution", "timeResolution",
	"spatialResolution", "energyFraming", "clustering", "efficiency", "pileup",
	"deadtime", "noise", "merger", "intrinsicResolution", "crosstalk", "buffer",
	"gridDiscretizator", "adderComptPhotIdeal", "doIModel", "timeDelay",
	"multipleRejection", "virtualSegmentation",
}

// Module returns the parameters of a digitizer module inserted in the
// chain at base. Unknown modules yield an informational row.
func Module(base, module string) []*model.Parameter {
	if build, ok := moduleBuilders[module]; ok {
		return build(base)
	}
	return []*model.Parameter{
		label(fmt.Sprintf("%s/%s/__info", base, module), module+": parameters pending (add docs)."),
	}
}

// KnownModule reports whether module has a builder.
func KnownModule(module string) bool {
	_, ok := moduleBuilders[module]
	return ok
}

// Digitizer builds the digitizer node for ctx. All addresses come from
// the context's version so construction-time and later-generated
// addresses agree.
func Digitizer(ctx Context) *model.Node {
	ctx = ctx.withDefaults()
	v := ctx.Version
	params := managerParams(ctx)
	params = append(params, singlesChainParams(ctx)...)
	if v.DigitizerScheme() == version.SharedChain {
		params = append(params, coincidenceParams(v.CoincidenceBase(ctx.CoincidenceChain))...)
	}
	n := model.NewNode("digitizer", "/digitizer", model.KindDigitizer, params...)
	if v.DigitizerScheme() == version.PerDetector {
		sd := ctx.SensitiveDetectors[0]
		n.AddChild(singlesBranch(v, sd, "LESingles", "LE", 50, 350))
		n.AddChild(singlesBranch(v, sd, "HESingles", "HE", 350, 650))
	}
	return n
}

func managerParams(ctx Context) []*model.Parameter {
	v := ctx.Version
	var params []*model.Parameter
	inputs := []string{"Singles"}
	if v.DigitizerScheme() == version.PerDetector {
		params = append(params, toggle("/gate/digitizerMgr/disable", "Disable entire Digitizer (>=9.3)", false))
		inputs = inputs[:0]
		for _, sd := range ctx.SensitiveDetectors {
			base, _ := v.SinglesDigitizerBase(sd, "Singles")
			params = append(params, choice(base+"/setInputCollection",
				fmt.Sprintf("SinglesDigitizer input (SD='%s')", sd), "Singles", "Singles"))
			inputs = append(inputs, "Singles_"+sd)
		}
	}
	params = append(params, choice(v.CoincidenceBase(ctx.CoincidenceChain)+"/setInputCollection",
		"CoincidenceSorter: Input Singles collection", inputs[0], inputs...))
	return params
}

// singlesChainParams is the editable singles chain of the first detector.
func singlesChainParams(ctx Context) []*model.Parameter {
	base := ctx.Version.SinglesChainBase(ctx.SensitiveDetectors[0], "Singles")
	flag := func(module, caption string) *model.Parameter {
		return choice(base+"/insert "+module, caption, "False", "False", "True")
	}
	params := []*model.Parameter{
		flag("adder", "Insert Adder"),
		flag("readout", "Insert Readout"),
		flag("energyResolution", "Insert EnergyResolution"),
		text(base+"/energyResolution/fwhm", "Energy FWHM", 0.26),
		measure(base+"/energyResolution/energyOfReference", "Energy of reference", 511, units.Energy, 1),
		choice(base+"/__ui_selected_module", "Selected module (for UI)", "readout",
			"adder", "readout", "energyResolution", "timeResolution", "spatialResolution", "energyFraming"),
	}
	return append(params, Module(base, "readout")...)
}

func coincidenceParams(base string) []*model.Parameter {
	return []*model.Parameter{
		measure(base+"/setWindow", "Coincidence window", 4.0, units.Time, 0),
		measure(base+"/setMinEnergy", "Coincidence energy min", 350, units.Energy, 1),
		measure(base+"/setMaxEnergy", "Coincidence energy max", 650, units.Energy, 1),
		toggle(base+"/setMultiWindow", "Reject multiple hits in window", false),
		measure(base+"/setOffset", "Time offset (optional)", 0.0, units.Time, 0),
	}
}

// singlesBranch is an energy-windowed singles digitizer fed by the
// detector's main Singles collection.
func singlesBranch(v version.Version, sd, name, tag string, lo, hi float64) *model.Node {
	base, _ := v.SinglesDigitizerBase(sd, name)
	n := model.NewNode(name, base, model.KindGeneric,
		text("/gate/digitizerMgr/name", "New SinglesDigitizer name", name),
		text("/gate/digitizerMgr/chooseSD", "Choose sensitive detector", sd),
		choice("/gate/digitizerMgr/insert", "Insert Digitizer functionality", ManagerFunctions[0], ManagerFunctions...),
		choice(base+"/setInputCollection", name+": input Singles collection", "Singles", "Singles"),
		insertModule(base, "energyFraming"),
		measure(base+"/energyFraming/setMin", tag+" min", lo, units.Energy, 1),
		measure(base+"/energyFraming/setMax", tag+" max", hi, units.Energy, 1),
	)
	n.Subtype = "SinglesDigitizer"
	return n
}
