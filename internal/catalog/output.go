package catalog

import "github.com/agentic-research/gatetree/internal/model"

// section is a presentation-only heading row.
func section(address, caption string) *model.Parameter {
	return label("__section__"+address, caption, "")
}

// Output builds the output node with its ASCII, ROOT and online plotter groups.
func Output() *model.Node {
	params := []*model.Parameter{section("/output/ascii", "[ASCII Output]")}
	params = append(params, asciiOutput()...)
	params = append(params, section("/output/root", "[ROOT Output]"))
	params = append(params, rootOutput()...)
	params = append(params, section("/output/plotter", "[ROOT Online Plotter]"))
	params = append(params, plotterOutput()...)
	return model.NewNode("output", "/output", model.KindOutput, params...)
}

func asciiOutput() []*model.Parameter {
	const b = "/output/ascii/"
	return []*model.Parameter{
		toggle(b+"enable", "Enable ASCII output", true),
		text(b+"setFileName", "ASCII output filename", ""),
		toggle(b+"setOutFileHitsFlag", "Write hits file", true),
		toggle(b+"setOutFileSinglesFlag", "Write singles file", true),
		toggle(b+"setOutFileCoincidencesFlag", "Write coincidences file", true),
		// The digitizer name is substituted into the flag below at export.
		text(b+"__digitizerName", "Digitizer name (for singles tree flag)", ""),
		toggle(b+"setOutFileSingles<digitizerName>Flag", "Output for singles (resolved at export)", true),
		text(b+"setCoincidenceMask", "Coincidence mask (0/1 …)", "000000"),
		text(b+"setSingleMask", "Single mask (0/1 …)", "0000"),
		text(b+"setOutFileSizeLimit", "File size limit (bytes)", 2000000000),
	}
}

func rootOutput() []*model.Parameter {
	const b = "/output/root/"
	return []*model.Parameter{
		toggle(b+"enable", "Enable ROOT ouput", true),
		text(b+"setFileName", "ROOT output filename", ""),
		toggle(b+"setRootHitFlag", "Generate Hit tree", true),
		toggle(b+"setRootSinglesFlag", "Generate Singles tree", true),
		toggle(b+"setRootCoincidencesFlag", "Generate Coincidences tree", true),
		toggle(b+"setRootNtupleFlag", "Generate Ntuple tree", true),
		toggle(b+"setOutFileSinglesAdderFlag", "Adder Tree", false),
		toggle(b+"setOutFileSinglesReadoutFlag", "Readout Tree", false),
		toggle(b+"setOutFileSinglesSpblurringFlag", "Spblurring Tree", false),
		toggle(b+"setOutFileSinglesBlurringFlag", "Blurring Tree", false),
		toggle(b+"setOutFileSinglesThresholderFlag", "Threshholder Tree", false),
		toggle(b+"setOutFileSinglesUpholderFlag", "Upholder Tree", false),
	}
}

func plotterOutput() []*model.Parameter {
	const b = "/output/plotter/"
	return []*model.Parameter{
		toggle(b+"enable", "Enable ROOT online plotter", false),
		toggle(b+"showPlotter", "Show Plotter", false),
		text(b+"setNColumns", "Amount of Columns", 0),
		text(b+"setPlotHeight", "Plot Height", 0),
		text(b+"setPlotWidth", "Plot Width", 0),
	}
}
