package catalog

import (
	"slices"

	"github.com/agentic-research/gatetree/internal/model"
)

// DefaultDistributionKind is the fallback for unknown kinds.
const DefaultDistributionKind = "Flat"

// DistributionKinds lists the distribution kinds in display order.
var DistributionKinds = []string{"Flat", "Gaussian", "Exponential", "Manual", "File"}

var distributionBuilders = map[string]func(base string) []*model.Parameter{
	"Flat": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/setMin", "min", 0),
			text(b+"/setMax", "max", 1),
			text(b+"/setAmplitude", "amplitude", 1),
		}
	},
	"Gaussian": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/setMean", "mean", 0),
			text(b+"/setSigma", "sigma", 1),
			text(b+"/setAmplitude", "amplitude", 1),
		}
	},
	"Exponential": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/setLambda", "lambda (power)", 1),
			text(b+"/setAmplitude", "amplitude", 1),
		}
	},
	"Manual": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/setUnitX", "unit X", ""),
			text(b+"/setUnitY", "unit Y", ""),
			textN(b+"/insertPoint", "insertPoint (x,y)", 2, 0, 0),
			text(b+"/addPoint", "addPoint (y)", 0),
			text(b+"/autoXstart", "auto X start", 0),
		}
	},
	"File": func(b string) []*model.Parameter {
		return []*model.Parameter{
			text(b+"/setUnitX", "unit X", ""),
			text(b+"/setUnitY", "unit Y", ""),
			toggle(b+"/autoX", "auto X (increment if true)", false),
			text(b+"/autoXstart", "auto X start", 0),
			file(b+"/setFileName", "ASCII file"),
			text(b+"/setColumnX", "column X (0- or 1-based)", 0),
			text(b+"/setColumnY", "column Y (0- or 1-based)", 1),
			toggle(b+"/read", "read file", false),
			toggle(b+"/ReadMatrix2d", "read 2D matrix file", false),
		}
	},
}

// Distribution builds a distribution of the given kind.
func Distribution(name, kind string) *model.Node {
	if !slices.Contains(DistributionKinds, kind) {
		kind = DefaultDistributionKind
	}
	base := "/distributions/" + name
	params := []*model.Parameter{
		text("/distributions/name", "Distribution name", name),
		label("/distributions/insert", "Distribution type", kind),
	}
	params = append(params, distributionBuilders[kind](base)...)

	n := model.NewNode(name, base, model.KindDistribution, params...)
	n.Subtype = kind
	return n
}

// DefaultDistributions are the distributions a new project usually needs.
func DefaultDistributions() []*model.Node {
	return []*model.Node{
		Distribution("my_gauss", "Gaussian"),
		Distribution("energy_eff_distrib", "File"),
		Distribution("my_distrib2D", "File"),
	}
}
