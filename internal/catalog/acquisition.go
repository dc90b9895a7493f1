package catalog

import (
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/units"
)

var (
	// SeedModes are the engine seed policies.
	SeedModes = []string{"default", "auto", "manual"}
	// RandomEngines are the selectable random engines.
	RandomEngines = []string{"Ranlux64", "JamesRandom", "MixMaxRng", "MersenneTwister"}
)

// Acquisition builds the run-control node: primaries, time slices and
// random engine.
func Acquisition() *model.Node {
	return model.NewNode("acquisition", "/application", model.KindAcquisition,
		text("/application/setTotalNumberOfPrimaries", "Total primaries (split over time)", "NaN"),
		text("/application/setNumberOfPrimariesPerRun", "Primaries per slice (weight by duration)", "NaN"),
		file("/application/readNumberOfPrimariesInAFile", "Primaries per slice (from file)"),

		measure("/application/setTimeSlice", "Time slice", 1, units.Time, 0),
		measure("/application/setTimeStart", "Time start", 0, units.Time, 0),
		measure("/application/setTimeStop", "Time stop", 2, units.Time, 0),

		file("/application/readTimeSlicesIn", "Read slice times (file)"),
		measure("/application/addSlice", "Add slice (value, unit)", 0, units.Time, 0),

		choice("/random/setEngineSeed", "Seed mode", "default", SeedModes...),
		text("/random/setEngineSeed (manual value)", "Manual seed (0..900000000)", 0),
		choice("/random/setEngineName", "Random engine", "JamesRandom", RandomEngines...),
		file("/random/resetEngineFrom", "Reset engine from seed file"),
	)
}
