package catalog

import (
	"github.com/agentic-research/gatetree/internal/model"
	"github.com/agentic-research/gatetree/internal/units"
)

// MaterialDatabaseLabel labels the root row holding the material database path.
const MaterialDatabaseLabel = "Material Database"

// Baseline builds the static skeleton every tree starts from: the root,
// its fixed containers, the version-dependent digitizer and the world.
func Baseline(ctx Context) *model.Node {
	ctx = ctx.withDefaults()

	root := model.NewNode("gate", "/gate", model.KindRoot,
		file("/geometry/setMaterialDatabase", MaterialDatabaseLabel))

	root.AddChild(Physics())
	root.AddChild(model.NewNode("source", "/source", model.KindSources))

	distributions := model.NewNode("distributions", "/distributions", model.KindDistributions)
	for _, d := range DefaultDistributions() {
		distributions.AddChild(d)
	}
	root.AddChild(distributions)

	root.AddChild(Digitizer(ctx))
	root.AddChild(Output())
	root.AddChild(Acquisition())
	root.AddChild(model.NewNode("verbose", "/verbose", model.KindVerbose))
	root.AddChild(Vis())
	root.AddChild(World(ctx.Materials))
	return root
}

// Vis builds the viewer settings node.
func Vis() *model.Node {
	return model.NewNode("vis", "/vis", model.KindVis,
		choice("/open", "Viewer", "OGLS", ViewerTypes...),
		textN("/viewer/panTo", "Pan to", 2, 0, 0),
		text("/viewer/zoom", "Zoom", 0.5),
		textN("/viewer/set/viewpointThetaPhi", "Viewing Angle", 2, 90, 90),
	)
}

// World builds the world volume.
func World(materials []string) *model.Node {
	return model.NewNode("world", "/world", model.KindWorld,
		measure("/world/geometry/setXLength", "X Length", 0, units.Length, 3),
		measure("/world/geometry/setYLength", "Y Length", 0, units.Length, 3),
		measure("/world/geometry/setZLength", "Z Length", 0, units.Length, 3),
		choice("/world/setMaterial", "Material", "", materials...),
		toggle("/world/vis/setVisible", "SetVisible", false),
	)
}
