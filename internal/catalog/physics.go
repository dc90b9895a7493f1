package catalog

import (
	"slices"

	"github.com/agentic-research/gatetree/internal/model"
)

// PhysicsLists are the reference physics lists.
var PhysicsLists = []string{
	" - ", "FTFP_BERT", "FTFP_BERT_ATL", "FTFP_BERT_HP", "FTFP_BERT_TRV", "FTFP_INCLXX",
	"FTFQGSP_BERT", "FTF_BIC", "LBE", "NuBeam", "QBBC", "QBBC_ABLA", "QGSP_BERT",
	"QGSP_BERT_HP", "QGSP_BIC", "QGSP_BIC_AllHP", "QGSP_BIC_HP", "QGSP_BIC_HPT",
	"QGSP_FTFP_BERT", "QGSP_INCLXX", "QGS_BIC", "Shielding", "ShieldingLEND",
}

// PhysicsProcess lists the particles and models a process accepts.
type PhysicsProcess struct {
	Name      string
	Particles []string
	Models    []string
}

var allModels = []string{" - ", "StandardModel", "LivermoreModel", "LivermorePolarizedModel", "PenelopeModel"}

// PhysicsProcesses in display order.
var PhysicsProcesses = []PhysicsProcess{
	{"PhotoElectric", []string{"gamma"}, allModels},
	{"Compton", []string{"gamma"}, allModels},
	{"RayleighScattering", []string{"gamma"}, []string{" - ", "LivermoreModel", "LivermorePolarizedModel", "PenelopeModel"}},
	{"GammaConversion", []string{" - "}, allModels},
	{"ElectronIonisation", []string{"e+", "e-"}, allModels},
}

func lookupProcess(name string) (PhysicsProcess, bool) {
	i := slices.IndexFunc(PhysicsProcesses, func(p PhysicsProcess) bool { return p.Name == name })
	if i < 0 {
		return PhysicsProcess{}, false
	}
	return PhysicsProcesses[i], true
}

// ProcessAddress is the address of the row that enables a process.
func ProcessAddress(name string) string {
	return "/physics/" + name
}

// Process returns the row enabling a physics process: the particle it
// applies to and the model to use.
func Process(name string) (*model.Parameter, bool) {
	pp, ok := lookupProcess(name)
	if !ok {
		return nil, false
	}
	p := model.NewParameter(ProcessAddress(name), name+" Process",
		[]model.SlotKind{model.SlotChoice, model.SlotChoice},
		[]any{pp.Particles[0], pp.Models[0]})
	p.WithChoices(0, pp.Particles).WithChoices(1, pp.Models)
	return p, true
}

// Physics builds the physics node with only the physics list selector.
func Physics() *model.Node {
	return model.NewNode("physics", "/physics", model.KindPhysics,
		choice("/addPhysicsList", "Physics List", PhysicsLists[0], PhysicsLists...))
}
