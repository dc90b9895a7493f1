package catalog

import "github.com/agentic-research/gatetree/internal/model"

// Small parameter factories shared by every builder.

func text(address, label string, def any) *model.Parameter {
	return model.NewParameter(address, label, []model.SlotKind{model.SlotText}, []any{def})
}

func measure(address, label string, def any, unitList []string, unit int) *model.Parameter {
	return text(address, label, def).WithUnits(unitList, unit)
}

func textN(address, label string, n int, defs ...any) *model.Parameter {
	slots := make([]model.SlotKind, n)
	for i := range slots {
		slots[i] = model.SlotText
	}
	return model.NewParameter(address, label, slots, defs)
}

func measureN(address, label string, unitList []string, unit int, n int, defs ...any) *model.Parameter {
	return textN(address, label, n, defs...).WithUnits(unitList, unit)
}

func choice(address, label, def string, options ...string) *model.Parameter {
	return model.NewParameter(address, label, []model.SlotKind{model.SlotChoice}, []any{def}).
		WithChoices(0, options)
}

func toggle(address, label string, on bool) *model.Parameter {
	return model.NewParameter(address, label, []model.SlotKind{model.SlotToggle}, []any{on})
}

func file(address, label string) *model.Parameter {
	return model.NewParameter(address, label, []model.SlotKind{model.SlotFile}, nil)
}

func label(address, caption string, def ...any) *model.Parameter {
	return model.NewParameter(address, caption, []model.SlotKind{model.SlotLabel}, def)
}

var (
	axes     = []string{" - ", " X ", " Y ", " Z "}
	booleans = []string{"true", "false"}
)
