package biosim

import (
	"strconv"
	"strings"

	"biosim/internal/core"
	"biosim/pkg/logger"
)

// Parameters reports the live coefficients grouped for the HUD.
func (w *World) Parameters() core.ParameterSnapshot {
	params := w.cfg.Params
	if w.engine != nil {
		params = w.engine.Params()
	}
	rows, cols := 0, 0
	year := 0
	if w.engine != nil {
		rows, cols = w.engine.island.Size()
		year = w.engine.Year()
	}
	groups := []core.ParameterGroup{
		{
			Name: "Island",
			Params: []core.Parameter{
				intParam("rows", "Rows", rows),
				intParam("cols", "Columns", cols),
				int64Param("seed", "Seed", w.cfg.Seed),
				intParam("year", "Year", year),
			},
		},
		speciesGroup(Herbivore, &params.Herbivore),
		speciesGroup(Carnivore, &params.Carnivore),
		{
			Name: "Terrain",
			Params: []core.Parameter{
				floatParam("lowland.f_max", "Lowland fodder", params.Lowland.FMax),
				floatParam("highland.f_max", "Highland fodder", params.Highland.FMax),
			},
		},
		{
			Name: "Migration",
			Params: []core.Parameter{
				boolParam("migration", "Enabled", params.Migration.Enabled),
				{Key: "weighting", Label: "Weighting", Type: core.ParamTypeString, Value: string(params.Migration.Weighting)},
			},
			Summary: "destination choice among habitable neighbours",
		},
		{
			Name: "Display",
			Params: []core.Parameter{
				intParam("cmax_herbivore", "Herbivore colour limit", w.cfg.Display.CMaxHerbivore),
				intParam("cmax_carnivore", "Carnivore colour limit", w.cfg.Display.CMaxCarnivore),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

func speciesGroup(s Species, p *SpeciesParams) core.ParameterGroup {
	prefix := strings.ToLower(s.String()) + "."
	var params []core.Parameter
	for _, f := range p.fields() {
		if s == Herbivore && f.key == "delta_phi_max" {
			continue
		}
		params = append(params, floatParam(prefix+f.key, f.key, *f.ptr))
	}
	return core.ParameterGroup{Name: s.String(), Params: params}
}

// ParameterControls lists the coefficients adjustable from the HUD.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "herbivore.f", Label: "Herbivore appetite", Type: core.ParamTypeFloat, Step: 1, Min: 1, HasMin: true},
		{Key: "herbivore.mu", Label: "Herbivore mobility", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "herbivore.gamma", Label: "Herbivore fertility", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, HasMin: true},
		{Key: "carnivore.f", Label: "Carnivore appetite", Type: core.ParamTypeFloat, Step: 5, Min: 1, HasMin: true},
		{Key: "carnivore.mu", Label: "Carnivore mobility", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "carnivore.delta_phi_max", Label: "Carnivore kill span", Type: core.ParamTypeFloat, Step: 0.5, Min: 0.5, HasMin: true},
		{Key: "lowland.f_max", Label: "Lowland fodder", Type: core.ParamTypeFloat, Step: 50, Min: 50, HasMin: true},
		{Key: "highland.f_max", Label: "Highland fodder", Type: core.ParamTypeFloat, Step: 50, Min: 50, HasMin: true},
		{Key: "cmax_herbivore", Label: "Herbivore colour limit", Type: core.ParamTypeInt, Step: 25, Min: 1, HasMin: true},
		{Key: "cmax_carnivore", Label: "Carnivore colour limit", Type: core.ParamTypeInt, Step: 10, Min: 1, HasMin: true},
	}
}

// SetIntParameter adjusts the display colour limits and repaints the grid.
func (w *World) SetIntParameter(key string, value int) bool {
	if value < 1 {
		return false
	}
	switch key {
	case "cmax_herbivore":
		w.cfg.Display.CMaxHerbivore = value
	case "cmax_carnivore":
		w.cfg.Display.CMaxCarnivore = value
	default:
		return false
	}
	w.rebuildDisplay()
	return true
}

// SetFloatParameter applies a HUD change to the running engine and to the
// config used by the next Reset. A change the engine rejects leaves the
// config untouched.
func (w *World) SetFloatParameter(key string, value float64) bool {
	for _, ctrl := range w.ParameterControls() {
		if ctrl.Key != key {
			continue
		}
		if ctrl.HasMin && value < ctrl.Min {
			value = ctrl.Min
		}
		if ctrl.HasMax && value > ctrl.Max {
			value = ctrl.Max
		}
		break
	}
	if w.engine != nil {
		if err := w.engine.SetParameter(key, value); err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("parameter rejected")
			return false
		}
	}
	if err := w.cfg.Params.Set(key, value); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("parameter rejected")
		return false
	}
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
