package fungus

import (
	"math"
	"strconv"

	"mycelium/internal/core"
)

func (w *World) Parameters() core.ParameterSnapshot {
	params := w.cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("rows", "Rows", w.cfg.Rows),
				intParam("cols", "Columns", w.cfg.Cols),
				int64Param("seed", "Seed", w.cfg.Seed),
			},
		},
		{
			Name: "Environment",
			Params: []core.Parameter{
				floatParam("temperature", "Temperature (°C)", w.cfg.Environment.Temperature),
				floatParam("humidity", "Humidity (%)", w.cfg.Environment.Humidity),
				floatParam("nutrient", "Nutrient", w.cfg.Environment.Nutrient),
				boolParam("randomize", "Randomize", w.cfg.Environment.Randomize),
			},
		},
		{
			Name: "Growth",
			Params: []core.Parameter{
				floatParam("diffusion", "Diffusion coefficient", w.rule.Diffusion),
				floatParam("r_max", "Max growth rate", w.rule.RMax),
				floatParam("dt", "Time step (h)", w.rule.DT),
				floatParam("viability_threshold", "Viability threshold", w.rule.Threshold),
				floatParam("diffusion_scale", "Diffusion scale", w.rule.DiffusionScale),
				floatParam("initial_density", "Seed density", params.InitialDensity),
			},
		},
		{
			Name: "Weights",
			Params: []core.Parameter{
				floatParam("weight_temperature", "Temperature weight", w.rule.Weights.Temperature),
				floatParam("weight_humidity", "Humidity weight", w.rule.Weights.Humidity),
				floatParam("weight_nutrient", "Nutrient weight", w.rule.Weights.Nutrient),
			},
		},
		{
			Name:    "State",
			Summary: "Read-only",
			Params: []core.Parameter{
				intParam("tick", "Tick", w.tick),
				floatParam("hours", "Elapsed hours", w.hours),
				boolParam("running", "Running", w.running),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the parameters a front end may adjust while the
// simulation is stopped.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "diffusion", Label: "Diffusion", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "dt", Label: "Time step (h)", Type: core.ParamTypeFloat, Step: 1, Min: 0.1, HasMin: true},
	}
}

// SetFloatParameter updates an adjustable parameter, clamping it to the
// control's bounds. It refuses changes while running.
func (w *World) SetFloatParameter(key string, value float64) bool {
	if w.running || math.IsNaN(value) {
		return false
	}
	for _, ctrl := range w.ParameterControls() {
		if ctrl.Key != key {
			continue
		}
		value = ctrl.Clamp(value)
		switch key {
		case "diffusion":
			w.cfg.Params.Diffusion = value
		case "dt":
			w.cfg.Params.DT = value
		}
		w.rule = w.cfg.Rule()
		return true
	}
	return false
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
