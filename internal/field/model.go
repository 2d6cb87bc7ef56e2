package field

import (
	"math"

	"github.com/talgya/fieldwave/internal/calib"
)

// Model binds the projector and transition functions to one calibration.
// The zero Model is not useful; build one with NewModel.
type Model struct {
	cal calib.Calibration
}

// NewModel returns a Model using cal.
func NewModel(cal calib.Calibration) Model {
	return Model{cal: cal}
}

// Calibration returns the calibration the model was built with.
func (m Model) Calibration() calib.Calibration {
	return m.cal
}

var defaultModel = NewModel(calib.Default())

// Default returns the Model for the production calibration.
func Default() Model {
	return defaultModel
}

// Clamp01 is the single clamp used for every [0, 1] output. NaN maps to 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// Create builds a field state from the production defaults.
func Create(overrides Patch) FieldState {
	return defaultModel.Create(overrides)
}

// InitFieldState builds a receiver field state from the production defaults.
func InitFieldState(seed int64) FieldState {
	return defaultModel.InitFieldState(seed)
}

// ToWavePreset projects the persona of state with the production calibration.
func ToWavePreset(state FieldState) WavePreset {
	return defaultModel.Preset(state.Persona)
}

// ToReceiverMode projects the persona of state with the production calibration.
func ToReceiverMode(state FieldState) ReceiverMode {
	return defaultModel.Mode(state.Persona)
}

// ApplySignal applies sig with the production calibration.
func ApplySignal(state FieldState, sig Signal) FieldState {
	return defaultModel.ApplySignal(state, sig)
}

// ApplyWaveObservation applies obs with the production calibration.
func ApplyWaveObservation(state FieldState, obs Observation) FieldState {
	return defaultModel.ApplyObservation(state, obs)
}
