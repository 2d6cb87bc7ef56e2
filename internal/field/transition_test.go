package field_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/fieldwave/internal/field"
)

func stateWith(ph field.Phase, energy, plasticity float64) field.FieldState {
	return field.Create(field.Patch{Persona: field.PersonaPatch{
		Phase:      field.Ptr(ph),
		Energy:     field.Ptr(energy),
		Plasticity: field.Ptr(plasticity),
	}})
}

// TestApplySignal_BurstAdvances raises energy past the threshold and moves
// one phase forward.
func TestApplySignal_BurstAdvances(t *testing.T) {
	out := field.ApplySignal(stateWith(field.PhaseRut, 0.5, 0.5), field.Signal{Type: field.SignalBurst})

	assert.InDelta(t, 0.65, out.Persona.Energy, eps)
	assert.InDelta(t, 0.55, out.Persona.Plasticity, eps)
	assert.Equal(t, field.PhaseEmerging, out.Persona.Phase)
	require.NotNil(t, out.Meta.LastSignalType)
	assert.Equal(t, field.SignalBurst, *out.Meta.LastSignalType)
}

// TestApplySignal_BurstBelowThreshold perturbs without advancing.
func TestApplySignal_BurstBelowThreshold(t *testing.T) {
	out := field.ApplySignal(stateWith(field.PhaseRut, 0.3, 0.5), field.Signal{Type: field.SignalBurst})

	assert.InDelta(t, 0.45, out.Persona.Energy, eps)
	assert.Equal(t, field.PhaseRut, out.Persona.Phase)
}

// TestApplySignal_BurstAtLastPhase stays at taste.
func TestApplySignal_BurstAtLastPhase(t *testing.T) {
	out := field.ApplySignal(stateWith(field.PhaseTaste, 0.95, 0.99), field.Signal{Type: field.SignalBurst})

	assert.Equal(t, field.PhaseTaste, out.Persona.Phase)
	assert.Equal(t, 1.0, out.Persona.Energy, "energy is clamped")
	assert.Equal(t, 1.0, out.Persona.Plasticity, "plasticity is clamped")
}

// TestApplySignal_SilenceAtFirstPhase cannot regress below rut.
func TestApplySignal_SilenceAtFirstPhase(t *testing.T) {
	out := field.ApplySignal(stateWith(field.PhaseRut, 0.35, 0.5), field.Signal{Type: field.SignalSilence})

	assert.InDelta(t, 0.25, out.Persona.Energy, eps)
	assert.InDelta(t, 0.48, out.Persona.Plasticity, eps)
	assert.Equal(t, field.PhaseRut, out.Persona.Phase)
	require.NotNil(t, out.Meta.LastSignalType)
	assert.Equal(t, field.SignalSilence, *out.Meta.LastSignalType)
}

// TestApplySignal_SilenceRegresses moves one phase back under the threshold.
func TestApplySignal_SilenceRegresses(t *testing.T) {
	out := field.ApplySignal(stateWith(field.PhaseGrowing, 0.45, 0.5), field.Signal{Type: field.SignalSilence})

	assert.InDelta(t, 0.35, out.Persona.Energy, eps)
	assert.Equal(t, field.PhaseEmerging, out.Persona.Phase)
}

// TestApplySignal_SilenceClampsAtZero keeps energy and plasticity in band.
func TestApplySignal_SilenceClampsAtZero(t *testing.T) {
	out := field.ApplySignal(stateWith(field.PhaseEmerging, 0.02, 0.01), field.Signal{Type: field.SignalSilence})

	assert.Equal(t, 0.0, out.Persona.Energy)
	assert.Equal(t, 0.0, out.Persona.Plasticity)
	assert.Equal(t, field.PhaseRut, out.Persona.Phase)
}

// TestApplySignal_UnknownIsNoop returns the input untouched for anything but
// burst and silence.
func TestApplySignal_UnknownIsNoop(t *testing.T) {
	in := stateWith(field.PhaseRut, 0.5, 0.5)

	for _, typ := range []field.SignalType{"foo", "noop", field.SignalNone} {
		out := field.ApplySignal(in, field.Signal{Type: typ})
		assert.Equal(t, in, out, "signal %q", typ)
		assert.Nil(t, out.Meta.LastSignalType, "signal %q must not be recorded", typ)
	}
}

// TestApplySignal_UnknownPhaseNeverMoves keeps an unrecognized phase.
func TestApplySignal_UnknownPhaseNeverMoves(t *testing.T) {
	in := stateWith(field.Phase("bloom"), 0.9, 0.5)

	assert.Equal(t, field.Phase("bloom"), field.ApplySignal(in, field.Signal{Type: field.SignalBurst}).Persona.Phase)
	in = stateWith(field.Phase("bloom"), 0.1, 0.5)
	assert.Equal(t, field.Phase("bloom"), field.ApplySignal(in, field.Signal{Type: field.SignalSilence}).Persona.Phase)
}

// TestApplySignal_OneStepAtMost overshoots the thresholds by a wide margin
// and checks the phase index moves by no more than one.
func TestApplySignal_OneStepAtMost(t *testing.T) {
	for _, ph := range field.Phases {
		for _, e := range []float64{-5, 0, 0.2, 0.5, 0.9, 1, 7} {
			for _, sig := range []field.SignalType{field.SignalBurst, field.SignalSilence} {
				in := stateWith(ph, e, 0.5)
				out := field.ApplySignal(in, field.Signal{Type: sig})
				delta := out.Persona.Phase.Index() - in.Persona.Phase.Index()
				assert.LessOrEqual(t, int(math.Abs(float64(delta))), 1,
					"phase %q energy %v signal %q", ph, e, sig)
			}
		}
	}
}

// TestApplySignal_DoesNotMutateInput checks the input value survives.
func TestApplySignal_DoesNotMutateInput(t *testing.T) {
	in := stateWith(field.PhaseRut, 0.5, 0.5)
	snapshot := in

	_ = field.ApplySignal(in, field.Signal{Type: field.SignalBurst})
	assert.Equal(t, snapshot, in)
}

// TestParseSignal maps text to the sum type.
func TestParseSignal(t *testing.T) {
	cases := []struct {
		in   string
		want field.SignalType
		ok   bool
	}{
		{"burst", field.SignalBurst, true},
		{"  Silence\n", field.SignalSilence, true},
		{"noop", field.SignalNone, false},
		{"", field.SignalNone, false},
		{"foo", field.SignalNone, false},
	}
	for _, tc := range cases {
		sig, ok := field.ParseSignal(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, sig.Type, "input %q", tc.in)
	}
}

// TestApplyObservation_FullEntropy feeds entropy 1 to a balanced persona.
func TestApplyObservation_FullEntropy(t *testing.T) {
	out := field.ApplyWaveObservation(stateWith(field.PhaseGrowing, 0.5, 0.5), field.Observation{Entropy: 1})

	assert.InDelta(t, 0.525, out.Persona.Energy, eps)
	assert.InDelta(t, 0.55, out.Persona.Plasticity, eps)
	assert.Equal(t, field.PhaseGrowing, out.Persona.Phase, "observation never moves the phase")
	require.NotNil(t, out.Meta.LastEntropy)
	assert.Equal(t, 1.0, *out.Meta.LastEntropy)
}

// TestApplyObservation_MalformedEntropy clamps or zeroes bad input.
func TestApplyObservation_MalformedEntropy(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{math.NaN(), 0},
		{-2, 0},
		{3, 1},
		{math.Inf(1), 1},
	}
	for _, tc := range cases {
		out := field.ApplyWaveObservation(stateWith(field.PhaseRut, 0.5, 0.5), field.Observation{Entropy: tc.in})
		require.NotNil(t, out.Meta.LastEntropy)
		assert.Equal(t, tc.want, *out.Meta.LastEntropy, "entropy %v", tc.in)
		assert.GreaterOrEqual(t, out.Persona.Plasticity, 0.0)
		assert.LessOrEqual(t, out.Persona.Plasticity, 1.0)
	}
}

// TestApplyObservation_Converges drives plasticity toward a constant entropy
// with strictly shrinking distance.
func TestApplyObservation_Converges(t *testing.T) {
	for _, target := range []float64{0, 0.2, 0.85, 1} {
		s := stateWith(field.PhaseRut, 0.1, 0.5)
		dist := math.Abs(s.Persona.Plasticity - target)

		for i := 0; i < 400; i++ {
			s = field.ApplyWaveObservation(s, field.Observation{Entropy: target})
			next := math.Abs(s.Persona.Plasticity - target)
			if dist > 1e-12 {
				assert.Less(t, next, dist, "target %v step %d", target, i)
			}
			dist = next
		}
		assert.InDelta(t, target, s.Persona.Plasticity, 1e-9, "target %v", target)
	}
}

// TestApplyObservation_ClampInvariant sweeps out-of-range personas.
func TestApplyObservation_ClampInvariant(t *testing.T) {
	for _, e := range []float64{-1, 0, 0.99, 1, 5} {
		for _, p := range []float64{-1, 0, 0.5, 1, 5} {
			out := field.ApplyWaveObservation(stateWith(field.PhaseRut, e, p), field.Observation{Entropy: 0.7})
			assert.GreaterOrEqual(t, out.Persona.Energy, 0.0)
			assert.LessOrEqual(t, out.Persona.Energy, 1.0)
			assert.GreaterOrEqual(t, out.Persona.Plasticity, 0.0)
			assert.LessOrEqual(t, out.Persona.Plasticity, 1.0)
		}
	}
}

// TestModel_CustomCalibration injects a calibration and checks it is used.
func TestModel_CustomCalibration(t *testing.T) {
	cal := field.Default().Calibration()
	cal.BurstAdvanceThreshold = 0.99
	m := field.NewModel(cal)

	out := m.ApplySignal(stateWith(field.PhaseRut, 0.5, 0.5), field.Signal{Type: field.SignalBurst})
	assert.Equal(t, field.PhaseRut, out.Persona.Phase)
	assert.Equal(t, field.PhaseEmerging, field.ApplySignal(stateWith(field.PhaseRut, 0.5, 0.5), field.Signal{Type: field.SignalBurst}).Persona.Phase)
}
