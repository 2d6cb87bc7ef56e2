package wave

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// TestNewSynth_StartsAtRut checks the initial mix sits fully on the first stage.
func TestNewSynth_StartsAtRut(t *testing.T) {
	st := NewSynth().State()

	require.Len(t, st.Weights, len(Stages))
	assert.InDelta(t, 1.0, st.Weights[0], eps)
	assert.Equal(t, "rut", st.Dominant.ID)
	assert.InDelta(t, 0.0, st.RichnessNorm, eps)
	assert.InDelta(t, 245*0.8, st.Fundamental, eps)
	assert.False(t, st.Running)
}

// TestSetValue_Richness walks the value axis across stage centres.
func TestSetValue_Richness(t *testing.T) {
	cases := []struct {
		value    float64
		dominant string
		richness float64
	}{
		{0, "rut", 0},
		{1.0 / 3, "emerging", 2.0 / 14},
		{2.0 / 3, "growing", 6.0 / 14},
		{1, "taste", 1},
		{5, "taste", 1},
	}
	s := NewSynth()
	for _, tc := range cases {
		s.SetValue(tc.value)
		st := s.State()
		assert.Equal(t, tc.dominant, st.Dominant.ID, "value %v", tc.value)
		assert.InDelta(t, tc.richness, st.RichnessNorm, 1e-6, "value %v", tc.value)
	}
}

// TestSetValue_WeightsNormalized checks the crossfade sums to one between
// stage centres.
func TestSetValue_WeightsNormalized(t *testing.T) {
	s := NewSynth()
	for v := 0.0; v <= 1.0; v += 0.05 {
		s.SetValue(v)
		sum := 0.0
		for _, w := range s.State().Weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "value %v", v)
	}
}

// TestSetCoupling_SpreadsWeight moves weight from the centre stage to its
// neighbours.
func TestSetCoupling_SpreadsWeight(t *testing.T) {
	s := NewSynth()
	s.SetValue(1.0 / 3)
	before := s.State().Weights

	s.SetCoupling(0.5)
	after := s.State().Weights

	assert.Less(t, after[1], before[1])
	assert.Greater(t, after[0], before[0])
	assert.Greater(t, after[2], before[2])
}

// TestSetDelay maps the amount onto time and squared feedback.
func TestSetDelay(t *testing.T) {
	s := NewSynth()
	s.SetDelay(0.5)
	st := s.State()

	assert.InDelta(t, 0.77, st.DelayTime, eps)
	assert.InDelta(t, 0.35*0.25, st.FeedbackGain, eps)

	s.SetDelay(-1)
	assert.InDelta(t, 0.02, s.State().DelayTime, eps)
}

// TestSetEntropyAndRefinement checks drive and filter mappings.
func TestSetEntropyAndRefinement(t *testing.T) {
	s := NewSynth()
	s.SetEntropy(1)
	s.SetRefinement(0)
	st := s.State()

	assert.InDelta(t, 24.0, st.Drive, eps)
	assert.InDelta(t, 400.0, st.Cutoff, eps)
	assert.InDelta(t, 0.7, st.Q, eps)

	s.SetRefinement(1)
	assert.InDelta(t, 8000.0, s.State().Cutoff, eps)
}

// TestSetRootHz clamps the root and ignores non-finite input.
func TestSetRootHz(t *testing.T) {
	s := NewSynth()
	s.SetRootHz(10)
	assert.InDelta(t, 20*0.8, s.State().Fundamental, eps)

	s.SetRootHz(100)
	s.SetRootHz(math.Inf(1))
	assert.InDelta(t, 100*0.8, s.State().Fundamental, eps)
}

// TestResumeStop toggles the running flag and honours a cancelled context.
func TestResumeStop(t *testing.T) {
	s := NewSynth()
	require.NoError(t, s.Resume(context.Background()))
	assert.True(t, s.State().Running)

	s.Stop()
	assert.False(t, s.State().Running)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Resume(ctx), context.Canceled)
	assert.False(t, s.State().Running)
}

// TestState_WeightsAreCopied ensures callers cannot write into the synth.
func TestState_WeightsAreCopied(t *testing.T) {
	s := NewSynth()
	st := s.State()
	st.Weights[0] = 42

	assert.InDelta(t, 1.0, s.State().Weights[0], eps)
}

// TestVoiceFrequencies voices every chord tone of every stage.
func TestVoiceFrequencies(t *testing.T) {
	s := NewSynth()
	freqs := s.VoiceFrequencies()

	require.Len(t, freqs, len(Stages))
	for i, st := range Stages {
		assert.Len(t, freqs[i], len(Chords[st.ID]), "stage %s", st.ID)
	}
	// Root tone of the rut stage sits below the fundamental by the detune.
	assert.InDelta(t, s.State().Fundamental*(1-0.05*1.5), freqs[0][0], 1e-9)
}

// TestHarmonics_Morph walks the wavetable from a pure sine to the boosted saw.
func TestHarmonics_Morph(t *testing.T) {
	s := NewSynth()
	assert.Nil(t, s.Harmonics(0))

	assert.Equal(t, []float64{1, 0, 0, 0}, s.Harmonics(4), "position 0 is a sine")

	s.SetWavetablePos(0.5)
	assert.Equal(t, 0.5, s.State().WavetablePos)
	mid := s.Harmonics(4)
	assert.InDelta(t, 1.0, mid[0], 1e-9)
	assert.Less(t, mid[2], 0.0, "triangle third partial is inverted")

	s.SetWavetablePos(1)
	bright := s.Harmonics(4)
	assert.InDelta(t, 1.75, bright[0], 1e-9)
	assert.InDelta(t, 1.25, bright[1], 1e-9)
	assert.InDelta(t, 1.0, bright[3], 1e-9)

	s.SetWavetablePos(7)
	assert.Equal(t, 1.0, s.State().WavetablePos)
}
