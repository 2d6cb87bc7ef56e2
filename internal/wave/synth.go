// Package wave models the control surface of the four-stage persona
// wavetable synth. Preset controls go in; stage weights and the derived
// effect settings come out.
//
// It computes parameters only. No samples are generated.
package wave

import (
	"context"
	"math"
)

// Stage is one persona voice group of the wavetable.
type Stage struct {
	ID       string  `json:"id"`
	Position float64 `json:"position"` // centre on the value axis, 0..1
	Partials int     `json:"partials"`
}

// Stages are ordered by position. The partial count rises with each stage.
var Stages = [...]Stage{
	{ID: "rut", Position: 0, Partials: 2},
	{ID: "emerging", Position: 1.0 / 3, Partials: 4},
	{ID: "growing", Position: 2.0 / 3, Partials: 8},
	{ID: "taste", Position: 1, Partials: 16},
}

// Chords holds the semitone offsets voiced by each stage.
var Chords = map[string][]int{
	"rut":      {0, 1},
	"emerging": {0, 1, 7},
	"growing":  {0, 2, 7},
	"taste":    {0, 1, 4, 7},
}

const (
	minFundamental = 50.0
	maxFundamental = 440.0
	rootMinHz      = 20.0
	rootMaxHz      = 2000.0

	richnessBase  = 0.8
	richnessScale = 0.4
	detuneSpread  = 0.05

	delayMinTime   = 0.02
	delayTimeScale = 1.5
	feedbackMax    = 0.35

	driveMin = 1.0
	driveMax = 24.0

	cutoffMin    = 400.0
	cutoffMax    = 8000.0
	qMin         = 0.7
	qMax         = 8.0
	refinementV0 = 0.5

	wavetableCurve     = 1.2
	wavetableIntensity = 2.6
	brightBoostScale   = 3.0
)

// State is the synth's report of itself, read by the receiver every frame.
type State struct {
	Value        float64   `json:"value"`
	Weights      []float64 `json:"weights"`
	Dominant     Stage     `json:"dominant"`
	RichnessNorm float64   `json:"richness_norm"` // 0 at two partials, 1 at sixteen
	Fundamental  float64   `json:"fundamental"`
	WavetablePos float64   `json:"wavetable_pos"`
	DelayTime    float64   `json:"delay_time"`
	FeedbackGain float64   `json:"feedback_gain"`
	Drive        float64   `json:"drive"`
	Cutoff       float64   `json:"cutoff"`
	Q            float64   `json:"q"`
	Running      bool      `json:"running"`
}

// Synth holds the parameter state of one wavetable synth. It is not safe for
// concurrent use; the receiver's frame loop owns it.
type Synth struct {
	value        float64
	weights      []float64
	richnessNorm float64
	baseNoteHz   float64
	fundamental  float64
	wavetablePos float64

	entropy    float64
	refinement float64
	coupling   float64

	delayTime    float64
	feedbackGain float64
	drive        float64
	cutoff       float64
	q            float64

	running bool
}

// NewSynth returns a synth at value 0 with the root between the fundamental
// bounds.
func NewSynth() *Synth {
	s := &Synth{
		weights:    make([]float64, len(Stages)),
		baseNoteHz: (minFundamental + maxFundamental) * 0.5,
		refinement: refinementV0,
		drive:      driveMin,
		delayTime:  delayMinTime,
	}
	s.fundamental = s.baseNoteHz
	s.SetValue(0)
	return s
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

// SetValue moves the crossfade position across the stages.
func (s *Synth) SetValue(t float64) {
	s.value = clamp01(t)
	s.updateMix()
}

// SetDelay maps amount to delay time and a squared feedback gain.
func (s *Synth) SetDelay(amount float64) {
	a := clamp01(amount)
	s.delayTime = delayMinTime + delayTimeScale*a
	s.feedbackGain = feedbackMax * a * a
}

// SetEntropy sets the pre-drive amount and re-derives spectral parameters.
func (s *Synth) SetEntropy(amount float64) {
	s.entropy = clamp01(amount)
	s.drive = driveMin + (driveMax-driveMin)*s.entropy
	s.updateSpectral()
}

// SetRefinement sets the filter opening and resonance.
func (s *Synth) SetRefinement(amount float64) {
	s.refinement = clamp01(amount)
	s.applyRefinement()
}

// SetCoupling blends each stage weight with its neighbours.
func (s *Synth) SetCoupling(amount float64) {
	s.coupling = clamp01(amount)
	s.updateMix()
}

// SetWavetablePos moves the waveform morph from sine toward bright saw.
func (s *Synth) SetWavetablePos(amount float64) {
	s.wavetablePos = clamp01(amount)
}

// SetRootHz sets the base note. Non-finite input is ignored.
func (s *Synth) SetRootHz(hz float64) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) {
		return
	}
	s.baseNoteHz = math.Max(rootMinHz, math.Min(rootMaxHz, hz))
	s.updateSpectral()
}

// Resume marks the synth as sounding.
func (s *Synth) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.running = true
	return nil
}

// Stop silences the synth. It can be resumed again.
func (s *Synth) Stop() {
	s.running = false
}

// State reports the current parameters. Weights is a copy.
func (s *Synth) State() State {
	weights := make([]float64, len(s.weights))
	copy(weights, s.weights)

	maxIdx := 0
	for i := 1; i < len(weights); i++ {
		if weights[i] > weights[maxIdx] {
			maxIdx = i
		}
	}

	return State{
		Value:        s.value,
		Weights:      weights,
		Dominant:     Stages[maxIdx],
		RichnessNorm: s.richnessNorm,
		Fundamental:  s.fundamental,
		WavetablePos: s.wavetablePos,
		DelayTime:    s.delayTime,
		FeedbackGain: s.feedbackGain,
		Drive:        s.drive,
		Cutoff:       s.cutoff,
		Q:            s.q,
		Running:      s.running,
	}
}

// Harmonics returns the amplitude of partials 1..partials for the current
// wavetable position. The morph runs sine, triangle, saw, then a saw with
// boosted upper partials.
func (s *Synth) Harmonics(partials int) []float64 {
	if partials <= 0 {
		return nil
	}
	p := math.Pow(s.wavetablePos, wavetableCurve)
	p = clamp01(0.5 + (p-0.5)*wavetableIntensity)

	amps := make([]float64, partials)
	for i := range amps {
		n := float64(i + 1)
		sine := 0.0
		if i == 0 {
			sine = 1
		}
		tri := 0.0
		if (i+1)%2 == 1 {
			tri = 1 / (n * n)
			if (i+1)%4 == 3 {
				tri = -tri
			}
		}
		saw := 1 / n
		bright := saw * (1 + brightBoostScale*n/float64(partials))

		switch {
		case p < 1.0/3:
			t := p * 3
			amps[i] = sine*(1-t) + tri*t
		case p < 2.0/3:
			t := (p - 1.0/3) * 3
			amps[i] = tri*(1-t) + saw*t
		default:
			t := (p - 2.0/3) * 3
			amps[i] = saw*(1-t) + bright*t
		}
	}
	return amps
}

// VoiceFrequencies returns the oscillator frequencies per stage, before
// entropy jitter.
func (s *Synth) VoiceFrequencies() [][]float64 {
	out := make([][]float64, len(Stages))
	centre := float64(len(Stages)-1) / 2
	for i, st := range Stages {
		ratio := 1 + detuneSpread*(float64(i)-centre)
		for _, semi := range Chords[st.ID] {
			out[i] = append(out[i], s.fundamental*ratio*math.Pow(2, float64(semi)/12))
		}
	}
	return out
}

// updateMix computes triangular crossfade weights around each stage centre,
// normalizes them, then applies neighbour coupling.
func (s *Synth) updateMix() {
	width := 1 / float64(len(Stages)-1)

	sum := 0.0
	weights := make([]float64, len(Stages))
	for i, st := range Stages {
		w := math.Max(1-math.Abs(s.value-st.Position)/width, 0)
		weights[i] = w
		sum += w
	}
	if sum == 0 {
		sum = 1
	}
	for i := range weights {
		weights[i] /= sum
	}

	if s.coupling > 0 {
		coupled := make([]float64, len(weights))
		for i, self := range weights {
			neighbours, count := 0.0, 0
			if i > 0 {
				neighbours += weights[i-1]
				count++
			}
			if i < len(weights)-1 {
				neighbours += weights[i+1]
				count++
			}
			avg := self
			if count > 0 {
				avg = neighbours / float64(count)
			}
			coupled[i] = (1-s.coupling)*self + s.coupling*avg
		}
		weights = coupled
	}

	s.weights = weights
	s.updateSpectral()
}

func (s *Synth) updateSpectral() {
	minPartials, maxPartials := Stages[0].Partials, Stages[0].Partials
	for _, st := range Stages {
		minPartials = min(minPartials, st.Partials)
		maxPartials = max(maxPartials, st.Partials)
	}

	weighted := 0.0
	for i, st := range Stages {
		weighted += s.weights[i] * float64(st.Partials)
	}
	if math.IsNaN(weighted) || math.IsInf(weighted, 0) {
		weighted = float64(minPartials)
	}

	denom := math.Max(1, float64(maxPartials-minPartials))
	s.richnessNorm = (weighted - float64(minPartials)) / denom
	s.fundamental = s.baseNoteHz * (richnessBase + richnessScale*s.richnessNorm)
	s.applyRefinement()
}

func (s *Synth) applyRefinement() {
	s.cutoff = cutoffMin + (cutoffMax-cutoffMin)*s.refinement
	s.q = qMin + (qMax-qMin)*s.refinement
}
