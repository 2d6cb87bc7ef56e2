// Package visual renders the receiver's state as a one-line text scope.
// It stands in for the canvas visualizer when running headless: entropy
// roughens the line, refinement adds detail, smear holds the previous frame.
package visual

import (
	"math"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// ramp maps levels 0..1 to glyphs, sparse to dense.
const ramp = " .:-=+*#%@"

const (
	defaultWidth   = 64
	spatialFreq    = 0.08
	persistence    = 0.5
	maxOctaves     = 4
	timeScale      = 1.5
	amplitudeBase  = 0.3
	amplitudeScale = 0.7
	initRefinement = 0.5
	initEnergy     = 0.5
)

// Visualizer holds the display controls and the last rendered frame.
// It is not safe for concurrent use.
type Visualizer struct {
	noise opensimplex.Noise
	width int

	entropy    float64
	refinement float64
	smear      float64
	energy     float64

	time float64
	prev []float64
}

// New returns a visualizer whose noise field is fixed by seed.
// A width below one uses the default.
func New(seed int64, width int) *Visualizer {
	if width < 1 {
		width = defaultWidth
	}
	return &Visualizer{
		noise:      opensimplex.NewNormalized(seed),
		width:      width,
		refinement: initRefinement,
		energy:     initEnergy,
	}
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}

// SetEntropy sets how rough the line is.
func (v *Visualizer) SetEntropy(amount float64) { v.entropy = clamp01(amount) }

// SetRefinement sets how many noise octaves contribute.
func (v *Visualizer) SetRefinement(amount float64) { v.refinement = clamp01(amount) }

// SetSmear sets how much of the previous frame survives.
func (v *Visualizer) SetSmear(amount float64) { v.smear = clamp01(amount) }

// SetEnergy scales the overall brightness.
func (v *Visualizer) SetEnergy(amount float64) { v.energy = clamp01(amount) }

// Levels advances the scope by dt seconds and returns the per-column levels
// in [0, 1].
func (v *Visualizer) Levels(dt float64) []float64 {
	if dt > 0 {
		v.time += dt * timeScale * (1 + v.entropy)
	}

	octaves := 1 + int(v.refinement*float64(maxOctaves-1)+0.5)
	amp := amplitudeBase + amplitudeScale*v.entropy

	levels := make([]float64, v.width)
	for x := range levels {
		n := octaveNoise(v.noise, float64(x), v.time, octaves, spatialFreq)
		// Centre the noise on 0.5 and widen it with entropy.
		level := clamp01((0.5 + (n-0.5)*2*amp) * (0.5 + 0.5*v.energy))
		if v.prev != nil {
			level = v.smear*v.prev[x] + (1-v.smear)*level
		}
		levels[x] = level
	}
	v.prev = levels

	out := make([]float64, len(levels))
	copy(out, levels)
	return out
}

// Render advances the scope by dt seconds and returns the frame as text.
func (v *Visualizer) Render(dt float64) string {
	levels := v.Levels(dt)

	var b strings.Builder
	b.Grow(len(levels))
	top := len(ramp) - 1
	for _, l := range levels {
		b.WriteByte(ramp[int(l*float64(top)+0.5)])
	}
	return b.String()
}

// octaveNoise layers noise at doubling frequencies; the result stays in [0, 1]
// for a normalized source.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
