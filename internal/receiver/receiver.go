// Package receiver closes the loop between the persona field and the synth.
// A Receiver owns one field state, steps it once per frame from what the
// synth reports about itself, and pushes the derived controls out to the
// synth and visualizer collaborators.
//
// A Receiver is single-owner: Step, ApplySignal and SetPreset must be called
// from one goroutine, normally the frame loop.
package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"reflect"

	"github.com/talgya/fieldwave/internal/calib"
	"github.com/talgya/fieldwave/internal/field"
	"github.com/talgya/fieldwave/internal/wave"
)

// Synth is the audio collaborator.
type Synth interface {
	SetValue(t float64)
	SetDelay(amount float64)
	SetEntropy(amount float64)
	SetRefinement(amount float64)
	SetCoupling(amount float64)
	State() wave.State
}

// Visualizer is the display collaborator.
type Visualizer interface {
	SetEntropy(amount float64)
	SetRefinement(amount float64)
	SetSmear(amount float64)
}

// Optional collaborator capabilities, checked with a type assertion at the
// call site.
type (
	// Resumer is a synth that must be resumed before it sounds.
	Resumer interface {
		Resume(ctx context.Context) error
	}
	// Stopper is a synth that can be silenced.
	Stopper interface {
		Stop()
	}
	// Suspender is a synth whose host audio device can be suspended.
	Suspender interface {
		Suspend(ctx context.Context) error
	}
	// EnergySetter is a visualizer that scales with persona energy.
	EnergySetter interface {
		SetEnergy(amount float64)
	}
)

// Options configures a Receiver. Every field is optional.
type Options struct {
	Seed          int64
	Name          string
	Overrides     field.Patch        // merged over the initial field state, e.g. a restored persona
	Calibration   *calib.Calibration // nil uses calib.Default()
	InitialPreset *field.WavePreset  // nil projects the initial field state
	Synth         Synth
	Visualizer    Visualizer
	Rand          func() float64 // uniform in [0, 1); nil uses math/rand/v2
	Logger        *slog.Logger
}

// Snapshot is the receiver's observable state.
type Snapshot struct {
	Field  field.FieldState   `json:"field"`
	Mode   field.ReceiverMode `json:"mode"`
	Preset field.WavePreset   `json:"preset"`
	Wave   *wave.State        `json:"wave,omitempty"` // nil without a synth
}

// Receiver drives the persona field from the synth and back.
type Receiver struct {
	name  string
	model field.Model
	cal   calib.Calibration
	log   *slog.Logger
	rand  func() float64

	synth      Synth
	visualizer Visualizer

	state   field.FieldState
	preset  field.WavePreset
	time    float64
	jitter  float64
	frames  uint64
	running bool
}

// New builds a receiver seeded with field.InitFieldState semantics and applies
// the initial preset to the synth.
func New(opts Options) *Receiver {
	cal := calib.Default()
	if opts.Calibration != nil {
		cal = *opts.Calibration
	}
	name := opts.Name
	if name == "" {
		name = cal.ReceiverLabel
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.Float64
	}

	if isNil(opts.Synth) {
		opts.Synth = nil
	}
	if isNil(opts.Visualizer) {
		opts.Visualizer = nil
	}

	model := field.NewModel(cal)
	r := &Receiver{
		name:       name,
		model:      model,
		cal:        cal,
		log:        logger.With("receiver", name),
		rand:       rnd,
		synth:      opts.Synth,
		visualizer: opts.Visualizer,
		state:      field.Merge(model.InitFieldState(opts.Seed), opts.Overrides),
	}

	r.preset = model.Preset(r.state.Persona)
	if opts.InitialPreset != nil {
		r.preset = *opts.InitialPreset
	}
	r.applyPreset(r.preset)
	return r
}

// Name returns the receiver's name.
func (r *Receiver) Name() string { return r.name }

// Running reports whether Start has succeeded more recently than Stop.
func (r *Receiver) Running() bool { return r.running }

// Field returns the current field state.
func (r *Receiver) Field() field.FieldState { return r.state }

// Preset returns the preset last pushed to the synth.
func (r *Receiver) Preset() field.WavePreset { return r.preset }

// Time returns the accumulated frame time in seconds.
func (r *Receiver) Time() float64 { return r.time }

// Frames returns the number of completed steps.
func (r *Receiver) Frames() uint64 { return r.frames }

// AttachVisualizer replaces the visualizer. It is ignored without a synth,
// since there is nothing to visualize.
func (r *Receiver) AttachVisualizer(v Visualizer) {
	if r.synth == nil {
		return
	}
	if isNil(v) {
		v = nil
	}
	r.visualizer = v
}

// Start resumes the synth. Without a synth it does nothing.
func (r *Receiver) Start(ctx context.Context) error {
	if r.synth == nil {
		return nil
	}
	if res, ok := r.synth.(Resumer); ok {
		if err := res.Resume(ctx); err != nil {
			return fmt.Errorf("resume synth: %w", err)
		}
	}
	r.running = true
	r.log.Debug("receiver started")
	return nil
}

// Stop silences the synth and suspends its device when it can. The receiver
// can be started again afterwards.
func (r *Receiver) Stop(ctx context.Context) error {
	if r.synth == nil {
		return nil
	}
	if st, ok := r.synth.(Stopper); ok {
		st.Stop()
	}
	r.running = false
	if sus, ok := r.synth.(Suspender); ok {
		if err := sus.Suspend(ctx); err != nil {
			return fmt.Errorf("suspend synth: %w", err)
		}
	}
	r.log.Debug("receiver stopped")
	return nil
}

// SetPreset pushes preset to the synth and keeps it for the visualizer.
// A nil preset is ignored.
func (r *Receiver) SetPreset(preset *field.WavePreset) {
	if preset == nil {
		return
	}
	r.preset = *preset
	r.applyPreset(r.preset)
}

// ApplySignal applies sig to the field and pushes the new preset.
func (r *Receiver) ApplySignal(sig field.Signal) {
	prev := r.state.Persona.Phase
	r.state = r.model.ApplySignal(r.state, sig)
	r.preset = r.model.Preset(r.state.Persona)
	r.applyPreset(r.preset)

	if next := r.state.Persona.Phase; next != prev {
		r.log.Info("phase transition",
			"signal", sig.Type,
			"from", prev,
			"to", next,
			"energy", fmt.Sprintf("%.3f", r.state.Persona.Energy),
		)
	}
}

// Step advances the receiver by dt seconds: it wobbles the synth's value
// around a slow sine, updates the visualizer, and feeds the synth's richness
// back into the field. A negative or non-finite dt uses the default frame.
func (r *Receiver) Step(dt float64) Snapshot {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = r.cal.StepDefaultDT
	}
	r.time += dt
	c := r.cal

	mode := r.model.Mode(r.state.Persona)

	entropy := 0.0
	if r.synth != nil {
		entropy = field.Clamp01(r.synth.State().RichnessNorm)
	}
	plasticity := field.Clamp01(r.state.Persona.Plasticity)

	step := (r.rand() - 0.5) * (c.JitterStepBase + c.JitterStepScale*plasticity)
	r.jitter = clampSym(r.jitter*c.JitterDecay+step, c.JitterMax)

	freq := c.ValueFreqBase * (0.5 + entropy)
	t := field.Clamp01(c.ValueCenter + c.ValueAmplitude*math.Sin(r.time*math.Pi*freq) + r.jitter)

	var ws *wave.State
	if r.synth != nil {
		r.synth.SetValue(t)
		st := r.synth.State()
		ws = &st
	}

	if r.visualizer != nil {
		r.visualizer.SetEntropy(entropy)
		r.visualizer.SetRefinement(r.preset.Refinement)
		r.visualizer.SetSmear(plasticity)
		if es, ok := r.visualizer.(EnergySetter); ok {
			es.SetEnergy(field.Clamp01(r.state.Persona.Energy))
		}
	}

	obs := field.Observation{Entropy: entropy}
	if ws != nil {
		obs.Entropy = ws.RichnessNorm
	}
	r.state = r.model.ApplyObservation(r.state, obs)
	r.frames++

	return Snapshot{Field: r.state, Mode: mode, Preset: r.preset, Wave: ws}
}

// Snapshot returns the current state without advancing time.
func (r *Receiver) Snapshot() Snapshot {
	snap := Snapshot{
		Field:  r.state,
		Mode:   r.model.Mode(r.state.Persona),
		Preset: r.preset,
	}
	if r.synth != nil {
		st := r.synth.State()
		snap.Wave = &st
	}
	return snap
}

func (r *Receiver) applyPreset(p field.WavePreset) {
	if r.synth == nil {
		return
	}
	r.synth.SetDelay(p.Delay)
	r.synth.SetEntropy(p.Entropy)
	r.synth.SetRefinement(p.Refinement)
	r.synth.SetCoupling(p.Coupling)
	r.synth.SetValue(p.Value)
}

// isNil reports whether v is nil or a nil pointer held in an interface, so a
// (*wave.Synth)(nil) counts as no synth.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func clampSym(x, m float64) float64 {
	return math.Max(-m, math.Min(m, x))
}
