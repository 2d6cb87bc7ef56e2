// Package field implements the persona field: the small phase/energy/plasticity
// state that drives the wavetable synth, its projections into synth presets and
// receiver modes, and the two ways it evolves (discrete signals and continuous
// observation of the synthesized output).
//
// Every function here is total. Malformed input degrades to a defined fallback
// instead of an error, and no function mutates its arguments.
package field

// Persona is the evolving state that drives synthesis.
// Energy and Plasticity are nominally in [0, 1]; the store does not enforce it.
type Persona struct {
	Phase      Phase   `json:"phase"`
	Energy     float64 `json:"energy"`
	Plasticity float64 `json:"plasticity"`
}

// Meta carries provenance for a field state.
type Meta struct {
	Label          string      `json:"label"`
	Notes          string      `json:"notes"`
	Seed           int64       `json:"seed"`             // provenance tag only, nothing is seeded from it
	LastSignalType *SignalType `json:"last_signal_type"` // nil until a signal is applied
	LastEntropy    *float64    `json:"last_entropy"`     // nil until an observation is applied
}

// FieldState is the complete persona field. It is a value: every transition
// returns a new FieldState and callers replace their copy.
type FieldState struct {
	Persona Persona `json:"persona"`
	Meta    Meta    `json:"meta"`
}

// PersonaPatch overrides individual persona keys. Nil fields are left alone.
type PersonaPatch struct {
	Phase      *Phase
	Energy     *float64
	Plasticity *float64
}

// MetaPatch overrides individual meta keys. Nil fields are left alone.
type MetaPatch struct {
	Label          *string
	Notes          *string
	Seed           *int64
	LastSignalType *SignalType
	LastEntropy    *float64
}

// Patch is a partial FieldState. Persona and Meta merge key by key.
type Patch struct {
	Persona PersonaPatch
	Meta    MetaPatch
}

// Ptr returns a pointer to a copy of v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// Then returns a patch equivalent to applying p and then next.
// Keys set in next win.
func (p Patch) Then(next Patch) Patch {
	out := p
	if next.Persona.Phase != nil {
		out.Persona.Phase = next.Persona.Phase
	}
	if next.Persona.Energy != nil {
		out.Persona.Energy = next.Persona.Energy
	}
	if next.Persona.Plasticity != nil {
		out.Persona.Plasticity = next.Persona.Plasticity
	}
	if next.Meta.Label != nil {
		out.Meta.Label = next.Meta.Label
	}
	if next.Meta.Notes != nil {
		out.Meta.Notes = next.Meta.Notes
	}
	if next.Meta.Seed != nil {
		out.Meta.Seed = next.Meta.Seed
	}
	if next.Meta.LastSignalType != nil {
		out.Meta.LastSignalType = next.Meta.LastSignalType
	}
	if next.Meta.LastEntropy != nil {
		out.Meta.LastEntropy = next.Meta.LastEntropy
	}
	return out
}

// Merge returns state with patch layered on top. Values are copied out of the
// patch so later writes through its pointers cannot reach the result.
// No range checks happen here.
func Merge(state FieldState, patch Patch) FieldState {
	out := state

	if patch.Persona.Phase != nil {
		out.Persona.Phase = *patch.Persona.Phase
	}
	if patch.Persona.Energy != nil {
		out.Persona.Energy = *patch.Persona.Energy
	}
	if patch.Persona.Plasticity != nil {
		out.Persona.Plasticity = *patch.Persona.Plasticity
	}

	if patch.Meta.Label != nil {
		out.Meta.Label = *patch.Meta.Label
	}
	if patch.Meta.Notes != nil {
		out.Meta.Notes = *patch.Meta.Notes
	}
	if patch.Meta.Seed != nil {
		out.Meta.Seed = *patch.Meta.Seed
	}
	if patch.Meta.LastSignalType != nil {
		out.Meta.LastSignalType = Ptr(*patch.Meta.LastSignalType)
	}
	if patch.Meta.LastEntropy != nil {
		out.Meta.LastEntropy = Ptr(*patch.Meta.LastEntropy)
	}

	return out
}

// Create returns a field state built from the calibration defaults with
// overrides merged on top.
func (m Model) Create(overrides Patch) FieldState {
	base := FieldState{
		Persona: Persona{
			Phase:      Phase(m.cal.DefaultPhase),
			Energy:     m.cal.DefaultEnergy,
			Plasticity: m.cal.DefaultPlasticity,
		},
		Meta: Meta{
			Label: m.cal.DefaultLabel,
			Seed:  m.cal.DefaultSeed,
		},
	}
	return Merge(base, overrides)
}

// InitFieldState is Create with the receiver label and the given seed.
func (m Model) InitFieldState(seed int64) FieldState {
	return m.Create(Patch{Meta: MetaPatch{
		Label: Ptr(m.cal.ReceiverLabel),
		Seed:  Ptr(seed),
	}})
}
