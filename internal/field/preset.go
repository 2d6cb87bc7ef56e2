package field

// WavePreset is the set of synth control values derived from a persona.
// It is recomputed on demand and never stored as authoritative state.
type WavePreset struct {
	Phase      Phase   `json:"phase"`
	PhaseIndex int     `json:"phase_index"`
	Delay      float64 `json:"delay"`
	Entropy    float64 `json:"entropy"`
	Feedback   float64 `json:"feedback"`
	Drive      float64 `json:"drive"`
	Refinement float64 `json:"refinement"`
	Coupling   float64 `json:"coupling"`
	Value      float64 `json:"value"`
}

// Preset projects p into synth control values.
//
// Only Entropy is clamped. Delay, Feedback, Drive, Refinement and Coupling
// stay inside [0, 1] only while Energy and Plasticity do; callers that patch
// out-of-range values into the store get out-of-range presets back.
func (m Model) Preset(p Persona) WavePreset {
	c := m.cal
	idx := p.Phase.Index()
	if idx < 0 {
		idx = 0
	}

	return WavePreset{
		Phase:      p.Phase,
		PhaseIndex: idx,
		Delay:      c.DelayBase + p.Energy*c.DelayEnergyScale,
		Entropy:    Clamp01(p.Plasticity),
		Feedback:   c.FeedbackBase + p.Plasticity*c.FeedbackPlasticityScale,
		Drive:      c.DriveBase + p.Energy*c.DriveEnergyScale,
		Refinement: c.RefinementBase + (1-p.Plasticity)*c.RefinementPlasticityScale,
		Coupling:   c.CouplingBase + p.Energy*p.Plasticity*c.CouplingInteractionScale,
		Value:      p.Energy,
	}
}
