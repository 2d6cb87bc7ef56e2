package field

// Observation is what the persona hears of its own synthesized output.
// Entropy is expected in [0, 1]; NaN counts as missing.
type Observation struct {
	Entropy float64 `json:"entropy"`
}

// ApplyObservation nudges energy up by the observed entropy and moves
// plasticity toward it as an exponential moving average. Phase is never
// changed.
func (m Model) ApplyObservation(state FieldState, obs Observation) FieldState {
	c := m.cal
	entropy := Clamp01(obs.Entropy)

	p := state.Persona
	p.Energy = Clamp01(p.Energy + c.EntropyEnergyScale*entropy)
	p.Plasticity = Clamp01(p.Plasticity + c.PlasticityLearningRate*(entropy-p.Plasticity))

	out := state
	out.Persona = p
	out.Meta.LastEntropy = Ptr(entropy)
	return out
}
