package field

import "strings"

// SignalType names a discrete external event.
type SignalType string

const (
	// SignalNone is the absent signal. Applying it changes nothing.
	SignalNone    SignalType = ""
	SignalBurst   SignalType = "burst"
	SignalSilence SignalType = "silence"
)

// Signal is a discrete event applied to the field.
type Signal struct {
	Type SignalType `json:"type"`
}

// ParseSignal maps text to a Signal. Unrecognized text, including "noop",
// yields the none signal and false.
func ParseSignal(s string) (Signal, bool) {
	switch SignalType(strings.ToLower(strings.TrimSpace(s))) {
	case SignalBurst:
		return Signal{Type: SignalBurst}, true
	case SignalSilence:
		return Signal{Type: SignalSilence}, true
	default:
		return Signal{}, false
	}
}

// ApplySignal perturbs the persona for a burst or silence and moves the phase
// at most one step. Any other signal returns state as is.
//
// The phase check uses the energy after the perturbation. An unknown phase
// never moves.
func (m Model) ApplySignal(state FieldState, sig Signal) FieldState {
	p := state.Persona
	c := m.cal

	switch sig.Type {
	case SignalBurst:
		p.Energy = Clamp01(p.Energy + c.BurstEnergyDelta)
		p.Plasticity = Clamp01(p.Plasticity + c.BurstPlasticityDelta)
		if p.Energy > c.BurstAdvanceThreshold {
			p.Phase, _ = p.Phase.next()
		}
	case SignalSilence:
		p.Energy = Clamp01(p.Energy + c.SilenceEnergyDelta)
		p.Plasticity = Clamp01(p.Plasticity + c.SilencePlasticityDelta)
		if p.Energy < c.SilenceRegressThreshold {
			p.Phase, _ = p.Phase.prev()
		}
	default:
		return state
	}

	out := state
	out.Persona = p
	out.Meta.LastSignalType = Ptr(sig.Type)
	return out
}
