package field

// Band classifies persona energy into three ranges.
type Band string

const (
	BandLow  Band = "low"
	BandMid  Band = "mid"
	BandHigh Band = "high"
)

// ReceiverMode is a descriptive, display-only reading of a persona.
type ReceiverMode struct {
	Band       Band    `json:"band"`
	Noise      float64 `json:"noise"`
	Focus      float64 `json:"focus"`
	Tension    float64 `json:"tension"`
	Phase      Phase   `json:"phase"`
	Energy     float64 `json:"energy"`
	Plasticity float64 `json:"plasticity"`
}

// Mode projects p into a receiver mode.
func (m Model) Mode(p Persona) ReceiverMode {
	band := BandMid
	switch {
	case p.Energy < m.cal.BandLowThreshold:
		band = BandLow
	case p.Energy > m.cal.BandHighThreshold:
		band = BandHigh
	}

	return ReceiverMode{
		Band:       band,
		Noise:      Clamp01(p.Plasticity),
		Focus:      Clamp01(1 - p.Plasticity),
		Tension:    m.tension(p.Phase),
		Phase:      p.Phase,
		Energy:     p.Energy,
		Plasticity: p.Plasticity,
	}
}

func (m Model) tension(ph Phase) float64 {
	switch ph {
	case PhaseRut:
		return m.cal.TensionRut
	case PhaseEmerging:
		return m.cal.TensionEmerging
	case PhaseGrowing:
		return m.cal.TensionGrowing
	case PhaseTaste:
		return m.cal.TensionTaste
	default:
		return m.cal.TensionFallback
	}
}
