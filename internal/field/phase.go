package field

// Phase is an ordered stage of persona development. Values outside Phases are
// representable and treated as the first stage wherever an index is needed.
type Phase string

const (
	PhaseRut      Phase = "rut"
	PhaseEmerging Phase = "emerging"
	PhaseGrowing  Phase = "growing"
	PhaseTaste    Phase = "taste"
)

// Phases is the adjacency order used for advance and regress.
var Phases = [...]Phase{PhaseRut, PhaseEmerging, PhaseGrowing, PhaseTaste}

// Index returns the position of p in Phases, or -1 for an unknown phase.
func (p Phase) Index() int {
	for i, ph := range Phases {
		if ph == p {
			return i
		}
	}
	return -1
}

// Known reports whether p is one of Phases.
func (p Phase) Known() bool {
	return p.Index() >= 0
}

// next returns the following phase and true, or p and false at the end of the
// order or for an unknown phase.
func (p Phase) next() (Phase, bool) {
	i := p.Index()
	if i < 0 || i >= len(Phases)-1 {
		return p, false
	}
	return Phases[i+1], true
}

// prev returns the preceding phase and true, or p and false at the start of
// the order or for an unknown phase.
func (p Phase) prev() (Phase, bool) {
	i := p.Index()
	if i <= 0 {
		return p, false
	}
	return Phases[i-1], true
}
