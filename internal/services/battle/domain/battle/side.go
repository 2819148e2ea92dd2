package battle

// Side identifies one of the two teams.
type Side int

const (
	SideNone Side = iota
	SidePlayer
	SideOpponent
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideOpponent:
		return "opponent"
	default:
		return "none"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	switch s {
	case SidePlayer:
		return SideOpponent
	case SideOpponent:
		return SidePlayer
	default:
		return SideNone
	}
}

func (s Side) index() int {
	if s == SideOpponent {
		return 1
	}
	return 0
}

// Phase is the state of the battle state machine.
type Phase int

const (
	// PhaseSelect waits for the player's move.
	PhaseSelect Phase = iota
	// PhaseResolving is executing a turn and refuses submissions.
	PhaseResolving
	// PhaseEnded is terminal.
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseSelect:
		return "select"
	case PhaseResolving:
		return "resolving"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}
