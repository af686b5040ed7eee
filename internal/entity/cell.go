package entity

// Cell is the content of one board square. O and X double as player markers.
type Cell int8

const (
	Empty Cell = iota
	O
	X
)

func (that Cell) String() string {
	switch that {
	case O:
		return "O"
	case X:
		return "X"
	default:
		return ""
	}
}

// Opponent returns the other marker. Empty has no opponent.
func (that Cell) Opponent() Cell {
	switch that {
	case O:
		return X
	case X:
		return O
	default:
		return Empty
	}
}

// score is the line-sum contribution: O counts +1, X counts -1.
func (that Cell) score() int {
	switch that {
	case O:
		return 1
	case X:
		return -1
	default:
		return 0
	}
}
