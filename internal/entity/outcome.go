package entity

type OutcomeState int

const (
	InProgress OutcomeState = iota
	Win
	Draw
)

// Outcome is derived from the board after every applied move. Winner is set only for Win.
type Outcome struct {
	State  OutcomeState
	Winner Cell
}

func InProgressOutcome() Outcome {
	return Outcome{State: InProgress}
}

func WinOutcome(winner Cell) Outcome {
	return Outcome{State: Win, Winner: winner}
}

func DrawOutcome() Outcome {
	return Outcome{State: Draw}
}

func (that Outcome) IsTerminal() bool {
	return that.State != InProgress
}

func (that Outcome) String() string {
	switch that.State {
	case Win:
		return "win " + that.Winner.String()
	case Draw:
		return "draw"
	default:
		return "in progress"
	}
}
