package tictactoe

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

// Session is one process's replica of the game. It is consistent with the
// peer's replica only because both apply the same moves in the same order.
type Session struct {
	ID      string
	Role    entity.Role
	Mover   entity.Cell
	Turn    int
	Board   entity.Board
	Outcome entity.Outcome
}

func NewSession(role entity.Role) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Role:    role,
		Mover:   entity.O,
		Turn:    1,
		Outcome: entity.InProgressOutcome(),
	}
}

func (that *Session) Marker() entity.Cell {
	return that.Role.Marker()
}

func (that *Session) OpponentMarker() entity.Cell {
	return that.Role.Marker().Opponent()
}

func (that *Session) IsLocalTurn() bool {
	return that.Mover == that.Marker()
}

func (that *Session) IsFinished() bool {
	return that.Outcome.IsTerminal()
}

// MakeTurn applies a move for marker. Nothing changes on error.
func (that *Session) MakeTurn(marker entity.Cell, move entity.Move) (entity.Outcome, error) {
	if that.IsFinished() {
		return that.Outcome, apperror.ErrGameFinished
	}

	if err := that.validateMove(marker, move); err != nil {
		return that.Outcome, fmt.Errorf("invalid turn: %w", err)
	}

	board := that.Board
	if err := board.Place(move.Row, move.Col, marker); err != nil {
		return that.Outcome, fmt.Errorf("invalid turn: %w", err)
	}

	outcome, err := board.Evaluate()
	if err != nil {
		return that.Outcome, fmt.Errorf("failed to evaluate board: %w", err)
	}

	that.Board = board
	that.updateSessionStatus(outcome)

	return outcome, nil
}

// validateMove - checks if the move is valid.
func (that *Session) validateMove(marker entity.Cell, move entity.Move) error {
	if err := move.Validate(); err != nil {
		return err
	}

	if that.Mover != marker {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// updateSessionStatus - advances the turn counter and hands the turn over while the game continues.
func (that *Session) updateSessionStatus(outcome entity.Outcome) {
	that.Outcome = outcome
	that.Turn++

	if !outcome.IsTerminal() {
		that.Mover = that.Mover.Opponent()
	}
}

// IsWonBy reports whether the finished game was won by marker.
func (that *Session) IsWonBy(marker entity.Cell) bool {
	return that.Outcome.State == entity.Win && that.Outcome.Winner == marker
}

func (that *Session) Snapshot() *entity.SessionSnapshot {
	snapshot := &entity.SessionSnapshot{
		ID:     that.ID,
		Role:   that.Role.String(),
		Marker: that.Marker().String(),
		Turn:   that.Turn,
		Mover:  that.Mover.String(),
		Board:  that.Board.Flat(),
		Status: entity.StatusOngoing,
	}

	switch that.Outcome.State {
	case entity.Win:
		snapshot.Status = entity.StatusFinished
		snapshot.Winner = that.Outcome.Winner.String()
		snapshot.Mover = ""
	case entity.Draw:
		snapshot.Status = entity.StatusFinished
		snapshot.Winner = entity.PlayerTie
		snapshot.Mover = ""
	}

	return snapshot
}
