package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
)

// Move is the only record on the wire. It carries no marker: the receiver
// infers it from whose turn it was.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Move) Validate() error {
	if !inRange(that.Row) || !inRange(that.Col) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, that.Row, that.Col)
	}

	return nil
}
