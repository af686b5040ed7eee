package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
)

const BoardSize = 3

// Lines lists every row, column and diagonal as (row, col) pairs.
var Lines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

type Board struct {
	cells [BoardSize][BoardSize]Cell
}

// NewBoardFromRows builds a board from three rows written as "OX " strings,
// where anything other than O or X is empty.
func NewBoardFromRows(rows [BoardSize]string) Board {
	var board Board

	for r, row := range rows {
		for c, ch := range row {
			if c >= BoardSize {
				break
			}

			switch ch {
			case 'O':
				board.cells[r][c] = O
			case 'X':
				board.cells[r][c] = X
			}
		}
	}

	return board
}

func (that *Board) At(row, col int) Cell {
	return that.cells[row][col]
}

// Place puts marker on an empty cell. The board is left untouched on error.
func (that *Board) Place(row, col int, marker Cell) error {
	if !inRange(row) || !inRange(col) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCell, row, col)
	}

	if that.cells[row][col] != Empty {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrCellOccupied, row, col)
	}

	that.cells[row][col] = marker

	return nil
}

// Evaluate scans all eight lines. A winning line takes priority over a full board.
// Winning lines for both markers at once can only come from a desynchronized peer.
func (that *Board) Evaluate() (Outcome, error) {
	var winO, winX bool

	for _, line := range Lines {
		sum := 0
		for _, pos := range line {
			sum += that.cells[pos[0]][pos[1]].score()
		}

		switch sum {
		case BoardSize:
			winO = true
		case -BoardSize:
			winX = true
		}
	}

	switch {
	case winO && winX:
		return InProgressOutcome(), fmt.Errorf("%w: both markers have a winning line", apperror.ErrProtocolViolation)
	case winO:
		return WinOutcome(O), nil
	case winX:
		return WinOutcome(X), nil
	case that.IsFull():
		return DrawOutcome(), nil
	default:
		return InProgressOutcome(), nil
	}
}

func (that *Board) IsFull() bool {
	return that.Filled() == BoardSize*BoardSize
}

// Filled returns the number of non-empty cells.
func (that *Board) Filled() int {
	filled := 0

	for _, row := range that.cells {
		for _, cell := range row {
			if cell != Empty {
				filled++
			}
		}
	}

	return filled
}

// Flat returns the board row by row as marker strings, empty cells as "".
func (that *Board) Flat() [BoardSize * BoardSize]string {
	var flat [BoardSize * BoardSize]string

	for r, row := range that.cells {
		for c, cell := range row {
			flat[r*BoardSize+c] = cell.String()
		}
	}

	return flat
}

func inRange(i int) bool {
	return i >= 0 && i < BoardSize
}
