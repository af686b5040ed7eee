package usecase

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/transport/peer"
)

const (
	StatusChooseRole = "Choose Host (O) or Player (X)"
	StatusWaiting    = "Waiting for opponent..."
	StatusGameOver   = "Game over"

	MessageWin  = "You win."
	MessageLoss = "You lose."
	MessageDraw = "Draw."
)

func turnStatus(turn int, localTurn bool) string {
	if localTurn {
		return fmt.Sprintf("Turn %d - Your turn", turn)
	}
	return fmt.Sprintf("Turn %d - Opponent's turn", turn)
}

func connectingStatus(address peer.Address) string {
	return fmt.Sprintf("Connecting to %s...", address)
}

func opponentConnectedStatus(remote string) string {
	return fmt.Sprintf("Opponent connected from %s", remote)
}

func connectedStatus(address peer.Address) string {
	return fmt.Sprintf("Connected to %s", address)
}

// ErrorMessage is the text shown to the user for err.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrProtocolViolation):
		return "Opponent sent an invalid move"
	case errors.Is(err, apperror.ErrConnectionLost):
		return "Lost connection to opponent"
	case errors.Is(err, apperror.ErrBindFailure):
		return "Failed to host game"
	case errors.Is(err, apperror.ErrDialFailure):
		return "Failed to connect to host"
	default:
		return "Unexpected error"
	}
}

func portErrorMessage(err error) string {
	if errors.Is(err, peer.ErrPortOutOfRange) {
		return "Port must be between 1 and 65535"
	}
	return "Invalid port number"
}
