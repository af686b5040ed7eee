package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrSessionInProgress = errors.New("session is already in progress")
)

// Connection establishment errors. These are recoverable: the user may pick a role and retry.
var (
	ErrInvalidInputFormat = errors.New("invalid input format")
	ErrBindFailure        = errors.New("failed to bind listening endpoint")
	ErrDialFailure        = errors.New("failed to dial host")
)

// Session errors. Both end the session.
var (
	ErrConnectionLost    = errors.New("connection lost")
	ErrProtocolViolation = errors.New("protocol violation")
)

// IsFatal reports whether err must end the running session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrProtocolViolation)
}
