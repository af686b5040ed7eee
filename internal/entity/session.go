package entity

const (
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	PlayerTie = "-"
)

// SessionSnapshot is the view of a live session mirrored into the session repository.
type SessionSnapshot struct {
	ID     string    `json:"id"`
	Role   string    `json:"role"`
	Marker string    `json:"marker"`
	Turn   int       `json:"turn"`
	Mover  string    `json:"mover"`
	Board  [9]string `json:"board"`
	Status string    `json:"status"`
	Winner string    `json:"winner,omitempty"`
}

func (that *SessionSnapshot) IsFinished() bool {
	return that.Status == StatusFinished
}
