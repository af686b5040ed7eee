package entity

// Role is fixed once the connection is established. The Host always moves
// first with O; nothing is negotiated on the wire.
type Role int

const (
	RoleHost Role = iota
	RoleGuest
)

func (that Role) Marker() Cell {
	if that == RoleHost {
		return O
	}
	return X
}

func (that Role) String() string {
	if that == RoleHost {
		return "host"
	}
	return "guest"
}
