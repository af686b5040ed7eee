package peer

import (
	"fmt"
	"net"
	"regexp"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
)

const (
	minPort = 1
	maxPort = 65535
)

var (
	portPattern    = regexp.MustCompile(`^\d{1,5}$`)
	addressPattern = regexp.MustCompile(`^(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}):(\d{1,5})$`)

	ErrPortOutOfRange = fmt.Errorf("%w: port must be between %d and %d", apperror.ErrInvalidInputFormat, minPort, maxPort)
)

// Address is a validated Guest dial target.
type Address struct {
	Host string
	Port int
}

func (that Address) String() string {
	return net.JoinHostPort(that.Host, strconv.Itoa(that.Port))
}

// ParsePort validates a Host port string.
func ParsePort(text string) (int, error) {
	if !portPattern.MatchString(text) {
		return 0, fmt.Errorf("%w: port %q", apperror.ErrInvalidInputFormat, text)
	}

	port, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: port %q", apperror.ErrInvalidInputFormat, text)
	}

	if port < minPort || port > maxPort {
		return 0, ErrPortOutOfRange
	}

	return port, nil
}

// ParseAddress validates a Guest target of the form <IPv4>:<port>.
func ParseAddress(text string) (Address, error) {
	matches := addressPattern.FindStringSubmatch(text)
	if matches == nil {
		return Address{}, fmt.Errorf("%w: address %q", apperror.ErrInvalidInputFormat, text)
	}

	if ip := net.ParseIP(matches[1]); ip == nil || ip.To4() == nil {
		return Address{}, fmt.Errorf("%w: ip %q", apperror.ErrInvalidInputFormat, matches[1])
	}

	port, err := ParsePort(matches[2])
	if err != nil {
		return Address{}, err
	}

	return Address{Host: matches[1], Port: port}, nil
}
