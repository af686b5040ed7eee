package peer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
)

// Listener accepts exactly one opponent and then stops listening.
type Listener struct {
	logger   *slog.Logger
	listener net.Listener
}

// Listen binds a TCP endpoint on port. Port 0 picks a free port.
func Listen(ctx context.Context, logger *slog.Logger, port int) (*Listener, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return nil, fmt.Errorf("%w: port %d: %w", apperror.ErrBindFailure, port, err)
	}

	return &Listener{
		logger:   logger.With("component", "peer-listener"),
		listener: listener,
	}, nil
}

func (that *Listener) Port() int {
	addr, ok := that.listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0
	}
	return addr.Port
}

// Accept blocks until the first inbound connection arrives or ctx is done.
// The listening endpoint is closed either way, so later attempts are refused.
func (that *Listener) Accept(ctx context.Context) (*Channel, error) {
	log := that.logger.With("method", "Accept", "port", that.Port())

	stop := context.AfterFunc(ctx, func() {
		_ = that.listener.Close()
	})
	defer stop()

	conn, err := that.listener.Accept()

	if closeErr := that.listener.Close(); closeErr != nil && err == nil {
		log.Debug("listener already closed", "error", closeErr)
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("accept canceled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: failed to accept opponent: %w", apperror.ErrBindFailure, err)
	}

	log.Info("opponent connected", "remote", conn.RemoteAddr().String())

	return NewChannel(conn), nil
}

// Close releases the endpoint without accepting anyone.
func (that *Listener) Close() error {
	if err := that.listener.Close(); err != nil {
		return fmt.Errorf("failed to close listener: %w", err)
	}
	return nil
}

// Dial connects to a Host. A zero timeout means no limit beyond ctx.
func Dial(ctx context.Context, logger *slog.Logger, address Address, timeout time.Duration) (*Channel, error) {
	log := logger.With("component", "peer-dialer", "method", "Dial", "address", address.String())

	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", address.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperror.ErrDialFailure, address, err)
	}

	log.Info("connected to host")

	return NewChannel(conn), nil
}
