package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-duel/internal/transport/peer"
)

// GameManager runs role selection and connection establishment, then hands
// the established channel to a single Engine. One manager plays one game.
type GameManager struct {
	logger      *slog.Logger
	presenter   presenter
	sessionRepo sessionRepo
	metrics     *metrics.Metrics
	dialTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	busy     bool
	listener *peer.Listener
	engine   *Engine

	doneOnce sync.Once
	done     chan struct{}
	outcome  entity.Outcome
	err      error
}

func NewGameManager(
	logger *slog.Logger,
	presenter presenter,
	sessionRepo sessionRepo,
	metrics *metrics.Metrics,
	dialTimeout time.Duration,
) *GameManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &GameManager{
		logger:      logger.With("component", "game-manager"),
		presenter:   presenter,
		sessionRepo: sessionRepo,
		metrics:     metrics,
		dialTimeout: dialTimeout,

		ctx:    ctx,
		cancel: cancel,

		done:    make(chan struct{}),
		outcome: entity.InProgressOutcome(),
	}
}

// HostGame binds portText and waits for one opponent in the background.
func (that *GameManager) HostGame(portText string) {
	log := that.logger.With("method", "HostGame", "port", portText)

	if !that.reserve() {
		log.Warn("role request ignored", "error", apperror.ErrSessionInProgress)
		return
	}

	port, err := peer.ParsePort(portText)
	if err != nil {
		log.Info("invalid port", "error", err)
		that.release()
		that.presenter.RenderError(portErrorMessage(err))
		return
	}

	listener, err := peer.Listen(that.ctx, that.logger, port)
	if err != nil {
		log.Error("failed to bind", "error", err)
		that.release()
		that.presenter.RenderError(fmt.Sprintf("Failed to host on port %d", port))
		return
	}

	that.mu.Lock()
	that.listener = listener
	that.mu.Unlock()

	that.presenter.SetRoleSelectionEnabled(false)
	that.presenter.RenderStatus(StatusWaiting)

	go that.acceptOpponent(listener, port)
}

func (that *GameManager) acceptOpponent(listener *peer.Listener, port int) {
	log := that.logger.With("method", "acceptOpponent", "port", port)

	channel, err := listener.Accept(that.ctx)

	that.mu.Lock()
	that.listener = nil
	that.mu.Unlock()

	if err != nil {
		if that.ctx.Err() != nil {
			log.Info("stopped waiting for opponent")
			return
		}

		log.Error("failed to accept opponent", "error", err)
		that.presenter.RenderError(fmt.Sprintf("Failed to accept opponent on port %d", port))
		that.returnToRoleSelection()
		return
	}

	log.Info("opponent connected", "remote", channel.RemoteAddr())
	that.presenter.RenderStatus(opponentConnectedStatus(channel.RemoteAddr()))
	that.startSession(entity.RoleHost, channel)
}

// JoinGame validates addressText and dials the host in the background.
func (that *GameManager) JoinGame(addressText string) {
	log := that.logger.With("method", "JoinGame", "address", addressText)

	if !that.reserve() {
		log.Warn("role request ignored", "error", apperror.ErrSessionInProgress)
		return
	}

	address, err := peer.ParseAddress(addressText)
	if err != nil {
		log.Info("invalid address", "error", err)
		that.release()
		that.presenter.RenderError("Invalid IP.")
		return
	}

	that.presenter.SetRoleSelectionEnabled(false)
	that.presenter.RenderStatus(connectingStatus(address))

	go that.dialHost(address)
}

func (that *GameManager) dialHost(address peer.Address) {
	log := that.logger.With("method", "dialHost", "address", address.String())

	channel, err := peer.Dial(that.ctx, that.logger, address, that.dialTimeout)
	if err != nil {
		if that.ctx.Err() != nil {
			log.Info("stopped connecting")
			return
		}

		log.Error("failed to connect", "error", err)
		that.presenter.RenderError(fmt.Sprintf("Failed to connect to %s", address))
		that.returnToRoleSelection()
		return
	}

	log.Info("connected to host")
	that.presenter.RenderStatus(connectedStatus(address))
	that.startSession(entity.RoleGuest, channel)
}

func (that *GameManager) startSession(role entity.Role, channel moveChannel) {
	engine := NewEngine(that.logger, role, channel, that.presenter, that.sessionRepo, that.metrics)

	that.mu.Lock()
	that.engine = engine
	that.mu.Unlock()

	go func() {
		outcome, err := engine.Run(that.ctx)
		that.finish(outcome, err)
	}()
}

// SelectCell forwards a cell choice to the running session, if any.
func (that *GameManager) SelectCell(row, col int) {
	that.mu.Lock()
	engine := that.engine
	that.mu.Unlock()

	if engine == nil {
		return
	}

	engine.SelectCell(row, col)
}

// State is the state of the running session, or AwaitingConnection before the handshake.
func (that *GameManager) State() State {
	that.mu.Lock()
	engine := that.engine
	that.mu.Unlock()

	if engine == nil {
		return StateAwaitingConnection
	}

	return engine.State()
}

// Done is closed when the session has ended or the manager was closed.
func (that *GameManager) Done() <-chan struct{} {
	return that.done
}

// Wait blocks until the session ends and returns its outcome or fatal error.
func (that *GameManager) Wait(ctx context.Context) (entity.Outcome, error) {
	select {
	case <-ctx.Done():
		return entity.InProgressOutcome(), ctx.Err()
	case <-that.done:
		return that.outcome, that.err
	}
}

// Close stops any pending handshake and the running session.
func (that *GameManager) Close() {
	that.cancel()

	that.mu.Lock()
	listener := that.listener
	started := that.engine != nil
	that.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}

	if !started {
		that.finish(entity.InProgressOutcome(), context.Canceled)
	}
}

func (that *GameManager) finish(outcome entity.Outcome, err error) {
	that.doneOnce.Do(func() {
		that.outcome = outcome
		that.err = err
		close(that.done)
	})
}

func (that *GameManager) reserve() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.busy || that.ctx.Err() != nil {
		return false
	}

	that.busy = true

	return true
}

func (that *GameManager) release() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.busy = false
}

func (that *GameManager) returnToRoleSelection() {
	that.release()
	that.presenter.RenderStatus(StatusChooseRole)
	that.presenter.SetRoleSelectionEnabled(true)
}
