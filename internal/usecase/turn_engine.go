package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-duel/internal/tictactoe"
)

type State int

const (
	StateAwaitingConnection State = iota
	StateLocalTurn
	StateRemoteTurn
	StateTerminal
)

func (that State) String() string {
	switch that {
	case StateLocalTurn:
		return "local_turn"
	case StateRemoteTurn:
		return "remote_turn"
	case StateTerminal:
		return "terminal"
	default:
		return "awaiting_connection"
	}
}

// presenter renders engine events. Calls arrive from engine goroutines in the
// order the transitions happened; the implementation must keep that order.
type presenter interface {
	RenderCell(row, col int, marker entity.Cell)
	RenderStatus(text string)
	RenderTerminal(message string)
	RenderError(message string)
	SetInputEnabled(enabled bool)
	SetRoleSelectionEnabled(enabled bool)
}

type moveChannel interface {
	Send(move entity.Move) error
	Receive() (entity.Move, error)
	Close() error
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.SessionSnapshot) error
	DeleteByID(ctx context.Context, id string) error
}

// Engine is the authoritative turn state machine of one session. Board and
// session fields are written only by the Run goroutine; the state check in
// SelectCell is the gate that keeps local input out of the remote turn.
type Engine struct {
	logger      *slog.Logger
	session     *tictactoe.Session
	channel     moveChannel
	presenter   presenter
	sessionRepo sessionRepo
	metrics     *metrics.Metrics

	mu    sync.Mutex
	state State
	cells chan entity.Move
}

func NewEngine(
	logger *slog.Logger,
	role entity.Role,
	channel moveChannel,
	presenter presenter,
	sessionRepo sessionRepo,
	metrics *metrics.Metrics,
) *Engine {
	session := tictactoe.NewSession(role)

	return &Engine{
		logger:      logger.With("component", "turn-engine", "session_id", session.ID, "role", role.String()),
		session:     session,
		channel:     channel,
		presenter:   presenter,
		sessionRepo: sessionRepo,
		metrics:     metrics,

		state: StateAwaitingConnection,
		cells: make(chan entity.Move, 1),
	}
}

func (that *Engine) SessionID() string {
	return that.session.ID
}

func (that *Engine) State() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

// SelectCell forwards a local choice. Outside the local turn it is a silent no-op.
func (that *Engine) SelectCell(row, col int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state != StateLocalTurn {
		return
	}

	select {
	case that.cells <- entity.Move{Row: row, Col: col}:
	default:
	}
}

// setState switches state and drops any choice queued for the previous turn.
func (that *Engine) setState(state State) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state = state

	for {
		select {
		case <-that.cells:
		default:
			return
		}
	}
}

// Run plays the session until a terminal outcome or a fatal error. The channel
// is closed when Run returns; cancelling ctx closes it early, which unblocks a
// pending Receive.
func (that *Engine) Run(ctx context.Context) (entity.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(ctx, func() {
		_ = that.channel.Close()
	})
	defer func() {
		if stop() {
			_ = that.channel.Close()
		}
	}()

	that.start(ctx)

	for {
		var err error

		switch that.State() {
		case StateLocalTurn:
			err = that.awaitLocalMove(ctx)
		case StateRemoteTurn:
			err = that.awaitRemoteMove(ctx)
		default:
			return that.finish(ctx), nil
		}

		if err != nil {
			return that.session.Outcome, that.fail(ctx, err)
		}
	}
}

func (that *Engine) start(ctx context.Context) {
	that.logger.Info("session started")
	that.metrics.SessionStarted(that.session.Role.String())
	that.saveSnapshot(ctx)
	that.continueTurn()
}

func (that *Engine) awaitLocalMove(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case move := <-that.cells:
		return that.applyLocalMove(ctx, move)
	}
}

func (that *Engine) applyLocalMove(ctx context.Context, move entity.Move) error {
	log := that.logger.With("method", "applyLocalMove", "row", move.Row, "col", move.Col)

	marker := that.session.Marker()

	outcome, err := that.session.MakeTurn(marker, move)
	if errors.Is(err, apperror.ErrProtocolViolation) {
		return err
	}

	if err != nil {
		log.Debug("local move ignored", "error", err)
		return nil
	}

	if err = that.channel.Send(move); err != nil {
		return fmt.Errorf("failed to send move: %w", err)
	}

	that.metrics.MoveApplied(metrics.SourceLocal)
	that.presenter.RenderCell(move.Row, move.Col, marker)
	that.advance(ctx, outcome)

	return nil
}

func (that *Engine) awaitRemoteMove(ctx context.Context) error {
	move, err := that.channel.Receive()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to receive move: %w", err)
	}

	if err = move.Validate(); err != nil {
		return fmt.Errorf("%w: remote move: %w", apperror.ErrProtocolViolation, err)
	}

	marker := that.session.OpponentMarker()

	outcome, err := that.session.MakeTurn(marker, move)
	if err != nil {
		return fmt.Errorf("%w: remote move (%d, %d): %w", apperror.ErrProtocolViolation, move.Row, move.Col, err)
	}

	that.metrics.MoveApplied(metrics.SourceRemote)
	that.presenter.RenderCell(move.Row, move.Col, marker)
	that.advance(ctx, outcome)

	return nil
}

func (that *Engine) advance(ctx context.Context, outcome entity.Outcome) {
	that.saveSnapshot(ctx)

	if outcome.IsTerminal() {
		that.setState(StateTerminal)
		return
	}

	that.continueTurn()
}

func (that *Engine) continueTurn() {
	local := that.session.IsLocalTurn()

	if local {
		that.setState(StateLocalTurn)
	} else {
		that.setState(StateRemoteTurn)
	}

	that.logger.Debug("turn started", "turn", that.session.Turn, "mover", that.session.Mover.String())
	that.presenter.RenderStatus(turnStatus(that.session.Turn, local))
	that.presenter.SetInputEnabled(local)
}

func (that *Engine) finish(ctx context.Context) entity.Outcome {
	outcome := that.session.Outcome
	marker := that.session.Marker()

	message, result := MessageDraw, metrics.ResultDraw
	if outcome.State == entity.Win {
		message, result = MessageLoss, metrics.ResultLoss
		if that.session.IsWonBy(marker) {
			message, result = MessageWin, metrics.ResultWin
		}
	}

	that.presenter.SetInputEnabled(false)
	that.presenter.RenderStatus(StatusGameOver)
	that.presenter.RenderTerminal(message)

	that.metrics.SessionFinished(result)
	that.deleteSnapshot(ctx)

	that.logger.Info("session finished", "outcome", outcome.String(), "turn", that.session.Turn)

	return outcome
}

func (that *Engine) fail(ctx context.Context, err error) error {
	log := that.logger.With("method", "fail", "turn", that.session.Turn)

	that.setState(StateTerminal)
	that.presenter.SetInputEnabled(false)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Info("session canceled")
		that.metrics.SessionFinished(metrics.ResultCanceled)
	case errors.Is(err, apperror.ErrProtocolViolation):
		log.Error("session ended by protocol violation", "error", err)
		that.metrics.SessionFinished(metrics.ResultProtocolViolation)
		that.presenter.RenderStatus(StatusGameOver)
		that.presenter.RenderError(ErrorMessage(err))
	default:
		log.Error("session ended by connection loss", "error", err)
		that.metrics.SessionFinished(metrics.ResultConnectionLost)
		that.presenter.RenderStatus(StatusGameOver)
		that.presenter.RenderError(ErrorMessage(err))
	}

	that.deleteSnapshot(ctx)

	return err
}

func (that *Engine) saveSnapshot(ctx context.Context) {
	if err := that.sessionRepo.CreateOrUpdate(ctx, that.session.Snapshot()); err != nil {
		that.logger.Warn("failed to save session snapshot", "error", err)
	}
}

func (that *Engine) deleteSnapshot(ctx context.Context) {
	if err := that.sessionRepo.DeleteByID(context.WithoutCancel(ctx), that.session.ID); err != nil {
		that.logger.Warn("failed to delete session snapshot", "error", err)
	}
}
