package usecase

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-duel/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// counterValue reads tictactoe_<name>{...="label"} from the registry; a missing series reads as 0.
func counterValue(t *testing.T, gameMetrics *metrics.Metrics, name, label string) float64 {
	t.Helper()

	families, err := gameMetrics.Registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "tictactoe_"+name {
			continue
		}

		for _, metric := range family.GetMetric() {
			if hasLabelValue(metric, label) {
				return metric.GetCounter().GetValue()
			}
		}
	}

	return 0
}

func hasLabelValue(metric *dto.Metric, value string) bool {
	for _, pair := range metric.GetLabel() {
		if pair.GetValue() == value {
			return true
		}
	}
	return false
}

type fakePresenter struct {
	mu sync.Mutex

	board        [entity.BoardSize][entity.BoardSize]entity.Cell
	statuses     []string
	terminal     string
	errMsg       string
	inputEnabled bool
	roleEnabled  bool
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{roleEnabled: true}
}

func (that *fakePresenter) RenderCell(row, col int, marker entity.Cell) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.board[row][col] = marker
}

func (that *fakePresenter) RenderStatus(text string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.statuses = append(that.statuses, text)
}

func (that *fakePresenter) RenderTerminal(message string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.terminal = message
}

func (that *fakePresenter) RenderError(message string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.errMsg = message
}

func (that *fakePresenter) SetInputEnabled(enabled bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.inputEnabled = enabled
}

func (that *fakePresenter) SetRoleSelectionEnabled(enabled bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.roleEnabled = enabled
}

func (that *fakePresenter) Board() [entity.BoardSize][entity.BoardSize]entity.Cell {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.board
}

func (that *fakePresenter) Filled() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	filled := 0
	for _, row := range that.board {
		for _, cell := range row {
			if cell != entity.Empty {
				filled++
			}
		}
	}

	return filled
}

func (that *fakePresenter) Status() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.statuses) == 0 {
		return ""
	}

	return that.statuses[len(that.statuses)-1]
}

func (that *fakePresenter) Statuses() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.statuses...)
}

func (that *fakePresenter) Terminal() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.terminal
}

func (that *fakePresenter) LastError() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.errMsg
}

func (that *fakePresenter) InputEnabled() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.inputEnabled
}

func (that *fakePresenter) RoleEnabled() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.roleEnabled
}

type received struct {
	move entity.Move
	err  error
}

// fakeChannel is a move channel whose inbound side is driven by the test.
type fakeChannel struct {
	incoming chan received
	sendErr  error

	mu   sync.Mutex
	sent []entity.Move

	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		incoming: make(chan received, 9),
		closed:   make(chan struct{}),
	}
}

func (that *fakeChannel) Send(move entity.Move) error {
	if that.sendErr != nil {
		return that.sendErr
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.sent = append(that.sent, move)

	return nil
}

func (that *fakeChannel) Receive() (entity.Move, error) {
	select {
	case <-that.closed:
		return entity.Move{}, fmt.Errorf("%w: channel closed", apperror.ErrConnectionLost)
	case next := <-that.incoming:
		return next.move, next.err
	}
}

func (that *fakeChannel) Close() error {
	that.closeOnce.Do(func() {
		close(that.closed)
	})
	return nil
}

func (that *fakeChannel) Sent() []entity.Move {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]entity.Move(nil), that.sent...)
}

func (that *fakeChannel) IsClosed() bool {
	select {
	case <-that.closed:
		return true
	default:
		return false
	}
}
