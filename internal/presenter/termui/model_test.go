package termui

import (
	"io"
	"log/slog"
	"testing"

	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

func key(k termbox.Key) termbox.Event {
	return termbox.Event{Type: termbox.EventKey, Key: k}
}

func char(ch rune) termbox.Event {
	return termbox.Event{Type: termbox.EventKey, Ch: ch}
}

func typeText(m *model, text string) {
	for _, ch := range text {
		m.handleKey(char(ch))
	}
}

func TestModel_RoleSelection(t *testing.T) {
	t.Run("Enter on the port field hosts", func(t *testing.T) {
		// Given: the default port pre-filled
		m := newModel(Defaults{Port: "50"})

		// When: the user edits the port and presses Enter
		typeText(m, "00x")
		m.handleKey(key(termbox.KeyBackspace2))
		act := m.handleKey(key(termbox.KeyEnter))

		// Then: hosting is requested with the typed text
		assert.Equal(t, action{kind: actionHost, text: "5000"}, act)
	})

	t.Run("Tab switches to the address field", func(t *testing.T) {
		m := newModel(Defaults{})

		m.handleKey(key(termbox.KeyTab))
		typeText(m, "127.0.0.1:5000")
		act := m.handleKey(key(termbox.KeyEnter))

		assert.Equal(t, action{kind: actionJoin, text: "127.0.0.1:5000"}, act)
		assert.Empty(t, m.port)
	})

	t.Run("Field length is bounded", func(t *testing.T) {
		m := newModel(Defaults{})

		typeText(m, "1234567890123456789012345")

		assert.Len(t, m.port, maxFieldLength)
	})

	t.Run("Board keys are ignored while choosing a role", func(t *testing.T) {
		m := newModel(Defaults{})

		act := m.handleKey(key(termbox.KeySpace))

		assert.Equal(t, actionNone, act.kind)
	})
}

func TestModel_CellSelection(t *testing.T) {
	newPlaying := func() *model {
		m := newModel(Defaults{})
		m.roleEnabled = false
		m.setInputEnabled(true)
		return m
	}

	t.Run("Arrows move the cursor and Enter selects", func(t *testing.T) {
		m := newPlaying()

		m.handleKey(key(termbox.KeyArrowUp))
		m.handleKey(key(termbox.KeyArrowUp))
		m.handleKey(key(termbox.KeyArrowLeft))
		m.handleKey(key(termbox.KeyArrowRight))
		m.handleKey(key(termbox.KeyArrowRight))
		m.handleKey(key(termbox.KeyArrowRight))
		act := m.handleKey(key(termbox.KeyEnter))

		assert.Equal(t, action{kind: actionSelect, row: 0, col: 2}, act)
	})

	t.Run("Digits map to cells row by row", func(t *testing.T) {
		m := newPlaying()

		assert.Equal(t, action{kind: actionSelect, row: 0, col: 0}, m.handleKey(char('1')))
		assert.Equal(t, action{kind: actionSelect, row: 1, col: 2}, m.handleKey(char('6')))
		assert.Equal(t, action{kind: actionSelect, row: 2, col: 2}, m.handleKey(char('9')))
		assert.Equal(t, actionNone, m.handleKey(char('0')).kind)
	})

	t.Run("Nothing is selected during the opponent's turn", func(t *testing.T) {
		m := newPlaying()
		m.setInputEnabled(false)

		assert.Equal(t, actionNone, m.handleKey(char('5')).kind)
		assert.Equal(t, actionNone, m.handleKey(key(termbox.KeyEnter)).kind)
	})
}

func TestModel_Quit(t *testing.T) {
	t.Run("Esc and Ctrl+C always quit", func(t *testing.T) {
		m := newModel(Defaults{})

		assert.Equal(t, actionQuit, m.handleKey(key(termbox.KeyEsc)).kind)
		assert.Equal(t, actionQuit, m.handleKey(key(termbox.KeyCtrlC)).kind)
	})

	t.Run("Any key quits after the result", func(t *testing.T) {
		m := newModel(Defaults{})
		m.setInputEnabled(false)
		m.setTerminal("You win.")

		assert.Equal(t, actionQuit, m.handleKey(char('q')).kind)
	})

	t.Run("Any key quits after a session error", func(t *testing.T) {
		m := newModel(Defaults{})
		m.roleEnabled = false
		m.setInputEnabled(false)
		m.setError("Lost connection to opponent")

		assert.True(t, m.finished)
		assert.Equal(t, actionQuit, m.handleKey(char('5')).kind)
	})

	t.Run("A handshake error keeps role selection open", func(t *testing.T) {
		m := newModel(Defaults{})
		m.setError("Invalid IP.")

		assert.False(t, m.finished)
		assert.Equal(t, actionNone, m.handleKey(char('1')).kind)
	})
}

func TestUI_RenderQueue(t *testing.T) {
	// Given: a screen that is not running yet
	ui := New(slog.New(slog.NewTextHandler(io.Discard, nil)), Defaults{Port: "5000"})

	// When: a handshake error is followed by a game
	ui.RenderError("Failed to connect to 1.2.3.4:5000")
	ui.SetRoleSelectionEnabled(false)
	ui.RenderStatus("Turn 1 - Your turn")
	ui.SetInputEnabled(true)
	ui.RenderCell(1, 1, entity.O)
	ui.RenderStatus("Turn 2 - Opponent's turn")
	ui.SetInputEnabled(false)

	ui.applyPending()

	// Then: every update is applied in order
	m := ui.model
	require.Equal(t, "Turn 2 - Opponent's turn", m.status)
	assert.Equal(t, entity.O, m.board[1][1])
	assert.Empty(t, m.errMsg)
	assert.False(t, m.roleEnabled)
	assert.False(t, m.inputEnabled)
	assert.False(t, m.finished)
	assert.Equal(t, "5000", m.port)
}

func TestUI_PostAfterStop(t *testing.T) {
	ui := New(slog.New(slog.NewTextHandler(io.Discard, nil)), Defaults{})
	ui.stop()

	for i := 0; i < queueDepth+1; i++ {
		ui.RenderStatus("ignored")
	}

	assert.Equal(t, "", ui.model.status)
}
