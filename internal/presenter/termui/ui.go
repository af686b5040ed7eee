package termui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

const (
	title      = "Tic-Tac-Toe"
	queueDepth = 64

	colorText  = termbox.ColorDefault
	colorError = termbox.ColorRed
	colorWin   = termbox.ColorGreen
	colorHint  = termbox.ColorCyan
)

// Handler receives user intents.
type Handler interface {
	HostGame(port string)
	JoinGame(address string)
	SelectCell(row, col int)
}

// Defaults pre-fill the role selection fields.
type Defaults struct {
	Port    string
	Address string
}

// UI is a termbox screen. Render calls from any goroutine are queued and
// applied by Run in the order they were made.
type UI struct {
	logger *slog.Logger
	model  *model

	events   chan func(*model)
	quit     chan struct{}
	quitOnce sync.Once
}

func New(logger *slog.Logger, defaults Defaults) *UI {
	return &UI{
		logger: logger.With("component", "termui"),
		model:  newModel(defaults),
		events: make(chan func(*model), queueDepth),
		quit:   make(chan struct{}),
	}
}

func (that *UI) RenderCell(row, col int, marker entity.Cell) {
	that.post(func(m *model) {
		m.board[row][col] = marker
	})
}

func (that *UI) RenderStatus(text string) {
	that.post(func(m *model) {
		m.status = text
	})
}

func (that *UI) RenderTerminal(message string) {
	that.post(func(m *model) {
		m.setTerminal(message)
	})
}

func (that *UI) RenderError(message string) {
	that.post(func(m *model) {
		m.setError(message)
	})
}

func (that *UI) SetInputEnabled(enabled bool) {
	that.post(func(m *model) {
		m.setInputEnabled(enabled)
	})
}

func (that *UI) SetRoleSelectionEnabled(enabled bool) {
	that.post(func(m *model) {
		m.roleEnabled = enabled
	})
}

// post blocks while the queue is full. Once the screen is gone updates are discarded.
func (that *UI) post(update func(*model)) {
	select {
	case that.events <- update:
	case <-that.quit:
	}
}

// applyPending applies every queued update without waiting.
func (that *UI) applyPending() {
	for {
		select {
		case update := <-that.events:
			update(that.model)
		default:
			return
		}
	}
}

func (that *UI) stop() {
	that.quitOnce.Do(func() {
		close(that.quit)
	})
}

// Run owns the terminal until the user quits or ctx is done.
func (that *UI) Run(ctx context.Context, handler Handler) error {
	log := that.logger.With("method", "Run")

	if err := termbox.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer termbox.Close()

	keys := make(chan termbox.Event)
	go that.pollEvents(keys)

	defer func() {
		that.stop()
		termbox.Interrupt()
	}()

	that.draw()

	for {
		select {
		case <-ctx.Done():
			log.Info("screen closed", "reason", ctx.Err())
			return nil

		case update := <-that.events:
			update(that.model)
			that.applyPending()
			that.draw()

		case ev := <-keys:
			switch ev.Type {
			case termbox.EventError:
				return fmt.Errorf("terminal error: %w", ev.Err)
			case termbox.EventResize:
				that.draw()
			case termbox.EventKey:
				if quit := that.dispatch(handler, that.model.handleKey(ev)); quit {
					log.Info("user quit")
					return nil
				}
				that.draw()
			}
		}
	}
}

// pollEvents returns only on EventInterrupt so that termbox.Interrupt never blocks.
func (that *UI) pollEvents(keys chan<- termbox.Event) {
	for {
		ev := termbox.PollEvent()
		if ev.Type == termbox.EventInterrupt {
			return
		}

		select {
		case keys <- ev:
		case <-that.quit:
		}
	}
}

func (that *UI) dispatch(handler Handler, act action) bool {
	switch act.kind {
	case actionQuit:
		return true
	case actionHost:
		that.logger.Debug("host requested", "port", act.text)
		go handler.HostGame(act.text)
	case actionJoin:
		that.logger.Debug("join requested", "address", act.text)
		go handler.JoinGame(act.text)
	case actionSelect:
		handler.SelectCell(act.row, act.col)
	case actionNone:
	}

	return false
}

func (that *UI) draw() {
	m := that.model

	_ = termbox.Clear(colorText, termbox.ColorDefault)

	printText(2, 1, colorText|termbox.AttrBold, title)
	printText(2, 3, colorText, m.status)

	printField(2, 5, "Host port:     ", m.port, m.roleEnabled && m.focus == fieldPort)
	printField(2, 6, "Guest address: ", m.address, m.roleEnabled && m.focus == fieldAddress)

	drawBoard(m, 4, 8)

	printText(2, 14, colorError, m.errMsg)
	printText(2, 15, colorWin|termbox.AttrBold, m.terminal)
	printText(2, 17, colorHint, hint(m))

	_ = termbox.Flush()
}

func drawBoard(m *model, x, y int) {
	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			text := " " + m.board[row][col].String() + " "
			if m.board[row][col] == entity.Empty {
				text = "   "
			}

			attr := colorText
			if m.inputEnabled && row == m.cursorRow && col == m.cursorCol {
				attr |= termbox.AttrReverse
			}

			printText(x+col*4, y+row*2, attr, text)
			if col < entity.BoardSize-1 {
				printText(x+col*4+3, y+row*2, colorText, "|")
			}
		}

		if row < entity.BoardSize-1 {
			printText(x, y+row*2+1, colorText, "---+---+---")
		}
	}
}

func hint(m *model) string {
	switch {
	case m.finished:
		return "Press any key to exit"
	case m.roleEnabled:
		return "Tab: switch field  Enter: host on port / join address  Esc: quit"
	case m.inputEnabled:
		return "Arrows + Enter or 1-9: place marker  Esc: quit"
	default:
		return "Esc: quit"
	}
}

func printField(x, y int, label, value string, focused bool) {
	printText(x, y, colorText, label)

	attr := colorText | termbox.AttrUnderline
	if focused {
		attr |= termbox.AttrReverse
	}

	padded := value
	for runewidth.StringWidth(padded) < maxFieldLength {
		padded += " "
	}

	printText(x+runewidth.StringWidth(label), y, attr, padded)
}

func printText(x, y int, fg termbox.Attribute, text string) {
	for _, r := range text {
		termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		x += runewidth.RuneWidth(r)
	}
}
