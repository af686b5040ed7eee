package termui

import (
	"unicode"

	"github.com/nsf/termbox-go"

	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

const maxFieldLength = 21

type field int

const (
	fieldPort field = iota
	fieldAddress
)

type actionKind int

const (
	actionNone actionKind = iota
	actionHost
	actionJoin
	actionSelect
	actionQuit
)

type action struct {
	kind     actionKind
	text     string
	row, col int
}

// model is the screen state. It is touched only by the UI goroutine.
type model struct {
	status   string
	errMsg   string
	terminal string

	port    string
	address string
	focus   field

	roleEnabled  bool
	inputEnabled bool
	started      bool
	finished     bool

	board     [entity.BoardSize][entity.BoardSize]entity.Cell
	cursorRow int
	cursorCol int
}

func newModel(defaults Defaults) *model {
	return &model{
		port:        defaults.Port,
		address:     defaults.Address,
		roleEnabled: true,
		cursorRow:   1,
		cursorCol:   1,
	}
}

func (that *model) setInputEnabled(enabled bool) {
	if !that.started {
		that.errMsg = ""
	}

	that.started = true
	that.inputEnabled = enabled
}

func (that *model) setError(message string) {
	that.errMsg = message

	if that.started {
		that.finished = true
	}
}

func (that *model) setTerminal(message string) {
	that.terminal = message
	that.finished = true
}

func (that *model) handleKey(ev termbox.Event) action {
	if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
		return action{kind: actionQuit}
	}

	switch {
	case that.finished:
		return action{kind: actionQuit}
	case that.roleEnabled:
		return that.editRole(ev)
	case that.inputEnabled:
		return that.moveCursor(ev)
	default:
		return action{kind: actionNone}
	}
}

func (that *model) editRole(ev termbox.Event) action {
	switch ev.Key {
	case termbox.KeyTab, termbox.KeyArrowUp, termbox.KeyArrowDown:
		that.focus = 1 - that.focus
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		text := that.focused()
		if len(*text) > 0 {
			*text = (*text)[:len(*text)-1]
		}
	case termbox.KeyEnter:
		if that.focus == fieldPort {
			return action{kind: actionHost, text: that.port}
		}
		return action{kind: actionJoin, text: that.address}
	default:
		if ev.Ch != 0 && ev.Ch < unicode.MaxASCII && unicode.IsPrint(ev.Ch) {
			text := that.focused()
			if len(*text) < maxFieldLength {
				*text += string(ev.Ch)
			}
		}
	}

	return action{kind: actionNone}
}

func (that *model) focused() *string {
	if that.focus == fieldPort {
		return &that.port
	}
	return &that.address
}

func (that *model) moveCursor(ev termbox.Event) action {
	last := entity.BoardSize - 1

	switch ev.Key {
	case termbox.KeyArrowUp:
		that.cursorRow = max(that.cursorRow-1, 0)
	case termbox.KeyArrowDown:
		that.cursorRow = min(that.cursorRow+1, last)
	case termbox.KeyArrowLeft:
		that.cursorCol = max(that.cursorCol-1, 0)
	case termbox.KeyArrowRight:
		that.cursorCol = min(that.cursorCol+1, last)
	case termbox.KeyEnter, termbox.KeySpace:
		return action{kind: actionSelect, row: that.cursorRow, col: that.cursorCol}
	default:
		if ev.Ch >= '1' && ev.Ch <= '9' {
			index := int(ev.Ch - '1')
			that.cursorRow, that.cursorCol = index/entity.BoardSize, index%entity.BoardSize
			return action{kind: actionSelect, row: that.cursorRow, col: that.cursorCol}
		}
	}

	return action{kind: actionNone}
}
