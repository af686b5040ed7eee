package peer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/entity"
)

// MaxRecordSize bounds one line on the wire.
const MaxRecordSize = 256

// Channel carries Move records, one JSON object per line, over an established connection.
// Send and Receive may be used from different goroutines, but each from at most one.
type Channel struct {
	conn    net.Conn
	writer  *bufio.Writer
	encoder *json.Encoder
	scanner *bufio.Scanner

	closeOnce sync.Once
	closeErr  error
}

func NewChannel(conn net.Conn) *Channel {
	writer := bufio.NewWriter(conn)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, MaxRecordSize), MaxRecordSize)

	return &Channel{
		conn:    conn,
		writer:  writer,
		encoder: json.NewEncoder(writer),
		scanner: scanner,
	}
}

// Send writes one move and flushes it immediately.
func (that *Channel) Send(move entity.Move) error {
	if err := that.encoder.Encode(move); err != nil {
		return fmt.Errorf("%w: failed to write move: %w", apperror.ErrConnectionLost, err)
	}

	if err := that.writer.Flush(); err != nil {
		return fmt.Errorf("%w: failed to flush move: %w", apperror.ErrConnectionLost, err)
	}

	return nil
}

// wireMove requires both coordinates to be present.
type wireMove struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

// Receive blocks until one full move arrives or the connection fails.
func (that *Channel) Receive() (entity.Move, error) {
	if !that.scanner.Scan() {
		err := that.scanner.Err()
		switch {
		case errors.Is(err, bufio.ErrTooLong):
			return entity.Move{}, fmt.Errorf("%w: record longer than %d bytes", apperror.ErrProtocolViolation, MaxRecordSize)
		case err == nil:
			return entity.Move{}, fmt.Errorf("%w: peer closed the connection", apperror.ErrConnectionLost)
		default:
			return entity.Move{}, fmt.Errorf("%w: failed to read move: %w", apperror.ErrConnectionLost, err)
		}
	}

	return decodeMove(that.scanner.Bytes())
}

func decodeMove(line []byte) (entity.Move, error) {
	decoder := json.NewDecoder(bytes.NewReader(line))
	decoder.DisallowUnknownFields()

	var record wireMove
	if err := decoder.Decode(&record); err != nil {
		return entity.Move{}, fmt.Errorf("%w: malformed move %q: %w", apperror.ErrProtocolViolation, line, err)
	}

	if decoder.More() {
		return entity.Move{}, fmt.Errorf("%w: trailing data after move %q", apperror.ErrProtocolViolation, line)
	}

	if record.Row == nil || record.Col == nil {
		return entity.Move{}, fmt.Errorf("%w: incomplete move %q", apperror.ErrProtocolViolation, line)
	}

	return entity.Move{Row: *record.Row, Col: *record.Col}, nil
}

func (that *Channel) RemoteAddr() string {
	return that.conn.RemoteAddr().String()
}

// Close is safe to call more than once; a blocked Receive returns ErrConnectionLost.
func (that *Channel) Close() error {
	that.closeOnce.Do(func() {
		that.closeErr = that.conn.Close()
	})

	return that.closeErr
}
