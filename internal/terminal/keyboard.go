package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/term"
	"github.com/retroenv/retrochip8/internal/keymap"
)

// ReleaseDelay is the time after the last press of a key until it is
// reported as released. Terminals only deliver key presses and repeats.
const ReleaseDelay = time.Second / 5

const escape = 0x1b

// Keypad receives key state changes.
type Keypad interface {
	SetKeyDown(key uint8, down bool)
}

// Keyboard translates terminal input to keypad state.
type Keyboard struct {
	keypad  Keypad
	keys    keymap.Keymap
	delay   time.Duration
	control func(r rune) bool

	mu     sync.Mutex
	timers map[uint8]*time.Timer
}

// NewKeyboard returns a keyboard feeding the keypad. Runes that are not
// part of the keymap are passed to control, returning false from it ends
// the input loop.
func NewKeyboard(keypad Keypad, keys keymap.Keymap, control func(r rune) bool) *Keyboard {
	return &Keyboard{
		keypad:  keypad,
		keys:    keys,
		delay:   ReleaseDelay,
		control: control,
		timers:  map[uint8]*time.Timer{},
	}
}

// Press handles a single input rune. It returns false if the input loop
// should end.
func (k *Keyboard) Press(r rune) bool {
	key, ok := k.keys.Lookup(r)
	if !ok {
		if k.control != nil {
			return k.control(r)
		}
		return true
	}

	// key state only changes under the lock, a due release must not
	// overwrite a newer press
	k.mu.Lock()
	defer k.mu.Unlock()

	k.keypad.SetKeyDown(key, true)
	if timer, ok := k.timers[key]; ok && timer.Stop() {
		timer.Reset(k.delay)
		return true
	}

	var timer *time.Timer
	timer = time.AfterFunc(k.delay, func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		if k.timers[key] != timer {
			return
		}
		delete(k.timers, key)
		k.keypad.SetKeyDown(key, false)
	})
	k.timers[key] = timer
	return true
}

// Run reads runes from r until the context is canceled, the input ends or
// the control handler asks to stop.
func (k *Keyboard) Run(ctx context.Context, r io.Reader) error {
	defer k.releaseAll()

	reader := bufio.NewReader(r)
	for ctx.Err() == nil {
		ch, _, err := reader.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading keyboard input: %w", err)
		}
		if ch == escape {
			skipEscapeSequence(reader)
			continue
		}
		if !k.Press(ch) {
			return nil
		}
	}
	return nil
}

// skipEscapeSequence drops the rest of a CSI or SS3 sequence as sent by
// arrow and function keys. A lone escape is ignored.
func skipEscapeSequence(reader *bufio.Reader) {
	if reader.Buffered() == 0 {
		return
	}
	next, err := reader.Peek(1)
	if err != nil || (next[0] != '[' && next[0] != 'O') {
		return
	}
	_, _ = reader.ReadByte()

	for reader.Buffered() > 0 {
		b, err := reader.ReadByte()
		if err != nil || (b >= 0x40 && b <= 0x7E) {
			return
		}
	}
}

func (k *Keyboard) releaseAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, timer := range k.timers {
		timer.Stop()
		k.keypad.SetKeyDown(key, false)
		delete(k.timers, key)
	}
}

// TTY is a terminal in raw mode.
type TTY struct {
	*term.Term
}

// OpenTTY opens the controlling terminal in raw mode.
func OpenTTY() (*TTY, error) {
	t, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}
	return &TTY{Term: t}, nil
}

// Close restores the terminal mode and closes it.
func (t *TTY) Close() error {
	restoreErr := t.Term.Restore()
	if err := t.Term.Close(); err != nil {
		return fmt.Errorf("closing terminal: %w", err)
	}
	if restoreErr != nil {
		return fmt.Errorf("restoring terminal: %w", restoreErr)
	}
	return nil
}
