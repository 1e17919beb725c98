// Package terminal renders the CHIP-8 screen to an ANSI terminal and feeds
// keyboard input from a raw mode terminal into the keypad.
package terminal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// ANSI control sequences.
const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// RefreshPeriod is the interval of screen redraws.
const RefreshPeriod = time.Second / 60

// Screen is a display sink that mirrors the framebuffer and renders it
// with half block characters, two pixel rows per text line.
type Screen struct {
	mu     sync.Mutex
	pixels chip8.Framebuffer
	dirty  bool
	status string
}

var _ chip8.DisplaySink = (*Screen)(nil)

// NewScreen returns an empty screen.
func NewScreen() *Screen {
	return &Screen{dirty: true}
}

// SetPixel implements chip8.DisplaySink.
func (s *Screen) SetPixel(x, y int, on bool) {
	if x < 0 || x >= chip8.DisplayWidth || y < 0 || y >= chip8.DisplayHeight {
		return
	}
	s.mu.Lock()
	s.pixels[y][x] = on
	s.dirty = true
	s.mu.Unlock()
}

// Clear implements chip8.DisplaySink.
func (s *Screen) Clear() {
	s.mu.Lock()
	s.pixels = chip8.Framebuffer{}
	s.dirty = true
	s.mu.Unlock()
}

// SetStatus sets the text shown below the screen.
func (s *Screen) SetStatus(status string) {
	s.mu.Lock()
	if s.status != status {
		s.status = status
		s.dirty = true
	}
	s.mu.Unlock()
}

// Render writes the screen to w if it changed since the last render. It
// returns whether anything was written.
func (s *Screen) Render(w io.Writer) (bool, error) {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return false, nil
	}
	pixels := s.pixels
	status := s.status
	s.dirty = false
	s.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(cursorHome)
	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := 0; x < chip8.DisplayWidth; x++ {
			buf.WriteString(block(pixels[y][x], pixels[y+1][x]))
		}
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "%-64s\r\n", status)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return false, fmt.Errorf("writing screen: %w", err)
	}
	return true, nil
}

// Run redraws the screen every period until the context is canceled.
func (s *Screen) Run(ctx context.Context, w io.Writer, period time.Duration) error {
	if _, err := io.WriteString(w, clearScreen+hideCursor); err != nil {
		return fmt.Errorf("preparing terminal: %w", err)
	}
	defer func() { _, _ = io.WriteString(w, showCursor) }()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Render(w); err != nil {
				return err
			}
		}
	}
}

func block(upper, lower bool) string {
	switch {
	case upper && lower:
		return "█"
	case upper:
		return "▀"
	case lower:
		return "▄"
	default:
		return " "
	}
}
