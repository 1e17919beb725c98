package disasm

import (
	"sync"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// Tracker follows the program counter of a machine through its events so
// the inspector can highlight the current instruction.
type Tracker struct {
	mu       sync.Mutex
	pc       uint16
	executed int
	halted   error
}

// NewTracker returns a tracker positioned at the program start.
func NewTracker() *Tracker {
	return &Tracker{pc: chip8.ProgramStart}
}

// Handle processes a machine event. It is meant to be passed to
// chip8.VM.Subscribe.
func (t *Tracker) Handle(event chip8.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch event.Kind {
	case chip8.EventPC:
		t.pc = event.Address
		t.executed++
		t.halted = nil
	case chip8.EventHalted:
		t.pc = event.Address
		t.halted = event.Err
	case chip8.EventReset, chip8.EventROMLoaded:
		t.pc = chip8.ProgramStart
		t.executed = 0
		t.halted = nil
	}
}

// PC returns the tracked program counter.
func (t *Tracker) PC() uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pc
}

// Changes returns the number of PC changes since the last reset.
func (t *Tracker) Changes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.executed
}

// Halted returns the halt reason of the last halt or nil.
func (t *Tracker) Halted() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.halted
}

// Window returns the listing lines around the tracked PC, before lines ahead
// and after lines following it.
func (t *Tracker) Window(memory []byte, before, after int) []Line {
	pc := int(t.PC()) &^ 1
	start := pc - 2*before
	if start < 0 {
		start = 0
	}
	end := pc + 2*after + 1
	if end > chip8.MaxAddress {
		end = chip8.MaxAddress
	}
	return Listing(memory, uint16(start), uint16(end))
}
