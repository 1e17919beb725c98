// Package session owns a virtual machine for a loaded ROM and controls its
// execution speed, playback state and reloading.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrogolib/log"
)

// Cycle rate limits in Hz.
const (
	DefaultCycle = 500
	MinCycle     = 1
	MaxCycle     = 1000

	DefaultIncrement = 10
	MinIncrement     = 1
	MaxIncrement     = 500
)

// ErrNoROM is returned for operations that require a loaded ROM.
var ErrNoROM = errors.New("no ROM loaded")

// Options configures a session.
type Options struct {
	Display   chip8.DisplaySink
	Audio     chip8.AudioSink
	Cycle     int
	Increment int
	OnHalt    func(error)

	// Machine contains additional machine options, used by tests to
	// inject tickers.
	Machine []chip8.Option
}

// Session controls a single machine.
type Session struct {
	logger  *log.Logger
	loader  *loader.Loader
	vm      *chip8.VM
	tracker *disasm.Tracker
	onHalt  func(error)

	mu        sync.Mutex
	rom       loader.ROM
	loaded    bool
	cycle     int
	increment int
}

// New creates a session with an empty machine.
func New(logger *log.Logger, opts Options) *Session {
	s := &Session{
		logger:    logger,
		loader:    loader.New(logger),
		tracker:   disasm.NewTracker(),
		onHalt:    opts.OnHalt,
		cycle:     clamp(orDefault(opts.Cycle, DefaultCycle), MinCycle, MaxCycle),
		increment: clamp(orDefault(opts.Increment, DefaultIncrement), MinIncrement, MaxIncrement),
	}

	machineOptions := []chip8.Option{
		chip8.WithLogger(logger),
		chip8.WithHaltHandler(s.handleHalt),
	}
	if opts.Display != nil {
		machineOptions = append(machineOptions, chip8.WithDisplay(opts.Display))
	}
	if opts.Audio != nil {
		machineOptions = append(machineOptions, chip8.WithAudio(opts.Audio))
	}
	machineOptions = append(machineOptions, opts.Machine...)

	s.vm = chip8.New(machineOptions...)
	s.vm.Subscribe(s.tracker.Handle)
	return s
}

// VM returns the machine of the session.
func (s *Session) VM() *chip8.VM {
	return s.vm
}

// Tracker returns the program counter tracker of the session.
func (s *Session) Tracker() *disasm.Tracker {
	return s.tracker
}

// ROM returns the loaded ROM and whether one is loaded.
func (s *Session) ROM() (loader.ROM, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rom, s.loaded
}

// LoadFile loads the ROM file at path into the machine.
func (s *Session) LoadFile(path string) error {
	rom, err := s.loader.Load(path)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	return s.Load(rom)
}

// Load resets the machine and loads the ROM into it.
func (s *Session) Load(rom loader.ROM) error {
	s.vm.Reset(rom.Size())
	if err := s.vm.LoadROM(rom.Data); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	s.mu.Lock()
	s.rom = rom
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("ROM loaded", log.String("name", rom.Name), log.Int("size", rom.Size()))
	return nil
}

// Reload resets the machine and loads the current ROM again.
func (s *Session) Reload() error {
	rom, ok := s.ROM()
	if !ok {
		return ErrNoROM
	}
	return s.Load(rom)
}

// Play starts execution at the current cycle rate.
func (s *Session) Play() error {
	if _, ok := s.ROM(); !ok {
		return ErrNoROM
	}
	if err := s.vm.Run(s.Cycle()); err != nil {
		return fmt.Errorf("starting execution: %w", err)
	}
	return nil
}

// Stop stops execution.
func (s *Session) Stop() {
	s.vm.Stop()
}

// Toggle starts a stopped machine or stops a running one. It returns
// whether the machine is running afterwards.
func (s *Session) Toggle() (bool, error) {
	if state, _ := s.vm.State(); state == chip8.Running {
		s.Stop()
		return false, nil
	}
	if err := s.Play(); err != nil {
		return false, err
	}
	return true, nil
}

// Step executes a single instruction.
func (s *Session) Step() (uint16, error) {
	if _, ok := s.ROM(); !ok {
		return 0, ErrNoROM
	}
	return s.vm.Step()
}

// Cycle returns the configured cycle rate in Hz.
func (s *Session) Cycle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle
}

// Increment returns the configured cycle rate increment.
func (s *Session) Increment() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.increment
}

// SetCycle sets the cycle rate clamped to the supported range and returns
// the effective value. A running machine changes its speed immediately.
func (s *Session) SetCycle(hz int) int {
	s.mu.Lock()
	s.cycle = clamp(hz, MinCycle, MaxCycle)
	cycle := s.cycle
	s.mu.Unlock()

	if err := s.vm.ChangeSpeed(cycle); err != nil {
		s.logger.Error("Changing speed failed", log.Err(err))
	}
	return cycle
}

// CycleUp raises the cycle rate by the increment.
func (s *Session) CycleUp() int {
	return s.SetCycle(s.Cycle() + s.Increment())
}

// CycleDown lowers the cycle rate by the increment.
func (s *Session) CycleDown() int {
	return s.SetCycle(s.Cycle() - s.Increment())
}

// SetCycleIncrement sets the increment clamped to the supported range and
// returns the effective value.
func (s *Session) SetCycleIncrement(increment int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increment = clamp(increment, MinIncrement, MaxIncrement)
	return s.increment
}

// Status returns a single line summary of the session.
func (s *Session) Status() string {
	rom, ok := s.ROM()
	name := "no ROM"
	if ok {
		name = rom.Name
	}

	state, err := s.vm.State()
	status := fmt.Sprintf("%s | %s | %d Hz | PC 0x%03X", name, state, s.Cycle(), s.vm.PC())
	if err != nil {
		status += " | " + err.Error()
	}
	return status
}

func (s *Session) handleHalt(err error) {
	if chip8.IsBreakpoint(err) {
		s.logger.Info("Execution paused", log.Err(err))
	} else {
		s.logger.Error("Execution halted", log.Err(err))
	}
	if s.onHalt != nil {
		s.onHalt(err)
	}
}

func orDefault(value, def int) int {
	if value == 0 {
		return def
	}
	return value
}

func clamp(value, lower, upper int) int {
	return max(lower, min(value, upper))
}
