package chip8

import (
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// State is the execution state of the machine.
type State int

// Execution states.
const (
	Idle State = iota
	Running
	Halted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Ticker delivers ticks on a channel until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker with the given period.
type TickerFactory func(period time.Duration) Ticker

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func newTimeTicker(period time.Duration) Ticker {
	return timeTicker{Ticker: time.NewTicker(period)}
}

// activity is a periodic callback running in its own goroutine.
type activity struct {
	ticker Ticker
	done   chan struct{}
	gen    uint64
}

// State returns the execution state and, for a halted machine, the halt reason.
func (vm *VM) State() (State, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state, vm.haltErr
}

// Rate returns the instruction rate of the active run loop or 0 if the
// machine is not running.
func (vm *VM) Rate() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.state != Running {
		return 0
	}
	return vm.rate
}

// Run starts executing instructions at rateHz and the timers at 60 Hz.
// Calling Run while the machine is running restarts both activities.
func (vm *VM) Run(rateHz int) error {
	if rateHz <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, rateHz)
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.stopActivities()
	vm.state = Running
	vm.haltErr = nil
	vm.rate = rateHz
	vm.cycleLoop = vm.startActivity(cyclePeriod(rateHz), &vm.cycleGen, vm.cycle)
	vm.timerLoop = vm.startActivity(TimerPeriod, &vm.timerGen, vm.tickTimers)

	vm.logger.Debug("Execution started", log.Int("rate", rateHz), log.Hex("pc", vm.pc))
	return nil
}

// Stop halts both activities and returns to the idle state. Calling Stop
// on a machine that is not running has no effect.
func (vm *VM) Stop() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.state != Running {
		return
	}
	vm.stopActivities()
	vm.state = Idle
	vm.logger.Debug("Execution stopped", log.Hex("pc", vm.pc))
}

// ChangeSpeed replaces the instruction activity with one running at rateHz.
// The timer activity is not affected. It has no effect when the machine is
// not running.
func (vm *VM) ChangeSpeed(rateHz int) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.state != Running {
		return nil
	}
	if rateHz <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, rateHz)
	}
	vm.cycleLoop = stopActivity(vm.cycleLoop, &vm.cycleGen)
	vm.rate = rateHz
	vm.cycleLoop = vm.startActivity(cyclePeriod(rateHz), &vm.cycleGen, vm.cycle)

	vm.logger.Debug("Execution speed changed", log.Int("rate", rateHz))
	return nil
}

// Step executes a single cycle and returns the new PC. It only runs while
// no run loop is active, otherwise ErrRunning is returned and the state is
// not changed. A halt caused by the step is returned as error.
func (vm *VM) Step() (uint16, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.state == Running {
		return vm.pc, ErrRunning
	}
	if err := vm.cycle(); err != nil {
		return vm.pc, err
	}
	vm.state = Idle
	vm.haltErr = nil
	return vm.pc, nil
}

func cyclePeriod(rateHz int) time.Duration {
	period := time.Second / time.Duration(rateHz)
	if period <= 0 {
		period = time.Nanosecond
	}
	return period
}

// startActivity runs fn on every tick of a new ticker. Ticks are dropped once
// the generation counter moved on, which happens when the activity is stopped.
// An error returned by fn ends the activity and is passed to the halt handler.
func (vm *VM) startActivity(period time.Duration, gen *uint64, fn func() error) *activity {
	*gen++
	a := &activity{
		ticker: vm.tickers(period),
		done:   make(chan struct{}),
		gen:    *gen,
	}

	go func() {
		for {
			select {
			case <-a.done:
				return
			case <-a.ticker.C():
			}

			vm.mu.Lock()
			if a.gen != *gen {
				vm.mu.Unlock()
				return
			}
			err := fn()
			handler := vm.onHalt
			vm.mu.Unlock()

			if err != nil {
				if handler != nil {
					handler(err)
				}
				return
			}
		}
	}()
	return a
}

// stopActivity ends the activity and invalidates its pending ticks.
// It always returns nil so callers can reset their reference.
func stopActivity(a *activity, gen *uint64) *activity {
	if a == nil {
		return nil
	}
	close(a.done)
	a.ticker.Stop()
	*gen++
	return nil
}

func (vm *VM) stopActivities() {
	vm.cycleLoop = stopActivity(vm.cycleLoop, &vm.cycleGen)
	vm.timerLoop = stopActivity(vm.timerLoop, &vm.timerGen)
}

// halt stops both activities and records the reason.
func (vm *VM) halt(reason error) error {
	vm.stopActivities()
	vm.state = Halted
	vm.haltErr = reason

	if IsBreakpoint(reason) {
		vm.logger.Info("Breakpoint hit", log.Hex("pc", vm.pc))
	} else {
		vm.logger.Error("Execution halted", log.Hex("pc", vm.pc), log.Err(reason))
	}
	if vm.audio != nil {
		vm.audio.SetTone(false)
	}
	vm.bus.publish(Event{Kind: EventHalted, Address: vm.pc, Err: reason})
	return reason
}

// cycle runs a single instruction cycle including the PC bound and
// breakpoint checks.
func (vm *VM) cycle() error {
	if vm.pc > MaxAddress {
		return vm.halt(ErrProgramCounterOverflow)
	}

	if vm.breakpoints.contains(vm.pc) {
		if vm.pc != vm.breakpoints.last {
			vm.breakpoints.last = vm.pc
			return vm.halt(&BreakpointHit{Address: vm.pc})
		}
	} else {
		vm.breakpoints.last = 0
	}

	address := vm.pc
	word := uint16(vm.read(address))<<8 | uint16(vm.read(address+1))
	vm.setPC(address + 2)

	if err := vm.execute(address, Decode(word)); err != nil {
		return vm.halt(err)
	}
	return nil
}

// tickTimers decrements the delay and sound timers and drives the tone.
func (vm *VM) tickTimers() error {
	if vm.delay > 0 {
		vm.setDelay(vm.delay - 1)
	}
	if vm.sound > 0 {
		vm.setSound(vm.sound - 1)
		if vm.audio != nil {
			vm.audio.SetTone(vm.sound > 0)
		}
	}
	return nil
}
