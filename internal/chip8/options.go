package chip8

import (
	"github.com/retroenv/retrogolib/log"
)

// Option configures a VM.
type Option func(*VM)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(vm *VM) {
		vm.logger = logger
	}
}

// WithDisplay sets the sink that receives framebuffer changes.
func WithDisplay(display DisplaySink) Option {
	return func(vm *VM) {
		vm.display = display
	}
}

// WithAudio sets the sink that receives tone changes.
func WithAudio(audio AudioSink) Option {
	return func(vm *VM) {
		vm.audio = audio
	}
}

// WithRandom replaces the random byte source used by CXNN.
func WithRandom(random func() uint8) Option {
	return func(vm *VM) {
		vm.random = random
	}
}

// WithTickerFactory replaces the ticker source of the scheduler.
func WithTickerFactory(factory TickerFactory) Option {
	return func(vm *VM) {
		vm.tickers = factory
	}
}

// WithHaltHandler sets a function that is called when the run loop halts.
// The handler is called without the machine being locked.
func WithHaltHandler(handler func(error)) Option {
	return func(vm *VM) {
		vm.onHalt = handler
	}
}
