package chip8

import (
	"math/rand/v2"
	"sync"

	"github.com/retroenv/retrogolib/log"
)

// AudioSink receives the tone state driven by the sound timer.
type AudioSink interface {
	SetTone(on bool)
}

// Registers is a snapshot of the register file.
type Registers struct {
	V     [RegisterCount]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack [StackSize]uint16
	Delay uint8
	Sound uint8
}

// VM is a CHIP-8 virtual machine. All methods are safe for concurrent use.
type VM struct {
	mu sync.Mutex

	logger  *log.Logger
	display DisplaySink
	audio   AudioSink
	random  func() uint8
	tickers TickerFactory
	onHalt  func(error)

	memory [MemorySize]byte
	v      [RegisterCount]uint8
	i      uint16
	pc     uint16
	sp     uint8
	stack  [StackSize]uint16
	delay  uint8
	sound  uint8
	keys   [KeyCount]bool
	screen Framebuffer

	breakpoints *breakpoints
	bus         bus

	state     State
	haltErr   error
	rate      int
	cycleLoop *activity
	timerLoop *activity
	cycleGen  uint64
	timerGen  uint64
}

// New returns a new machine in power-on state.
func New(options ...Option) *VM {
	vm := &VM{
		random:      func() uint8 { return uint8(rand.UintN(256)) },
		tickers:     newTimeTicker,
		breakpoints: newBreakpoints(),
	}
	for _, option := range options {
		option(vm)
	}
	if vm.logger == nil {
		vm.logger = log.NewWithConfig(log.DefaultConfig())
	}
	vm.powerOn(0)
	return vm
}

// LoadROM copies the ROM into memory at ProgramStart and resets PC.
// A ROM that does not fit into the program space is rejected and the
// machine state is left unchanged.
func (vm *VM) LoadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return &ROMSizeError{Size: len(rom), Max: MaxROMSize}
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	copy(vm.memory[ProgramStart:], rom)
	vm.breakpoints.romMax = romMaxAddress(len(rom))
	vm.setPC(ProgramStart)
	vm.bus.publish(Event{Kind: EventROMLoaded, Address: ProgramStart})

	vm.logger.Debug("ROM loaded",
		log.Int("size", len(rom)),
		log.Hex("last_address", vm.breakpoints.romMax))
	return nil
}

// Reset stops execution and restores the power-on state, including the
// removal of all breakpoints. romSize is used to compute the ROM bounds
// for breakpoint validation.
func (vm *VM) Reset(romSize int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.stopActivities()
	vm.powerOn(romSize)
	vm.logger.Debug("Machine reset")
}

func (vm *VM) powerOn(romSize int) {
	vm.memory = [MemorySize]byte{}
	copy(vm.memory[FontStart:], font[:])
	vm.v = [RegisterCount]uint8{}
	vm.i = 0
	vm.pc = ProgramStart
	vm.sp = 0
	vm.stack = [StackSize]uint16{}
	vm.delay = 0
	vm.sound = 0
	vm.keys = [KeyCount]bool{}
	vm.screen.clear()
	vm.breakpoints.clear()
	vm.breakpoints.romMax = romMaxAddress(romSize)
	vm.state = Idle
	vm.haltErr = nil

	if vm.display != nil {
		vm.display.Clear()
	}
	if vm.audio != nil {
		vm.audio.SetTone(false)
	}
	vm.bus.publish(Event{Kind: EventReset, Address: ProgramStart})
}

// Subscribe registers a handler for state change events and returns a
// function that removes the subscription.
func (vm *VM) Subscribe(handler Handler) (unsubscribe func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	id := vm.bus.subscribe(handler)
	return func() {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		vm.bus.unsubscribe(id)
	}
}

// SetKeyDown sets the state of a keypad key. Keys above 0xF are ignored.
func (vm *VM) SetKeyDown(key uint8, down bool) {
	if key >= KeyCount {
		return
	}
	vm.mu.Lock()
	vm.keys[key] = down
	vm.mu.Unlock()
}

// KeyDown returns whether the given key is pressed.
func (vm *VM) KeyDown(key uint8) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.keyDown(key)
}

// PC returns the program counter.
func (vm *VM) PC() uint16 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.pc
}

// Registers returns a snapshot of the register file.
func (vm *VM) Registers() Registers {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return Registers{
		V:     vm.v,
		I:     vm.i,
		PC:    vm.pc,
		SP:    vm.sp,
		Stack: vm.stack,
		Delay: vm.delay,
		Sound: vm.sound,
	}
}

// Memory returns a copy of the memory.
func (vm *VM) Memory() [MemorySize]byte {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.memory
}

// Framebuffer returns a copy of the screen.
func (vm *VM) Framebuffer() Framebuffer {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.screen
}

// SetBreakpoint adds a breakpoint and returns the address aligned down to
// the instruction boundary.
func (vm *VM) SetBreakpoint(address uint16) (uint16, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.breakpoints.set(address)
}

// RemoveBreakpoint removes a breakpoint and returns the aligned address.
func (vm *VM) RemoveBreakpoint(address uint16) (uint16, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.breakpoints.remove(address)
}

// ClearBreakpoints removes all breakpoints.
func (vm *VM) ClearBreakpoints() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.breakpoints.clear()
}

// Breakpoints returns all breakpoint addresses in ascending order.
func (vm *VM) Breakpoints() []uint16 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.breakpoints.sorted()
}

// ROMMaxAddress returns the address of the last byte of the loaded ROM.
func (vm *VM) ROMMaxAddress() uint16 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.breakpoints.romMax
}

func (vm *VM) keyDown(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	return vm.keys[key]
}

func (vm *VM) read(address uint16) byte {
	if address > MaxAddress {
		return 0
	}
	return vm.memory[address]
}

func (vm *VM) write(address uint16, value byte) {
	if address > MaxAddress {
		return
	}
	vm.memory[address] = value
	vm.bus.publish(Event{Kind: EventMemory, Address: address, Value: value})
}

func (vm *VM) setV(x uint8, value uint8) {
	vm.v[x&0xF] = value
	vm.bus.publish(Event{Kind: EventRegister, Index: int(x & 0xF), Value: value})
}

func (vm *VM) setI(value uint16) {
	vm.i = value
	vm.bus.publish(Event{Kind: EventIndex, Address: value})
}

func (vm *VM) setPC(value uint16) {
	vm.pc = value
	vm.bus.publish(Event{Kind: EventPC, Address: value})
}

func (vm *VM) setSP(value uint8) {
	vm.sp = value
	vm.bus.publish(Event{Kind: EventSP, Value: value})
}

func (vm *VM) setDelay(value uint8) {
	vm.delay = value
	vm.bus.publish(Event{Kind: EventDelay, Value: value})
}

func (vm *VM) setSound(value uint8) {
	vm.sound = value
	vm.bus.publish(Event{Kind: EventSound, Value: value})
}

// push stores the return address. SP is not bounds checked, the slot index
// wraps into the stack array.
func (vm *VM) push(address uint16) {
	slot := int(vm.sp) % StackSize
	vm.stack[slot] = address
	vm.bus.publish(Event{Kind: EventStack, Index: slot, Address: address})
	vm.setSP(vm.sp + 1)
}

func (vm *VM) pop() uint16 {
	vm.setSP(vm.sp - 1)
	return vm.stack[int(vm.sp)%StackSize]
}
