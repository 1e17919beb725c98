package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNewPowerOnState(t *testing.T) {
	vm := newTestVM(t)

	regs := vm.Registers()
	assert.Equal(t, uint16(ProgramStart), regs.PC)
	assert.Equal(t, uint16(0), regs.I)
	assert.Equal(t, uint8(0), regs.SP)

	mem := vm.Memory()
	f := Font()
	for i, b := range f {
		assert.Equal(t, b, mem[FontStart+i])
	}
	assert.Equal(t, byte(0), mem[ProgramStart])

	state, err := vm.State()
	assert.Equal(t, Idle, state)
	assert.NoError(t, err)
}

func TestLoadROM(t *testing.T) {
	vm := newTestVM(t)
	rom := []byte{0x12, 0x34, 0x56}
	assert.NoError(t, vm.LoadROM(rom))

	mem := vm.Memory()
	assert.Equal(t, byte(0x12), mem[0x200])
	assert.Equal(t, byte(0x34), mem[0x201])
	assert.Equal(t, byte(0x56), mem[0x202])
	assert.Equal(t, uint16(0x202), vm.ROMMaxAddress())
	assert.Equal(t, uint16(0x200), vm.PC())
}

func TestLoadROMMaxSize(t *testing.T) {
	vm := newTestVM(t)
	rom := make([]byte, MaxROMSize)
	rom[len(rom)-1] = 0xAB
	assert.NoError(t, vm.LoadROM(rom))
	assert.Equal(t, uint16(MaxAddress), vm.ROMMaxAddress())
	mem := vm.Memory()
	assert.Equal(t, byte(0xAB), mem[MaxAddress])
}

func TestLoadROMTooLarge(t *testing.T) {
	vm := newTestVMWithROM(t, 0x6001)
	before := vm.Memory()

	err := vm.LoadROM(make([]byte, MaxROMSize+1))
	var sizeErr *ROMSizeError
	assert.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, MaxROMSize+1, sizeErr.Size)

	assert.Equal(t, before, vm.Memory(), "memory is unchanged")
	assert.Equal(t, uint16(0x201), vm.ROMMaxAddress())
}

func TestResetRestoresPowerOnState(t *testing.T) {
	display := &mockDisplay{}
	audio := &mockAudio{}
	vm := newTestVM(t, WithDisplay(display), WithAudio(audio))
	loadWords(t, vm, 0x6042, 0xA300, 0xF055, 0x2208, 0xF015, 0xA050, 0xD005)
	vm.SetKeyDown(3, true)
	steps(t, vm, 4)
	_, err := vm.SetBreakpoint(0x200)
	assert.NoError(t, err)

	vm.Reset(0)

	regs := vm.Registers()
	assert.Equal(t, Registers{PC: ProgramStart}, regs)

	mem := vm.Memory()
	expected := [MemorySize]byte{}
	f := Font()
	copy(expected[FontStart:], f[:])
	assert.Equal(t, expected, mem)

	fb := vm.Framebuffer()
	assert.Equal(t, 0, fb.LitPixels())
	assert.False(t, vm.KeyDown(3))
	assert.Empty(t, vm.Breakpoints())
	assert.Equal(t, uint16(ProgramStart), vm.ROMMaxAddress())
	assert.Equal(t, 2, display.clears)

	tone, ok := audio.last()
	assert.True(t, ok)
	assert.False(t, tone)
}

func TestResetComputesROMBounds(t *testing.T) {
	vm := newTestVM(t)
	vm.Reset(0x20)
	assert.Equal(t, uint16(0x21F), vm.ROMMaxAddress())
}

func TestSetKeyDownIgnoresInvalidKeys(t *testing.T) {
	vm := newTestVM(t)
	vm.SetKeyDown(0x10, true)
	for key := uint8(0); key < KeyCount; key++ {
		assert.False(t, vm.KeyDown(key))
	}
	assert.False(t, vm.KeyDown(0x10))
}

func TestSubscribe(t *testing.T) {
	vm := newTestVMWithROM(t, 0x6A05, 0xA123, 0x2208, 0x0000, 0x6B01)

	var events []Event
	unsubscribe := vm.Subscribe(func(e Event) {
		events = append(events, e)
	})

	steps(t, vm, 1)
	assert.Len(t, events, 2)
	assert.Equal(t, Event{Kind: EventPC, Address: 0x202}, events[0])
	assert.Equal(t, Event{Kind: EventRegister, Index: 0xA, Value: 5}, events[1])

	events = nil
	steps(t, vm, 1)
	assert.Equal(t, Event{Kind: EventIndex, Address: 0x123}, events[1])

	events = nil
	steps(t, vm, 1)
	kinds := make([]EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Len(t, kinds, 4)
	assert.Equal(t, EventPC, kinds[0])
	assert.Equal(t, EventStack, kinds[1])
	assert.Equal(t, EventSP, kinds[2])
	assert.Equal(t, EventPC, kinds[3])
	assert.Equal(t, uint16(0x206), events[1].Address)

	unsubscribe()
	events = nil
	steps(t, vm, 1)
	assert.Empty(t, events)
}

func TestSubscribeHalt(t *testing.T) {
	vm := newTestVMWithROM(t, 0x0123)

	var halted []Event
	vm.Subscribe(func(e Event) {
		if e.Kind == EventHalted {
			halted = append(halted, e)
		}
	})

	_, err := vm.Step()
	assert.Error(t, err)
	assert.Len(t, halted, 1)
	assert.Equal(t, uint16(0x202), halted[0].Address)
	assert.True(t, errors.Is(halted[0].Err, err))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "register", EventRegister.String())
	assert.Equal(t, "EventKind(99)", EventKind(99).String())
}
