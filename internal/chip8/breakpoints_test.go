package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestSetBreakpoint(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.LoadROM(make([]byte, 0x100)))
	assert.Equal(t, uint16(0x2FF), vm.ROMMaxAddress())

	tests := []struct {
		name     string
		address  uint16
		expected uint16
		err      bool
	}{
		{"first address", 0x200, 0x200, false},
		{"odd address above ROM", 0x301, 0, true},
		{"odd address inside ROM", 0x233, 0x232, false},
		{"last address", 0x2FF, 0x2FE, false},
		{"below ROM", 0x1FE, 0, true},
		{"above ROM", 0x300, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, err := vm.SetBreakpoint(tt.address)
			if tt.err {
				var rangeErr *AddressRangeError
				assert.True(t, errors.As(err, &rangeErr))
				assert.Equal(t, tt.address, rangeErr.Address)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, address)
		})
	}

	breakpoints := vm.Breakpoints()
	assert.Len(t, breakpoints, 3)
	assert.Equal(t, uint16(0x200), breakpoints[0])
	assert.Equal(t, uint16(0x232), breakpoints[1])
	assert.Equal(t, uint16(0x2FE), breakpoints[2])
}

func TestBreakpointRangeMessages(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.LoadROM(make([]byte, 4)))

	_, err := vm.SetBreakpoint(0x204)
	assert.ErrorContains(t, err, "larger than the ROM's last address 0x203")

	_, err = vm.SetBreakpoint(0x100)
	assert.ErrorContains(t, err, "smaller than the ROM's first address 0x200")
}

func TestBreakpointEmptyROM(t *testing.T) {
	vm := newTestVM(t)
	assert.Equal(t, uint16(ProgramStart), vm.ROMMaxAddress())

	address, err := vm.SetBreakpoint(0x200)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x200), address)

	_, err = vm.SetBreakpoint(0x202)
	assert.Error(t, err)
}

func TestRemoveBreakpoint(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.LoadROM(make([]byte, 0x10)))

	_, err := vm.SetBreakpoint(0x204)
	assert.NoError(t, err)

	_, err = vm.RemoveBreakpoint(0x206)
	assert.True(t, errors.Is(err, ErrBreakpointNotFound))

	address, err := vm.RemoveBreakpoint(0x205)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x204), address)
	assert.Empty(t, vm.Breakpoints())

	_, err = vm.RemoveBreakpoint(0x400)
	var rangeErr *AddressRangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestClearBreakpoints(t *testing.T) {
	vm := newTestVM(t)
	assert.NoError(t, vm.LoadROM(make([]byte, 0x10)))

	for _, address := range []uint16{0x200, 0x202, 0x20E} {
		_, err := vm.SetBreakpoint(address)
		assert.NoError(t, err)
	}
	vm.ClearBreakpoints()
	assert.Empty(t, vm.Breakpoints())
}

func TestBreakpointHaltAndResume(t *testing.T) {
	vm := newTestVMWithROM(t, 0x6001, 0x6102, 0x6203)
	_, err := vm.SetBreakpoint(0x202)
	assert.NoError(t, err)

	steps(t, vm, 1)

	pc, err := vm.Step()
	assert.True(t, IsBreakpoint(err))
	assert.Equal(t, uint16(0x202), pc)
	assert.Equal(t, uint8(0), vm.Registers().V[1], "instruction at the breakpoint is not executed")

	state, haltErr := vm.State()
	assert.Equal(t, Halted, state)
	var hit *BreakpointHit
	assert.True(t, errors.As(haltErr, &hit))
	assert.Equal(t, uint16(0x202), hit.Address)

	pc, err = vm.Step()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x204), pc)
	assert.Equal(t, uint8(2), vm.Registers().V[1])

	state, haltErr = vm.State()
	assert.Equal(t, Idle, state)
	assert.Nil(t, haltErr)
}

func TestBreakpointRearmsAfterLeaving(t *testing.T) {
	// 0x200 ld V0, 1; 0x202 jp 0x200
	vm := newTestVMWithROM(t, 0x6001, 0x1200)
	_, err := vm.SetBreakpoint(0x200)
	assert.NoError(t, err)

	_, err = vm.Step()
	assert.True(t, IsBreakpoint(err))

	steps(t, vm, 2)
	assert.Equal(t, uint16(0x200), vm.PC())

	_, err = vm.Step()
	assert.True(t, IsBreakpoint(err), "breakpoint triggers again after PC left it")
}
