package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramCounterOverflow is the halt reason when PC leaves the address space.
	ErrProgramCounterOverflow = errors.New("program counter exceeds memory")
	// ErrBreakpointNotFound is returned when removing a breakpoint that is not set.
	ErrBreakpointNotFound = errors.New("breakpoint not found")
	// ErrInvalidRate is returned for instruction rates that are not positive.
	ErrInvalidRate = errors.New("instruction rate must be positive")
	// ErrRunning is returned by Step while the run loop is active.
	ErrRunning = errors.New("machine is running")
)

// DecodeError is the halt reason for an instruction word that does not
// decode to any known instruction.
type DecodeError struct {
	Address uint16
	Word    uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04X at address 0x%03X", e.Word, e.Address)
}

// BreakpointHit is the halt reason when execution reached a breakpoint.
// It is not a failure, it shares the halt reporting path of fatal errors.
type BreakpointHit struct {
	Address uint16
}

func (e *BreakpointHit) Error() string {
	return fmt.Sprintf("breakpoint hit at address 0x%03X", e.Address)
}

// ROMSizeError is returned when a ROM does not fit into the program space.
type ROMSizeError struct {
	Size int
	Max  int
}

func (e *ROMSizeError) Error() string {
	return fmt.Sprintf("ROM size %d exceeds the available program space of %d bytes", e.Size, e.Max)
}

// AddressRangeError is returned for breakpoint addresses outside of the
// loaded ROM.
type AddressRangeError struct {
	Address uint16
	Min     uint16
	Max     uint16
}

func (e *AddressRangeError) Error() string {
	if e.Address > e.Max {
		return fmt.Sprintf("address 0x%X is larger than the ROM's last address 0x%X", e.Address, e.Max)
	}
	return fmt.Sprintf("address 0x%X is smaller than the ROM's first address 0x%X", e.Address, e.Min)
}

// IsBreakpoint reports whether err is a breakpoint halt.
func IsBreakpoint(err error) bool {
	var hit *BreakpointHit
	return errors.As(err, &hit)
}
