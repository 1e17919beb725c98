package chip8

import (
	"slices"

	"github.com/retroenv/retrogolib/set"
)

// breakpoints manages the breakpoint addresses inside the loaded ROM.
type breakpoints struct {
	addresses set.Set[uint16]
	romMax    uint16

	// last is the breakpoint the machine halted at most recently. A value of 0
	// marks no breakpoint since addresses below ProgramStart are rejected.
	last uint16
}

func newBreakpoints() *breakpoints {
	return &breakpoints{
		addresses: set.New[uint16](),
		romMax:    romMaxAddress(0),
	}
}

// romMaxAddress returns the address of the last ROM byte for a ROM of the given size.
func romMaxAddress(size int) uint16 {
	if size <= 0 {
		return ProgramStart
	}
	if size > MaxROMSize {
		size = MaxROMSize
	}
	return uint16(ProgramStart + size - 1)
}

func (b *breakpoints) validate(address uint16) error {
	if address > b.romMax || address < ProgramStart {
		return &AddressRangeError{
			Address: address,
			Min:     ProgramStart,
			Max:     b.romMax,
		}
	}
	return nil
}

func (b *breakpoints) set(address uint16) (uint16, error) {
	if err := b.validate(address); err != nil {
		return 0, err
	}
	aligned := address - address%2
	b.addresses[aligned] = struct{}{}
	return aligned, nil
}

func (b *breakpoints) remove(address uint16) (uint16, error) {
	if err := b.validate(address); err != nil {
		return 0, err
	}
	aligned := address - address%2
	if !b.contains(aligned) {
		return aligned, ErrBreakpointNotFound
	}
	delete(b.addresses, aligned)
	return aligned, nil
}

func (b *breakpoints) contains(address uint16) bool {
	_, ok := b.addresses[address]
	return ok
}

func (b *breakpoints) clear() {
	b.addresses = set.New[uint16]()
	b.last = 0
}

// sorted returns the breakpoint addresses in ascending order.
func (b *breakpoints) sorted() []uint16 {
	addresses := make([]uint16, 0, len(b.addresses))
	for address := range b.addresses {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}
