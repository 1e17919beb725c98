package disasm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Line is a single instruction of a listing.
type Line struct {
	Address uint16
	Word    uint16
	Code    string
	Label   string // set for addresses that are jump or call targets
}

func (l Line) String() string {
	return fmt.Sprintf("0x%03X  %04X  %s", l.Address, l.Word, l.Code)
}

// Listing decodes the memory words in [start, end] into lines. Targets of
// jumps, calls and index loads inside the range get a label.
func Listing(memory []byte, start, end uint16) []Line {
	if int(end) >= len(memory) {
		end = uint16(len(memory) - 1)
	}

	var lines []Line
	targets := map[uint16]struct{}{}
	for address := start; address < end && int(address)+1 < len(memory); address += 2 {
		word := uint16(memory[address])<<8 | uint16(memory[address+1])
		lines = append(lines, Line{
			Address: address,
			Word:    word,
			Code:    Format(word),
		})
		if target, ok := referencedAddress(word); ok && target >= start && target <= end {
			targets[target] = struct{}{}
		}
	}

	for i := range lines {
		if _, ok := targets[lines[i].Address]; ok {
			lines[i].Label = labelName(lines[i].Address)
		}
	}
	return lines
}

// ROM returns the listing of a ROM as it is placed in memory.
func ROM(rom []byte) []Line {
	memory := make([]byte, chip8.ProgramStart+len(rom))
	copy(memory[chip8.ProgramStart:], rom)
	return Listing(memory, chip8.ProgramStart, uint16(len(memory)-1))
}

// Write renders the lines as an assembly text with labels on their own line.
func Write(sb *strings.Builder, lines []Line) {
	for _, line := range lines {
		if line.Label != "" {
			fmt.Fprintf(sb, "%s:\n", line.Label)
		}
		fmt.Fprintf(sb, "  %s\n", line)
	}
}

// Targets returns all addresses that are referenced by the listing.
func Targets(lines []Line) []uint16 {
	var targets []uint16
	for _, line := range lines {
		if line.Label != "" {
			targets = append(targets, line.Address)
		}
	}
	slices.Sort(targets)
	return targets
}

// referencedAddress returns the address a jump, call or ld I instruction
// points to.
func referencedAddress(word uint16) (uint16, bool) {
	op, ok := chip8.Lookup(word)
	if !ok {
		return 0, false
	}

	ins := chip8.Decode(word)
	switch op.Instruction {
	case chip8cpu.Jp:
		if ins.Class == 0x1 {
			return ins.NNN, true
		}
	case chip8cpu.Call:
		return ins.NNN, true
	case chip8cpu.Ld:
		if ins.Class == 0xA {
			return ins.NNN, true
		}
	}
	return 0, false
}

func labelName(address uint16) string {
	return fmt.Sprintf("_label_%03x", address)
}

// IsSkip reports whether the instruction word conditionally skips the
// following instruction.
func IsSkip(word uint16) bool {
	op, ok := chip8.Lookup(word)
	if !ok {
		return false
	}
	return chip8cpu.SkipInstructions.Contains(op.Instruction.Name)
}

// AccessesMemory reports whether the instruction word reads or writes memory
// through the index register.
func AccessesMemory(word uint16) bool {
	op, ok := chip8.Lookup(word)
	if !ok {
		return false
	}
	name := op.Instruction.Name
	return chip8cpu.MemoryReadInstructions.Contains(name) || chip8cpu.MemoryWriteInstructions.Contains(name)
}
