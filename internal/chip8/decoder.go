package chip8

import (
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction contains the fields of a decoded instruction word.
type Instruction struct {
	Word  uint16
	Class uint8  // bits 12-15
	X     uint8  // bits 8-11
	Y     uint8  // bits 4-7
	N     uint8  // bits 0-3
	NN    uint8  // bits 0-7
	NNN   uint16 // bits 0-11
}

// Decode splits an instruction word into its nibble fields.
func Decode(word uint16) Instruction {
	return Instruction{
		Word:  word,
		Class: uint8((word & 0xF000) >> 12),
		X:     uint8((word & 0x0F00) >> 8),
		Y:     uint8((word & 0x00F0) >> 4),
		N:     uint8(word & 0x000F),
		NN:    uint8(word & 0x00FF),
		NNN:   word & 0x0FFF,
	}
}

// Opcode returns the opcode table entry matching the instruction word.
// The second return value is false for words that match no known opcode.
func (i Instruction) Opcode() (chip8cpu.Opcode, bool) {
	return Lookup(i.Word)
}

// Mnemonic returns the instruction name or an empty string for unknown words.
func (i Instruction) Mnemonic() string {
	op, ok := Lookup(i.Word)
	if !ok {
		return ""
	}
	return op.Instruction.Name
}

// Lookup finds the opcode table entry for an instruction word.
func Lookup(word uint16) (chip8cpu.Opcode, bool) {
	firstNibble := (word & 0xF000) >> 12
	for _, op := range chip8cpu.Opcodes[int(firstNibble)] {
		if op.Info.Mask&word == op.Info.Value {
			return op, op.Instruction != nil
		}
	}
	return chip8cpu.Opcode{}, false
}
