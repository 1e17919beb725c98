// Package disasm renders CHIP-8 memory as assembly listings and hex views
// for the inspector and the debug shell.
package disasm

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/chip8"
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Format returns the assembly text of an instruction word, for example
// "ld V2, $34". Words that match no instruction are rendered as data.
func Format(word uint16) string {
	op, ok := chip8.Lookup(word)
	if !ok {
		return fmt.Sprintf(".word $%04X", word)
	}

	name := op.Instruction.Name
	if params := formatParams(name, chip8.Decode(word)); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// formatParams formats the operands of an instruction.
func formatParams(name string, ins chip8.Instruction) string {
	switch name {
	case chip8cpu.Cls.Name, chip8cpu.Ret.Name:
		return ""
	case chip8cpu.Jp.Name:
		return formatJump(ins)
	case chip8cpu.Call.Name:
		return fmt.Sprintf("$%03X", ins.NNN)
	case chip8cpu.Se.Name, chip8cpu.Sne.Name:
		return formatCompare(ins)
	case chip8cpu.Ld.Name:
		return formatLoad(ins)
	case chip8cpu.Add.Name:
		return formatAdd(ins)
	case chip8cpu.Or.Name, chip8cpu.And.Name, chip8cpu.Xor.Name, chip8cpu.Sub.Name, chip8cpu.Subn.Name:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case chip8cpu.Shr.Name, chip8cpu.Shl.Name, chip8cpu.Skp.Name, chip8cpu.Sknp.Name:
		return fmt.Sprintf("V%X", ins.X)
	case chip8cpu.Rnd.Name:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case chip8cpu.Drw.Name:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)
	}
	return ""
}

func formatJump(ins chip8.Instruction) string {
	if ins.Class == 0xB {
		return fmt.Sprintf("V0, $%03X", ins.NNN)
	}
	return fmt.Sprintf("$%03X", ins.NNN)
}

func formatCompare(ins chip8.Instruction) string {
	switch ins.Class {
	case 0x3, 0x4:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case 0x5, 0x9:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	}
	return ""
}

// miscLoads maps the low byte of FX loads to their operand layout.
var miscLoads = map[uint8]string{
	0x07: "V%X, DT",
	0x0A: "V%X, K",
	0x15: "DT, V%X",
	0x18: "ST, V%X",
	0x29: "F, V%X",
	0x33: "B, V%X",
	0x55: "[I], V%X",
	0x65: "V%X, [I]",
}

func formatLoad(ins chip8.Instruction) string {
	switch ins.Class {
	case 0x6:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case 0x8:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case 0xA:
		return fmt.Sprintf("I, $%03X", ins.NNN)
	case 0xF:
		if layout, ok := miscLoads[ins.NN]; ok {
			return fmt.Sprintf(layout, ins.X)
		}
	}
	return ""
}

func formatAdd(ins chip8.Instruction) string {
	switch ins.Class {
	case 0x7:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case 0x8:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case 0xF:
		return fmt.Sprintf("I, V%X", ins.X)
	}
	return ""
}
