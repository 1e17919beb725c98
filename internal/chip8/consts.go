package chip8

import "time"

// Memory layout constants.
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 4096
	// MaxAddress is the highest valid memory address.
	MaxAddress = 0xFFF
	// ProgramStart is the address the ROM is loaded to and execution starts at.
	ProgramStart = 0x200
	// MaxROMSize is the largest ROM that fits into the program space.
	MaxROMSize = MemorySize - ProgramStart
	// FontStart is the address of the first font glyph.
	FontStart = 0x050
	// FontGlyphSize is the size of a single font glyph in bytes.
	FontGlyphSize = 5
)

// Machine dimensions.
const (
	// RegisterCount is the number of general purpose registers V0-VF.
	RegisterCount = 16
	// StackSize is the number of entries of the return stack.
	StackSize = 16
	// KeyCount is the number of keys of the hex keypad.
	KeyCount = 16
	// DisplayWidth is the width of the framebuffer in pixels.
	DisplayWidth = 64
	// DisplayHeight is the height of the framebuffer in pixels.
	DisplayHeight = 32
)

// TimerRate is the fixed rate in Hz of the delay and sound timers.
const TimerRate = 60

// TimerPeriod is the interval between two timer ticks.
const TimerPeriod = time.Second / TimerRate

// flagRegister is the index of VF.
const flagRegister = 0xF

// font contains the glyphs 0-F, each 4 pixels wide and 5 rows high.
var font = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Font returns a copy of the built-in font glyph data.
func Font() [len(font)]byte {
	return font
}
