// Package chip8 implements the CHIP-8 virtual machine.
//
// CHIP-8 is an interpreted virtual machine from the 1970s designed for simple
// games. The machine has a 4KB linear address space, sixteen 8-bit registers
// V0-VF, a 16-bit index register I, a 16 entry return stack and two 8-bit
// timers that count down at 60 Hz.
//
// Memory layout:
//
//	0x000-0x04F: unused, reads as zero
//	0x050-0x09F: font glyphs for the hex digits 0-F, 5 bytes each
//	0x0A0-0x1FF: unused
//	0x200-0xFFF: program space, the loaded ROM starts at 0x200
//
// Execution:
//
// Instructions are 2 bytes wide and stored big endian. Every cycle the word at
// PC is fetched, PC is advanced by 2 and the decoded instruction is executed.
// Instruction cycles run at a configurable rate while the delay and sound
// timers are decremented by an independent 60 Hz activity. Both activities
// serialize on the machine lock so a timer tick never observes a half
// executed instruction.
//
// Display:
//
// The framebuffer is a 64x32 monochrome grid. Sprites are drawn by XOR and VF
// is set to 1 when a drawn pixel was already lit. Coordinates wrap around the
// screen edges. Pixel changes are forwarded to an optional DisplaySink.
//
// Debugging:
//
// Breakpoints can be set on even addresses inside the loaded ROM. When the
// program counter reaches a breakpoint the machine halts. Resuming or stepping
// from the same address executes the instruction instead of halting again.
// All state mutations are published as Event values to subscribers.
package chip8
