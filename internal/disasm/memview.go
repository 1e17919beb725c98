package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// Memory view dimensions.
const (
	ViewColumns = 16
	ViewRows    = 4
	ViewSize    = ViewColumns * ViewRows

	// maxViewStart is the highest start index that still shows a full page.
	maxViewStart = chip8.MaxAddress + 1 - ViewSize
)

// ClampViewStart limits a view start index to the addressable memory so
// that a full page is shown.
func ClampViewStart(start int) uint16 {
	switch {
	case start < 0:
		return 0
	case start > maxViewStart:
		return maxViewStart
	default:
		return uint16(start)
	}
}

// NextPage returns the start index of the page following start.
func NextPage(start uint16) uint16 {
	return ClampViewStart(int(start) + ViewSize)
}

// PreviousPage returns the start index of the page preceding start.
func PreviousPage(start uint16) uint16 {
	return ClampViewStart(int(start) - ViewSize)
}

// MemoryView renders a page of memory as hex rows starting at start. The
// byte at highlight is wrapped in brackets when it is part of the page.
func MemoryView(memory []byte, start uint16, highlight int) string {
	start = ClampViewStart(int(start))
	var sb strings.Builder

	sb.WriteString("       ")
	for col := 0; col < ViewColumns; col++ {
		fmt.Fprintf(&sb, " %X ", col)
	}
	sb.WriteByte('\n')

	for row := 0; row < ViewRows; row++ {
		rowStart := int(start) + row*ViewColumns
		fmt.Fprintf(&sb, "0x%03X: ", rowStart)
		for col := 0; col < ViewColumns; col++ {
			address := rowStart + col
			var value byte
			if address < len(memory) {
				value = memory[address]
			}
			if address == highlight {
				fmt.Fprintf(&sb, "[%02X]", value)
			} else {
				fmt.Fprintf(&sb, "%02X ", value)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
