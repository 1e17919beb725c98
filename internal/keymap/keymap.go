// Package keymap translates host keyboard keys to CHIP-8 keypad keys.
package keymap

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Keymap maps host keys to keypad keys 0x0-0xF.
type Keymap map[rune]uint8

// Default returns the classic layout that maps the left block of a QWERTY
// keyboard onto the hex keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
func Default() Keymap {
	return Keymap{
		'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
		'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
		'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
		'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
	}
}

// Parse returns the default layout with the given overrides applied. Keys
// of the overrides are single host characters, values are hex digits of
// the keypad key. An override replaces any other host key that was mapped
// to the same keypad key.
func Parse(overrides map[string]string) (Keymap, error) {
	km := Default()
	for host, value := range overrides {
		r, size := utf8.DecodeRuneInString(host)
		if r == utf8.RuneError || size != len(host) {
			return nil, fmt.Errorf("invalid host key '%s': expected a single character", host)
		}

		key, err := strconv.ParseUint(value, 16, 8)
		if err != nil || key > 0xF {
			return nil, fmt.Errorf("invalid keypad key '%s' for host key '%s'", value, host)
		}

		for existing, mapped := range km {
			if mapped == uint8(key) {
				delete(km, existing)
			}
		}
		km[r] = uint8(key)
	}
	return km, nil
}

// Lookup returns the keypad key for a host key. Upper case letters map like
// their lower case variant.
func (k Keymap) Lookup(r rune) (uint8, bool) {
	if key, ok := k[r]; ok {
		return key, true
	}
	if r >= 'A' && r <= 'Z' {
		key, ok := k[r+'a'-'A']
		return key, ok
	}
	return 0, false
}
