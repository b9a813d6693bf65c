// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package ebcdic

// These tables are data, not logic. They use the map[rune]byte shape
// that internal/ebcdic/generate emits from ICU UCM files, but they are
// listed by hand rather than being that tool's full output, and the
// 1047/1140 tables are derived from 037 in code below. Only the printable ASCII subset
// plus the handful of punctuation positions that vary between 037, 1047,
// and 1140 are listed; every code page position not listed decodes to
// space, satisfying the "never fails" contract in spec.md §4.1 without
// pretending to round-trip glyphs this module never needs (box-drawing,
// APL overstrikes, and so on -- explicitly out of scope).

// cp037Table is the Unicode->EBCDIC map for code page 037.
var cp037Table = map[rune]byte{
	' ': 0x40, '.': 0x4B, '<': 0x4C, '(': 0x4D, '+': 0x4E, '|': 0x4F,
	'&': 0x50, '!': 0x5A, '$': 0x5B, '*': 0x5C, ')': 0x5D, ';': 0x5E,
	'-': 0x60, '/': 0x61, ',': 0x6B, '%': 0x6C, '_': 0x6D, '>': 0x6E,
	'?': 0x6F, '`': 0x79, ':': 0x7A, '#': 0x7B, '@': 0x7C, '\'': 0x7D,
	'=': 0x7E, '"': 0x7F,

	'a': 0x81, 'b': 0x82, 'c': 0x83, 'd': 0x84, 'e': 0x85, 'f': 0x86,
	'g': 0x87, 'h': 0x88, 'i': 0x89, 'j': 0x91, 'k': 0x92, 'l': 0x93,
	'm': 0x94, 'n': 0x95, 'o': 0x96, 'p': 0x97, 'q': 0x98, 'r': 0x99,
	's': 0xA2, 't': 0xA3, 'u': 0xA4, 'v': 0xA5, 'w': 0xA6, 'x': 0xA7,
	'y': 0xA8, 'z': 0xA9,

	'A': 0xC1, 'B': 0xC2, 'C': 0xC3, 'D': 0xC4, 'E': 0xC5, 'F': 0xC6,
	'G': 0xC7, 'H': 0xC8, 'I': 0xC9, 'J': 0xD1, 'K': 0xD2, 'L': 0xD3,
	'M': 0xD4, 'N': 0xD5, 'O': 0xD6, 'P': 0xD7, 'Q': 0xD8, 'R': 0xD9,
	'S': 0xE2, 'T': 0xE3, 'U': 0xE4, 'V': 0xE5, 'W': 0xE6, 'X': 0xE7,
	'Y': 0xE8, 'Z': 0xE9,

	'0': 0xF0, '1': 0xF1, '2': 0xF2, '3': 0xF3, '4': 0xF4, '5': 0xF5,
	'6': 0xF6, '7': 0xF7, '8': 0xF8, '9': 0xF9,

	'{': 0xC0, '}': 0xD0, '\\': 0xE0, '^': 0x5F, '[': 0x4A, ']': 0xBB,

	'\x00': 0x00, '\t': 0x05, '\n': 0x25, '\r': 0x0D,
}

// cp1047Table differs from 037 only in the placement of [, ], and a
// handful of other punctuation characters (see the teacher library's
// ebcdic.go doc comment for the c3270 "bracket" vs. 1047 history).
var cp1047Table = func() map[rune]byte {
	t := make(map[rune]byte, len(cp037Table))
	for r, b := range cp037Table {
		t[r] = b
	}
	t['['] = 0xAD
	t[']'] = 0xBD
	t['!'] = 0x5A
	t['^'] = 0xB0
	return t
}()

// cp1140Table is CP037 with the euro sign substituted for the
// international currency symbol at 0x9F.
var cp1140Table = func() map[rune]byte {
	t := make(map[rune]byte, len(cp037Table)+1)
	for r, b := range cp037Table {
		t[r] = b
	}
	t['€'] = 0x9F
	return t
}()
