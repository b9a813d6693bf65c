// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Package ebcdic implements bidirectional EBCDIC<->Unicode translation for
// the single-byte code pages a 3270 host is likely to negotiate, plus
// scaffolding for recognizing double-byte (DBCS) lead/trail pairs when a
// host has selected a DBCS-capable code page. CP037 is the baseline per the
// 3270 data stream default; other single-byte code pages are table
// variants of the same shape.
package ebcdic

import "unicode/utf8"

// Codepage translates between EBCDIC bytes and Unicode text for one 3270
// code page. Implementations never fail: encode substitutes unmapped
// runes with the EBCDIC space (0x40), and decode substitutes unmapped
// bytes with U+0020.
type Codepage interface {
	// Decode converts EBCDIC bytes into a UTF-8 Go string.
	Decode(b []byte) string

	// Encode converts a UTF-8 Go string into EBCDIC bytes.
	Encode(s string) []byte

	// ID returns the numeric or symbolic name of this code page, e.g.
	// "037" or "1047".
	ID() string

	// IsDBCSLead reports whether b is a lead byte for this code page's
	// paired DBCS codepage, if one is configured. SBCS-only code pages
	// always return false.
	IsDBCSLead(b byte) bool
}

// sbcsTable is the Codepage implementation shared by every single-byte
// code page this package ships: a 256-entry array lookup in each
// direction, with an explicit substitution byte/rune for unmapped
// positions. This mirrors the teacher library's table-driven codec
// exactly, generalized to carry an optional DBCS lead-byte set.
type sbcsTable struct {
	id   string
	e2u  [256]rune
	u2e  map[rune]byte
	esub byte // EBCDIC substitute for unmappable runes (0x40, space)

	// dbcsLead, when non-nil, marks bytes that introduce a DBCS pair in
	// the paired double-byte code page (e.g. 0x0E/0x0F shift codes, or
	// vendor-specific lead-byte ranges for Japanese/Korean code pages).
	dbcsLead map[byte]bool
}

func (t *sbcsTable) Decode(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		r := t.e2u[c]
		if r == 0 && c != 0x00 {
			r = ' '
		}
		runes = append(runes, r)
	}
	return string(runes)
}

func (t *sbcsTable) Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size <= 1 {
			break
		}
		if b, ok := t.u2e[r]; ok {
			out = append(out, b)
		} else {
			out = append(out, t.esub)
		}
		s = s[size:]
	}
	return out
}

func (t *sbcsTable) ID() string { return t.id }

func (t *sbcsTable) IsDBCSLead(b byte) bool {
	if t.dbcsLead == nil {
		return false
	}
	return t.dbcsLead[b]
}

// newSBCS builds a table-driven Codepage from an encode map. Bytes not
// present as a value in u2e decode to space; the table is built eagerly
// so Decode/Encode stay allocation-bounded by input length, never by
// table size.
func newSBCS(id string, u2e map[rune]byte, dbcsLead map[byte]bool) *sbcsTable {
	t := &sbcsTable{id: id, u2e: u2e, esub: 0x40, dbcsLead: dbcsLead}
	for r, b := range u2e {
		t.e2u[b] = r
	}
	// Space must always round-trip even if a caller-supplied table
	// omits it.
	if _, ok := u2e[' ']; !ok {
		t.u2e[' '] = 0x40
		t.e2u[0x40] = ' '
	}
	return t
}

// CP037 is the baseline EBCDIC code page for 3270 data streams absent any
// other negotiation (see spec §4.1).
var CP037 Codepage = newSBCS("037", cp037Table, nil)

// CP1047 is the code page most PC-based emulators (and c3270/x3270's
// "bracket" variant) use by default; it differs from 037 only in the
// placement of a handful of punctuation characters.
var CP1047 Codepage = newSBCS("1047", cp1047Table, nil)

// CP1140 is CP037 with the euro sign in place of the international
// currency symbol at 0x9F.
var CP1140 Codepage = newSBCS("1140", cp1140Table, nil)

// CP933 is a placeholder DBCS-capable code page: the SBCS portion behaves
// like CP037, but bytes 0x0E (shift-out) and 0x0F (shift-in) are flagged
// as DBCS lead/trail markers so callers can recognize the shift sequence
// that brackets Korean double-byte text. Full glyph-level DBCS rendering
// is out of scope (see spec.md Non-goals); this is acknowledgement only.
var CP933 Codepage = newSBCS("933", cp037Table, map[byte]bool{0x0E: true, 0x0F: true})

// byID maps the 3270 code page numbers this package knows about to their
// Codepage implementation, used by session configuration to resolve a
// caller-supplied code page name.
var byID = map[string]Codepage{
	"037":  CP037,
	"1047": CP1047,
	"1140": CP1140,
	"933":  CP933,
}

// ByID looks up a code page by its conventional numeric/symbolic name
// (e.g. "037"). It returns CP037 and false if the name is not recognized.
func ByID(id string) (Codepage, bool) {
	cp, ok := byID[id]
	if !ok {
		return CP037, false
	}
	return cp, true
}

// IsDBCSLead reports whether b is a DBCS lead/shift byte for cp. It is a
// convenience wrapper around Codepage.IsDBCSLead for callers that only
// have a byte in hand.
func IsDBCSLead(cp Codepage, b byte) bool {
	if cp == nil {
		return false
	}
	return cp.IsDBCSLead(b)
}

// DecodeDBCS decodes a double-byte pair under a DBCS-capable code page.
// This is scaffolding, not a full implementation: it recognizes the
// shift-out/shift-in envelope bytes and otherwise falls back to the
// associated SBCS decode for content bytes, which is sufficient for the
// query-reply and negotiation surface this module implements without
// claiming to render CJK glyphs correctly (Non-goal in spec.md).
func DecodeDBCS(cp Codepage, b []byte) string {
	if len(b) == 0 {
		return ""
	}
	filtered := make([]byte, 0, len(b))
	for _, c := range b {
		if cp.IsDBCSLead(c) {
			continue
		}
		filtered = append(filtered, c)
	}
	return cp.Decode(filtered)
}
