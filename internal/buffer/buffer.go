// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package buffer

import "sort"

// Attribute bits for a basic 3270 field attribute byte (spec §3 Field).
// The attribute byte arrives over the wire coded through the same
// Figure D-1 6-bit alphabet as a buffer address (see address.go's
// DecodeAddress), so only its low 6 bits are meaningful; callers must
// mask with attrMask before testing any bit below.
const (
	attrMask = 0x3F

	AttrProtected = 0x20
	AttrNumeric   = 0x10
	// AttrDisplayMask isolates the two display/intensify bits; compare
	// against AttrDisplayHidden/AttrDisplayIntensify rather than testing
	// it as a single flag.
	AttrDisplayMask      = 0x0C
	AttrDisplayHidden    = 0x0C
	AttrDisplayIntensify = 0x08
	AttrModified         = 0x01
)

// Highlight describes extended-attribute highlighting (SFE/SA order).
type Highlight byte

const (
	HighlightNormal Highlight = iota
	HighlightBlink
	HighlightReverse
	HighlightUnderscore
)

// Cell is one position in the screen buffer: an EBCDIC byte, its
// character-level attributes, and the field that owns it, if any (spec
// §3 Cell). The zero Cell is EBCDIC 0x40 (space), unattributed.
type Cell struct {
	Char      byte
	Color     byte // 3270 extended color code, 0 = default
	Highlight Highlight
	Charset   byte // GE charset selector, 0 = normal
	FieldIdx  int  // index into ScreenBuffer.fields, -1 if unformatted
}

func defaultCell() Cell {
	return Cell{Char: 0x40, FieldIdx: -1}
}

// Field is a contiguous screen region governed by one attribute byte
// (spec §3 Field). Start is the linear address of the attribute
// position itself; the field's content begins at Start+1.
type Field struct {
	Start     int
	Length    int // distance from Start up to (not including) the next field's Start: the attribute position plus the content area
	Protected bool
	Numeric   bool
	Hidden    bool
	Intensify bool
	Modified  bool
	Color     byte
	Highlight Highlight
	Charset   byte
}

// ScreenBuffer is the addressable cell grid described in spec §3/§4.2.
// All mutation happens through its methods so that the field index
// invariant (sorted by Start, no two fields sharing a Start, every cell
// belongs to at most one field) always holds after a method returns.
type ScreenBuffer struct {
	Rows, Cols int
	cells      []Cell
	fields     []Field
	cursor     int
	formatted  bool

	// currentAddr is the "current buffer address" the data-stream
	// parser advances as it processes orders and data bytes within one
	// frame; SBA/IC set it explicitly, everything else advances it
	// monotonically (spec §4.3 Ordering rules).
	currentAddr int
}

// New creates a ScreenBuffer sized rows x cols, cleared to spaces with no
// fields and the cursor at 0.
func New(rows, cols int) *ScreenBuffer {
	b := &ScreenBuffer{Rows: rows, Cols: cols}
	b.Clear()
	return b
}

// Size returns the total number of addressable cells.
func (b *ScreenBuffer) Size() int { return b.Rows * b.Cols }

// Resize resets cells to spaces, clears fields, and resets the cursor to
// 0 at the new dimensions (spec §4.2 resize).
func (b *ScreenBuffer) Resize(rows, cols int) {
	b.Rows, b.Cols = rows, cols
	b.Clear()
}

// Clear replaces all cells with spaces, clears fields, resets the
// cursor to 0, and marks the buffer unformatted (spec §4.2 clear).
func (b *ScreenBuffer) Clear() {
	n := b.Rows * b.Cols
	b.cells = make([]Cell, n)
	for i := range b.cells {
		b.cells[i] = defaultCell()
	}
	b.fields = nil
	b.cursor = 0
	b.currentAddr = 0
	b.formatted = false
}

// mod wraps an address into [0, Size()) per spec §4.2 edge-case policy:
// "addresses are taken modulo rows*cols".
func (b *ScreenBuffer) mod(addr int) int {
	n := b.Size()
	if n == 0 {
		return 0
	}
	addr %= n
	if addr < 0 {
		addr += n
	}
	return addr
}

// CurrentAddress returns the buffer address the next WriteChar/order will
// apply at.
func (b *ScreenBuffer) CurrentAddress() int { return b.currentAddr }

// SetAddress sets the current buffer address (used by SBA).
func (b *ScreenBuffer) SetAddress(addr int) { b.currentAddr = b.mod(addr) }

// AdvanceAddress moves the current address forward by n cells, wrapping.
func (b *ScreenBuffer) AdvanceAddress(n int) {
	b.currentAddr = b.mod(b.currentAddr + n)
}

// SetCursor sets the cursor address (IC order or direct API call).
func (b *ScreenBuffer) SetCursor(addr int) { b.cursor = b.mod(addr) }

// Cursor returns the cursor address.
func (b *ScreenBuffer) Cursor() int { return b.cursor }

// Formatted reports whether the buffer currently contains any fields.
func (b *ScreenBuffer) Formatted() bool { return b.formatted }

// Cell returns a copy of the cell at addr (mod Size()).
func (b *ScreenBuffer) Cell(addr int) Cell {
	return b.cells[b.mod(addr)]
}

// WriteChar places byte c at addr (spec §4.2 write_char). If addr falls
// inside a field's content area, that field's Modified flag is set. A
// write does not create a field: only StartField/StartFieldExtended do,
// even when the byte written is an attribute-shaped value.
func (b *ScreenBuffer) WriteChar(c byte, addr int) {
	addr = b.mod(addr)
	cell := &b.cells[addr]
	cell.Char = c
	if idx := cell.FieldIdx; idx >= 0 {
		b.fields[idx].Modified = true
	}
}

// WriteCharAt writes a byte at the current address and advances it by
// one, the common case while processing an inbound data stream.
func (b *ScreenBuffer) WriteCharAt(c byte) {
	cell := &b.cells[b.currentAddr]
	cell.Char = c
	if idx := cell.FieldIdx; idx >= 0 {
		b.fields[idx].Modified = true
	}
	b.currentAddr = b.mod(b.currentAddr + 1)
}

// StartField creates (or replaces) a field beginning at addr with a
// basic 3270 attribute byte, and recomputes the length of the field
// that used to own the following cells (spec §4.2 start_field).
func (b *ScreenBuffer) StartField(addr int, attr byte) {
	attr &= attrMask
	f := Field{
		Start:     b.mod(addr),
		Protected: attr&AttrProtected != 0,
		Numeric:   attr&AttrNumeric != 0,
		Hidden:    attr&AttrDisplayMask == AttrDisplayHidden,
		Intensify: attr&AttrDisplayMask == AttrDisplayIntensify,
		Modified:  attr&AttrModified != 0,
	}
	b.insertField(f)
	b.setAttributeCell(f.Start)
	b.formatted = true
}

// StartFieldExtended creates a field with extended attributes (color,
// highlighting, charset) in addition to the basic attribute byte (spec
// §4.2 start_field_extended).
func (b *ScreenBuffer) StartFieldExtended(addr int, attr byte, color byte, highlight Highlight, charset byte) {
	attr &= attrMask
	f := Field{
		Start:     b.mod(addr),
		Protected: attr&AttrProtected != 0,
		Numeric:   attr&AttrNumeric != 0,
		Hidden:    attr&AttrDisplayMask == AttrDisplayHidden,
		Intensify: attr&AttrDisplayMask == AttrDisplayIntensify,
		Modified:  attr&AttrModified != 0,
		Color:     color,
		Highlight: highlight,
		Charset:   charset,
	}
	b.insertField(f)
	b.setAttributeCell(f.Start)
	b.formatted = true
}

// setAttributeCell marks the attribute position's own cell as owned by
// no field's content (real 3270 hardware reserves the attribute
// position itself; it does not display as user-modifiable content), but
// keeps it addressable for read-buffer purposes via the fields slice
// directly rather than the FieldIdx on that one cell.
func (b *ScreenBuffer) setAttributeCell(addr int) {
	b.cells[addr].Char = 0x00
	b.cells[addr].FieldIdx = -1
}

// insertField places f into the fields slice in Start order, replacing
// any existing field with the same Start, and recomputes every field's
// Length and every cell's FieldIdx so the invariants in spec §3/§8 hold:
// fields sorted by Start, no two fields share a Start, every cell
// belongs to at most one field.
func (b *ScreenBuffer) insertField(f Field) {
	out := make([]Field, 0, len(b.fields)+1)
	for _, existing := range b.fields {
		if existing.Start == f.Start {
			continue
		}
		out = append(out, existing)
	}
	out = append(out, f)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	b.fields = out
	b.recomputeLengthsAndOwnership()
}

// recomputeLengthsAndOwnership derives each field's Length from its
// neighbor's Start (wrapping around the buffer) and rewrites every
// cell's FieldIdx to point at the field whose content area contains it.
func (b *ScreenBuffer) recomputeLengthsAndOwnership() {
	n := b.Size()
	for i := range b.cells {
		b.cells[i].FieldIdx = -1
	}
	if len(b.fields) == 0 {
		return
	}
	for i := range b.fields {
		start := b.fields[i].Start
		var next int
		if i+1 < len(b.fields) {
			next = b.fields[i+1].Start
		} else {
			next = b.fields[0].Start
		}
		length := next - start
		if length <= 0 {
			length += n
		}
		b.fields[i].Length = length
		for off := 1; off < length; off++ {
			addr := (start + off) % n
			b.cells[addr].FieldIdx = i
		}
	}
}

// Fields returns a copy of the field list, sorted by Start.
func (b *ScreenBuffer) Fields() []Field {
	out := make([]Field, len(b.fields))
	copy(out, b.fields)
	return out
}

// FieldAt returns the field owning addr's content area, if any.
func (b *ScreenBuffer) FieldAt(addr int) (Field, bool) {
	addr = b.mod(addr)
	idx := b.cells[addr].FieldIdx
	if idx < 0 {
		return Field{}, false
	}
	return b.fields[idx], true
}

// SetAttribute applies character-level attributes (SA order) to the
// current address's cell without creating a field.
func (b *ScreenBuffer) SetAttribute(color byte, highlight Highlight, charset byte) {
	cell := &b.cells[b.currentAddr]
	cell.Color = color
	cell.Highlight = highlight
	cell.Charset = charset
}

// RepeatToAddress fills from the current address up to (not including)
// target with char, wrapping row-major (spec §4.2 repeat_to_address). If
// char is an attribute byte interpretation is the caller's
// responsibility (see dsparse, which calls StartField separately per
// spec's "RA... creates a field" only through the explicit SF/SFE path
// in this module's reading of spec §4.2's edge-case policy: "writing an
// attribute byte via write_char does not create a field").
func (b *ScreenBuffer) RepeatToAddress(char byte, target int) {
	target = b.mod(target)
	n := b.Size()
	if n == 0 {
		return
	}
	addr := b.currentAddr
	for {
		// A target equal to the start address fills every cell once
		// and stops when the address wraps back to the start.
		b.WriteChar(char, addr)
		addr = (addr + 1) % n
		if addr == target {
			break
		}
	}
	b.currentAddr = target
}

// EraseUnprotectedAll replaces unprotected cells with spaces and clears
// MDT on affected fields (spec §4.2 erase_unprotected_all).
func (b *ScreenBuffer) EraseUnprotectedAll() {
	b.eraseUnprotectedRange(0, b.Size())
}

// EraseUnprotectedToAddress erases unprotected cells from address 0 up
// to (not including) addr (spec §4.2 erase_unprotected_to_address).
func (b *ScreenBuffer) EraseUnprotectedToAddress(addr int) {
	b.eraseUnprotectedRange(0, b.mod(addr))
}

func (b *ScreenBuffer) eraseUnprotectedRange(from, to int) {
	n := b.Size()
	if n == 0 {
		return
	}
	for i := range b.fields {
		if b.fields[i].Protected {
			continue
		}
		start := b.fields[i].Start
		for off := 1; off < b.fields[i].Length; off++ {
			addr := (start + off) % n
			if !inRange(addr, from, to, n) {
				continue
			}
			b.cells[addr].Char = 0x40
		}
		b.fields[i].Modified = false
	}
}

func inRange(addr, from, to, n int) bool {
	if from <= to {
		return addr >= from && addr < to
	}
	// wrapped range
	return addr >= from || addr < to
}

// ModifiedField pairs a field's content address with its current bytes,
// the unit the builder reads to construct an AID submit record.
type ModifiedField struct {
	Address int
	Bytes   []byte
}

// ReadModified returns every field with its MDT set (or every writable
// field if all is true), in Start order, each carrying its content
// bytes trimmed of trailing unused positions, i.e. trailing null (0x00)
// and space (0x40) cells (spec §4.2 read_modified).
func (b *ScreenBuffer) ReadModified(all bool) []ModifiedField {
	var out []ModifiedField
	n := b.Size()
	for i := range b.fields {
		if !all && !b.fields[i].Modified {
			continue
		}
		if b.fields[i].Protected {
			continue
		}
		start := b.fields[i].Start
		content := make([]byte, 0, b.fields[i].Length-1)
		for off := 1; off < b.fields[i].Length; off++ {
			addr := (start + off) % n
			content = append(content, b.cells[addr].Char)
		}
		for len(content) > 0 && (content[len(content)-1] == 0x00 || content[len(content)-1] == 0x40) {
			content = content[:len(content)-1]
		}
		out = append(out, ModifiedField{Address: (start + 1) % n, Bytes: content})
	}
	return out
}

// ReadBuffer returns every cell in address order (spec §4.2
// read_buffer), the raw material for a Read Buffer (RB) command reply.
func (b *ScreenBuffer) ReadBuffer() []Cell {
	out := make([]Cell, len(b.cells))
	copy(out, b.cells)
	return out
}

// ClearMDT clears the Modified flag on every field without altering
// content, used after a successful AID submit per spec §4.8 submit.
func (b *ScreenBuffer) ClearMDT() {
	for i := range b.fields {
		b.fields[i].Modified = false
	}
}
