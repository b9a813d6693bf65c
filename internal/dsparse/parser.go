// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package dsparse

import "github.com/racingmars/tn3270/internal/buffer"

// Result summarizes what a parsed frame asked the Session Core to do,
// beyond the direct ScreenBuffer mutations the Parser already applied.
type Result struct {
	Command  Command
	WCC      WCC
	ReadKind ReadKind

	// NeedsQueryReply is set when a Read Partition Query/QueryList
	// structured field was seen inside a WriteStructuredField command
	// (spec §4.4 "Query replies").
	NeedsQueryReply bool

	// SoundAlarm/StartPrinter/KeyboardRestore mirror the WCC flags so
	// callers that only care about side effects don't need to inspect
	// WCC directly.
	SoundAlarm      bool
	StartPrinter    bool
	KeyboardRestore bool

	// INDFileData carries the raw bytes (ID byte included) of every
	// IND$FILE structured field seen in this frame, in order, for the
	// Session Core to feed to an indfile.Subcore (spec §4.10).
	INDFileData [][]byte
}

// Parser drives a buffer.ScreenBuffer from one frame's 3270 payload. A
// Parser holds no state across calls; the mutable ScreenBuffer pointer
// is scoped to a single Parse call (spec §4.2 Ownership).
type Parser struct{}

// New returns a ready-to-use Parser.
func New() *Parser { return &Parser{} }

// Parse consumes payload (a single frame's worth of 3270 command bytes)
// against buf and returns what the Session Core must still do in
// response.
func (p *Parser) Parse(buf *buffer.ScreenBuffer, payload []byte) (Result, error) {
	if len(payload) == 0 {
		return Result{}, newParseError(0, "empty payload")
	}

	cmd := Command(payload[0])
	res := Result{Command: cmd}
	idx := 1

	switch classify(cmd) {
	case kindEraseAllUnprotected:
		buf.EraseUnprotectedAll()
		return res, nil

	case kindRead:
		res.ReadKind = readKindOf(cmd)
		return res, nil

	case kindWrite, kindEraseWrite, kindEraseWriteAlt:
		if idx >= len(payload) {
			return res, newParseError(idx, "missing WCC byte")
		}
		wcc := parseWCC(payload[idx])
		idx++
		if classify(cmd) != kindWrite {
			buf.Clear()
		}
		res.WCC = wcc
		res.SoundAlarm = wcc.SoundAlarm
		res.StartPrinter = wcc.StartPrinter
		res.KeyboardRestore = wcc.KeyboardRestore
		if err := p.processOrders(buf, payload, idx); err != nil {
			return res, err
		}
		if wcc.ResetMDT {
			buf.ClearMDT()
		}
		return res, nil

	case kindStructuredField:
		if idx >= len(payload) {
			return res, newParseError(idx, "missing WCC byte")
		}
		wcc := parseWCC(payload[idx])
		idx++
		res.WCC = wcc
		needsQuery, err := p.processStructuredFields(buf, payload, idx, &res)
		if err != nil {
			return res, err
		}
		res.NeedsQueryReply = needsQuery
		return res, nil

	default:
		return res, newParseError(0, "unrecognized command byte 0x%02x", byte(cmd))
	}
}

// processOrders walks a Write/EraseWrite/EraseWriteAlternate command
// body applying orders sequentially, per spec §4.3 "orders apply
// sequentially; SBA before data".
func (p *Parser) processOrders(buf *buffer.ScreenBuffer, payload []byte, idx int) error {
	nextCharset := byte(0)

	for idx < len(payload) {
		b := payload[idx]
		idx++

		switch b {
		case orderSBA:
			raw, newIdx, err := take(payload, idx, 2)
			if err != nil {
				return newParseError(idx, "truncated SBA: %v", err)
			}
			idx = newIdx
			buf.SetAddress(buffer.DecodeAddress([2]byte{raw[0], raw[1]}))

		case orderSF:
			raw, newIdx, err := take(payload, idx, 1)
			if err != nil {
				return newParseError(idx, "truncated SF: %v", err)
			}
			idx = newIdx
			buf.StartField(buf.CurrentAddress(), raw[0])
			buf.AdvanceAddress(1)

		case orderSFE:
			if idx >= len(payload) {
				return newParseError(idx, "truncated SFE: missing pair count")
			}
			n := int(payload[idx])
			idx++
			pairs, newIdx, err := take(payload, idx, n*2)
			if err != nil {
				return newParseError(idx, "truncated SFE: %v", err)
			}
			idx = newIdx
			attr, color, hl, charset := decodeAttributePairs(pairs)
			buf.StartFieldExtended(buf.CurrentAddress(), attr, color, hl, charset)
			buf.AdvanceAddress(1)

		case orderSA:
			raw, newIdx, err := take(payload, idx, 2)
			if err != nil {
				return newParseError(idx, "truncated SA: %v", err)
			}
			idx = newIdx
			attr, color, hl, charset := decodeAttributePairs(raw)
			_ = attr
			buf.SetAttribute(color, hl, charset)

		case orderMF:
			if idx >= len(payload) {
				return newParseError(idx, "truncated MF: missing pair count")
			}
			n := int(payload[idx])
			idx++
			_, newIdx, err := take(payload, idx, n*2)
			if err != nil {
				return newParseError(idx, "truncated MF: %v", err)
			}
			idx = newIdx
			// Field attribute modification of the current field is
			// scaffolding only: no ScreenBuffer mutator accepts a
			// partial re-attribute of an existing field without
			// restating its start order, so MF is parsed (to stay on
			// a recognizable order boundary) but is a no-op.

		case orderIC:
			buf.SetCursor(buf.CurrentAddress())

		case orderPT:
			buf.SetAddress(NextUnprotectedAddress(buf))

		case orderRA:
			raw, newIdx, err := take(payload, idx, 2)
			if err != nil {
				return newParseError(idx, "truncated RA: %v", err)
			}
			idx = newIdx
			target := buffer.DecodeAddress([2]byte{raw[0], raw[1]})
			if idx >= len(payload) {
				return newParseError(idx, "truncated RA: missing repeat char")
			}
			ch := payload[idx]
			idx++
			if ch == orderGE {
				if idx >= len(payload) {
					return newParseError(idx, "truncated RA: missing GE char")
				}
				ch = payload[idx]
				idx++
			}
			buf.RepeatToAddress(ch, target)

		case orderEUA:
			raw, newIdx, err := take(payload, idx, 2)
			if err != nil {
				return newParseError(idx, "truncated EUA: %v", err)
			}
			idx = newIdx
			buf.EraseUnprotectedToAddress(buffer.DecodeAddress([2]byte{raw[0], raw[1]}))

		case orderGE:
			if idx >= len(payload) {
				return newParseError(idx, "truncated GE: missing character")
			}
			nextCharset = 1 // non-zero marks "alternate charset" scaffolding
			buf.WriteCharAt(payload[idx])
			idx++
			_ = nextCharset
			nextCharset = 0

		default:
			// Plain data byte: write and advance (spec §4.3: unknown
			// order bytes are skipped, but any byte not matching a
			// known order here is ordinary field data).
			buf.WriteCharAt(b)
		}
	}
	return nil
}

// take returns payload[idx:idx+n] and the advanced index, or an error
// if payload is too short.
func take(payload []byte, idx, n int) ([]byte, int, error) {
	if idx+n > len(payload) {
		return nil, idx, errShortPayload
	}
	return payload[idx : idx+n], idx + n, nil
}

var errShortPayload = shortPayloadError{}

type shortPayloadError struct{}

func (shortPayloadError) Error() string { return "short payload" }

// decodeAttributePairs interprets SFE/SA type/value pairs. Recognized
// attribute types: 0xC0 basic field attribute, 0x41 extended
// highlighting, 0x42 foreground color, 0x43 character set.
func decodeAttributePairs(pairs []byte) (attr, color byte, hl buffer.Highlight, charset byte) {
	for i := 0; i+1 < len(pairs); i += 2 {
		typ, val := pairs[i], pairs[i+1]
		switch typ {
		case 0xC0:
			attr = val
		case 0x41:
			hl = decodeHighlight(val)
		case 0x42:
			color = val
		case 0x43:
			charset = val
		}
	}
	return attr, color, hl, charset
}

func decodeHighlight(val byte) buffer.Highlight {
	switch val {
	case 0xF1:
		return buffer.HighlightBlink
	case 0xF2:
		return buffer.HighlightReverse
	case 0xF4:
		return buffer.HighlightUnderscore
	default:
		return buffer.HighlightNormal
	}
}

// NextUnprotectedAddress implements the PT (program tab) order: advance
// to the first data position of the next unprotected field after the
// current address, wrapping around the buffer. Exported so the Session
// Core can implement a Tab key without duplicating field-scan logic.
func NextUnprotectedAddress(buf *buffer.ScreenBuffer) int {
	fields := buf.Fields()
	if len(fields) == 0 {
		return buf.CurrentAddress()
	}
	cur := buf.CurrentAddress()
	size := buf.Size()

	best := -1
	bestDist := size + 1
	for _, f := range fields {
		if f.Protected {
			continue
		}
		dataAddr := (f.Start + 1) % size
		dist := dataAddr - cur
		if dist <= 0 {
			dist += size
		}
		if dist < bestDist {
			bestDist = dist
			best = dataAddr
		}
	}
	if best == -1 {
		return cur
	}
	return best
}
