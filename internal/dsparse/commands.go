// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Package dsparse implements the Data-Stream Parser (spec §4.3): it
// consumes one frame's 3270 command/order payload and drives a
// buffer.ScreenBuffer. It replaces the teacher library's readFields /
// readResponse pair, which only ever read a client's reply to a fixed
// screen the host itself had written; here the direction is reversed,
// and the full command/order vocabulary a real host can send must be
// understood, not just field values typed back.
package dsparse

import "fmt"

// Command is the first byte of a 3270 command payload (spec §4.3).
type Command byte

const (
	CmdWrite                Command = 0xF1
	CmdEraseWrite           Command = 0xF5
	CmdEraseWriteAlternate  Command = 0x7E
	CmdEraseAllUnprotected  Command = 0x6F
	CmdWriteStructuredField Command = 0xF3
	CmdReadBuffer           Command = 0xF2
	CmdReadModified         Command = 0xF6
	CmdReadModifiedAll      Command = 0x6E

	// SNA-flavored command codes, used over an SNA-session (BIND-IMAGE
	// negotiated) LU rather than plain TN3270.
	CmdSNAWrite                Command = 0x01
	CmdSNAEraseWrite           Command = 0x05
	CmdSNAEraseWriteAlternate  Command = 0x0D
	CmdSNAEraseAllUnprotected  Command = 0x0F
	CmdSNAWriteStructuredField Command = 0x11
	CmdSNAReadBuffer           Command = 0x02
	CmdSNAReadModified         Command = 0x06
	CmdSNAReadModifiedAll      Command = 0x0E
)

func (c Command) String() string {
	switch c {
	case CmdWrite, CmdSNAWrite:
		return "Write"
	case CmdEraseWrite, CmdSNAEraseWrite:
		return "EraseWrite"
	case CmdEraseWriteAlternate, CmdSNAEraseWriteAlternate:
		return "EraseWriteAlternate"
	case CmdEraseAllUnprotected, CmdSNAEraseAllUnprotected:
		return "EraseAllUnprotected"
	case CmdWriteStructuredField, CmdSNAWriteStructuredField:
		return "WriteStructuredField"
	case CmdReadBuffer, CmdSNAReadBuffer:
		return "ReadBuffer"
	case CmdReadModified, CmdSNAReadModified:
		return "ReadModified"
	case CmdReadModifiedAll, CmdSNAReadModifiedAll:
		return "ReadModifiedAll"
	default:
		return fmt.Sprintf("Command(0x%02x)", byte(c))
	}
}

// kind classifies a command for the parser's dispatch logic.
type kind int

const (
	kindUnknown kind = iota
	kindWrite
	kindEraseWrite
	kindEraseWriteAlt
	kindEraseAllUnprotected
	kindStructuredField
	kindRead
)

func classify(cmd Command) kind {
	switch cmd {
	case CmdWrite, CmdSNAWrite:
		return kindWrite
	case CmdEraseWrite, CmdSNAEraseWrite:
		return kindEraseWrite
	case CmdEraseWriteAlternate, CmdSNAEraseWriteAlternate:
		return kindEraseWriteAlt
	case CmdEraseAllUnprotected, CmdSNAEraseAllUnprotected:
		return kindEraseAllUnprotected
	case CmdWriteStructuredField, CmdSNAWriteStructuredField:
		return kindStructuredField
	case CmdReadBuffer, CmdSNAReadBuffer, CmdReadModified, CmdSNAReadModified,
		CmdReadModifiedAll, CmdSNAReadModifiedAll:
		return kindRead
	default:
		return kindUnknown
	}
}

// ReadKind distinguishes which read the host requested, so the Session
// Core knows how to build the reply (spec §4.4).
type ReadKind int

const (
	ReadNone ReadKind = iota
	ReadBuffer
	ReadModified
	ReadModifiedAll
)

func readKindOf(cmd Command) ReadKind {
	switch cmd {
	case CmdReadBuffer, CmdSNAReadBuffer:
		return ReadBuffer
	case CmdReadModified, CmdSNAReadModified:
		return ReadModified
	case CmdReadModifiedAll, CmdSNAReadModifiedAll:
		return ReadModifiedAll
	default:
		return ReadNone
	}
}

// Order bytes recognized within a Write/EraseWrite/EraseWriteAlternate
// command body (spec §4.3).
const (
	orderSF  byte = 0x1D
	orderSFE byte = 0x29
	orderSBA byte = 0x11
	orderSA  byte = 0x28
	orderMF  byte = 0x2C
	orderIC  byte = 0x13
	orderPT  byte = 0x05
	orderRA  byte = 0x3C
	orderEUA byte = 0x12
	orderGE  byte = 0x08
)

// WCC bit assignments for the Write Control Character that follows
// Write/EraseWrite/EraseWriteAlternate/WriteStructuredField (spec §4.3).
const (
	wccReset           byte = 0x40
	wccKeyboardRestore byte = 0x02
	wccResetMDT        byte = 0x01
	wccSoundAlarm      byte = 0x04
	wccStartPrinter    byte = 0x08
	wccUnformatted     byte = 0x20
)

// WCC is the decoded Write Control Character.
type WCC struct {
	Reset           bool
	KeyboardRestore bool
	ResetMDT        bool
	SoundAlarm      bool
	StartPrinter    bool
	Unformatted     bool
}

func parseWCC(b byte) WCC {
	return WCC{
		Reset:           b&wccReset != 0,
		KeyboardRestore: b&wccKeyboardRestore != 0,
		ResetMDT:        b&wccResetMDT != 0,
		SoundAlarm:      b&wccSoundAlarm != 0,
		StartPrinter:    b&wccStartPrinter != 0,
		Unformatted:     b&wccUnformatted != 0,
	}
}

// ParseError reports a malformed fixed-length order or structured field
// that the parser cannot safely continue past (spec §4.3).
type ParseError struct {
	Reason string
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dsparse: %s (at offset %d)", e.Reason, e.Offset)
}

func newParseError(offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Offset: offset}
}
