// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Package dsbuild implements the Data-Stream Builder (spec §4.4): it
// constructs outbound 3270 byte sequences from a ScreenBuffer and a
// NegotiatedProfile. It generalizes the teacher library's WriteScreen,
// sba, and sf helpers in screen.go — which only ever built one fixed
// kind of frame (erase/write a Screen literal) — into builders for AID
// submits and query replies. IND$FILE control messages and printer
// status structured fields are built by internal/indfile and
// internal/printer, not by this package.
package dsbuild

import (
	"github.com/racingmars/tn3270/internal/buffer"
	"github.com/racingmars/tn3270/internal/negotiate"
)

// AID is an Action ID byte, carried as the first byte of a submit
// frame (spec §4.4, §6).
type AID byte

const (
	AIDNone  AID = 0x60
	AIDEnter AID = 0x7D
	AIDClear AID = 0x6D
	AIDPA1   AID = 0x6C
	AIDPA2   AID = 0x6E
	AIDPA3   AID = 0x6B
	AIDPF1   AID = 0xF1
	AIDPF2   AID = 0xF2
	AIDPF3   AID = 0xF3
	AIDPF4   AID = 0xF4
	AIDPF5   AID = 0xF5
	AIDPF6   AID = 0xF6
	AIDPF7   AID = 0xF7
	AIDPF8   AID = 0xF8
	AIDPF9   AID = 0xF9
	AIDPF10  AID = 0x7A
	AIDPF11  AID = 0x7B
	AIDPF12  AID = 0x7C
	AIDPF13  AID = 0xC1
	AIDPF14  AID = 0xC2
	AIDPF15  AID = 0xC3
	AIDPF16  AID = 0xC4
	AIDPF17  AID = 0xC5
	AIDPF18  AID = 0xC6
	AIDPF19  AID = 0xC7
	AIDPF20  AID = 0xC8
	AIDPF21  AID = 0xC9
	AIDPF22  AID = 0x4A
	AIDPF23  AID = 0x4B
	AIDPF24  AID = 0x4C
)

// String returns the AID's conventional key name, mirroring the
// teacher library's AIDtoString.
func (a AID) String() string {
	switch a {
	case AIDNone:
		return "[none]"
	case AIDEnter:
		return "Enter"
	case AIDClear:
		return "Clear"
	case AIDPA1:
		return "PA1"
	case AIDPA2:
		return "PA2"
	case AIDPA3:
		return "PA3"
	case AIDPF1:
		return "PF1"
	case AIDPF2:
		return "PF2"
	case AIDPF3:
		return "PF3"
	case AIDPF4:
		return "PF4"
	case AIDPF5:
		return "PF5"
	case AIDPF6:
		return "PF6"
	case AIDPF7:
		return "PF7"
	case AIDPF8:
		return "PF8"
	case AIDPF9:
		return "PF9"
	case AIDPF10:
		return "PF10"
	case AIDPF11:
		return "PF11"
	case AIDPF12:
		return "PF12"
	case AIDPF13:
		return "PF13"
	case AIDPF14:
		return "PF14"
	case AIDPF15:
		return "PF15"
	case AIDPF16:
		return "PF16"
	case AIDPF17:
		return "PF17"
	case AIDPF18:
		return "PF18"
	case AIDPF19:
		return "PF19"
	case AIDPF20:
		return "PF20"
	case AIDPF21:
		return "PF21"
	case AIDPF22:
		return "PF22"
	case AIDPF23:
		return "PF23"
	case AIDPF24:
		return "PF24"
	default:
		return "[unknown]"
	}
}

const orderSBA byte = 0x11

// BuildSubmit builds an AID submit frame: AID byte, cursor address (2
// bytes), then SBA + contents for each modified field (spec §4.4, §6).
func BuildSubmit(buf *buffer.ScreenBuffer, aid AID) []byte {
	var out []byte
	out = append(out, byte(aid))
	cursorAddr := buffer.EncodeAddress(buf.Cursor())
	out = append(out, cursorAddr[:]...)

	for _, mf := range buf.ReadModified(false) {
		addr := buffer.EncodeAddress(mf.Address)
		out = append(out, orderSBA, addr[0], addr[1])
		out = append(out, mf.Bytes...)
	}
	return out
}

// Query reply structured field IDs and the reply SF wrapper ID
// (spec §4.4).
const (
	sfidQueryReply     byte = 0x81
	qrSummary          byte = 0x80
	qrUsableArea       byte = 0x81
	qrCharacterSets    byte = 0x85
	qrColor            byte = 0x86
	qrHighlighting     byte = 0x87
	qrDBCSAsia         byte = 0x91
	qrImplicitPart     byte = 0xA6
	qrReplyModes       byte = 0x88
)

// BuildQueryReplies builds the set of Query Reply structured fields
// describing the terminal's capabilities, derived from the negotiated
// profile and buffer dimensions (spec §4.4).
func BuildQueryReplies(profile negotiate.Profile, buf *buffer.ScreenBuffer) [][]byte {
	rows, cols := buf.Rows, buf.Cols

	replies := [][]byte{
		wrapReply(qrSummary, []byte{qrUsableArea, qrCharacterSets, qrColor, qrHighlighting, qrReplyModes, qrImplicitPart}),
		wrapReply(qrUsableArea, usableAreaPayload(rows, cols)),
		wrapReply(qrCharacterSets, []byte{0x00}),
		wrapReply(qrHighlighting, []byte{0x04, 0xF0, 0x00, 0xF1, 0x01, 0xF2, 0x02, 0xF4, 0x04}),
		wrapReply(qrReplyModes, []byte{0x00, 0x01, 0x02}),
		wrapReply(qrImplicitPart, implicitPartitionPayload(rows, cols)),
	}

	if profile.Color {
		replies = append(replies, wrapReply(qrColor, colorPayload()))
	}
	if hasDBCSFunction(profile) {
		replies = append(replies, wrapReply(qrDBCSAsia, []byte{0x00}))
	}
	return replies
}

func wrapReply(qrID byte, data []byte) []byte {
	body := append([]byte{sfidQueryReply, qrID}, data...)
	length := len(body) + 2
	out := []byte{byte(length >> 8), byte(length)}
	return append(out, body...)
}

func usableAreaPayload(rows, cols int) []byte {
	return []byte{
		0x01, 0x00,
		byte(cols >> 8), byte(cols),
		byte(rows >> 8), byte(rows),
		0x01, 0x00, 0x00, 0x02, 0xE6, 0x00, 0x02, 0xE6,
	}
}

func implicitPartitionPayload(rows, cols int) []byte {
	return []byte{
		0x0B, 0x01,
		byte(cols >> 8), byte(cols),
		byte(rows >> 8), byte(rows),
	}
}

func colorPayload() []byte {
	return []byte{0x00, 0x08,
		0x00, 0xF0, 0x01, 0xF1, 0x02, 0xF2, 0x03, 0xF3,
		0x04, 0xF4, 0x05, 0xF5, 0x06, 0xF6, 0x07, 0xF7,
	}
}

func hasDBCSFunction(profile negotiate.Profile) bool {
	// DBCS-Asia reply is only meaningful once the negotiator exposes a
	// DBCS device type; scaffolding only (spec §4.1 "decode_dbcs").
	return false
}
