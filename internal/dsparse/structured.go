// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package dsparse

import "github.com/racingmars/tn3270/internal/buffer"

// Structured field IDs recognized inside a WriteStructuredField command
// body (spec §4.3).
const (
	sfidReadPartition   byte = 0x01
	sfidOutbound3270DS  byte = 0x40
	sfidEraseReset      byte = 0x03
	sfidSetReplyMode    byte = 0x09
	sfidBindImage       byte = 0x0D
	sfidSCSData         byte = 0x15
	sfidINDFile         byte = 0xD0
)

// Read Partition query types (the byte following sfidReadPartition and
// the partition id).
const (
	rpQuery     byte = 0x02
	rpQueryList byte = 0x03
)

// processStructuredFields walks a length-prefixed chain of structured
// fields. Each entry is 2-byte big-endian length (inclusive of the
// length field itself) + 1-byte ID + (length-3) bytes of data.
// Unrecognized IDs are skipped, never fatal (spec §4.3).
func (p *Parser) processStructuredFields(buf *buffer.ScreenBuffer, payload []byte, idx int, res *Result) (needsQueryReply bool, err error) {
	for idx < len(payload) {
		lenBytes, newIdx, terr := take(payload, idx, 2)
		if terr != nil {
			return needsQueryReply, newParseError(idx, "truncated structured field length: %v", terr)
		}
		sfLen := int(lenBytes[0])<<8 | int(lenBytes[1])
		if sfLen < 3 {
			return needsQueryReply, newParseError(idx, "structured field length %d smaller than 3", sfLen)
		}
		idx = newIdx

		body, newIdx, terr := take(payload, idx, sfLen-2)
		if terr != nil {
			return needsQueryReply, newParseError(idx, "truncated structured field body: %v", terr)
		}
		idx = newIdx

		id := body[0]
		data := body[1:]

		switch id {
		case sfidReadPartition:
			if len(data) >= 2 && (data[1] == rpQuery || data[1] == rpQueryList) {
				needsQueryReply = true
			}
		case sfidOutbound3270DS:
			// An embedded 3270 command/order stream: recurse through
			// the ordinary command dispatch (minus the leading WCC,
			// which Outbound3270DS repeats internally per its own
			// sub-command byte).
			if len(data) > 0 {
				if _, perr := p.Parse(buf, data); perr != nil {
					return needsQueryReply, perr
				}
			}
		case sfidEraseReset:
			buf.Clear()
		case sfidINDFile:
			// IND$FILE control message: handed to the Session Core's
			// indfile.Subcore verbatim, including the ID byte, since
			// the Subcore's own Subtype dispatch expects it (spec
			// §4.10).
			raw := make([]byte, len(data)+1)
			raw[0] = id
			copy(raw[1:], data)
			res.INDFileData = append(res.INDFileData, raw)
		case sfidSetReplyMode, sfidBindImage, sfidSCSData:
			// Recognized but not yet acted upon by the buffer model;
			// the Session Core inspects the raw structured field
			// stream separately when it needs BIND-IMAGE/SCS content.
		default:
			// Unknown ID: length-skip, never fatal.
		}
	}
	return needsQueryReply, nil
}
