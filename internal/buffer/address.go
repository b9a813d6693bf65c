// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package buffer

// Package buffer implements the addressable screen model (spec §4.2):
// cells, fields, and the 12-bit/14-bit buffer address encoding shared by
// SBA, RA, and the AID submit cursor position. The encode/decode tables
// are the teacher library's screen.go/response.go logic generalized to
// run in both directions and to support 14-bit addressing for larger
// (oversize/alternate) screens, which the teacher's host-emulation-only
// use case never needed.

// codes are the 3270 control-character I/O codes for 12-bit addressing,
// from Figure D-1 of GA23-0059-00 (Figure C-1 in later editions). Index
// by a 6-bit value 0-63 to get its buffer-address encoding byte.
var codes = [64]byte{
	0x40, 0xc1, 0xc2, 0xc3, 0xc4, 0xc5, 0xc6, 0xc7, 0xc8,
	0xc9, 0x4a, 0x4b, 0x4c, 0x4d, 0x4e, 0x4f, 0x50, 0xd1, 0xd2, 0xd3, 0xd4,
	0xd5, 0xd6, 0xd7, 0xd8, 0xd9, 0x5a, 0x5b, 0x5c, 0x5d, 0x5e, 0x5f, 0x60,
	0x61, 0xe2, 0xe3, 0xe4, 0xe5, 0xe6, 0xe7, 0xe8, 0xe9, 0x6a, 0x6b, 0x6c,
	0x6d, 0x6e, 0x6f, 0xf0, 0xf1, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6, 0xf7, 0xf8,
	0xf9, 0x7a, 0x7b, 0x7c, 0x7d, 0x7e, 0x7f,
}

// EncodeAddress12 encodes a linear buffer address 0..4095 using the
// classic 12-bit two-byte encoding (screens up to 64x64 / 4096 cells).
func EncodeAddress12(addr int) [2]byte {
	hi := (addr & 0xFC0) >> 6
	lo := addr & 0x3F
	return [2]byte{codes[hi&0x3F], codes[lo&0x3F]}
}

// EncodeAddress14 encodes a linear buffer address using the 14-bit
// encoding required for screens larger than 4096 cells. The top two bits
// of the first byte are left clear to distinguish this form from the
// 12-bit form on the wire per spec §6.
func EncodeAddress14(addr int) [2]byte {
	hi := byte((addr >> 8) & 0x3F)
	lo := byte(addr & 0xFF)
	return [2]byte{hi, lo}
}

// EncodeAddress chooses 12-bit encoding for addresses that fit in 12
// bits and 14-bit encoding otherwise, matching how a real 3270 control
// unit picks an encoding based on screen size.
func EncodeAddress(addr int) [2]byte {
	if addr <= 0xFFF {
		return EncodeAddress12(addr)
	}
	return EncodeAddress14(addr)
}

// DecodeAddress decodes a 2-byte buffer address, detecting 12-bit vs.
// 14-bit form from the top two bits of the first byte per spec §6: a
// first byte whose top two bits are both zero carries a raw 14-bit
// binary address; any other value is a 12-bit address run through the
// control-code-safe alphabet in the codes table above (whose low 6 bits
// always equal the original 6-bit value, so masking with 0x3F recovers
// it whether or not the byte came from that exact table).
func DecodeAddress(raw [2]byte) int {
	if raw[0]&0xC0 == 0x00 {
		hi := int(raw[0]&0x3F) << 8
		lo := int(raw[1])
		return hi | lo
	}
	hi := int(raw[0]&0x3F) << 6
	lo := int(raw[1] & 0x3F)
	return hi | lo
}
