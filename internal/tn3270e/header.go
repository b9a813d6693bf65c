// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Package tn3270e encodes and decodes the 5-byte TN3270E header (spec
// §4.7, RFC 2355 §3) that precedes every TN3270E-mode data record once
// the TN3270E Telnet option has been negotiated.
package tn3270e

import "fmt"

// DataType identifies the content of a TN3270E record.
type DataType byte

const (
	DataType3270     DataType = 0x00
	DataTypeSCSPrint  DataType = 0x01
	DataTypeResponse DataType = 0x02
	DataTypeBIND     DataType = 0x03
	DataTypeUnbind   DataType = 0x04
	DataTypeNVT      DataType = 0x05
	DataTypeRequest  DataType = 0x06
	DataTypeSSCPLU   DataType = 0x07
	DataTypePrintEOJ DataType = 0x08
)

func (d DataType) String() string {
	switch d {
	case DataType3270:
		return "3270-DATA"
	case DataTypeSCSPrint:
		return "SCS-DATA"
	case DataTypeResponse:
		return "RESPONSE"
	case DataTypeBIND:
		return "BIND-IMAGE"
	case DataTypeUnbind:
		return "UNBIND"
	case DataTypeNVT:
		return "NVT-DATA"
	case DataTypeRequest:
		return "REQUEST"
	case DataTypeSSCPLU:
		return "SSCP-LU-DATA"
	case DataTypePrintEOJ:
		return "PRINT-EOJ"
	default:
		return fmt.Sprintf("DATA-TYPE(0x%02x)", byte(d))
	}
}

// RequestFlag qualifies a request for a positive/negative response.
type RequestFlag byte

const (
	RequestFlagNone          RequestFlag = 0x00
	RequestFlagErrorCond     RequestFlag = 0x01
	RequestFlagSenseOrRespond RequestFlag = 0x02
)

// ResponseFlag reports how the peer wants (or is reporting) a response.
type ResponseFlag byte

const (
	ResponseFlagNoResponse  ResponseFlag = 0x00
	ResponseFlagErrorResp   ResponseFlag = 0x01
	ResponseFlagAlwaysResp  ResponseFlag = 0x02
	ResponseFlagPositive    ResponseFlag = 0x00
	ResponseFlagNegative    ResponseFlag = 0x01
)

// HeaderLen is the fixed size of a TN3270E header in bytes.
const HeaderLen = 5

// Header is the 5-byte TN3270E record header: DATA-TYPE, REQUEST-FLAG,
// RESPONSE-FLAG, and a 2-byte SEQ-NUMBER.
type Header struct {
	DataType     DataType
	RequestFlag  RequestFlag
	ResponseFlag ResponseFlag
	SeqNumber    uint16
}

// Encode serializes the header to its 5-byte wire form.
func (h Header) Encode() [HeaderLen]byte {
	var out [HeaderLen]byte
	out[0] = byte(h.DataType)
	out[1] = byte(h.RequestFlag)
	out[2] = byte(h.ResponseFlag)
	out[3] = byte(h.SeqNumber >> 8)
	out[4] = byte(h.SeqNumber)
	return out
}

// Decode parses a 5-byte TN3270E header. It returns an error if raw is
// shorter than HeaderLen.
func Decode(raw []byte) (Header, error) {
	if len(raw) < HeaderLen {
		return Header{}, fmt.Errorf("tn3270e: short header: got %d bytes, need %d", len(raw), HeaderLen)
	}
	return Header{
		DataType:     DataType(raw[0]),
		RequestFlag:  RequestFlag(raw[1]),
		ResponseFlag: ResponseFlag(raw[2]),
		SeqNumber:    uint16(raw[3])<<8 | uint16(raw[4]),
	}, nil
}

// SplitHeader separates a raw TN3270E record into its header and
// trailing payload.
func SplitHeader(raw []byte) (Header, []byte, error) {
	h, err := Decode(raw)
	if err != nil {
		return Header{}, nil, err
	}
	return h, raw[HeaderLen:], nil
}

// Wrap prepends an encoded header to payload, producing a full
// TN3270E record ready for Telnet record framing.
func Wrap(h Header, payload []byte) []byte {
	enc := h.Encode()
	out := make([]byte, 0, HeaderLen+len(payload))
	out = append(out, enc[:]...)
	out = append(out, payload...)
	return out
}

// PositiveResponse builds the header for an affirmative RESPONSE record
// replying to the request identified by seq.
func PositiveResponse(seq uint16) Header {
	return Header{
		DataType:     DataTypeResponse,
		ResponseFlag: ResponseFlagPositive,
		SeqNumber:    seq,
	}
}

// NegativeResponse builds the header for a negative RESPONSE record
// replying to the request identified by seq.
func NegativeResponse(seq uint16) Header {
	return Header{
		DataType:     DataTypeResponse,
		ResponseFlag: ResponseFlagNegative,
		SeqNumber:    seq,
	}
}
