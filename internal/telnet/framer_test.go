// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package telnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushWillDo(t *testing.T) {
	f := NewFramer()
	events := f.Push([]byte{IAC, WILL, OptTTYPE, IAC, DO, OptEOR})

	require.Len(t, events, 2)
	require.Equal(t, Event{Kind: EventWill, Option: OptTTYPE}, events[0])
	require.Equal(t, Event{Kind: EventDo, Option: OptEOR}, events[1])
}

func TestPushAcrossMultipleCalls(t *testing.T) {
	f := NewFramer()
	events := f.Push([]byte{IAC})
	require.Empty(t, events)

	events = f.Push([]byte{WILL, OptBinary})
	require.Len(t, events, 1)
	require.Equal(t, Event{Kind: EventWill, Option: OptBinary}, events[0])
}

func TestEscapedIACInRecord(t *testing.T) {
	f := NewFramer()
	events := f.Push([]byte{0x01, IAC, IAC, 0x02, IAC, EOR})

	require.Len(t, events, 1)
	require.Equal(t, []byte{0x01, 0xFF, 0x02}, events[0].Data)
}

func TestSubnegotiationRoundTrip(t *testing.T) {
	f := NewFramer()
	payload := []byte{0x02, 'I', 'B', 'M', 0xFF & 0x00, 0x01}
	wire := EncodeSubnegotiation(OptTTYPE, payload)
	events := f.Push(wire)

	require.Len(t, events, 1)
	require.Equal(t, EventSubnegotiation, events[0].Kind)
	require.Equal(t, OptTTYPE, events[0].Option)
	require.Equal(t, payload, events[0].Data)
}

func TestSubnegotiationWithEscapedIACPayload(t *testing.T) {
	f := NewFramer()
	payload := []byte{0x05, 0xFF, 0x06}
	wire := EncodeSubnegotiation(OptTN3270E, payload)
	events := f.Push(wire)

	require.Len(t, events, 1)
	require.Equal(t, payload, events[0].Data)
}

func TestRecordFraming(t *testing.T) {
	f := NewFramer()
	msg := []byte{0xF1, 0x11, 0x40, 0x40, 0x1D, 0xC1}
	wire := EncodeRecord(msg)
	events := f.Push(wire)

	require.Len(t, events, 1)
	require.Equal(t, EventRecord, events[0].Kind)
	require.Equal(t, msg, events[0].Data)
}

func TestGAAndNOPIgnored(t *testing.T) {
	f := NewFramer()
	events := f.Push([]byte{IAC, GA, IAC, NOP, 0x41, IAC, EOR})

	require.Len(t, events, 1)
	require.Equal(t, []byte{0x41}, events[0].Data)
}

func TestMalformedSubnegotiationResyncs(t *testing.T) {
	f := NewFramer()
	// IAC SB opt data IAC <garbage> then a normal DO should still decode.
	events := f.Push([]byte{IAC, SB, OptTTYPE, 0x01, IAC, 0x05, IAC, DO, OptBinary})

	require.Len(t, events, 1)
	require.Equal(t, Event{Kind: EventDo, Option: OptBinary}, events[0])
}

func TestEncodeOption(t *testing.T) {
	require.Equal(t, []byte{IAC, WILL, OptTN3270E}, EncodeOption(WILL, OptTN3270E))
}

func TestEscapeIAC(t *testing.T) {
	require.Equal(t, []byte{0x01, IAC, IAC, 0x02}, EscapeIAC([]byte{0x01, IAC, 0x02}))
}
