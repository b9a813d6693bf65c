// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package tn3270

import (
	"bufio"
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/racingmars/tn3270/internal/buffer"
	"github.com/racingmars/tn3270/internal/dsbuild"
	"github.com/racingmars/tn3270/internal/dsparse"
	"github.com/racingmars/tn3270/internal/ebcdic"
	"github.com/racingmars/tn3270/internal/indfile"
	"github.com/racingmars/tn3270/internal/printer"
	"github.com/racingmars/tn3270/internal/telnet"
	"github.com/racingmars/tn3270/internal/tn3270e"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// fakeHost drives the server side of a net.Pipe connection through a
// minimal TN3270E handshake that mirrors what a real host does (spec
// §4.6), so the Session Core's negotiation loop can be exercised
// without dialing a real mainframe.
type fakeHost struct {
	conn net.Conn
}

func newFakeHost(conn net.Conn) *fakeHost { return &fakeHost{conn: conn} }

func (h *fakeHost) negotiate(t *testing.T) {
	t.Helper()
	r := bufio.NewReader(h.conn)

	h.conn.Write(telnet.EncodeOption(telnet.DO, telnet.OptTTYPE))
	h.expectIAC(t, r, telnet.WILL, telnet.OptTTYPE)

	h.conn.Write(telnet.EncodeSubnegotiation(telnet.OptTTYPE, []byte{0x01}))
	h.readSubnegotiation(t, r) // TERMINAL-TYPE IS ...

	h.conn.Write(telnet.EncodeOption(telnet.DO, telnet.OptBinary))
	h.expectIAC(t, r, telnet.WILL, telnet.OptBinary)

	h.conn.Write(telnet.EncodeOption(telnet.DO, telnet.OptEOR))
	h.expectIAC(t, r, telnet.WILL, telnet.OptEOR)

	h.conn.Write(telnet.EncodeOption(telnet.DO, telnet.OptTN3270E))
	h.expectIAC(t, r, telnet.WILL, telnet.OptTN3270E)

	sub := h.readSubnegotiation(t, r) // DEVICE-TYPE REQUEST <terminal-type>
	require.Equal(t, byte(0x02), sub[0]) // device-type subcommand

	reply := []byte{0x02, 0x04} // DEVICE-TYPE IS
	reply = append(reply, []byte("IBM-3278-2-E")...)
	h.conn.Write(telnet.EncodeSubnegotiation(telnet.OptTN3270E, reply))

	h.readSubnegotiation(t, r) // FUNCTIONS REQUEST ...

	h.conn.Write(telnet.EncodeSubnegotiation(telnet.OptTN3270E, []byte{0x03, 0x04, 0x01, 0x02}))
}

func (h *fakeHost) expectIAC(t *testing.T, r *bufio.Reader, cmd, option byte) {
	t.Helper()
	b := make([]byte, 3)
	_, err := r.Read(b)
	require.NoError(t, err)
	require.Equal(t, telnet.IAC, b[0])
	require.Equal(t, cmd, b[1])
	require.Equal(t, option, b[2])
}

func (h *fakeHost) readSubnegotiation(t *testing.T, r *bufio.Reader) []byte {
	t.Helper()
	f := telnet.NewFramer()
	for {
		b, err := r.ReadByte()
		require.NoError(t, err)
		for _, ev := range f.Push([]byte{b}) {
			if ev.Kind == telnet.EventSubnegotiation {
				return ev.Data
			}
		}
	}
}

func dialPipeSession(t *testing.T) (*Session, *fakeHost) {
	t.Helper()
	client, server := net.Pipe()

	host := newFakeHost(server)
	done := make(chan struct{})
	go func() {
		defer close(done)
		host.negotiate(t)
	}()

	s := &Session{
		cfg:      SessionConfig{Host: "test", Port: 23, TerminalType: "IBM-3278-2-E"}.withDefaults(),
		conn:     client,
		id:       uuid.New(),
		framer:   telnet.NewFramer(),
		parser:   dsparse.New(),
		printer:  printer.New(),
		indfile:  indfile.New(),
		codepage: ebcdic.CP037,
		state:    StateNegotiating,
	}
	s.log = logrus.WithField("session_id", s.id.String())

	err := s.negotiate(context.Background())
	require.NoError(t, err)
	s.state = StateReady

	<-done
	return s, host
}

func TestSessionNegotiatesToTN3270EReady(t *testing.T) {
	s, _ := dialPipeSession(t)
	defer s.conn.Close()

	require.Equal(t, StateReady, s.State())
	require.True(t, s.isTN3270E())
	require.Equal(t, "IBM-3278-2-E", s.Profile().DeviceType)
	require.Equal(t, 24, s.Profile().Rows)
	require.Equal(t, 80, s.Profile().Cols)
}

func TestSessionSubmitWritesTN3270EHeader(t *testing.T) {
	s, host := dialPipeSession(t)
	defer s.conn.Close()

	recvd := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4096)
		n, err := host.conn.Read(buf)
		if err != nil {
			recvd <- nil
			return
		}
		recvd <- buf[:n]
	}()

	err := s.Submit(dsbuild.AIDEnter)
	require.NoError(t, err)

	raw := <-recvd
	require.NotNil(t, raw)

	f := telnet.NewFramer()
	var record []byte
	for _, ev := range f.Push(raw) {
		if ev.Kind == telnet.EventRecord {
			record = ev.Data
		}
	}
	require.NotNil(t, record)

	header, payload, err := tn3270e.SplitHeader(record)
	require.NoError(t, err)
	require.Equal(t, tn3270e.DataType3270, header.DataType)
	require.Equal(t, uint16(1), header.SeqNumber)
	require.Equal(t, byte(dsbuild.AIDEnter), payload[0])
}

func TestAppendRecentCapsWindow(t *testing.T) {
	s := &Session{}
	for i := 0; i < 100; i++ {
		s.appendRecent([]byte{byte(i)})
	}
	require.Len(t, s.recentBytesWindow(), 64)
	require.Equal(t, byte(99), s.recentBytesWindow()[63])
}

func TestKeyTabMovesToNextUnprotectedField(t *testing.T) {
	s := &Session{buf: buffer.New(24, 80)}
	s.buf.StartField(10, buffer.AttrProtected)
	s.buf.StartField(20, 0) // unprotected, data begins at 21
	err := s.Key("Tab")
	require.NoError(t, err)
	require.Equal(t, 21, s.buf.Cursor())

	err = s.Key("bogus")
	require.Error(t, err)
}
