// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Package tn3270 is a pure-userland TN3270/TN3270E terminal emulator
// client library: it negotiates a session with a 3270 host, maintains
// a ScreenBuffer, and exposes a small synchronous API (Connect,
// ReadFrame, Submit, WriteString, Key, Close) over the cooperative
// single-task core described in the component packages under
// internal/.
//
// This inverts the teacher library's role: go3270 emulated the host
// side of a 3270 session, serving screens to a real terminal; this
// package is the terminal, talking to a real host.
package tn3270

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/racingmars/tn3270/internal/buffer"
	"github.com/racingmars/tn3270/internal/dsbuild"
	"github.com/racingmars/tn3270/internal/dsparse"
	"github.com/racingmars/tn3270/internal/ebcdic"
	"github.com/racingmars/tn3270/internal/indfile"
	"github.com/racingmars/tn3270/internal/negotiate"
	"github.com/racingmars/tn3270/internal/printer"
	"github.com/racingmars/tn3270/internal/telnet"
	"github.com/racingmars/tn3270/internal/tn3270e"
	"github.com/sirupsen/logrus"
)

// State is the Session's position in the spec §4.8 state machine.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateNegotiating
	StateReady
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateNegotiating:
		return "NEGOTIATING"
	case StateReady:
		return "READY"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// FrameKind classifies what ReadFrame returned.
type FrameKind int

const (
	FrameData FrameKind = iota
	FramePrinterJob
	FrameNVT
	FrameUnbind
)

// Frame is the result of one ReadFrame call.
type Frame struct {
	Kind    FrameKind
	Result  dsparse.Result
	Job     printer.Job
	NVTData []byte
}

// Session is a single connection to a 3270 host. A Session is not safe
// for concurrent use from multiple goroutines; operations are meant to
// be serialized by the caller (spec §5).
type Session struct {
	cfg SessionConfig
	log *logrus.Entry
	id  uuid.UUID

	conn  net.Conn
	ioBuf [4096]byte

	framer   *telnet.Framer
	profile  negotiate.Profile
	buf      *buffer.ScreenBuffer
	parser   *dsparse.Parser
	codepage ebcdic.Codepage
	printer  *printer.Subcore
	indfile  *indfile.Subcore

	state   State
	nvtMode bool
	seq     uint16
	lastSeq uint16
	recent  []byte
}

// Connect dials host:port, runs Telnet + TN3270E negotiation, sizes the
// ScreenBuffer from the negotiated profile, and returns a Session in
// the READY state (spec §4.8 connect).
func Connect(ctx context.Context, cfg SessionConfig) (*Session, error) {
	cfg = cfg.withDefaults()

	codepage, _ := ebcdic.ByID(cfg.Codepage)

	s := &Session{
		cfg:      cfg,
		id:       uuid.New(),
		framer:   telnet.NewFramer(),
		parser:   dsparse.New(),
		printer:  printer.New(),
		indfile:  indfile.New(),
		codepage: codepage,
		state:    StateConnecting,
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s.log = logger.WithFields(logrus.Fields{
		"session_id": s.id.String(),
		"host":       cfg.Host,
		"port":       cfg.Port,
	})
	s.log.Debug("connecting")

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		s.state = StateClosed
		return nil, s.newError(KindTransportError, err, "dial failed")
	}

	if cfg.UseTLS {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: cfg.Host})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			s.state = StateClosed
			return nil, s.newError(KindTransportError, err, "tls handshake failed")
		}
		conn = tlsConn
	}
	s.conn = conn

	s.state = StateNegotiating
	if err := s.negotiate(ctx); err != nil {
		s.conn.Close()
		s.state = StateClosed
		return nil, err
	}

	s.state = StateReady
	s.log.WithField("mode", s.profile.Mode.String()).Info("session ready")
	return s, nil
}

func (s *Session) negotiate(ctx context.Context) error {
	negotiator := negotiate.New(s.cfg.negotiateConfig())
	deadline := time.Now().Add(s.cfg.NegotiationTimeout)

	for {
		if err := ctx.Err(); err != nil {
			return s.newError(KindTimeout, err, "negotiation canceled")
		}
		s.conn.SetReadDeadline(deadline)
		n, err := s.conn.Read(s.ioBuf[:])
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return s.newError(KindNegotiationError, err, "timed out before READY")
			}
			return s.newError(KindTransportError, err, "negotiation read failed")
		}

		for _, ev := range s.framer.Push(s.ioBuf[:n]) {
			if ev.Kind == telnet.EventRecord {
				if !negotiator.Done() && negotiate.ConsiderNVTFallback(ev.Data) {
					s.nvtMode = true
					s.profile = negotiate.Profile{Rows: 24, Cols: 80, Mode: negotiate.ModeNVT}
					s.finishSizing()
					s.log.Warn("adopting NVT-ASCII mode: no TN3270E handshake seen")
					return nil
				}
				continue
			}
			out, herr := negotiator.HandleEvent(ev)
			if herr != nil {
				return s.newError(KindNegotiationError, herr, "negotiation event handling failed")
			}
			if len(out) > 0 {
				if _, werr := s.conn.Write(out); werr != nil {
					return s.newError(KindTransportError, werr, "negotiation write failed")
				}
			}
		}

		if negotiator.Done() {
			if err := negotiator.Err(); err != nil {
				return s.newError(KindNegotiationError, err, "negotiation failed")
			}
			s.profile = negotiator.Profile()
			s.finishSizing()
			return nil
		}
	}
}

func (s *Session) finishSizing() {
	rows, cols := s.profile.Rows, s.profile.Cols
	if rows <= 0 || cols <= 0 {
		rows, cols = 24, 80
	}
	s.buf = buffer.New(rows, cols)
}

func (s *Session) isTN3270E() bool {
	return s.profile.Mode == negotiate.ModeTN3270E || s.profile.Mode == negotiate.ModeTN3270EPrinter
}

// ScreenBuffer returns the session's buffer for read-only inspection
// between ReadFrame calls (spec §4.2 Ownership: readers are not allowed
// concurrently with a parser frame, which this single-task model
// already guarantees by construction).
func (s *Session) ScreenBuffer() *buffer.ScreenBuffer { return s.buf }

// Profile returns the negotiated session profile.
func (s *Session) Profile() negotiate.Profile { return s.profile }

// ScreenText decodes the current ScreenBuffer through the session's
// codepage and returns it as one string per row, for callers that just
// want to display the screen rather than walk buffer.Cell values.
func (s *Session) ScreenText() []string {
	rows := make([]string, s.buf.Rows)
	raw := make([]byte, s.buf.Cols)
	for row := 0; row < s.buf.Rows; row++ {
		for col := 0; col < s.buf.Cols; col++ {
			raw[col] = s.buf.Cell(row*s.buf.Cols + col).Char
		}
		rows[row] = s.codepage.Decode(raw)
	}
	return rows
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// ReadFrame blocks until the next inbound application record has been
// processed, or timeout elapses (spec §4.8 read_frame).
func (s *Session) ReadFrame(timeout time.Duration) (Frame, error) {
	if s.state != StateReady {
		return Frame{}, s.newError(KindProtocolError, nil, "read_frame called while state is %s", s.state)
	}
	s.conn.SetReadDeadline(time.Now().Add(timeout))

	for {
		record, err := s.nextRecord()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return Frame{}, s.newError(KindTimeout, err, "read_frame timed out")
			}
			s.state = StateClosed
			return Frame{}, s.newError(KindTransportError, err, "read_frame failed")
		}

		if s.nvtMode {
			return Frame{Kind: FrameNVT, NVTData: record}, nil
		}

		header, payload, isTN3270E, herr := s.splitRecord(record)
		if herr != nil {
			return Frame{}, s.newError(KindProtocolError, herr, "malformed TN3270E header")
		}
		s.lastSeq = header.SeqNumber

		switch header.DataType {
		case tn3270e.DataTypeUnbind:
			s.state = StateClosing
			return Frame{Kind: FrameUnbind}, nil

		case tn3270e.DataTypeSCSPrint:
			s.printer.ConsumeSCS(payload)
			continue

		case tn3270e.DataTypePrintEOJ:
			job := s.printer.EndJob()
			return Frame{Kind: FramePrinterJob, Job: job}, nil

		case tn3270e.DataTypeResponse:
			continue

		default:
			res, perr := s.parser.Parse(s.buf, payload)
			if perr != nil {
				s.log.WithError(perr).Warn("parse error, skipping frame")
				if isTN3270E && header.ResponseFlag != tn3270e.ResponseFlagNoResponse {
					s.writeResponse(header.SeqNumber, false)
				}
				continue
			}
			if isTN3270E && header.ResponseFlag == tn3270e.ResponseFlagAlwaysResp {
				s.writeResponse(header.SeqNumber, true)
			}
			if len(res.INDFileData) > 0 {
				if ferr := s.handleINDFileFields(res.INDFileData); ferr != nil {
					return Frame{}, ferr
				}
			}
			return Frame{Kind: FrameData, Result: res}, nil
		}
	}
}

func (s *Session) splitRecord(record []byte) (tn3270e.Header, []byte, bool, error) {
	if !s.isTN3270E() {
		return tn3270e.Header{DataType: tn3270e.DataType3270}, record, false, nil
	}
	h, payload, err := tn3270e.SplitHeader(record)
	return h, payload, true, err
}

// nextRecord reads from the transport until a complete Telnet record
// has been assembled, auto-refusing any Telnet option the host raises
// unexpectedly at this point in the session.
func (s *Session) nextRecord() ([]byte, error) {
	for {
		n, err := s.conn.Read(s.ioBuf[:])
		if err != nil {
			return nil, err
		}
		for _, ev := range s.framer.Push(s.ioBuf[:n]) {
			switch ev.Kind {
			case telnet.EventRecord:
				s.appendRecent(ev.Data)
				return ev.Data, nil
			case telnet.EventDo:
				s.conn.Write(telnet.EncodeOption(telnet.WONT, ev.Option))
			case telnet.EventWill:
				s.conn.Write(telnet.EncodeOption(telnet.DONT, ev.Option))
			}
		}
	}
}

// Submit sends an AID submit frame for aid and clears the buffer's MDT
// bits (spec §4.8 submit).
func (s *Session) Submit(aid dsbuild.AID) error {
	if s.state != StateReady {
		return s.newError(KindProtocolError, nil, "submit called while state is %s", s.state)
	}
	payload := dsbuild.BuildSubmit(s.buf, aid)
	s.buf.ClearMDT()
	return s.writeApplicationRecord(tn3270e.DataType3270, payload)
}

// WriteString encodes text with the session's codepage and writes it
// into the buffer starting at the current cursor position, advancing
// the cursor, without submitting (spec §4.8 write_string).
func (s *Session) WriteString(text string) {
	s.buf.SetAddress(s.buf.Cursor())
	for _, b := range s.codepage.Encode(text) {
		s.buf.WriteCharAt(b)
	}
	s.buf.SetCursor(s.buf.CurrentAddress())
}

// Key applies a named key press that only affects cursor/field state
// without submitting (spec §4.8 key). Supported names: "Tab",
// "Backspace".
func (s *Session) Key(name string) error {
	switch name {
	case "Tab":
		s.buf.SetCursor(dsparse.NextUnprotectedAddress(s.buf))
	case "Backspace":
		addr := s.buf.Cursor() - 1
		if addr < 0 {
			addr += s.buf.Size()
		}
		s.buf.SetCursor(addr)
		s.buf.WriteChar(0x40, addr)
	default:
		return s.newError(KindProtocolError, nil, "unknown key %q", name)
	}
	return nil
}

// WriteNVT writes raw bytes directly to the transport when the session
// has fallen back to NVT-ASCII mode (spec §4.6 scenario 6). It is an
// error to call this outside NVT mode.
func (s *Session) WriteNVT(data []byte) error {
	if !s.nvtMode {
		return s.newError(KindProtocolError, nil, "write_nvt called outside NVT mode")
	}
	if _, err := s.conn.Write(data); err != nil {
		s.state = StateClosed
		return s.newError(KindTransportError, err, "nvt write failed")
	}
	return nil
}

// Close sends UNBIND if applicable, then closes the transport (spec
// §4.8 close).
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	if s.state == StateReady && s.isTN3270E() {
		_ = s.writeApplicationRecord(tn3270e.DataTypeUnbind, nil)
	}
	err := s.conn.Close()
	s.state = StateClosed
	if err != nil {
		return s.newError(KindTransportError, err, "close failed")
	}
	return nil
}

func (s *Session) writeApplicationRecord(dt tn3270e.DataType, payload []byte) error {
	var record []byte
	if s.isTN3270E() {
		s.seq++
		record = tn3270e.Wrap(tn3270e.Header{DataType: dt, SeqNumber: s.seq}, payload)
	} else {
		record = payload
	}
	wire := telnet.EncodeRecord(record)
	if _, err := s.conn.Write(wire); err != nil {
		s.state = StateClosed
		return s.newError(KindTransportError, err, "write failed")
	}
	return nil
}

func (s *Session) writeResponse(seq uint16, positive bool) {
	var h tn3270e.Header
	if positive {
		h = tn3270e.PositiveResponse(seq)
	} else {
		h = tn3270e.NegativeResponse(seq)
	}
	wire := telnet.EncodeRecord(tn3270e.Wrap(h, nil))
	if _, err := s.conn.Write(wire); err != nil {
		s.log.WithError(err).Warn("failed to write response frame")
	}
}

// StartUpload begins a host-to-client IND$FILE transfer: it sends the
// OPEN structured field and arranges for incoming DATA fields to be
// written to sink (spec §4.10).
func (s *Session) StartUpload(fileName string, sink indfile.Sink) error {
	if err := s.indfile.HandleOpen(fileName, true, sink, nil); err != nil {
		return s.newError(KindIndFileError, err, "could not start upload of %q", fileName)
	}
	return s.writeApplicationRecord(tn3270e.DataType3270, wsfPayload(indfile.BuildOpen(fileName, true)))
}

// StartDownload begins a client-to-host IND$FILE transfer: it sends
// the OPEN structured field, then immediately emits DATA fields read
// from source until it's exhausted (spec §4.10).
func (s *Session) StartDownload(fileName string, source indfile.Source) error {
	if err := s.indfile.HandleOpen(fileName, false, nil, source); err != nil {
		return s.newError(KindIndFileError, err, "could not start download of %q", fileName)
	}
	if err := s.writeApplicationRecord(tn3270e.DataType3270, wsfPayload(indfile.BuildOpen(fileName, false))); err != nil {
		return err
	}
	return s.pumpDownload()
}

func (s *Session) pumpDownload() error {
	var chunk [1024]byte
	offset := 0
	for {
		n, done, err := s.indfile.NextDownloadChunk(chunk[:])
		if err != nil {
			return s.newError(KindIndFileError, err, "download source read failed")
		}
		if n > 0 {
			if werr := s.writeApplicationRecord(tn3270e.DataType3270, wsfPayload(indfile.BuildData(offset, chunk[:n]))); werr != nil {
				return werr
			}
			offset += n
		}
		if done {
			s.indfile.HandleClose()
			return s.writeApplicationRecord(tn3270e.DataType3270, wsfPayload(indfile.BuildClose()))
		}
	}
}

// handleINDFileFields dispatches every IND$FILE structured field found
// in a frame to the session's indfile.Subcore, in the order the host
// sent them (spec §4.10).
func (s *Session) handleINDFileFields(fields [][]byte) error {
	for _, raw := range fields {
		if len(raw) < 2 {
			continue
		}
		subtype := indfile.Subtype(raw[1])
		body := raw[2:]
		switch subtype {
		case indfile.SubtypeData:
			if len(body) < 4 {
				return s.newError(KindIndFileError, nil, "truncated IND$FILE DATA field")
			}
			offset := int(body[0])<<24 | int(body[1])<<16 | int(body[2])<<8 | int(body[3])
			if err := s.indfile.HandleData(offset, body[4:]); err != nil {
				return s.newError(KindIndFileError, err, "IND$FILE upload write failed")
			}
		case indfile.SubtypeClose:
			s.indfile.HandleClose()
		case indfile.SubtypeAbort:
			hostCode := 0
			if len(body) > 0 {
				hostCode = int(body[0])
			}
			ierr := s.indfile.HandleAbort(hostCode)
			return s.newError(KindIndFileError, ierr, "host aborted IND$FILE transfer")
		}
	}
	return nil
}

// wsfPayload wraps a single structured field body in a
// WriteStructuredField command so it can be sent as an application
// record (spec §4.3, §4.10).
func wsfPayload(sf []byte) []byte {
	out := make([]byte, 0, len(sf)+1)
	out = append(out, byte(dsparse.CmdWriteStructuredField))
	out = append(out, sf...)
	return out
}

func (s *Session) appendRecent(data []byte) {
	s.recent = append(s.recent, data...)
	const maxRecent = 64
	if len(s.recent) > maxRecent {
		s.recent = s.recent[len(s.recent)-maxRecent:]
	}
}

func (s *Session) recentBytesWindow() []byte {
	out := make([]byte, len(s.recent))
	copy(out, s.recent)
	return out
}
