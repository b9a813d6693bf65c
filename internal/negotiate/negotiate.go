// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Package negotiate implements the Negotiator (spec §4.6): the Telnet
// option and TN3270E device-type/functions handshake that turns a raw
// byte stream into a NegotiatedProfile. It is the client-side mirror of
// the teacher library's telnet.go, which played the fixed, one-shot
// negotiation of a 3270 host talking to a real terminal. Here the roles
// are reversed — we are the terminal talking to a host — and the
// handshake is driven by whatever the host actually sends rather than a
// hardcoded byte sequence, per spec §4.6's "state machine driven by
// Telnet events."
package negotiate

import (
	"fmt"

	"github.com/racingmars/tn3270/internal/telnet"
)

// TN3270E subnegotiation command bytes. REJECT (0x03) and REQUEST
// (0x26) use this module's wire values, which differ from RFC 2355's.
const (
	te3270Connect    byte = 0x01
	te3270DeviceType byte = 0x02
	te3270Functions  byte = 0x03
	te3270Is         byte = 0x04
	te3270Reason     byte = 0x05
	te3270Reject     byte = 0x03
	te3270Request    byte = 0x26
	te3270Send       byte = 0x08
)

// Function is a single negotiable TN3270E function (RFC 2355 §4).
type Function byte

const (
	FunctionBindImage    Function = 0x00
	FunctionDataStreamCtl Function = 0x01
	FunctionResponses    Function = 0x02
	FunctionSCSCtlCodes  Function = 0x03
	FunctionSysreq       Function = 0x04
)

func (f Function) String() string {
	switch f {
	case FunctionBindImage:
		return "BIND-IMAGE"
	case FunctionDataStreamCtl:
		return "DATA-STREAM-CTL"
	case FunctionResponses:
		return "RESPONSES"
	case FunctionSCSCtlCodes:
		return "SCS-CTL-CODES"
	case FunctionSysreq:
		return "SYSREQ"
	default:
		return fmt.Sprintf("FUNCTION(0x%02x)", byte(f))
	}
}

// TTYPE/NEW-ENVIRON subnegotiation command bytes.
const (
	subIs    byte = 0x00
	subSend  byte = 0x01
	subInfo  byte = 0x02
	envVar     byte = 0x00
	envValue   byte = 0x01
	envEsc     byte = 0x02
	envUserVar byte = 0x03
)

// Mode is the negotiated session mode (spec §4.2 NegotiatedProfile).
type Mode int

const (
	ModeUnresolved Mode = iota
	ModeNVT
	ModeTN3270Basic
	ModeTN3270E
	ModeTN3270EPrinter
)

func (m Mode) String() string {
	switch m {
	case ModeNVT:
		return "NVT-ASCII"
	case ModeTN3270Basic:
		return "TN3270 basic"
	case ModeTN3270E:
		return "TN3270E"
	case ModeTN3270EPrinter:
		return "TN3270E-printer"
	default:
		return "unresolved"
	}
}

// Profile is the outcome of a successful negotiation (spec §4.2).
type Profile struct {
	Rows, Cols int
	Color      bool
	Functions  []Function
	DeviceType string
	LUName     string
	Mode       Mode
}

// HasFunction reports whether fn was negotiated into the session.
func (p Profile) HasFunction(fn Function) bool {
	for _, f := range p.Functions {
		if f == fn {
			return true
		}
	}
	return false
}

// Config carries the caller-supplied identity used during negotiation
// (spec §4.8 connect() parameters and SessionConfig, SPEC_FULL.md §11).
type Config struct {
	TerminalType string // e.g. "IBM-3279-4-E"
	LUName       string // empty to let the host assign one
	Username     string // NEW-ENVIRON USER value
	Functions    []Function
}

func (c Config) functionsOrDefault() []Function {
	if len(c.Functions) > 0 {
		return c.Functions
	}
	return []Function{
		FunctionBindImage,
		FunctionDataStreamCtl,
		FunctionResponses,
		FunctionSysreq,
		FunctionSCSCtlCodes,
	}
}

type state int

const (
	stateNegotiating state = iota
	stateDone
	stateFailed
)

// Negotiator drives the Telnet/TN3270E handshake from events produced by
// a telnet.Framer. Feed it every telnet.Event via HandleEvent and send
// whatever non-empty byte slices it returns back out on the transport.
type Negotiator struct {
	cfg   Config
	state state
	err   error

	sawBinaryDo bool
	sawEORDo    bool
	sawTN3270E  bool
	deviceType  string
	luName                     string
	proposedFunctions          []Function
	negotiatedFunctions        []Function

	profile Profile
}

// New creates a Negotiator for the given configuration.
func New(cfg Config) *Negotiator {
	return &Negotiator{cfg: cfg}
}

// Done reports whether negotiation has finished, successfully or not.
func (n *Negotiator) Done() bool { return n.state != stateNegotiating }

// Err returns the failure reason once Done() is true and negotiation
// did not succeed.
func (n *Negotiator) Err() error { return n.err }

// Profile returns the negotiated profile. Only meaningful once Done()
// is true and Err() is nil.
func (n *Negotiator) Profile() Profile { return n.profile }

// HandleEvent processes one telnet.Event and returns the raw bytes (if
// any) that should be written back to the host in response.
func (n *Negotiator) HandleEvent(ev telnet.Event) ([]byte, error) {
	if n.state != stateNegotiating {
		return nil, nil
	}

	switch ev.Kind {
	case telnet.EventDo:
		return n.handleDo(ev.Option)
	case telnet.EventWont:
		return n.handleWont(ev.Option)
	case telnet.EventWill, telnet.EventDont:
		// The host announcing its own willingness/unwillingness on an
		// option we didn't request; nothing to negotiate in response.
		return nil, nil
	case telnet.EventSubnegotiation:
		return n.handleSubnegotiation(ev.Option, ev.Data)
	}
	return nil, nil
}

func (n *Negotiator) handleDo(option byte) ([]byte, error) {
	switch option {
	case telnet.OptTTYPE:
		return telnet.EncodeOption(telnet.WILL, telnet.OptTTYPE), nil
	case telnet.OptNewEnviron, telnet.OptOldEnviron:
		return telnet.EncodeOption(telnet.WILL, option), nil
	case telnet.OptBinary:
		n.sawBinaryDo = true
		return telnet.EncodeOption(telnet.WILL, telnet.OptBinary), nil
	case telnet.OptEOR:
		n.sawEORDo = true
		return telnet.EncodeOption(telnet.WILL, telnet.OptEOR), nil
	case telnet.OptTN3270E:
		n.sawTN3270E = true
		out := telnet.EncodeOption(telnet.WILL, telnet.OptTN3270E)
		out = append(out, n.requestDeviceType()...)
		return out, nil
	default:
		return telnet.EncodeOption(telnet.WONT, option), nil
	}
}

func (n *Negotiator) handleWont(option byte) ([]byte, error) {
	if option == telnet.OptTN3270E {
		// Host refuses TN3270E: fall back to basic TN3270 (spec §4.6).
		rows, cols, color := deviceDimensions(n.cfg.TerminalType)
		n.profile = Profile{Rows: rows, Cols: cols, Color: color, Mode: ModeTN3270Basic}
		n.state = stateDone
	}
	return nil, nil
}

// deviceDimensions maps a 3270 terminal-type model string to its screen
// geometry, per the model table in spec §6's configuration input
// enumeration (IBM-3278/3279 models 2-5, and the 3287 printer which
// carries no screen).
func deviceDimensions(terminalType string) (rows, cols int, color bool) {
	color = len(terminalType) >= len("IBM-3279") && terminalType[:len("IBM-3279")] == "IBM-3279"
	switch {
	case containsModel(terminalType, "-3"):
		return 32, 80, color
	case containsModel(terminalType, "-4"):
		return 43, 80, color
	case containsModel(terminalType, "-5"):
		return 27, 132, color
	default:
		return 24, 80, color
	}
}

func containsModel(terminalType, suffix string) bool {
	for i := 0; i+len(suffix) <= len(terminalType); i++ {
		if terminalType[i:i+len(suffix)] == suffix {
			if i+len(suffix) == len(terminalType) || terminalType[i+len(suffix)] == '-' {
				return true
			}
		}
	}
	return false
}

func (n *Negotiator) requestDeviceType() []byte {
	payload := []byte{te3270DeviceType, te3270Request}
	payload = append(payload, []byte(n.cfg.TerminalType)...)
	if n.cfg.LUName != "" {
		payload = append(payload, te3270Connect)
		payload = append(payload, []byte(n.cfg.LUName)...)
	}
	return telnet.EncodeSubnegotiation(telnet.OptTN3270E, payload)
}

func (n *Negotiator) handleSubnegotiation(option byte, data []byte) ([]byte, error) {
	switch option {
	case telnet.OptTTYPE:
		return n.handleTTYPE(data)
	case telnet.OptNewEnviron, telnet.OptOldEnviron:
		return n.handleNewEnviron(option, data)
	case telnet.OptTN3270E:
		return n.handleTN3270E(data)
	}
	return nil, nil
}

func (n *Negotiator) handleTTYPE(data []byte) ([]byte, error) {
	if len(data) == 0 || data[0] != subSend {
		return nil, nil
	}
	payload := append([]byte{subIs}, []byte(n.cfg.TerminalType)...)
	return telnet.EncodeSubnegotiation(telnet.OptTTYPE, payload), nil
}

func (n *Negotiator) handleNewEnviron(option byte, data []byte) ([]byte, error) {
	if len(data) == 0 || data[0] != subSend {
		return nil, nil
	}
	// Reply per RFC 1572: VAR name VALUE value, repeated.
	payload := []byte{subIs}
	payload = append(payload, envVar)
	payload = append(payload, []byte("USER")...)
	payload = append(payload, envValue)
	payload = append(payload, []byte(n.cfg.Username)...)
	payload = append(payload, envVar)
	payload = append(payload, []byte("TERM")...)
	payload = append(payload, envValue)
	payload = append(payload, []byte(n.cfg.TerminalType)...)
	return telnet.EncodeSubnegotiation(option, payload), nil
}

func (n *Negotiator) handleTN3270E(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	switch data[0] {
	case te3270DeviceType:
		return n.handleDeviceTypeReply(data[1:])
	case te3270Functions:
		return n.handleFunctionsReply(data[1:])
	}
	return nil, nil
}

func (n *Negotiator) handleDeviceTypeReply(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	switch data[0] {
	case te3270Is:
		rest := data[1:]
		luName := ""
		deviceType := string(rest)
		for i, b := range rest {
			if b == te3270Connect {
				deviceType = string(rest[:i])
				luName = string(rest[i+1:])
				break
			}
		}
		n.deviceType = deviceType
		n.luName = luName
		n.proposedFunctions = n.cfg.functionsOrDefault()
		return n.requestFunctions(), nil
	case te3270Reject:
		n.state = stateFailed
		n.err = fmt.Errorf("negotiate: host rejected device type %q", n.cfg.TerminalType)
		return nil, nil
	}
	return nil, nil
}

func (n *Negotiator) requestFunctions() []byte {
	payload := []byte{te3270Functions, te3270Request}
	for _, f := range n.proposedFunctions {
		payload = append(payload, byte(f))
	}
	return telnet.EncodeSubnegotiation(telnet.OptTN3270E, payload)
}

func (n *Negotiator) handleFunctionsReply(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	switch data[0] {
	case te3270Is:
		granted := data[1:]
		set := make([]Function, 0, len(granted))
		for _, b := range granted {
			set = append(set, Function(b))
		}
		n.negotiatedFunctions = set
		return n.finish(), nil
	case te3270Request:
		// Host countered with its own subset; accept it verbatim
		// (spec §4.6: "reduce to the intersection returned by the
		// host").
		granted := data[1:]
		set := make([]Function, 0, len(granted))
		for _, b := range granted {
			set = append(set, Function(b))
		}
		n.negotiatedFunctions = set
		ack := append([]byte{te3270Functions, te3270Is}, granted...)
		out := telnet.EncodeSubnegotiation(telnet.OptTN3270E, ack)
		return append(out, n.finish()...), nil
	}
	return nil, nil
}

func (n *Negotiator) finish() []byte {
	if !n.sawBinaryDo || !n.sawEORDo {
		n.state = stateFailed
		n.err = fmt.Errorf("negotiate: host completed TN3270E functions exchange without negotiating required options (binary=%v, eor=%v)", n.sawBinaryDo, n.sawEORDo)
		return nil
	}

	mode := ModeTN3270E
	for _, f := range n.negotiatedFunctions {
		if f == FunctionSCSCtlCodes {
			mode = ModeTN3270EPrinter
		}
	}
	rows, cols, color := deviceDimensions(n.deviceType)
	n.profile = Profile{
		Rows:       rows,
		Cols:       cols,
		Color:      color,
		DeviceType: n.deviceType,
		LUName:     n.luName,
		Functions:  n.negotiatedFunctions,
		Mode:       mode,
	}
	n.state = stateDone
	return nil
}

// ConsiderNVTFallback implements spec §4.6's irreversible ASCII/NVT
// fallback rule: if the first record received before negotiation
// completes looks like interactive ASCII/VT100 traffic rather than a
// Telnet option sequence, the session adopts NVT mode for good.
func ConsiderNVTFallback(firstRecord []byte) bool {
	if containsEscapeSequence(firstRecord) {
		return true
	}
	if len(firstRecord) < 32 {
		return false
	}
	printable := 0
	for _, b := range firstRecord {
		if b >= 0x20 && b < 0x7F {
			printable++
		}
	}
	return float64(printable)/float64(len(firstRecord)) >= 0.70
}

func containsEscapeSequence(data []byte) bool {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == 0x1B && data[i+1] == '[' {
			return true
		}
	}
	return false
}
