// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package tn3270

import "fmt"

// Kind identifies a category of error a Session can report (spec §7).
type Kind int

const (
	KindTransportError Kind = iota
	KindNegotiationError
	KindProtocolError
	KindParseError
	KindTimeout
	KindIndFileError
)

func (k Kind) String() string {
	switch k {
	case KindTransportError:
		return "TransportError"
	case KindNegotiationError:
		return "NegotiationError"
	case KindProtocolError:
		return "ProtocolError"
	case KindParseError:
		return "ParseError"
	case KindTimeout:
		return "Timeout"
	case KindIndFileError:
		return "IndFileError"
	default:
		return "UnknownError"
	}
}

// Error is the public error type every Session operation returns
// (spec §7 "All public errors carry: {kind, message, host, port,
// session-state, last-seq-number, truncated hex window of recent
// bytes}").
type Error struct {
	Kind          Kind
	Message       string
	Host          string
	Port          int
	State         State
	LastSeqNumber uint16
	RecentBytes   []byte

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tn3270: %s: %s (host=%s:%d state=%s seq=%d recent=% x)",
		e.Kind, e.Message, e.Host, e.Port, e.State, e.LastSeqNumber, e.RecentBytes)
}

// Unwrap lets errors.Is/errors.As reach the underlying transport or
// protocol error, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the same error Kind, so callers can
// test an error's Kind with
// errors.Is(err, &tn3270.Error{Kind: tn3270.KindTimeout}).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func (s *Session) newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:          kind,
		Message:       fmt.Sprintf(format, args...),
		Host:          s.cfg.Host,
		Port:          s.cfg.Port,
		State:         s.state,
		LastSeqNumber: s.lastSeq,
		RecentBytes:   s.recentBytesWindow(),
		cause:         cause,
	}
}
