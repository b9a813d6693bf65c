// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package tn3270

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/racingmars/tn3270/internal/negotiate"
)

// SessionConfig carries every caller-supplied input enumerated in spec
// §6 "Configuration input", replacing the teacher library's package
// globals (Debug, the default codepage) with an explicit, per-session
// struct.
type SessionConfig struct {
	Host string
	Port int

	// UseTLS wraps the transport in TLS after the TCP handshake,
	// before any Telnet bytes are exchanged.
	UseTLS bool

	// TerminalType must be one of the models spec §6 enumerates, e.g.
	// IBM-3278-2, IBM-3279-4-E, IBM-DYNAMIC, IBM-3287-1.
	TerminalType string

	// LUName optionally requests a specific logical unit; empty lets
	// the host assign one.
	LUName string

	// Username is sent as the NEW-ENVIRON USER variable.
	Username string

	NegotiationTimeout time.Duration
	ReadTimeout        time.Duration

	// PreferredFunctions overrides the default TN3270E function
	// proposal order; nil uses the negotiator's default set.
	PreferredFunctions []negotiate.Function

	// Codepage selects the EBCDIC table by its conventional
	// numeric/symbolic name (e.g. "037", "1047", "1140", "933"), resolved
	// through internal/ebcdic.ByID. Empty defaults to CP037; an
	// unrecognized name also falls back to CP037.
	Codepage string

	// Logger, if set, receives the session's log fields instead of the
	// package-level logrus logger. Lets a caller route a session's logs
	// into its own logrus instance rather than the default one.
	Logger *logrus.Entry
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.TerminalType == "" {
		c.TerminalType = "IBM-3278-2-E"
	}
	if c.NegotiationTimeout <= 0 {
		c.NegotiationTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	return c
}

func (c SessionConfig) negotiateConfig() negotiate.Config {
	return negotiate.Config{
		TerminalType: c.TerminalType,
		LUName:       c.LUName,
		Username:     c.Username,
		Functions:    c.PreferredFunctions,
	}
}
