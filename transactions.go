// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package tn3270

// Step is one unit of a scripted session interaction, adapted from the
// teacher library's Tx: a function called with the live Session and
// the data produced by the previous step. It returns the next Step to
// run (or nil to stop), the data to hand that step, and an error. A
// non-nil error stops RunSteps immediately without being passed along.
//
// Where the teacher's Tx drove a host-emulated screen sequence over a
// net.Conn, Step drives a connected client Session: typical steps wait
// for a frame, inspect the ScreenBuffer, write input, and submit an
// AID.
type Step func(s *Session, data any) (next Step, newdata any, err error)

// RunSteps runs initial, and then whatever Step each call returns,
// until a Step returns a nil next Step or a non-nil error.
func RunSteps(s *Session, initial Step, data any) error {
	next := initial
	var err error

	for {
		next, data, err = next(s, data)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
	}
}
