// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package tn3270

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func countToThree(s *Session, data any) (Step, any, error) {
	n := data.(int)
	if n >= 3 {
		return nil, n, nil
	}
	return countToThree, n + 1, nil
}

func TestRunStepsStopsOnNilStep(t *testing.T) {
	s := &Session{state: StateReady}
	err := RunSteps(s, countToThree, 0)
	require.NoError(t, err)
}

func failingStep(s *Session, data any) (Step, any, error) {
	return nil, data, errors.New("step failed")
}

func TestRunStepsPropagatesError(t *testing.T) {
	s := &Session{}
	err := RunSteps(s, failingStep, nil)
	require.Error(t, err)
}

func TestRunStepsCanInspectSessionState(t *testing.T) {
	var seenState State
	inspect := func(s *Session, data any) (Step, any, error) {
		seenState = s.State()
		return nil, nil, nil
	}
	s := &Session{state: StateClosing}
	err := RunSteps(s, inspect, nil)
	require.NoError(t, err)
	require.Equal(t, StateClosing, seenState)
}
