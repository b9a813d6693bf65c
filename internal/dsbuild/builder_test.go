// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package dsbuild

import (
	"testing"

	"github.com/racingmars/tn3270/internal/buffer"
	"github.com/racingmars/tn3270/internal/negotiate"
	"github.com/stretchr/testify/require"
)

func TestBuildSubmitIncludesModifiedFieldsOnly(t *testing.T) {
	buf := buffer.New(24, 80)
	buf.StartField(0, 0)
	buf.WriteChar(0xC1, 1)
	buf.StartField(10, 0) // never written, MDT clear
	buf.SetCursor(1)

	out := BuildSubmit(buf, AIDEnter)
	require.Equal(t, byte(AIDEnter), out[0])

	cursorAddr := buffer.EncodeAddress(1)
	require.Equal(t, cursorAddr[0], out[1])
	require.Equal(t, cursorAddr[1], out[2])
	require.Equal(t, byte(orderSBA), out[3])
	require.Contains(t, out, byte(0xC1))
}

func TestAIDString(t *testing.T) {
	require.Equal(t, "Enter", AIDEnter.String())
	require.Equal(t, "PF24", AIDPF24.String())
	require.Equal(t, "[unknown]", AID(0x99).String())
}

func TestBuildQueryRepliesIncludesUsableArea(t *testing.T) {
	buf := buffer.New(24, 80)
	profile := negotiate.Profile{Mode: negotiate.ModeTN3270E}

	replies := BuildQueryReplies(profile, buf)
	require.NotEmpty(t, replies)

	found := false
	for _, r := range replies {
		if len(r) > 3 && r[3] == qrUsableArea {
			found = true
		}
	}
	require.True(t, found)
}

func TestBuildQueryRepliesAddsColorWhenNegotiated(t *testing.T) {
	buf := buffer.New(24, 80)
	withColor := BuildQueryReplies(negotiate.Profile{Color: true}, buf)
	withoutColor := BuildQueryReplies(negotiate.Profile{Color: false}, buf)
	require.Greater(t, len(withColor), len(withoutColor))
}
