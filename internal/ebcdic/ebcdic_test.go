// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package ebcdic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripCP037(t *testing.T) {
	samples := []string{
		"HELLO WORLD",
		"hello world 123",
		"The quick brown fox: 42!",
		"",
		" ",
	}
	for _, s := range samples {
		encoded := CP037.Encode(s)
		decoded := CP037.Decode(encoded)
		require.Equal(t, s, decoded, "round trip failed for %q", s)
	}
}

func TestEncodeUnknownSubstitutesSpace(t *testing.T) {
	encoded := CP037.Encode("A☃B") // snowman is not in CP037
	require.Equal(t, []byte{0xC1, 0x40, 0xC2}, encoded)
}

func TestDecodeKnownBytes(t *testing.T) {
	// EBCDIC for "HI"
	decoded := CP037.Decode([]byte{0xC8, 0xC9})
	require.Equal(t, "HI", decoded)
}

func TestByID(t *testing.T) {
	cp, ok := ByID("1047")
	require.True(t, ok)
	require.Equal(t, "1047", cp.ID())

	_, ok = ByID("nonexistent")
	require.False(t, ok)
}

func TestDBCSLead(t *testing.T) {
	require.True(t, CP933.IsDBCSLead(0x0E))
	require.False(t, CP037.IsDBCSLead(0x0E))
}
