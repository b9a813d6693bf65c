// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeAddress12(t *testing.T) {
	encoded := EncodeAddress12(0)
	require.Equal(t, [2]byte{0x40, 0x40}, encoded)

	encoded = EncodeAddress12(11*80 + 39)
	require.Equal(t, [2]byte{0x4e, 0xd7}, encoded)
}

func TestDecodeAddress12(t *testing.T) {
	decoded := DecodeAddress([2]byte{0x40, 0x40})
	require.Equal(t, 0, decoded)

	decoded = DecodeAddress([2]byte{0x4e, 0xd7})
	require.Equal(t, 11*80+39, decoded)
}

func TestAddressRoundTrip(t *testing.T) {
	for addr := 0; addr < 1920; addr++ {
		encoded := EncodeAddress(addr)
		decoded := DecodeAddress(encoded)
		require.Equal(t, addr, decoded, "address %d did not round-trip", addr)
	}
}

func TestAddressRoundTrip14Bit(t *testing.T) {
	for _, addr := range []int{4096, 5000, 8191, 16383} {
		encoded := EncodeAddress14(addr)
		decoded := DecodeAddress(encoded)
		require.Equal(t, addr, decoded)
	}
}
