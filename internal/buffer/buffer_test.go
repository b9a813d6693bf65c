// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClearResetsState(t *testing.T) {
	b := New(24, 80)
	b.SetCursor(50)
	b.StartField(0, AttrProtected)
	b.Clear()

	require.Equal(t, 0, b.Cursor())
	require.False(t, b.Formatted())
	require.Empty(t, b.Fields())
	require.Equal(t, byte(0x40), b.Cell(0).Char)
}

func TestWriteCharSetsModifiedOnlyInField(t *testing.T) {
	b := New(24, 80)
	b.StartField(4, 0) // unprotected field starting at address 4
	b.WriteChar(0xC1, 5)

	f, ok := b.FieldAt(5)
	require.True(t, ok)
	require.True(t, f.Modified)
}

func TestWriteCharNeverCreatesField(t *testing.T) {
	b := New(24, 80)
	b.WriteChar(0x1D, 10) // SF order byte value written as plain data
	require.Empty(t, b.Fields())
}

func TestFieldsSortedNoSharedStart(t *testing.T) {
	b := New(24, 80)
	b.StartField(40, 0)
	b.StartField(0, AttrProtected)
	b.StartField(0, 0) // replaces the previous field at 0

	fields := b.Fields()
	require.Len(t, fields, 2)
	require.Equal(t, 0, fields[0].Start)
	require.Equal(t, 40, fields[1].Start)
	require.False(t, fields[0].Protected) // second StartField(0,...) wins
}

func TestAddressesModuloSize(t *testing.T) {
	b := New(24, 80)
	b.SetCursor(1920) // == Size(), should wrap to 0
	require.Equal(t, 0, b.Cursor())

	b.SetCursor(-1)
	require.Equal(t, 1919, b.Cursor())
}

func TestRepeatToAddressFillsRowMajor(t *testing.T) {
	b := New(24, 80)
	b.StartField(0, AttrProtected)
	b.SetAddress(1)
	b.RepeatToAddress(0x40, 80)

	for i := 1; i < 80; i++ {
		require.Equal(t, byte(0x40), b.Cell(i).Char)
	}
	require.Equal(t, 80, b.CurrentAddress())
}

func TestEraseUnprotectedClearsOnlyUnprotectedFields(t *testing.T) {
	b := New(24, 80)
	b.StartField(0, AttrProtected)
	b.WriteChar(0xC1, 1)
	b.StartField(10, 0) // unprotected
	b.WriteChar(0xC2, 11)

	b.EraseUnprotectedAll()

	require.Equal(t, byte(0xC1), b.Cell(1).Char, "protected field content must survive")
	require.Equal(t, byte(0x40), b.Cell(11).Char, "unprotected field content must be erased")
}

func TestReadModifiedOnlyReturnsMDTFields(t *testing.T) {
	b := New(24, 80)
	b.StartField(0, 0)
	b.WriteChar(0xC1, 1) // sets MDT
	b.StartField(2, 0)
	// second field never written, MDT clear

	mod := b.ReadModified(false)
	require.Len(t, mod, 1)
	require.Equal(t, 1, mod[0].Address)
	require.Equal(t, []byte{0xC1}, mod[0].Bytes)
}
