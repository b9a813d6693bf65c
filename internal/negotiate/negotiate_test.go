// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package negotiate

import (
	"testing"

	"github.com/racingmars/tn3270/internal/telnet"
	"github.com/stretchr/testify/require"
)

func TestTTYPEExchange(t *testing.T) {
	n := New(Config{TerminalType: "IBM-3279-4-E"})

	out, err := n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptTTYPE})
	require.NoError(t, err)
	require.Equal(t, telnet.EncodeOption(telnet.WILL, telnet.OptTTYPE), out)

	out, err = n.HandleEvent(telnet.Event{
		Kind:   telnet.EventSubnegotiation,
		Option: telnet.OptTTYPE,
		Data:   []byte{subSend},
	})
	require.NoError(t, err)
	require.Equal(t, telnet.EncodeSubnegotiation(telnet.OptTTYPE, append([]byte{subIs}, []byte("IBM-3279-4-E")...)), out)
}

func TestFullTN3270ENegotiationToReady(t *testing.T) {
	n := New(Config{TerminalType: "IBM-3279-4-E", LUName: "LUA1"})

	_, err := n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptBinary})
	require.NoError(t, err)
	_, err = n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptEOR})
	require.NoError(t, err)

	_, err = n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptTN3270E})
	require.NoError(t, err)
	require.False(t, n.Done())

	devTypeReply := append([]byte{te3270DeviceType, te3270Is}, []byte("IBM-3278-2-E")...)
	out, err := n.HandleEvent(telnet.Event{Kind: telnet.EventSubnegotiation, Option: telnet.OptTN3270E, Data: devTypeReply})
	require.NoError(t, err)
	require.NotEmpty(t, out)

	funcReply := []byte{te3270Functions, te3270Is, byte(FunctionBindImage), byte(FunctionResponses)}
	out, err = n.HandleEvent(telnet.Event{Kind: telnet.EventSubnegotiation, Option: telnet.OptTN3270E, Data: funcReply})
	require.NoError(t, err)
	require.Nil(t, out)

	require.True(t, n.Done())
	require.NoError(t, n.Err())
	p := n.Profile()
	require.Equal(t, ModeTN3270E, p.Mode)
	require.Equal(t, "IBM-3278-2-E", p.DeviceType)
	require.True(t, p.HasFunction(FunctionBindImage))
	require.False(t, p.HasFunction(FunctionSCSCtlCodes))
}

func TestDeviceTypeRejection(t *testing.T) {
	n := New(Config{TerminalType: "IBM-3279-4-E"})
	_, _ = n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptTN3270E})

	_, err := n.HandleEvent(telnet.Event{
		Kind:   telnet.EventSubnegotiation,
		Option: telnet.OptTN3270E,
		Data:   []byte{te3270DeviceType, te3270Reject},
	})
	require.NoError(t, err)
	require.True(t, n.Done())
	require.Error(t, n.Err())
}

func TestWontTN3270EFallsBackToBasic(t *testing.T) {
	n := New(Config{TerminalType: "IBM-3279-4-E"})
	_, err := n.HandleEvent(telnet.Event{Kind: telnet.EventWont, Option: telnet.OptTN3270E})
	require.NoError(t, err)
	require.True(t, n.Done())
	require.NoError(t, n.Err())
	require.Equal(t, ModeTN3270Basic, n.Profile().Mode)
}

func TestPrinterFunctionSelectsPrinterMode(t *testing.T) {
	n := New(Config{TerminalType: "IBM-3287-1"})
	_, _ = n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptBinary})
	_, _ = n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptEOR})
	_, _ = n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptTN3270E})
	devTypeReply := append([]byte{te3270DeviceType, te3270Is}, []byte("IBM-3287-1")...)
	_, _ = n.HandleEvent(telnet.Event{Kind: telnet.EventSubnegotiation, Option: telnet.OptTN3270E, Data: devTypeReply})

	funcReply := []byte{te3270Functions, te3270Is, byte(FunctionSCSCtlCodes)}
	_, _ = n.HandleEvent(telnet.Event{Kind: telnet.EventSubnegotiation, Option: telnet.OptTN3270E, Data: funcReply})

	require.Equal(t, ModeTN3270EPrinter, n.Profile().Mode)
}

func TestMissingBinaryOrEORFailsNegotiation(t *testing.T) {
	n := New(Config{TerminalType: "IBM-3279-4-E"})

	// Host never DOes Binary or EOR, but still completes the TN3270E
	// device-type/functions exchange.
	_, err := n.HandleEvent(telnet.Event{Kind: telnet.EventDo, Option: telnet.OptTN3270E})
	require.NoError(t, err)

	devTypeReply := append([]byte{te3270DeviceType, te3270Is}, []byte("IBM-3278-2-E")...)
	_, err = n.HandleEvent(telnet.Event{Kind: telnet.EventSubnegotiation, Option: telnet.OptTN3270E, Data: devTypeReply})
	require.NoError(t, err)

	funcReply := []byte{te3270Functions, te3270Is, byte(FunctionBindImage)}
	_, err = n.HandleEvent(telnet.Event{Kind: telnet.EventSubnegotiation, Option: telnet.OptTN3270E, Data: funcReply})
	require.NoError(t, err)

	require.True(t, n.Done())
	require.Error(t, n.Err())
}

func TestConsiderNVTFallback(t *testing.T) {
	ascii := []byte("Welcome to the BBS system! Please enter your username to continue logging in today.")
	require.True(t, ConsiderNVTFallback(ascii))

	threeTwoSeventy := make([]byte, 40)
	for i := range threeTwoSeventy {
		threeTwoSeventy[i] = 0xC1
	}
	require.False(t, ConsiderNVTFallback(threeTwoSeventy))

	require.False(t, ConsiderNVTFallback([]byte{0x01, 0x02}))
}
