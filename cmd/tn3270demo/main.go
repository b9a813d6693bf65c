// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Command tn3270demo is a minimal interactive client: it connects to a
// 3270 host, negotiates TN3270E, dumps each screen it receives to the
// terminal as plain text, and submits Enter on whatever you type back.
// It exists to exercise the tn3270 package end to end, the same role
// the teacher library's example programs played for the host-emulation
// side of this protocol.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/racingmars/tn3270"
	"github.com/racingmars/tn3270/internal/dsbuild"
	"github.com/sirupsen/logrus"
)

func main() {
	host := flag.String("host", "localhost", "3270 host to connect to")
	port := flag.Int("port", 23, "port to connect to")
	luName := flag.String("lu", "", "request a specific logical unit (optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s, err := tn3270.Connect(ctx, tn3270.SessionConfig{
		Host:         *host,
		Port:         *port,
		TerminalType: "IBM-3278-2-E",
		LUName:       *luName,
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer s.Close()

	profile := s.Profile()
	fmt.Printf("connected: %dx%d, mode=%s, device=%s\n",
		profile.Rows, profile.Cols, profile.Mode, profile.DeviceType)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		frame, err := s.ReadFrame(30 * time.Second)
		if err != nil {
			fmt.Println(err)
			return
		}

		switch frame.Kind {
		case tn3270.FrameUnbind:
			fmt.Println("host ended the session")
			return
		case tn3270.FrameNVT:
			os.Stdout.Write(frame.NVTData)
			continue
		case tn3270.FramePrinterJob:
			fmt.Printf("received print job: %d bytes\n", len(frame.Job.Bytes))
			continue
		}

		printScreen(s)

		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "quit" {
			return
		}
		s.WriteString(line)
		if err := s.Submit(dsbuild.AIDEnter); err != nil {
			fmt.Println(err)
			return
		}
	}
}

// printScreen dumps the session's current screen to stdout as plain
// text, one line per row.
func printScreen(s *tn3270.Session) {
	fmt.Println(strings.Join(s.ScreenText(), "\n"))
}
