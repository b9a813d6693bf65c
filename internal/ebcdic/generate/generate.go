// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Command generate produces internal/ebcdic code page tables from the
// Unicode icu-data UCM format files, the same way the teacher library's
// internal/codepage/generate tool does. Output is a Go source fragment
// suitable for appending to tables.go: a `map[rune]byte` literal naming
// every round-trip-safe code point in the input UCM file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

func main() {
	cpName := flag.String("n", "", "Code page name (e.g. 037)")
	cpPath := flag.String("i", "", "Input UCM file path")
	flag.Parse()

	if *cpName == "" || *cpPath == "" {
		fmt.Fprintln(os.Stderr, "-n and -i arguments are required.")
		flag.Usage()
		os.Exit(1)
	}

	u2e, err := read(*cpPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("// cp%sTable is the Unicode->EBCDIC map for code page %s.\n",
		*cpName, *cpName)
	fmt.Printf("// Source: %s (icu-data UCM format).\n", filepath.Base(*cpPath))
	fmt.Printf("var cp%sTable = map[rune]byte{\n", *cpName)
	for codepoint, ebcdic := range u2e {
		if codepoint > 0xFFFF {
			continue
		}
		fmt.Printf("\t%q: 0x%02X,\n", rune(codepoint), ebcdic)
	}
	fmt.Println("}")
}

// read reads a UCM file and returns a map of Unicode code points to
// EBCDIC bytes, skipping non-round-trip ("|1") mappings.
func read(input string) (map[int]int, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	u2e := make(map[int]int)
	s := bufio.NewScanner(f)

	var incharmap bool
	for s.Scan() {
		line := s.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !incharmap && line != "CHARMAP" {
			continue
		}

		if line == "CHARMAP" {
			incharmap = true
			continue
		}

		if strings.HasSuffix(line, "|1") {
			continue
		}

		if line == "END CHARMAP" {
			break
		}

		codepoint, ebcdic, err := parseUcmLine(line)
		if err != nil {
			return nil, err
		}

		if _, ok := u2e[codepoint]; ok {
			fmt.Fprintf(os.Stderr, "WARNING: duplicate codepoint U%04x\n",
				codepoint)
		}
		u2e[codepoint] = ebcdic
	}

	return u2e, s.Err()
}

var reU = regexp.MustCompile(`U([0-9A-Fa-f]+)`)
var reX = regexp.MustCompile(`\\x([0-9A-Fa-f]+)`)

func parseUcmLine(s string) (int, int, error) {
	matchU := reU.FindStringSubmatch(s)
	matchX := reX.FindStringSubmatch(s)

	if matchU == nil || matchX == nil {
		return 0, 0, fmt.Errorf("could not find both hex patterns in input")
	}

	valU, err := strconv.ParseInt(matchU[1], 16, 64)
	if err != nil {
		return 0, 0, err
	}

	valX, err := strconv.ParseInt(matchX[1], 16, 64)
	if err != nil {
		return 0, 0, err
	}

	return int(valU), int(valX), nil
}
