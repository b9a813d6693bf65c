// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

package printer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsumeSCSTextAndNewline(t *testing.T) {
	s := New()
	s.ConsumeSCS([]byte{'H', 'I', scsNL, 'B', 'Y', 'E'})
	job := s.EndJob()
	require.Equal(t, "HI\nBYE", string(job.Bytes))
}

func TestConsumeSCSPageBreak(t *testing.T) {
	s := New()
	s.ConsumeSCS([]byte{'A', scsFF, 'B'})
	job := s.EndJob()
	require.Equal(t, []int{1}, job.PageBreaks)
	require.Equal(t, "AB", string(job.Bytes))
}

func TestConsumeSCSTransparentPassesBytesThrough(t *testing.T) {
	s := New()
	// TRN followed by a count of 2, then 2 literal bytes that would
	// otherwise be interpreted as control codes.
	s.ConsumeSCS([]byte{scsTRN, 0x02, scsFF, scsNL, 'X'})
	job := s.EndJob()
	require.Equal(t, []byte{scsFF, scsNL, 'X'}, job.Bytes)
}

func TestPendingJobsDrains(t *testing.T) {
	s := New()
	s.ConsumeSCS([]byte{'A'})
	s.EndJob()
	s.ConsumeSCS([]byte{'B'})
	s.EndJob()

	jobs := s.PendingJobs()
	require.Len(t, jobs, 2)
	require.Empty(t, s.PendingJobs())
}

func TestJobWriteToSpoolsToSink(t *testing.T) {
	s := New()
	s.ConsumeSCS([]byte{'A', 'B', 'C'})
	job := s.EndJob()

	var sink bytes.Buffer
	n, err := job.WriteTo(&sink)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, "ABC", sink.String())
}

func TestBuildStatusSF(t *testing.T) {
	sf := BuildStatusSF(StatusInterventionRequired)
	require.Equal(t, []byte{soh, sfidPrinterStatus, byte(StatusInterventionRequired)}, sf)
}
