// This file is part of https://github.com/racingmars/tn3270/
// Copyright 2020, 2026 by Matthew R. Wilson, licensed under the MIT license.
// See LICENSE in the project root for license information.

// Package printer implements the Printer Subcore (spec §4.9): SCS-DATA
// frame consumption for a printer-mode session (device type
// IBM-3287-1 and similar), buffering page content into print jobs and
// answering status requests. There is no teacher precedent for this —
// go3270 never emulated a printer LU — so its shape is grounded on the
// same buffering/queue idiom as the teacher's Tx/RunTransactions (carried
// into this module as Step/RunSteps in transactions.go): a queue of discrete units of work, drained by the
// caller, rather than on any SCS-specific example.
package printer

import "io"

// SCS control codes recognized within an SCS-DATA stream (spec §4.9).
const (
	scsNL  byte = 0x15 // New Line
	scsCR  byte = 0x0D // Carriage Return
	scsFF  byte = 0x0C // Form Feed
	scsLF  byte = 0x25 // Line Feed (EBCDIC LF)
	scsTRN byte = 0x17 // Transparent data follows
	scsSA  byte = 0x28 // Set Attribute
	scsSHF byte = 0x1B // Set Horizontal Format
	scsSVF byte = 0x2B // Set Vertical Format
)

// Job is a single completed print job: the accumulated page content and
// the byte offsets where a page break (FF) occurred.
type Job struct {
	Bytes      []byte
	PageBreaks []int
}

// WriteTo sends the job's content to w, satisfying io.WriterTo so a
// caller can spool a finished job straight to a file, pipe, or any
// other io.Writer sink without the Subcore knowing its destination.
func (j Job) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(j.Bytes)
	return int64(n), err
}

// StatusCode is a printer status condition reportable via a status
// structured field (spec §4.9).
type StatusCode byte

const (
	StatusDeviceEnd           StatusCode = 0x00
	StatusInterventionRequired StatusCode = 0x01
)

// Subcore accumulates SCS-DATA frames into print jobs until a
// PRINT-EOJ record closes the current job.
type Subcore struct {
	page    []byte
	breaks  []int
	jobs    []Job
	status  StatusCode
	inTransparent int
}

// New returns an idle Subcore with DEVICE-END status.
func New() *Subcore {
	return &Subcore{status: StatusDeviceEnd}
}

// ConsumeSCS processes one SCS-DATA frame's payload, interpreting
// control codes and buffering literal text (spec §4.9).
func (s *Subcore) ConsumeSCS(payload []byte) {
	i := 0
	for i < len(payload) {
		b := payload[i]
		i++

		if s.inTransparent > 0 {
			s.page = append(s.page, b)
			s.inTransparent--
			continue
		}

		switch b {
		case scsNL, scsLF:
			s.page = append(s.page, '\n')
		case scsCR:
			// carriage return with no following newline: no-op on the
			// accumulated byte buffer, position tracking is left to
			// the consumer rendering the job.
		case scsFF:
			s.breaks = append(s.breaks, len(s.page))
		case scsTRN:
			if i < len(payload) {
				s.inTransparent = int(payload[i])
				i++
			}
		case scsSA, scsSHF, scsSVF:
			// Each of these is followed by a type/value pair that
			// alters rendering attributes rather than page content;
			// skip it if present.
			if i+1 < len(payload) {
				i += 2
			}
		default:
			s.page = append(s.page, b)
		}
	}
}

// EndJob closes the current job on PRINT-EOJ and enqueues it (spec
// §4.9 "buffers page content until PRINT-EOJ, then enqueues a print
// job").
func (s *Subcore) EndJob() Job {
	job := Job{Bytes: s.page, PageBreaks: s.breaks}
	s.jobs = append(s.jobs, job)
	s.page = nil
	s.breaks = nil
	return job
}

// PendingJobs drains and returns every job enqueued so far.
func (s *Subcore) PendingJobs() []Job {
	out := s.jobs
	s.jobs = nil
	return out
}

// SetStatus records the printer's current status, used when a host
// requests the Printer Status structured field (spec §4.9).
func (s *Subcore) SetStatus(code StatusCode) { s.status = code }

// Status returns the last recorded status.
func (s *Subcore) Status() StatusCode { return s.status }

// Structured field ID for printer status (SOH-prefixed, spec §4.9).
const sfidPrinterStatus byte = 0x01
const soh byte = 0x01

// BuildStatusSF builds the SOH + status code structured field a
// printer-mode session sends in reply to a status request.
func BuildStatusSF(code StatusCode) []byte {
	return []byte{soh, sfidPrinterStatus, byte(code)}
}
