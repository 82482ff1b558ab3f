// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package vnproto

import (
	"fmt"
	"time"
)

// Statistics tracks sentence traffic and fault rates for the monitor.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalSentences  uint64
	RegisterReplies uint64
	DeviceErrors    uint64
	Unhandled       uint64
	DecodeErrors    uint64
	TransportErrors uint64

	// Rates (calculated)
	SentenceRate float64 // sentences/sec
	FaultRate    float64 // faults/sec
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one decoded sentence or decode failure.
func (s *Statistics) Update(m *Message, decodeErr error) {
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		s.TotalSentences++
		s.DecodeErrors++
		return
	}
	if m == nil {
		// blank line, not counted
		return
	}

	s.TotalSentences++
	switch m.Tag() {
	case TagReadRegister:
		s.RegisterReplies++
	case TagSystemError:
		s.DeviceErrors++
	default:
		s.Unhandled++
	}
}

// RecordTransportError counts a failed transport read.
func (s *Statistics) RecordTransportError() {
	s.TransportErrors++
	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates sentence and fault rates.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.SentenceRate = float64(s.TotalSentences) / elapsed
		faults := s.DecodeErrors + s.TransportErrors + s.DeviceErrors
		s.FaultRate = float64(faults) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Sentences: %8d\n", s.TotalSentences)
	result += fmt.Sprintf("Register Replies:%8d\n", s.RegisterReplies)
	if s.DeviceErrors > 0 {
		result += fmt.Sprintf("Device Errors:   %8d\n", s.DeviceErrors)
	}
	if s.Unhandled > 0 {
		result += fmt.Sprintf("Unhandled:       %8d\n", s.Unhandled)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d\n", s.DecodeErrors)
	}
	if s.TransportErrors > 0 {
		result += fmt.Sprintf("Transport Errors:%8d\n", s.TransportErrors)
	}
	result += fmt.Sprintf("Sentence Rate:   %8.1f/sec\n", s.SentenceRate)
	result += fmt.Sprintf("Fault Rate:      %8.1f/sec\n", s.FaultRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters.
func (s *Statistics) Reset() {
	now := time.Now()
	*s = Statistics{StartTime: now, LastUpdateTime: now}
}
