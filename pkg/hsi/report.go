// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package hsi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Report is the on-disk record of one calibration run.
type Report struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	Completed       bool    `json:"completed"`
	AbortedAt       string  `json:"aborted_at,omitempty"`
	ConvergenceRate float64 `json:"convergence_rate,omitempty"`
	Applied         bool    `json:"applied"`

	BeforeC []string `json:"before_c,omitempty"`
	BeforeB []string `json:"before_b,omitempty"`
	AfterC  []string `json:"after_c,omitempty"`
	AfterB  []string `json:"after_b,omitempty"`

	DurationSeconds float64 `json:"duration_seconds"`
}

// WriteReport saves the outcome of a run as indented JSON in dir and
// returns the path written. The filename carries a unix timestamp so
// successive runs never clobber each other.
func WriteReport(dir string, o *Outcome) (string, error) {
	report := Report{
		Version:         1,
		Timestamp:       o.StartedAt,
		Completed:       o.Completed,
		AbortedAt:       o.AbortedAt,
		ConvergenceRate: o.ConvergenceRate,
		Applied:         o.Applied && o.Completed,
		BeforeC:         o.Before.C,
		BeforeB:         o.Before.B,
		AfterC:          o.After.C,
		AfterB:          o.After.B,
		DurationSeconds: o.FinishedAt.Sub(o.StartedAt).Seconds(),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal calibration report: %w", err)
	}

	filename := fmt.Sprintf("vn100_hsi_%d.json", o.StartedAt.Unix())
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write calibration report: %w", err)
	}
	return path, nil
}
