// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package hsi

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/arcturus-robotics/vncal/pkg/vnproto"
)

// fastOpts keeps the procedure timings short enough for tests.
func fastOpts() Options {
	return Options{
		SnapshotWait: 200 * time.Millisecond,
		SettlingWait: 10 * time.Millisecond,
	}
}

// runSequencer wires an estimator over conn, preloads replies, and
// runs the full procedure with the given prompter.
func runSequencer(t *testing.T, conn *fakeConn, p Prompter, opts Options) (*Outcome, string) {
	t.Helper()

	est := New(conn, &recordSink{})
	startEstimator(t, conn, est)

	var out bytes.Buffer
	seq := NewSequencer(est, p, &out, opts)
	outcome, err := seq.Run()
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	return outcome, out.String()
}

// ============================================================
// Full Procedure
// ============================================================

func TestSequencer_CompletedRun(t *testing.T) {
	conn := newFakeConn()
	conn.push(reg47Reply)
	conn.push(reg47Reply2)

	p := &scriptPrompter{confirms: []bool{true, true}, numbers: []float64{3}}
	outcome, output := runSequencer(t, conn, p, fastOpts())

	if !outcome.Completed {
		t.Fatalf("run did not complete: aborted at %q", outcome.AbortedAt)
	}
	if outcome.ConvergenceRate != 3 {
		t.Errorf("convergence rate = %v", outcome.ConvergenceRate)
	}
	if !outcome.Applied {
		t.Error("default run should apply the estimate")
	}
	if !outcome.Before.Populated() || !outcome.After.Populated() {
		t.Error("both snapshots should be populated")
	}
	if outcome.Before.C[0] != "1" || outcome.After.C[0] != "9" {
		t.Error("snapshots attached to the wrong slots")
	}
	if outcome.FinishedAt.Before(outcome.StartedAt) {
		t.Error("timestamps out of order")
	}

	want := []string{
		string(vnproto.Encode("VNWRG,07,0,1")),
		string(vnproto.Encode("VNRRG,47")),
		string(vnproto.Encode("VNWRG,44,1,1,3")),
		string(vnproto.Encode("VNRRG,47")),
		string(vnproto.Encode("VNWRG,44,0,1,1")),
		string(vnproto.Encode("VNWRG,07,40,1")),
		string(vnproto.Encode("VNWNV")),
	}
	got := conn.written()
	if len(got) != len(want) {
		t.Fatalf("wrote %d frames, expected %d:\n%q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %q, expected %q", i, got[i], want[i])
		}
	}

	if !strings.Contains(output, "completed and saved") {
		t.Error("completion message missing from output")
	}
}

func TestSequencer_DiscardRun(t *testing.T) {
	conn := newFakeConn()
	conn.push(reg47Reply)
	conn.push(reg47Reply2)

	opts := fastOpts()
	opts.Discard = true
	p := &scriptPrompter{confirms: []bool{true, true}, numbers: []float64{2.5}}
	outcome, _ := runSequencer(t, conn, p, opts)

	if !outcome.Completed {
		t.Fatalf("run did not complete: aborted at %q", outcome.AbortedAt)
	}
	if outcome.Applied {
		t.Error("discard run should not report an applied estimate")
	}

	stopFrame := string(vnproto.Encode("VNWRG,44,0,3,1"))
	found := false
	for _, w := range conn.written() {
		if w == stopFrame {
			found = true
		}
	}
	if !found {
		t.Errorf("discard stop frame %q never sent:\n%q", stopFrame, conn.written())
	}
}

// ============================================================
// Aborts and Gates
// ============================================================

func TestSequencer_AbortBeforeEstimation(t *testing.T) {
	conn := newFakeConn()
	conn.push(reg47Reply)

	p := &scriptPrompter{confirms: []bool{false}}
	outcome, output := runSequencer(t, conn, p, fastOpts())

	if outcome.Completed {
		t.Fatal("declined run reported completed")
	}
	if outcome.AbortedAt != "before estimation" {
		t.Errorf("AbortedAt = %q", outcome.AbortedAt)
	}

	// only the async-off write and the baseline read went out
	got := conn.written()
	if len(got) != 2 {
		t.Fatalf("wrote %d frames after abort, expected 2:\n%q", len(got), got)
	}
	if !strings.Contains(output, "Stopping before estimation") {
		t.Errorf("abort message missing:\n%s", output)
	}
}

func TestSequencer_CancelAtConvergencePrompt(t *testing.T) {
	conn := newFakeConn()
	conn.push(reg47Reply)

	p := &scriptPrompter{confirms: []bool{true}, cancelAt: "convergence"}
	outcome, output := runSequencer(t, conn, p, fastOpts())

	if outcome.Completed {
		t.Fatal("cancelled run reported completed")
	}
	if outcome.AbortedAt != "convergence rate prompt" {
		t.Errorf("AbortedAt = %q", outcome.AbortedAt)
	}
	if len(conn.written()) != 2 {
		t.Errorf("estimation must not start after a cancelled prompt:\n%q", conn.written())
	}
	if !strings.Contains(output, "never gathered") {
		t.Errorf("cancellation message missing:\n%s", output)
	}
}

func TestSequencer_DeclineSave(t *testing.T) {
	conn := newFakeConn()
	conn.push(reg47Reply)
	conn.push(reg47Reply2)

	p := &scriptPrompter{confirms: []bool{true, false}, numbers: []float64{1}}
	outcome, _ := runSequencer(t, conn, p, fastOpts())

	if outcome.Completed {
		t.Fatal("declined save reported completed")
	}
	if outcome.AbortedAt != "before saving" {
		t.Errorf("AbortedAt = %q", outcome.AbortedAt)
	}
	if !outcome.Applied {
		t.Error("the stop command already applied the estimate")
	}

	// the estimator was stopped, but nothing after the save gate
	got := conn.written()
	last := got[len(got)-1]
	if last != string(vnproto.Encode("VNWRG,44,0,1,1")) {
		t.Errorf("last frame after declined save = %q", last)
	}
	for _, w := range got {
		if w == string(vnproto.Encode("VNWNV")) {
			t.Error("VNWNV sent despite declined save")
		}
	}
}

// ============================================================
// Snapshot Timeouts
// ============================================================

func TestSequencer_ProceedsWithoutSnapshots(t *testing.T) {
	conn := newFakeConn() // device never answers

	opts := fastOpts()
	opts.SnapshotWait = 20 * time.Millisecond
	p := &scriptPrompter{confirms: []bool{true, true}, numbers: []float64{5}}
	outcome, output := runSequencer(t, conn, p, opts)

	if !outcome.Completed {
		t.Fatalf("timeouts must not abort the run: aborted at %q", outcome.AbortedAt)
	}
	if outcome.Before.Populated() || outcome.After.Populated() {
		t.Error("no snapshot should be populated")
	}
	if !strings.Contains(output, "No before snapshot") {
		t.Errorf("timeout message missing:\n%s", output)
	}
	if !strings.Contains(output, "No after snapshot") {
		t.Errorf("timeout message missing:\n%s", output)
	}
}

// ============================================================
// Option Defaults
// ============================================================

func TestOptions_Defaults(t *testing.T) {
	var opts Options
	opts.applyDefaults()

	if opts.SnapshotWait != 15*time.Second {
		t.Errorf("SnapshotWait default = %v", opts.SnapshotWait)
	}
	if opts.SettlingWait != 120*time.Second {
		t.Errorf("SettlingWait default = %v", opts.SettlingWait)
	}
	if opts.RestoreRateHz != 40 {
		t.Errorf("RestoreRateHz default = %v", opts.RestoreRateHz)
	}
}
