// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

// Package hsi drives the VN-100's onboard hard/soft iron (HSI)
// magnetic-interference calibration over a byte-stream transport.
//
// The package splits the work between a background reader that owns
// the transport's read side and a foreground sequencer that writes
// commands and walks the operator through the procedure. The two
// sides meet in the snapshot store, which captures the calibration
// register's value before and after the estimation window.
package hsi

import (
	"errors"
	"sync"
	"time"
)

// ErrSnapshotOverflow is reported when a register 47 reply arrives
// after both snapshot slots are already populated. The procedure
// reads the register exactly twice; a third reply means a duplicate
// or an out-of-cadence read.
var ErrSnapshotOverflow = errors.New("hsi register read more than twice, captures beyond the second are dropped")

// Slot names one of the two capture points of a calibration run.
type Slot int

const (
	SlotBefore Slot = iota
	SlotAfter
)

// String returns the slot name.
func (s Slot) String() string {
	if s == SlotBefore {
		return "before"
	}
	return "after"
}

// Snapshot is a captured value of the calibration register: the
// row-major 3x3 C matrix and the 3-element B bias vector, kept as the
// strings the device sent.
type Snapshot struct {
	C []string
	B []string
}

// Populated reports whether the snapshot holds captured data. A
// snapshot counts as populated iff its matrix is non-empty.
func (s Snapshot) Populated() bool {
	return len(s.C) > 0
}

// Store holds the two snapshot slots of one calibration run.
//
// Each slot is written at most once and never cleared; a fresh run
// requires a fresh Store. Captures address slots by fallback order,
// not identity: the first capture fills "before", the second "after".
// This assumes exactly two reads per run in program order — the store
// cannot tell a duplicate from a legitimate third read, so anything
// past the second capture is rejected with ErrSnapshotOverflow.
type Store struct {
	mu        sync.Mutex
	snapshots [2]Snapshot
	ready     [2]chan struct{}
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{
		ready: [2]chan struct{}{make(chan struct{}), make(chan struct{})},
	}
}

// Capture stores a register reading in the first unpopulated slot and
// returns which slot was filled. When both slots are already full it
// returns ErrSnapshotOverflow and mutates nothing.
func (st *Store) Capture(matrix, bias []string) (Slot, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, slot := range []Slot{SlotBefore, SlotAfter} {
		if st.snapshots[slot].Populated() {
			continue
		}
		st.snapshots[slot] = Snapshot{
			C: append([]string(nil), matrix...),
			B: append([]string(nil), bias...),
		}
		close(st.ready[slot])
		return slot, nil
	}
	return SlotAfter, ErrSnapshotOverflow
}

// Populated reports whether the given slot has been captured.
func (st *Store) Populated(slot Slot) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshots[slot].Populated()
}

// Read returns the snapshot in the given slot. The second return
// value is false while the slot has not been captured yet.
func (st *Store) Read(slot Slot) (Snapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := st.snapshots[slot]
	return s, s.Populated()
}

// Wait blocks until the slot is populated or the timeout elapses,
// reporting whether the slot was populated in time. Population is
// signalled by the capture path, so waiting consumes no CPU.
func (st *Store) Wait(slot Slot, timeout time.Duration) bool {
	select {
	case <-st.ready[slot]:
		return true
	case <-time.After(timeout):
		return st.Populated(slot)
	}
}
