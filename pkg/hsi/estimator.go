// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package hsi

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/arcturus-robotics/vncal/pkg/vnproto"
)

// stopWait bounds how long Stop waits for the reader to exit. A
// reader blocked in a transport read can overrun this; Stop then
// returns without forcing termination, which is safe because the loop
// checks the stop channel before acting on anything it reads.
const stopWait = 2 * time.Second

// Estimator owns one calibration run: the snapshot store, the reader
// lifecycle, and the transport handle.
//
// The transport's write side is used only by the sequencer and the
// read side only by the reader goroutine, so no lock guards I/O. The
// only synchronized state is the lifecycle itself: start/stop
// transitions are serialized by a mutex held briefly, never during a
// blocking read.
//
// Snapshot population is monotonic, so an Estimator is single-use: a
// fresh run needs a fresh Estimator.
type Estimator struct {
	conn  io.ReadWriter
	store *Store
	sink  EventSink

	mu     sync.Mutex
	active bool
	stop   chan struct{}
	done   chan struct{}
}

// New creates an estimator for one calibration run over the given
// transport. A nil sink defaults to LogSink.
func New(conn io.ReadWriter, sink EventSink) *Estimator {
	if sink == nil {
		sink = LogSink{}
	}
	return &Estimator{
		conn:  conn,
		store: NewStore(),
		sink:  sink,
	}
}

// Store returns the run's snapshot store.
func (e *Estimator) Store() *Store {
	return e.store
}

// Start launches the background reader. Calling Start while the
// reader is already active is a no-op; there is never more than one
// reader per estimator.
func (e *Estimator) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return
	}
	e.active = true
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.readLoop(e.stop, e.done)
}

// Stop signals the reader to exit and waits up to stopWait for it to
// finish. It reports whether the reader exited within the bound;
// false means the reader is still draining a blocking read and will
// exit on its own once that read returns. Stop before Start, or a
// second Stop, is a safe no-op reported as a clean exit.
func (e *Estimator) Stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return true
	}
	e.active = false
	close(e.stop)

	select {
	case <-e.done:
		return true
	case <-time.After(stopWait):
		return false
	}
}

// Active reports whether the reader is running.
func (e *Estimator) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Send frames and writes one command payload. Sends are
// fire-and-forget: the device's acknowledgment, if any, arrives on
// the reader side.
func (e *Estimator) Send(payload string) error {
	frame := vnproto.Encode(payload)
	if _, err := e.conn.Write(frame); err != nil {
		return fmt.Errorf("write %q: %v", payload, err)
	}
	return nil
}
