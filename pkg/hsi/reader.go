// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package hsi

import (
	"fmt"
	"log"
	"time"

	"github.com/arcturus-robotics/vncal/pkg/vnproto"
)

// EventSink receives everything the reader observes that is not a
// register 47 capture. All callbacks run on the reader goroutine and
// must not block.
type EventSink interface {
	// DeviceError is called for each VNERR sentence with the
	// contained error code field.
	DeviceError(code string)

	// Unhandled is called for decoded sentences the calibration
	// engine does not act on.
	Unhandled(m *vnproto.Message)

	// Fault is called for transport read failures, undecodable
	// lines, malformed replies, and snapshot overflow. Faults are
	// never fatal to the reader.
	Fault(err error)
}

// LogSink is the default EventSink; it writes everything to the
// standard logger.
type LogSink struct{}

func (LogSink) DeviceError(code string) {
	log.Printf("hsi: device reported error code %s in vn100 node", code)
}

func (LogSink) Unhandled(m *vnproto.Message) {
	log.Printf("hsi: unhandled message: %s", m.Raw())
}

func (LogSink) Fault(err error) {
	log.Printf("hsi: %v", err)
}

// readLoop owns the transport's read side for the lifetime of one
// Start/Stop cycle. It reads raw chunks, assembles and decodes
// sentences, and classifies each one:
//
//   - VNRRG for register 47: capture matrix and bias into the store
//   - VNERR: surface the error code to the sink
//   - anything else: report as unhandled and ignore
//
// Every fault is reported and skipped; a bad line or failed read must
// not terminate the loop. The loop exits only when the stop channel
// is closed.
func (e *Estimator) readLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	dec := vnproto.NewDecoder()
	buf := make([]byte, 128)

	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := e.conn.Read(buf)
		if err != nil {
			select {
			case <-stop:
				return
			default:
			}
			e.sink.Fault(fmt.Errorf("transport read: %v", err))
			// brief pause so a dead transport does not spin the loop
			time.Sleep(10 * time.Millisecond)
			continue
		}

		for i := 0; i < n; i++ {
			m, decodeErr := dec.Feed(buf[i])
			if decodeErr != nil {
				e.sink.Fault(fmt.Errorf("decode: %v", decodeErr))
				continue
			}
			if m == nil {
				continue
			}
			e.dispatch(m)
		}
	}
}

// dispatch classifies one decoded sentence.
func (e *Estimator) dispatch(m *vnproto.Message) {
	switch m.Tag() {
	case vnproto.TagReadRegister:
		reg, err := m.IntField(1)
		if err != nil {
			e.sink.Fault(fmt.Errorf("malformed register reply %q: %v", m.Raw(), err))
			return
		}
		if reg != vnproto.RegMagCalResult {
			e.sink.Unhandled(m)
			return
		}
		if m.NumFields() < 14 {
			e.sink.Fault(fmt.Errorf("short register %d reply: %d fields", reg, m.NumFields()))
			return
		}
		if _, err := e.store.Capture(m.FieldRange(2, 11), m.FieldRange(11, 14)); err != nil {
			e.sink.Fault(err)
		}

	case vnproto.TagSystemError:
		code, ok := m.Field(1)
		if !ok {
			e.sink.Fault(fmt.Errorf("VNERR sentence without error code: %q", m.Raw()))
			return
		}
		e.sink.DeviceError(code)

	default:
		e.sink.Unhandled(m)
	}
}
