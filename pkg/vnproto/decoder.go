// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package vnproto

import (
	"fmt"
	"strings"
	"time"
)

// Decode parses one received line into a Message.
//
// The checksum suffix (everything from '*' onward) is discarded; the
// remainder is split on ',' and the leading '$' is stripped from the
// type tag. Inbound checksums are not verified — the serial link is
// treated as reliable at the byte level, and the device re-sends
// nothing anyway.
//
// A blank or whitespace-only line returns (nil, nil): the caller
// skips it, it is not a fault.
func Decode(line string) (*Message, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	body := trimmed
	if i := strings.IndexByte(body, ChecksumChar); i >= 0 {
		body = body[:i]
	}
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	fields := strings.Split(body, ",")
	fields[0] = strings.TrimPrefix(strings.TrimSpace(fields[0]), string(StartChar))
	if fields[0] == "" {
		return nil, fmt.Errorf("missing message type tag in %q", trimmed)
	}

	return &Message{
		raw:       trimmed,
		fields:    fields,
		timestamp: time.Now(),
	}, nil
}

// Decoder assembles raw transport bytes into lines and decodes them.
// The transport may deliver partial lines or arbitrary-sized chunks;
// bytes are buffered until a '\n' terminator arrives.
type Decoder struct {
	buf []byte
}

// NewDecoder creates a new sentence decoder.
func NewDecoder() *Decoder {
	return &Decoder{buf: make([]byte, 0, MaxSentenceSize)}
}

// Reset discards any partially accumulated line.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
}

// Feed processes a single byte. It returns a completed Message when
// the byte terminates a line, (nil, nil) while a line is still being
// accumulated or the completed line was blank, and an error when a
// line cannot be decoded or exceeds MaxSentenceSize.
func (d *Decoder) Feed(b byte) (*Message, error) {
	if b == '\n' {
		line := string(d.buf)
		d.buf = d.buf[:0]
		return Decode(line)
	}

	if len(d.buf) >= MaxSentenceSize {
		d.buf = d.buf[:0]
		return nil, fmt.Errorf("sentence exceeds %d bytes, discarding", MaxSentenceSize)
	}
	d.buf = append(d.buf, b)
	return nil, nil
}
