// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package vnproto

import (
	"strconv"
	"time"
)

// Message represents a decoded VectorNav sentence.
//
// Fields are kept as strings and converted on demand by the consumer;
// field 0 is always the message type tag with the leading '$' removed,
// matching the device's documented field numbering.
type Message struct {
	raw       string
	fields    []string
	timestamp time.Time
}

// Raw returns the original line as received, without the trailing
// line terminator.
func (m *Message) Raw() string {
	return m.raw
}

// Tag returns the message type tag (e.g. "VNRRG").
func (m *Message) Tag() string {
	return m.fields[0]
}

// NumFields returns the number of fields including the tag.
func (m *Message) NumFields() int {
	return len(m.fields)
}

// Field returns field i as a string. The second return value is false
// when the sentence has no such field.
func (m *Message) Field(i int) (string, bool) {
	if i < 0 || i >= len(m.fields) {
		return "", false
	}
	return m.fields[i], true
}

// IntField parses field i as a decimal integer.
func (m *Message) IntField(i int) (int, error) {
	s, ok := m.Field(i)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}

// FloatField parses field i as a float.
func (m *Message) FloatField(i int) (float64, error) {
	s, ok := m.Field(i)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// FieldRange returns a copy of fields [lo, hi). Out-of-range bounds
// are clamped; an empty slice means the sentence was too short.
func (m *Message) FieldRange(lo, hi int) []string {
	if lo < 0 {
		lo = 0
	}
	if hi > len(m.fields) {
		hi = len(m.fields)
	}
	if lo >= hi {
		return nil
	}
	out := make([]string, hi-lo)
	copy(out, m.fields[lo:hi])
	return out
}

// Timestamp returns the decode timestamp.
func (m *Message) Timestamp() time.Time {
	return m.timestamp
}
