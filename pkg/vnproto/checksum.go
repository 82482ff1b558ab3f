// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package vnproto

import "fmt"

// Checksum computes the 8-bit XOR checksum over the payload's ASCII
// bytes, as specified for VectorNav sentences.
func Checksum(payload string) byte {
	var x byte
	for i := 0; i < len(payload); i++ {
		x ^= payload[i]
	}
	return x
}

// ChecksumString returns the checksum rendered as the two uppercase
// hex digits that appear after the '*' on the wire.
func ChecksumString(payload string) string {
	return fmt.Sprintf("%02X", Checksum(payload))
}
