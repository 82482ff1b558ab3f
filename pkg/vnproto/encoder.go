// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package vnproto

import "fmt"

// Encode frames a command payload for transmission: the payload is
// wrapped in '$'...'*', followed by the two-digit XOR checksum and
// CRLF. The checksum is computed fresh on every call.
//
// The payload must be ASCII; the codec does not inspect it beyond
// checksumming its bytes.
func Encode(payload string) []byte {
	return []byte(fmt.Sprintf("$%s*%02X\r\n", payload, Checksum(payload)))
}
