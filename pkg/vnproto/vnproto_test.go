// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package vnproto

import (
	"strings"
	"testing"
)

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if c := Checksum(""); c != 0 {
		t.Errorf("Checksum of empty payload should be 0, got 0x%02X", c)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected byte
	}{
		{name: "single byte", payload: "A", expected: 0x41},
		{name: "two bytes xor", payload: "AB", expected: 0x03},
		{name: "read register 47", payload: "VNRRG,47", expected: Checksum("VNRRG") ^ ',' ^ '4' ^ '7'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := Checksum(tt.payload); c != tt.expected {
				t.Errorf("Checksum(%q) = 0x%02X, expected 0x%02X", tt.payload, c, tt.expected)
			}
		})
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	payload := "VNWRG,44,1,1,3"
	if Checksum(payload) != Checksum(payload) {
		t.Error("Checksum should be deterministic")
	}
}

func TestChecksumString_Format(t *testing.T) {
	// 0x03 must render zero-padded and uppercase
	if s := ChecksumString("AB"); s != "03" {
		t.Errorf("ChecksumString(\"AB\") = %q, expected \"03\"", s)
	}
}

// ============================================================
// Encoder Tests
// ============================================================

func TestEncode_KnownFrame(t *testing.T) {
	got := Encode("AB")
	if string(got) != "$AB*03\r\n" {
		t.Errorf("Encode(\"AB\") = %q, expected \"$AB*03\\r\\n\"", got)
	}
}

func TestEncode_Framing(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "read register", payload: "VNRRG,47"},
		{name: "async off", payload: "VNWRG,07,0,1"},
		{name: "write settings", payload: "VNWNV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Encode(tt.payload))
			if !strings.HasPrefix(got, "$"+tt.payload+"*") {
				t.Errorf("frame %q should start with \"$%s*\"", got, tt.payload)
			}
			if !strings.HasSuffix(got, "\r\n") {
				t.Errorf("frame %q should end with CRLF", got)
			}
			// checksum segment is exactly two uppercase hex digits
			cks := got[len(got)-4 : len(got)-2]
			if cks != ChecksumString(tt.payload) {
				t.Errorf("frame checksum %q, expected %q", cks, ChecksumString(tt.payload))
			}
		})
	}
}

// ============================================================
// Decoder Tests
// ============================================================

func TestDecode_Blank(t *testing.T) {
	for _, line := range []string{"", "   ", "\r", "\t  \r"} {
		m, err := Decode(line)
		if err != nil {
			t.Errorf("Decode(%q) should not fail, got %v", line, err)
		}
		if m != nil {
			t.Errorf("Decode(%q) should return nil message", line)
		}
	}
}

func TestDecode_ChecksumOnly(t *testing.T) {
	// a line that is nothing but a checksum suffix is treated as blank
	m, err := Decode("*78\r")
	if err != nil || m != nil {
		t.Errorf("Decode(\"*78\") = (%v, %v), expected (nil, nil)", m, err)
	}
}

func TestDecode_RegisterReply(t *testing.T) {
	m, err := Decode("$VNRRG,47,1,0,0,0,1,0,0,0,1,0.1,0.2,0.3*5A\r")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if m == nil {
		t.Fatal("Expected message, got nil")
	}

	if m.Tag() != TagReadRegister {
		t.Errorf("Tag = %q, expected VNRRG", m.Tag())
	}
	reg, err := m.IntField(1)
	if err != nil || reg != 47 {
		t.Errorf("IntField(1) = (%d, %v), expected (47, nil)", reg, err)
	}
	if m.NumFields() != 14 {
		t.Errorf("NumFields = %d, expected 14", m.NumFields())
	}

	matrix := m.FieldRange(2, 11)
	if len(matrix) != 9 || matrix[0] != "1" || matrix[8] != "1" {
		t.Errorf("matrix fields wrong: %v", matrix)
	}
	bias := m.FieldRange(11, 14)
	if len(bias) != 3 || bias[2] != "0.3" {
		t.Errorf("bias fields wrong: %v", bias)
	}
}

func TestDecode_StripsDollarOnly(t *testing.T) {
	// lines without '$' are still decoded; the tag just has nothing
	// to strip
	m, err := Decode("VNERR,03*71")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if m.Tag() != TagSystemError {
		t.Errorf("Tag = %q, expected VNERR", m.Tag())
	}
}

func TestDecode_MissingTag(t *testing.T) {
	if _, err := Decode("$,1,2*00"); err == nil {
		t.Error("Expected error for empty type tag")
	}
}

func TestDecode_FieldAccessors(t *testing.T) {
	m, err := Decode("$VNERR,03*71")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if _, ok := m.Field(5); ok {
		t.Error("Field(5) should report missing")
	}
	if _, err := m.IntField(5); err == nil {
		t.Error("IntField(5) should fail for missing field")
	}
	if f, err := m.FloatField(1); err != nil || f != 3 {
		t.Errorf("FloatField(1) = (%v, %v), expected (3, nil)", f, err)
	}
	if m.Timestamp().IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	payloads := []string{
		"VNRRG,47",
		"VNWRG,44,1,1,2.5",
		"VNWNV",
		"VNYMR,+006.271,+000.031,-001.642",
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			frame := Encode(payload)
			m, err := Decode(strings.TrimSuffix(string(frame), "\r\n"))
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			want := strings.Split(payload, ",")
			if m.NumFields() != len(want) {
				t.Fatalf("field count %d, expected %d", m.NumFields(), len(want))
			}
			for i, w := range want {
				got, _ := m.Field(i)
				if got != w {
					t.Errorf("field %d = %q, expected %q", i, got, w)
				}
			}
		})
	}
}

// ============================================================
// Byte Decoder Tests
// ============================================================

func feedString(t *testing.T, d *Decoder, s string) (*Message, error) {
	t.Helper()
	var last *Message
	var lastErr error
	for i := 0; i < len(s); i++ {
		m, err := d.Feed(s[i])
		if m != nil {
			last = m
		}
		if err != nil {
			lastErr = err
		}
	}
	return last, lastErr
}

func TestDecoder_PartialDelivery(t *testing.T) {
	d := NewDecoder()

	// first chunk delivers half a sentence
	if m, err := feedString(t, d, "$VNRRG,4"); m != nil || err != nil {
		t.Fatalf("mid-line feed returned (%v, %v)", m, err)
	}

	// second chunk completes it
	m, err := feedString(t, d, "7*6A\r\n")
	if err != nil {
		t.Fatalf("Feed error: %v", err)
	}
	if m == nil {
		t.Fatal("Expected message after line terminator")
	}
	if m.Tag() != TagReadRegister {
		t.Errorf("Tag = %q, expected VNRRG", m.Tag())
	}
}

func TestDecoder_BlankLines(t *testing.T) {
	d := NewDecoder()
	m, err := feedString(t, d, "\r\n\r\n   \r\n")
	if m != nil || err != nil {
		t.Errorf("blank lines returned (%v, %v), expected (nil, nil)", m, err)
	}
}

func TestDecoder_MultipleSentences(t *testing.T) {
	d := NewDecoder()
	input := "$VNERR,03*71\r\n$VNRRG,47*6A\r\n"

	var got []string
	for i := 0; i < len(input); i++ {
		m, err := d.Feed(input[i])
		if err != nil {
			t.Fatalf("Feed error: %v", err)
		}
		if m != nil {
			got = append(got, m.Tag())
		}
	}

	if len(got) != 2 || got[0] != TagSystemError || got[1] != TagReadRegister {
		t.Errorf("decoded tags %v, expected [VNERR VNRRG]", got)
	}
}

func TestDecoder_OverlongLine(t *testing.T) {
	d := NewDecoder()

	var sawErr bool
	for i := 0; i < MaxSentenceSize+10; i++ {
		if _, err := d.Feed('A'); err != nil {
			sawErr = true
		}
	}
	if !sawErr {
		t.Error("Expected error for overlong sentence")
	}

	// decoder must keep working afterwards
	m, err := feedString(t, d, "$VNRRG,47*6A\r\n")
	if err != nil {
		t.Fatalf("Feed error after overflow: %v", err)
	}
	if m == nil {
		t.Fatal("Expected message after overflow recovery")
	}
}

func TestDecoder_Reset(t *testing.T) {
	d := NewDecoder()
	feedString(t, d, "$VNRRG,4")
	d.Reset()

	m, err := feedString(t, d, "$VNERR,03*71\r\n")
	if err != nil {
		t.Fatalf("Feed error: %v", err)
	}
	if m == nil || m.Tag() != TagSystemError {
		t.Error("Reset should discard the partial line")
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestFormatMessageType(t *testing.T) {
	tests := []struct {
		tag      string
		expected string
	}{
		{TagReadRegister, "REGISTER_READ_REPLY"},
		{TagWriteRegister, "REGISTER_WRITE_REPLY"},
		{TagWriteSettings, "WRITE_SETTINGS_REPLY"},
		{TagSystemError, "SYSTEM_ERROR"},
		{TagYawPitchRoll, "YAW_PITCH_ROLL"},
		{TagYprMagAccGyr, "YPR_MAG_ACCEL_GYRO"},
		{"VNXYZ", "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatMessageType(tt.tag); got != tt.expected {
				t.Errorf("FormatMessageType(%q) = %q, expected %q", tt.tag, got, tt.expected)
			}
		})
	}
}

func TestFormatErrorCode(t *testing.T) {
	if got := FormatErrorCode(ErrCodeInvalidChecksum); got != "INVALID_CHECKSUM" {
		t.Errorf("FormatErrorCode(3) = %q", got)
	}
	if got := FormatErrorCode(200); got != "UNKNOWN" {
		t.Errorf("FormatErrorCode(200) = %q", got)
	}
}

func TestFormatHSI(t *testing.T) {
	matrix := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}
	bias := []string{"0.1", "0.2", "0.3"}

	out := FormatHSI(matrix, bias)
	if !strings.Contains(out, "[1, 2, 3]") {
		t.Errorf("first matrix row missing from %q", out)
	}
	if !strings.Contains(out, "[7, 8, 9]") {
		t.Errorf("last matrix row missing from %q", out)
	}
	if !strings.Contains(out, "B = [0.1, 0.2, 0.3]") {
		t.Errorf("bias row missing from %q", out)
	}
}

func TestFormatHSI_Short(t *testing.T) {
	// truncated fields render nothing rather than panicking
	if out := FormatHSI([]string{"1", "2"}, nil); out != "" {
		t.Errorf("expected empty render for short input, got %q", out)
	}
}

func TestFormatMessage_Error(t *testing.T) {
	m, err := Decode("$VNERR,03*71")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	out := FormatMessage(m)
	if !strings.Contains(out, "SYSTEM_ERROR") {
		t.Error("Should contain message type name")
	}
	if !strings.Contains(out, "INVALID_CHECKSUM") {
		t.Error("Should contain error code name")
	}
}

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	reply, _ := Decode("$VNRRG,47*6A")
	devErr, _ := Decode("$VNERR,03*71")
	other, _ := Decode("$VNYMR,1,2,3*00")

	s.Update(reply, nil)
	s.Update(devErr, nil)
	s.Update(other, nil)
	s.Update(nil, nil) // blank line, not counted
	s.Update(nil, errDecode{})
	s.RecordTransportError()

	if s.TotalSentences != 4 {
		t.Errorf("TotalSentences = %d, expected 4", s.TotalSentences)
	}
	if s.RegisterReplies != 1 || s.DeviceErrors != 1 || s.Unhandled != 1 {
		t.Errorf("classification wrong: %+v", s)
	}
	if s.DecodeErrors != 1 || s.TransportErrors != 1 {
		t.Errorf("fault counters wrong: %+v", s)
	}
}

func TestStatistics_String(t *testing.T) {
	s := NewStatistics()
	s.TotalSentences = 10
	s.RegisterReplies = 2
	s.DeviceErrors = 1

	out := s.String()
	if !strings.Contains(out, "Statistics") {
		t.Error("String should contain 'Statistics'")
	}
	if !strings.Contains(out, "Register Replies") {
		t.Error("String should contain 'Register Replies'")
	}
}

func TestStatistics_Reset(t *testing.T) {
	s := NewStatistics()
	s.TotalSentences = 100
	s.DecodeErrors = 5

	s.Reset()

	if s.TotalSentences != 0 || s.DecodeErrors != 0 {
		t.Error("counters should be zero after reset")
	}
	if s.StartTime.IsZero() {
		t.Error("StartTime should be set after reset")
	}
}

type errDecode struct{}

func (errDecode) Error() string { return "decode failed" }
