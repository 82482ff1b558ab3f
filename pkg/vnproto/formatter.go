// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package vnproto

import (
	"fmt"
	"strings"
)

// FormatMessage formats a decoded sentence into a human-readable
// string for log output.
func FormatMessage(m *Message) string {
	timestamp := m.Timestamp().Format("15:04:05.000")
	name := FormatMessageType(m.Tag())

	result := fmt.Sprintf("[%s] %s (%s) fields=%d\n", timestamp, m.Tag(), name, m.NumFields()-1)

	switch m.Tag() {
	case TagSystemError:
		code, err := m.IntField(1)
		if err == nil {
			result += fmt.Sprintf("  Error: %s (%d)\n", FormatErrorCode(code), code)
		}
	case TagReadRegister:
		reg, err := m.IntField(1)
		if err == nil {
			result += fmt.Sprintf("  Register: %d\n", reg)
			if reg == RegMagCalResult && m.NumFields() >= 14 {
				result += FormatHSI(m.FieldRange(2, 11), m.FieldRange(11, 14))
			}
		}
	}

	return result
}

// FormatMessageType returns the human-readable name for a message
// type tag.
func FormatMessageType(tag string) string {
	switch tag {
	case TagReadRegister:
		return "REGISTER_READ_REPLY"
	case TagWriteRegister:
		return "REGISTER_WRITE_REPLY"
	case TagWriteSettings:
		return "WRITE_SETTINGS_REPLY"
	case TagRestoreSet:
		return "RESTORE_FACTORY_SETTINGS"
	case TagReset:
		return "DEVICE_RESET"
	case TagSystemError:
		return "SYSTEM_ERROR"
	case TagYawPitchRoll:
		return "YAW_PITCH_ROLL"
	case TagQuaternion:
		return "QUATERNION"
	case TagImuMeasure:
		return "IMU_MEASUREMENTS"
	case TagYprMagAccGyr:
		return "YPR_MAG_ACCEL_GYRO"
	default:
		return "UNKNOWN"
	}
}

// FormatErrorCode returns the name of a VNERR system error code.
func FormatErrorCode(code int) string {
	switch code {
	case ErrCodeHardFault:
		return "HARD_FAULT"
	case ErrCodeSerialBufferOverflow:
		return "SERIAL_BUFFER_OVERFLOW"
	case ErrCodeInvalidChecksum:
		return "INVALID_CHECKSUM"
	case ErrCodeInvalidCommand:
		return "INVALID_COMMAND"
	case ErrCodeNotEnoughParameters:
		return "NOT_ENOUGH_PARAMETERS"
	case ErrCodeTooManyParameters:
		return "TOO_MANY_PARAMETERS"
	case ErrCodeInvalidParameter:
		return "INVALID_PARAMETER"
	case ErrCodeInvalidRegister:
		return "INVALID_REGISTER"
	case ErrCodeUnauthorizedAccess:
		return "UNAUTHORIZED_ACCESS"
	case ErrCodeWatchdogReset:
		return "WATCHDOG_RESET"
	case ErrCodeOutputBufferOverflow:
		return "OUTPUT_BUFFER_OVERFLOW"
	case ErrCodeInsufficientBaudRate:
		return "INSUFFICIENT_BAUD_RATE"
	case ErrCodeErrorBufferOverflow:
		return "ERROR_BUFFER_OVERFLOW"
	default:
		return "UNKNOWN"
	}
}

// FormatHSI renders a register 47 compensation as the operator sees
// it: the C matrix as three rows of three, the B vector as one row.
// The values are printed as received from the device.
func FormatHSI(matrix, bias []string) string {
	var b strings.Builder
	if len(matrix) >= 9 {
		fmt.Fprintf(&b, "  C = [%s, %s, %s]\n", matrix[0], matrix[1], matrix[2])
		fmt.Fprintf(&b, "      [%s, %s, %s]\n", matrix[3], matrix[4], matrix[5])
		fmt.Fprintf(&b, "      [%s, %s, %s]\n", matrix[6], matrix[7], matrix[8])
	}
	if len(bias) >= 3 {
		fmt.Fprintf(&b, "  B = [%s, %s, %s]\n", bias[0], bias[1], bias[2])
	}
	return b.String()
}
