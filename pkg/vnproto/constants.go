// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

// Package vnproto provides an implementation of the VectorNav ASCII
// serial protocol as spoken by the VN-100 inertial sensor.
//
// Sentences are comma-separated ASCII fields framed as
// $<fields>*<checksum>\r\n, where the checksum is the XOR of every
// payload byte rendered as two uppercase hex digits. This package
// provides sentence encoding/decoding, command builders, and
// human-readable formatting.
package vnproto

// Sentence framing
const (
	StartChar    = '$'
	ChecksumChar = '*'

	// MaxSentenceSize bounds a single inbound sentence. The longest
	// documented VN-100 response (a full register dump) is well under
	// this; anything longer is treated as line noise.
	MaxSentenceSize = 256
)

// Message type tags (first field of every sentence)
const (
	TagReadRegister  = "VNRRG" // register read command / reply
	TagWriteRegister = "VNWRG" // register write command / reply
	TagWriteSettings = "VNWNV" // save settings to non-volatile memory
	TagRestoreSet    = "VNRFS" // restore factory settings
	TagReset         = "VNRST" // device reset
	TagSystemError   = "VNERR" // asynchronous error notification

	// Common asynchronous measurement outputs. The calibration engine
	// does not consume these, but the monitor names them.
	TagYawPitchRoll = "VNYPR"
	TagQuaternion   = "VNQTN"
	TagImuMeasure   = "VNIMU"
	TagYprMagAccGyr = "VNYMR"
)

// Configuration registers used by the calibration procedure
const (
	// RegAsyncOutputFreq selects the rate of the unsolicited
	// measurement stream (register 7).
	RegAsyncOutputFreq = 7

	// RegMagCalControl starts/stops the onboard magnetic-interference
	// estimator (register 44).
	RegMagCalControl = 44

	// RegMagCalResult holds the estimated hard/soft iron compensation:
	// a row-major 3x3 C matrix followed by a 3-element B vector
	// (register 47).
	RegMagCalResult = 47
)

// HSI estimator mode values for register 44, field 1
const (
	HSIModeOff = 0
	HSIModeRun = 1
)

// HSI output selector values for register 44, field 2. Stopping with
// HSIOutputApply commits the converged estimate to the live
// compensation registers; HSIOutputDiscard leaves them untouched.
const (
	HSIOutputNone    = 0
	HSIOutputApply   = 1
	HSIOutputDiscard = 3
)

// Serial port selector used by register write commands that take a
// port argument (the VN-100 exposes two UARTs).
const SerialPort1 = 1

// Convergence rate bounds for the onboard estimator
const (
	ConvergenceRateMin = 1
	ConvergenceRateMax = 5
)

// DefaultAsyncRateHz is the measurement stream rate restored after a
// calibration run.
const DefaultAsyncRateHz = 40

// System error codes carried by VNERR sentences
const (
	ErrCodeHardFault            = 1
	ErrCodeSerialBufferOverflow = 2
	ErrCodeInvalidChecksum      = 3
	ErrCodeInvalidCommand       = 4
	ErrCodeNotEnoughParameters  = 5
	ErrCodeTooManyParameters    = 6
	ErrCodeInvalidParameter     = 7
	ErrCodeInvalidRegister      = 8
	ErrCodeUnauthorizedAccess   = 9
	ErrCodeWatchdogReset        = 10
	ErrCodeOutputBufferOverflow = 11
	ErrCodeInsufficientBaudRate = 12
	ErrCodeErrorBufferOverflow  = 255
)
