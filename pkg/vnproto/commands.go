// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package vnproto

import (
	"fmt"
	"strconv"
)

// Command builder functions create sentence payloads ready for
// Encode. They return the comma-separated fields without framing or
// checksum, per the VN-100 user manual's register definitions.

// NewAsyncOutputFrequency creates a register 7 write that sets the
// rate of the unsolicited measurement stream on the given serial
// port. A rate of 0 silences the stream entirely.
func NewAsyncOutputFrequency(rateHz, port int) string {
	return fmt.Sprintf("%s,%02d,%d,%d", TagWriteRegister, RegAsyncOutputFreq, rateHz, port)
}

// NewReadRegister creates a register read command. The device answers
// with a VNRRG sentence echoing the register number followed by its
// contents.
func NewReadRegister(reg int) string {
	return fmt.Sprintf("%s,%d", TagReadRegister, reg)
}

// NewHSIStart creates a register 44 write that starts the onboard
// magnetic-interference estimator with the given convergence rate
// (1 = slowest, 5 = most aggressive).
func NewHSIStart(convergenceRate float64) string {
	rate := strconv.FormatFloat(convergenceRate, 'g', -1, 64)
	return fmt.Sprintf("%s,%d,%d,%d,%s", TagWriteRegister, RegMagCalControl, HSIModeRun, HSIOutputApply, rate)
}

// NewHSIStop creates a register 44 write that stops the estimator.
// With discard=false the converged estimate is applied to the live
// compensation; with discard=true it is thrown away.
func NewHSIStop(discard bool) string {
	output := HSIOutputApply
	if discard {
		output = HSIOutputDiscard
	}
	return fmt.Sprintf("%s,%d,%d,%d,%d", TagWriteRegister, RegMagCalControl, HSIModeOff, output, ConvergenceRateMin)
}

// NewWriteSettings creates the command that persists the current
// register file to non-volatile memory.
func NewWriteSettings() string {
	return TagWriteSettings
}
