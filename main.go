// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics
//
// Vncal - VN-100 HSI Calibration Tool
//
// A CLI tool for running the VN-100's onboard magnetic-interference
// calibration and monitoring its serial traffic.

package main

import (
	"os"

	"github.com/arcturus-robotics/vncal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
