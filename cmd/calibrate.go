// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/arcturus-robotics/vncal/pkg/hsi"
	"github.com/arcturus-robotics/vncal/pkg/vnproto"
	"github.com/spf13/cobra"
)

var (
	calDiscard   bool
	calReportDir string
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Run the guided HSI calibration procedure",
	Long: `Run the VN-100's onboard hard/soft iron estimation, guided step by step.

The procedure silences the async measurement stream, shows the current
compensation, starts the onboard estimator at an operator-chosen convergence
rate, and waits two minutes while the vehicle is rotated through all
orientations. The new compensation is then displayed and, after
confirmation, saved to the sensor's non-volatile memory.

Declining a confirmation stops the procedure at that point; nothing is
saved without the final confirmation. With --discard the estimation runs
but the converged compensation is thrown away, which is useful for a dry
run in a new mounting position.

Supports both serial and WebSocket connections.`,
	RunE: runCalibrate,
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
	calibrateCmd.Flags().BoolVar(&calDiscard, "discard", false, "Discard the estimate instead of applying it")
	calibrateCmd.Flags().StringVar(&calReportDir, "report-dir", "", "Write a JSON calibration report into this directory")
}

// consoleSink prints reader events for the operator while the
// sequencer owns stdout.
type consoleSink struct{}

func (consoleSink) DeviceError(code string) {
	name := "UNKNOWN"
	if n, err := strconv.Atoi(code); err == nil {
		name = vnproto.FormatErrorCode(n)
	}
	fmt.Printf("Device error: %s (%s)\n", name, code)
}

func (consoleSink) Unhandled(m *vnproto.Message) {
	// async measurement residue is normal right after connect
}

func (consoleSink) Fault(err error) {
	log.Printf("calibrate: %v", err)
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Vncal - HSI Calibration\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	est := hsi.New(conn, consoleSink{})
	est.Start()
	defer func() {
		if !est.Stop() {
			log.Printf("reader did not stop cleanly, exiting anyway")
		}
	}()

	seq := hsi.NewSequencer(est, newTerminalPrompter(os.Stdin, os.Stdout), os.Stdout,
		hsi.Options{Discard: calDiscard})
	outcome, err := seq.Run()
	if err != nil {
		return fmt.Errorf("calibration failed: %v", err)
	}

	if calReportDir != "" {
		path, err := hsi.WriteReport(calReportDir, outcome)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
	}

	if !outcome.Completed {
		fmt.Printf("Calibration stopped (%s), nothing saved\n", outcome.AbortedAt)
	}
	return nil
}
