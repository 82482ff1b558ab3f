// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package hsi

import (
	"fmt"
	"io"
	"time"

	"github.com/arcturus-robotics/vncal/pkg/vnproto"
)

// Prompter is the sequencer's view of the operator. Implementations
// block until the operator answers.
type Prompter interface {
	// Confirm asks a yes/no question. An error means the operator
	// cancelled (interrupt, closed input) rather than answered.
	Confirm(prompt string) (bool, error)

	// AskNumber asks for a numeric value in [min, max], re-prompting
	// on invalid or out-of-range input. An error means cancellation.
	AskNumber(prompt string, min, max float64) (float64, error)
}

// Options tunes a calibration run. The zero value selects the
// standard procedure timings.
type Options struct {
	// Discard stops the estimator without applying the converged
	// compensation.
	Discard bool

	// SnapshotWait bounds how long each register read waits for its
	// snapshot (default 15s).
	SnapshotWait time.Duration

	// SettlingWait is the fixed window during which the operator
	// rotates the sensor (default 120s).
	SettlingWait time.Duration

	// RestoreRateHz is the async output rate restored at the end of
	// the run (default 40).
	RestoreRateHz int
}

func (o *Options) applyDefaults() {
	if o.SnapshotWait == 0 {
		o.SnapshotWait = 15 * time.Second
	}
	if o.SettlingWait == 0 {
		o.SettlingWait = 120 * time.Second
	}
	if o.RestoreRateHz == 0 {
		o.RestoreRateHz = vnproto.DefaultAsyncRateHz
	}
}

// Outcome describes how a run ended. An operator abort is a normal
// early stop, not an error: Completed is false and AbortedAt names
// the gate the run stopped at.
type Outcome struct {
	Completed       bool
	AbortedAt       string
	ConvergenceRate float64
	Applied         bool
	Before, After   Snapshot
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Sequencer walks the calibration procedure step by step. All device
// commands go out through the estimator's write side; replies arrive
// via the background reader and are observed through the snapshot
// store. The sequencer itself never reads the transport.
type Sequencer struct {
	est      *Estimator
	prompter Prompter
	out      io.Writer
	opts     Options
}

// NewSequencer creates a sequencer for one run. Progress text is
// written to out.
func NewSequencer(est *Estimator, prompter Prompter, out io.Writer, opts Options) *Sequencer {
	opts.applyDefaults()
	return &Sequencer{est: est, prompter: prompter, out: out, opts: opts}
}

// Run executes the procedure. The returned error is non-nil only for
// transport write failures; operator aborts and snapshot timeouts are
// reported through the Outcome.
func (s *Sequencer) Run() (*Outcome, error) {
	outcome := &Outcome{StartedAt: time.Now()}
	defer func() { outcome.FinishedAt = time.Now() }()

	// Silence the async measurement stream so register traffic is
	// visible on the port.
	fmt.Fprintln(s.out, "Turning serial port async messages off")
	if err := s.est.Send(vnproto.NewAsyncOutputFrequency(0, vnproto.SerialPort1)); err != nil {
		return outcome, err
	}

	// Baseline read of the calibration register.
	fmt.Fprintln(s.out, "Checking current HSI compensation")
	if err := s.readAndShow(SlotBefore); err != nil {
		return outcome, err
	}
	outcome.Before, _ = s.est.Store().Read(SlotBefore)

	if !s.gate(outcome, "before estimation", "Would you like to continue?") {
		return outcome, nil
	}

	// Convergence rate, then start the onboard estimator.
	rate, err := s.prompter.AskNumber(
		fmt.Sprintf("What convergence rate would you like? (%d-%d)",
			vnproto.ConvergenceRateMin, vnproto.ConvergenceRateMax),
		vnproto.ConvergenceRateMin, vnproto.ConvergenceRateMax)
	if err != nil {
		fmt.Fprintln(s.out, "Convergence rate never gathered, stopping")
		outcome.AbortedAt = "convergence rate prompt"
		return outcome, nil
	}
	outcome.ConvergenceRate = rate

	fmt.Fprintln(s.out, "Starting the HSI estimation")
	if err := s.est.Send(vnproto.NewHSIStart(rate)); err != nil {
		return outcome, err
	}

	// Settling window: pure delay while the operator rotates the
	// vehicle through all orientations.
	fmt.Fprintf(s.out, "Waiting %s for the estimation to converge.\n", s.opts.SettlingWait)
	fmt.Fprintln(s.out, "While this is running, please rotate the vehicle in all axes,")
	fmt.Fprintln(s.out, "trying to go through all positions.")
	s.settle()

	// Second read of the calibration register.
	if err := s.readAndShow(SlotAfter); err != nil {
		return outcome, err
	}
	outcome.After, _ = s.est.Store().Read(SlotAfter)

	// Stop the estimator, applying or discarding the estimate.
	outcome.Applied = !s.opts.Discard
	if s.opts.Discard {
		fmt.Fprintln(s.out, "Stopping the estimation, discarding the estimate")
	} else {
		fmt.Fprintln(s.out, "Stopping the estimation, applying the estimate")
	}
	if err := s.est.Send(vnproto.NewHSIStop(s.opts.Discard)); err != nil {
		return outcome, err
	}

	if !s.gate(outcome, "before saving", "Save settings to non-volatile memory?") {
		return outcome, nil
	}

	// Restore the measurement stream, give the device a moment, then
	// persist.
	if err := s.est.Send(vnproto.NewAsyncOutputFrequency(s.opts.RestoreRateHz, vnproto.SerialPort1)); err != nil {
		return outcome, err
	}
	time.Sleep(1 * time.Second)
	if err := s.est.Send(vnproto.NewWriteSettings()); err != nil {
		return outcome, err
	}

	fmt.Fprintln(s.out, "HSI calibration completed and saved")
	outcome.Completed = true
	return outcome, nil
}

// settle waits out the estimation window, printing the time left so
// the operator knows the rotation should continue.
func (s *Sequencer) settle() {
	const step = 15 * time.Second
	remaining := s.opts.SettlingWait
	for remaining > step {
		time.Sleep(step)
		remaining -= step
		fmt.Fprintf(s.out, "  %s remaining\n", remaining)
	}
	time.Sleep(remaining)
}

// readAndShow requests the calibration register, waits for the slot
// to populate, and displays it. A timeout is soft: the run proceeds
// with whatever arrived.
func (s *Sequencer) readAndShow(slot Slot) error {
	if err := s.est.Send(vnproto.NewReadRegister(vnproto.RegMagCalResult)); err != nil {
		return err
	}

	if !s.est.Store().Wait(slot, s.opts.SnapshotWait) {
		fmt.Fprintf(s.out, "No %s snapshot within %s, continuing without it\n", slot, s.opts.SnapshotWait)
		return nil
	}

	snap, _ := s.est.Store().Read(slot)
	fmt.Fprintf(s.out, "HSI %s snapshot:\n", slot)
	fmt.Fprint(s.out, vnproto.FormatHSI(snap.C, snap.B))
	return nil
}

// gate asks the operator to continue. A "no" or a cancellation aborts
// the remaining sequence; both are normal early stops.
func (s *Sequencer) gate(outcome *Outcome, at, prompt string) bool {
	ok, err := s.prompter.Confirm(prompt)
	if err != nil || !ok {
		fmt.Fprintf(s.out, "Stopping %s\n", at)
		outcome.AbortedAt = at
		return false
	}
	return true
}
