// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// terminalPrompter answers calibration prompts from a line-oriented
// input stream, normally the controlling terminal. Invalid answers
// re-prompt; a closed input stream means the operator is gone and is
// reported as an error so the caller can abort.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out}
}

func (t *terminalPrompter) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("input closed: %v", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question until the operator gives one of
// y/yes/n/no (case-insensitive).
func (t *terminalPrompter) Confirm(prompt string) (bool, error) {
	for {
		fmt.Fprintf(t.out, "%s [y/n]: ", prompt)
		answer, err := t.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(t.out, "Please answer y or n")
		}
	}
}

// AskNumber asks for a number until the operator gives one inside
// [min, max].
func (t *terminalPrompter) AskNumber(prompt string, min, max float64) (float64, error) {
	for {
		fmt.Fprintf(t.out, "%s: ", prompt)
		answer, err := t.readLine()
		if err != nil {
			return 0, err
		}

		n, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			fmt.Fprintf(t.out, "%q is not a number\n", answer)
			continue
		}
		if n < min || n > max {
			fmt.Fprintf(t.out, "Value must be between %g and %g\n", min, max)
			continue
		}
		return n, nil
	}
}
