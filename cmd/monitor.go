// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/arcturus-robotics/vncal/pkg/vnproto"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Monitor VN-100 traffic with statistics",
	Long: `Track sentence traffic, device errors, and decode failures with statistics.

This command classifies each sentence and tracks:
  - Register read replies (with live HSI compensation display)
  - Device-reported system errors (VNERR)
  - Decode failures and transport errors
  - Statistics and trends (sentence rate, fault rate)

By default, only errors are displayed. Use --show-all to display every
sentence. The TUI additionally accepts command payloads to send to the
sensor, e.g. VNRRG,47 to request the calibration register.

Sentences are classified in real-time, with errors highlighted immediately
and periodic statistics summaries displayed at configurable intervals.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all sentences (not just errors)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if useTUI {
		return runMonitorTUI(conn, connInfo)
	}
	return runMonitorText(conn, connInfo)
}

// printDeviceError prints a VNERR sentence in highlighted format
func printDeviceError(m *vnproto.Message) {
	timestamp := m.Timestamp().Format("15:04:05.000")
	code, err := m.IntField(1)
	if err != nil {
		fmt.Printf("[%s] \033[1;31mDEVICE ERROR:\033[0m unparseable code in %q\n\n", timestamp, m.Raw())
		return
	}
	fmt.Printf("[%s] \033[1;31mDEVICE ERROR:\033[0m %s (%d)\n\n", timestamp, vnproto.FormatErrorCode(code), code)
}

// printDecodeError prints a decode error in highlighted format
func printDecodeError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mDECODE ERROR:\033[0m %v\n\n", timestamp, err)
}

// runMonitorTUI runs the monitor in TUI mode
func runMonitorTUI(conn Connection, connInfo string) error {
	decoder := vnproto.NewDecoder()
	synchronized := false
	invalidBytesBeforeSync := 0

	// Create TUI program
	m := initialMonitorModel(conn, connInfo, showAll)
	p := tea.NewProgram(m)

	// Reader goroutine
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					p.Send(monitorClosedMsg{})
					return
				}
				p.Send(monitorDataMsg{transportErr: err})
				time.Sleep(10 * time.Millisecond)
				continue
			}

			for i := 0; i < n; i++ {
				sentence, decodeErr := decoder.Feed(buf[i])

				if decodeErr != nil {
					if synchronized {
						p.Send(monitorDataMsg{decodeErr: decodeErr})
					} else {
						// a partial line from mid-stream join, not a real error
						invalidBytesBeforeSync++
					}
				} else if sentence != nil {
					if !synchronized {
						synchronized = true
						p.Send(monitorSyncMsg{invalidBytes: invalidBytesBeforeSync})
					}
					p.Send(monitorDataMsg{sentence: sentence})
				}
			}
		}
	}()

	// Run TUI
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return nil
}

// runMonitorText runs the monitor in text mode
func runMonitorText(conn Connection, connInfo string) error {
	fmt.Printf("Vncal - Monitor Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All sentences\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := vnproto.NewDecoder()
	stats := vnproto.NewStatistics()
	buf := make([]byte, 128)

	// Sync tracking - ignore decode errors until first valid sentence
	synchronized := false
	invalidBytesBeforeSync := 0

	// Statistics ticker
	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	// Channel for non-blocking reads
	serialBuf := make(chan []byte, 10)
	go func() {
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					close(serialBuf)
					return
				}
				log.Printf("Read error: %v", err)
				stats.RecordTransportError()
				time.Sleep(10 * time.Millisecond)
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			serialBuf <- data
		}
	}()

	for {
		select {
		case data, ok := <-serialBuf:
			if !ok {
				log.Printf("Connection closed")
				return nil
			}

			for _, b := range data {
				sentence, decodeErr := decoder.Feed(b)

				if decodeErr != nil {
					if synchronized {
						stats.Update(nil, decodeErr)
						printDecodeError(decodeErr)
					} else {
						invalidBytesBeforeSync++
					}
				} else if sentence != nil {
					if !synchronized {
						synchronized = true
						if invalidBytesBeforeSync > 0 {
							fmt.Printf("[SYNC] Synchronized after skipping %d invalid bytes\n\n", invalidBytesBeforeSync)
						} else {
							fmt.Printf("[SYNC] Synchronized\n\n")
						}
					}

					stats.Update(sentence, nil)

					if sentence.Tag() == vnproto.TagSystemError {
						// Always print device errors
						printDeviceError(sentence)
					} else if showAll {
						fmt.Print(vnproto.FormatMessage(sentence))
					}
				}
			}

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}
