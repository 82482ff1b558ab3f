// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Mara Ellison, Arcturus Robotics

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/arcturus-robotics/vncal/pkg/vnproto"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Event log entry
type monitorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for informational
}

// Last seen HSI compensation (register 47)
type hsiReading struct {
	timestamp time.Time
	matrix    []string
	bias      []string
}

// TUI model
type monitorModel struct {
	conn     Connection
	connInfo string
	showAll  bool

	stats         *vnproto.Statistics
	errorLog      []monitorLogEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int
	lastHSI       *hsiReading

	// command entry ("VNRRG,47" etc.)
	cmdInput     textinput.Model
	inputFocused bool

	spin             spinner.Model
	width            int
	height           int
	quitting         bool
	connectionClosed bool
}

// Messages
type monitorTickMsg time.Time
type monitorDataMsg struct {
	sentence     *vnproto.Message
	decodeErr    error
	transportErr error
}
type monitorSyncMsg struct {
	invalidBytes int
}
type monitorClosedMsg struct{}
type monitorSendErrMsg struct {
	err error
}

func initialMonitorModel(conn Connection, connInfo string, showAll bool) monitorModel {
	ti := textinput.New()
	ti.Placeholder = "VNRRG,47"
	ti.CharLimit = 128
	ti.Prompt = "> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return monitorModel{
		conn:          conn,
		connInfo:      connInfo,
		showAll:       showAll,
		stats:         vnproto.NewStatistics(),
		errorLog:      make([]monitorLogEntry, 0),
		maxLogEntries: 100,
		cmdInput:      ti,
		spin:          sp,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		m.spin.Tick,
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

// sendCommandCmd frames and writes one payload to the sensor
func sendCommandCmd(conn Connection, payload string) tea.Cmd {
	return func() tea.Msg {
		if _, err := conn.Write(vnproto.Encode(payload)); err != nil {
			return monitorSendErrMsg{err: err}
		}
		return nil
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputFocused {
			switch msg.String() {
			case "ctrl+c":
				m.quitting = true
				return m, tea.Quit
			case "esc":
				m.inputFocused = false
				m.cmdInput.Blur()
				return m, nil
			case "enter":
				payload := strings.TrimSpace(m.cmdInput.Value())
				m.inputFocused = false
				m.cmdInput.Blur()
				m.cmdInput.SetValue("")
				if payload == "" {
					return m, nil
				}
				m.addLogEntry(fmt.Sprintf("Sent %s", payload), false)
				return m, sendCommandCmd(m.conn, payload)
			default:
				var cmd tea.Cmd
				m.cmdInput, cmd = m.cmdInput.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case ":":
			m.inputFocused = true
			return m, m.cmdInput.Focus()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case monitorTickMsg:
		// Update statistics rates
		m.stats.CalculateRates()
		return m, monitorTickCmd()

	case monitorSyncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case monitorClosedMsg:
		m.connectionClosed = true
		m.addLogEntry("Connection closed", true)

	case monitorSendErrMsg:
		m.addLogEntry(fmt.Sprintf("SEND ERROR: %v", msg.err), true)

	case monitorDataMsg:
		if msg.transportErr != nil {
			m.stats.RecordTransportError()
			m.addLogEntry(fmt.Sprintf("READ ERROR: %v", msg.transportErr), true)
		} else if msg.decodeErr != nil {
			m.stats.Update(nil, msg.decodeErr)
			m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.decodeErr), true)
		} else if msg.sentence != nil {
			m.stats.Update(msg.sentence, nil)
			m.observeSentence(msg.sentence)
		}
	}

	return m, nil
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	entry := monitorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

// observeSentence extracts display state from a decoded sentence
func (m *monitorModel) observeSentence(sentence *vnproto.Message) {
	switch sentence.Tag() {
	case vnproto.TagSystemError:
		code, err := sentence.IntField(1)
		if err != nil {
			m.addLogEntry(fmt.Sprintf("VNERR with unparseable code: %s", sentence.Raw()), true)
			return
		}
		m.addLogEntry(fmt.Sprintf("Device error: %s (%d)", vnproto.FormatErrorCode(code), code), true)

	case vnproto.TagReadRegister:
		reg, err := sentence.IntField(1)
		if err != nil {
			m.addLogEntry(fmt.Sprintf("Malformed register reply: %s", sentence.Raw()), true)
			return
		}
		if reg == vnproto.RegMagCalResult && sentence.NumFields() >= 14 {
			m.lastHSI = &hsiReading{
				timestamp: sentence.Timestamp(),
				matrix:    sentence.FieldRange(2, 11),
				bias:      sentence.FieldRange(11, 14),
			}
			m.addLogEntry("HSI compensation updated", false)
		} else if m.showAll {
			m.addLogEntry(fmt.Sprintf("Register %d reply", reg), false)
		}

	default:
		if m.showAll {
			m.addLogEntry(vnproto.FormatMessageType(sentence.Tag()), false)
		}
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("VNCAL - MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | ':' to send a command, 'q' to quit",
		m.connInfo, func() string {
			if m.showAll {
				return "All sentences"
			}
			return "Errors only"
		}())))
	s.WriteString("\n\n")

	// Sync status
	if m.connectionClosed {
		s.WriteString(errorStyle.Render("✗ Connection closed"))
		s.WriteString("\n\n")
	} else if !m.synchronized {
		s.WriteString(m.spin.View())
		s.WriteString(warningStyle.Render(" Waiting for sensor traffic..."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	faults := m.stats.DecodeErrors + m.stats.TransportErrors + m.stats.DeviceErrors

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalSentences)),
		statsLabelStyle.Render("Register Replies:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.RegisterReplies)),
		statsLabelStyle.Render("Faults:"), func() string {
			if faults > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", faults))
			}
			return statsValueStyle.Render("0")
		}(),
	))

	if faults > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("Device Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.DeviceErrors)),
			statsLabelStyle.Render("Decode Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.DecodeErrors)),
			statsLabelStyle.Render("Transport Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.TransportErrors)),
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Sentence Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.SentenceRate)),
		statsLabelStyle.Render("Fault Rate:"), func() string {
			if m.stats.FaultRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f/s", m.stats.FaultRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f/s", m.stats.FaultRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// HSI compensation section (only shown once a register 47 reply arrived)
	if m.lastHSI != nil {
		s.WriteString(statsLabelStyle.Render(fmt.Sprintf("HSI Compensation (as of %s):",
			m.lastHSI.timestamp.Format("15:04:05"))))
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(strings.TrimRight(vnproto.FormatHSI(m.lastHSI.matrix, m.lastHSI.bias), "\n")))
		s.WriteString("\n\n")
	}

	// Command input
	if m.inputFocused {
		s.WriteString(statsLabelStyle.Render("Send command (enter to send, esc to cancel):"))
		s.WriteString("\n")
		s.WriteString(m.cmdInput.View())
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 15 // Reserve space for header and stats
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
