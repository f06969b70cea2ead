// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 raziber

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raziber/globe/pkg/ledwire"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// Messages
type monitorTickMsg time.Time
type linkDataMsg struct {
	data []byte
}
type linkReadErrMsg struct {
	err error
}

// monitorModel is the Bubble Tea model for the link monitor TUI. It
// owns the receive session: all ingest happens on the update loop, so
// no locking is needed.
type monitorModel struct {
	connInfo   string
	cfg        ledwire.Config
	session    *ledwire.Session
	assignment ledwire.Assignment
	showAll    bool

	lastFrame   ledwire.Frame
	lastFrameAt time.Time

	events    []eventLogEntry
	maxEvents int
	eventView viewport.Model
	follow    bool

	width        int
	height       int
	synchronized bool
	linkLost     bool
	quitting     bool
}

func newMonitorModel(connInfo string, cfg ledwire.Config, showAll bool) (monitorModel, error) {
	session, err := ledwire.NewSession(cfg)
	if err != nil {
		return monitorModel{}, err
	}
	assignment, err := cfg.Assignment()
	if err != nil {
		return monitorModel{}, err
	}

	return monitorModel{
		connInfo:   connInfo,
		cfg:        cfg,
		session:    session,
		assignment: assignment,
		showAll:    showAll,
		events:     make([]eventLogEntry, 0),
		maxEvents:  200,
		eventView:  viewport.New(76, 8),
		follow:     true,
		width:      80,
		height:     24,
	}, nil
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "f":
			m.follow = !m.follow
			if m.follow {
				m.eventView.GotoBottom()
			}
			return m, nil
		default:
			// Scrolling keys go to the event log
			var cmd tea.Cmd
			m.eventView, cmd = m.eventView.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeEventView()

	case monitorTickMsg:
		if err := m.session.CheckTimeout(time.Time(msg)); err != nil {
			m.addEvent("TIMEOUT: link idle, receive state cleared", true)
		}
		return m, monitorTickCmd()

	case linkDataMsg:
		before := m.session.Stats()
		frames := m.session.Ingest(msg.data, time.Now())
		after := m.session.Stats()

		if n := after.FramingErrors - before.FramingErrors; n > 0 {
			m.addEvent(fmt.Sprintf("FRAMING ERROR: %d bad candidate(s), resynchronized", n), true)
		}
		if len(frames) > 0 {
			if !m.synchronized {
				m.synchronized = true
				if after.BytesDiscarded > 0 {
					m.addEvent(fmt.Sprintf("Synchronized after skipping %d invalid bytes", after.BytesDiscarded), false)
				} else {
					m.addEvent("Synchronized", false)
				}
			}
			m.lastFrame = frames[len(frames)-1]
			m.lastFrameAt = time.Now()
			if m.showAll {
				m.addEvent(fmt.Sprintf("FRAME %d bytes (%d in batch)", len(m.lastFrame), len(frames)), false)
			}
		}

	case linkReadErrMsg:
		m.linkLost = true
		m.addEvent(fmt.Sprintf("LINK LOST: %v", msg.err), true)
	}

	return m, nil
}

func (m *monitorModel) addEvent(message string, isError bool) {
	m.events = append(m.events, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.events) > m.maxEvents {
		m.events = m.events[len(m.events)-m.maxEvents:]
	}
	m.refreshEventView()
}

func (m *monitorModel) resizeEventView() {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	// Header, sync line, stats and preview boxes take the rest.
	h := m.height - 18
	if h < 4 {
		h = 4
	}
	m.eventView.Width = w
	m.eventView.Height = h
	m.refreshEventView()
}

func (m *monitorModel) refreshEventView() {
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	var content strings.Builder
	if len(m.events) == 0 {
		content.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for _, entry := range m.events {
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				content.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				content.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					infoStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}
	m.eventView.SetContent(content.String())
	if m.follow {
		m.eventView.GotoBottom()
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

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
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

	var s strings.Builder
	s.WriteString(titleStyle.Render("GLOBE - LINK MONITOR"))
	s.WriteString("\n")
	follow := "on"
	if !m.follow {
		follow = "off"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("Connection: %s | %d LEDs, %d byte frames | follow: %s ('f' toggles) | 'q' quits",
		m.connInfo, m.cfg.TotalLEDs, m.cfg.FrameSize(), follow)))
	s.WriteString("\n\n")

	// Link status
	switch {
	case m.linkLost:
		s.WriteString(errorStyle.Render("✗ Link lost"))
		s.WriteString("\n\n")
	case !m.synchronized:
		s.WriteString(warningStyle.Render("⏳ Waiting for first frame..."))
		s.WriteString("\n\n")
	default:
		s.WriteString(valueStyle.Render("✓ Receiving"))
		s.WriteString(headerStyle.Render(fmt.Sprintf(" (state: %s)", m.session.State())))
		s.WriteString("\n\n")
	}

	// Statistics
	stats := m.session.Stats()
	stats.CalculateRates()

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", stats.FramesDecoded)),
		labelStyle.Render("Framing Errors:"), renderCount(stats.FramingErrors, errorStyle, valueStyle),
		labelStyle.Render("Timeouts:"), renderCount(stats.Timeouts, warningStyle, valueStyle),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		labelStyle.Render("Bytes In:"), valueStyle.Render(fmt.Sprintf("%d", stats.BytesIngested)),
		labelStyle.Render("Discarded:"), renderCount(stats.BytesDiscarded, warningStyle, valueStyle),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f fps", stats.FrameRate)),
		labelStyle.Render("Error Rate:"), renderRate(stats.ErrorRate, errorStyle, valueStyle),
		labelStyle.Render("Uptime:"), valueStyle.Render(formatUptime(time.Since(stats.StartTime))),
	))
	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Segment preview
	s.WriteString(labelStyle.Render("Segments:"))
	s.WriteString("\n")
	previewContent := strings.Builder{}
	for i := 0; i < m.assignment.Segments(); i++ {
		r := m.assignment.Range(i)
		previewContent.WriteString(fmt.Sprintf("%s %s  ",
			labelStyle.Render(m.assignment.Label(i)),
			headerStyle.Render(fmt.Sprintf("%-12s", r.String()+fmt.Sprintf(" %d LEDs", r.Len()))),
		))
		if m.lastFrame == nil {
			previewContent.WriteString(headerStyle.Render("(no frames yet)"))
		} else if seg, err := m.assignment.Extract(m.lastFrame, i); err == nil {
			previewContent.WriteString(renderSwatch(seg, 24))
		}
		if i < m.assignment.Segments()-1 {
			previewContent.WriteString("\n")
		}
	}
	s.WriteString(boxStyle.Render(previewContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(m.eventView.View()))

	return s.String()
}

// renderSwatch draws the first LEDs of a segment as colored blocks.
func renderSwatch(seg []byte, max int) string {
	leds := len(seg) / ledwire.BytesPerLED
	if leds > max {
		leds = max
	}
	var out strings.Builder
	for i := 0; i < leds; i++ {
		at := i * ledwire.BytesPerLED
		color := lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", seg[at], seg[at+1], seg[at+2]))
		out.WriteString(lipgloss.NewStyle().Foreground(color).Render("█"))
	}
	return out.String()
}

func renderCount(n uint64, hot, cold lipgloss.Style) string {
	if n > 0 {
		return hot.Render(fmt.Sprintf("%d", n))
	}
	return cold.Render(fmt.Sprintf("%d", n))
}

func renderRate(rate float64, hot, cold lipgloss.Style) string {
	if rate > 0 {
		return hot.Render(fmt.Sprintf("%.1f err/s", rate))
	}
	return cold.Render(fmt.Sprintf("%.1f err/s", rate))
}

// formatUptime renders a duration in human-friendly words.
func formatUptime(d time.Duration) string {
	if d < time.Second {
		return "0 seconds"
	}

	seconds := int64(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	parts := []string{}
	add := func(n int64, unit string) {
		if n == 1 {
			parts = append(parts, "1 "+unit)
		} else if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %ss", n, unit))
		}
	}
	add(days, "day")
	add(hours, "hour")
	add(minutes, "minute")
	add(seconds, "second")
	if len(parts) == 0 {
		parts = append(parts, "0 seconds")
	}

	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

// runMonitorTUI drives the full-screen monitor.
func runMonitorTUI(conn Connection, connInfo string, cfg ledwire.Config) error {
	m, err := newMonitorModel(connInfo, cfg, monitorShowAll)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Link reader goroutine
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				p.Send(linkReadErrMsg{err: err})
				return
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			p.Send(linkDataMsg{data: data})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
