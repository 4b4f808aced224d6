package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ferventapp/fervent/internal/gesture"
	"github.com/ferventapp/fervent/internal/glow"
	"github.com/ferventapp/fervent/internal/nav"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	clockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	glowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.coord.Screen() {
	case nav.Home:
		content = m.viewHome()
	case nav.Prayer:
		content = m.viewPrayer()
	case nav.PrayerComplete:
		content = m.viewComplete()
	}

	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) viewHome() string {
	lines := []string{
		titleStyle.Render("Fervent"),
		"",
		dimStyle.Render(fmt.Sprintf("session length: %s", formatClock(m.start.Duration))),
		"",
		dimStyle.Render("enter to begin · q to quit"),
	}
	if m.err != nil {
		lines = append(lines, "", noticeStyle.Render(m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewPrayer() string {
	sess := m.coord.Session()
	elapsed := time.Duration(0)
	intended := m.start.Duration
	if sess != nil {
		if sess.StartedAt != nil {
			elapsed = time.Since(*sess.StartedAt)
		}
		intended = sess.IntendedDuration
	}

	intensity := glow.Intensity(elapsed, intended)
	lines := []string{
		clockStyle.Render(formatClock(elapsed)),
		dimStyle.Render("of " + formatClock(intended)),
		"",
		glowStyle.Render(glowBar(intensity, barWidth(m.width))),
		"",
	}

	if m.hold.State() == gesture.Pressing {
		lines = append(lines, m.holdBar.ViewAs(m.progress))
	} else {
		lines = append(lines, dimStyle.Render("hold enter to say Amen · c to cancel"))
	}

	if m.shieldUp {
		lines = append(lines, "", dimStyle.Render("shield engaged"))
	}
	if m.shieldNote != "" {
		lines = append(lines, "", noticeStyle.Render(m.shieldNote))
	}
	if m.err != nil {
		lines = append(lines, "", noticeStyle.Render(m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewComplete() string {
	sess := m.coord.Session()
	actual := time.Duration(0)
	if sess != nil {
		actual = sess.ActualDuration()
	}
	lines := []string{
		titleStyle.Render("Amen."),
		"",
		dimStyle.Render(fmt.Sprintf("you prayed for %s", formatClock(actual))),
		"",
		dimStyle.Render("enter to return · q to quit"),
	}
	return strings.Join(lines, "\n")
}

// formatClock renders a duration as m:ss or h:mm:ss.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	min := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, min, sec)
	}
	return fmt.Sprintf("%d:%02d", min, sec)
}

// glowBar renders the breathing intensity as a partially filled bar.
func glowBar(intensity float64, width int) string {
	if width < 4 {
		width = 4
	}
	filled := int(intensity * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// barWidth sizes the bars to the terminal.
func barWidth(termWidth int) int {
	if termWidth == 0 {
		return 24
	}
	w := termWidth / 3
	if w < 12 {
		w = 12
	}
	if w > 48 {
		w = 48
	}
	return w
}
