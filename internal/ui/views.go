package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-esc/dsp/buffer"
	"github.com/cwbudde/algo-esc/dsp/effects/sidechain"
)

const (
	barWidth   = 40
	meterFloor = -60.0
)

var (
	accentColor = lipgloss.Color("#2E9AFE")
	warnColor   = lipgloss.Color("#FFA500")
	mutedColor  = lipgloss.Color("#888888")
	okColor     = lipgloss.Color("#00AA00")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(10)

	levelStyle     = lipgloss.NewStyle().Foreground(okColor)
	reductionStyle = lipgloss.NewStyle().Foreground(warnColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

func renderMeterView(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n\n")

	var body strings.Builder
	body.WriteString(labelStyle.Render("Output"))
	body.WriteString(levelStyle.Render(renderBar(dbFraction(m.LevelDB), barWidth)))
	body.WriteString(fmt.Sprintf(" %s\n", formatDB(m.LevelDB)))

	body.WriteString(labelStyle.Render("History"))
	body.WriteString(levelStyle.Render(renderSparkline(m.history, barWidth)))
	body.WriteString("\n")

	body.WriteString(labelStyle.Render("Ducking"))
	body.WriteString(reductionStyle.Render(renderBar(1-dbFraction(m.ReductionDB), barWidth)))
	body.WriteString(fmt.Sprintf(" %s\n", formatDB(m.ReductionDB)))

	body.WriteString(labelStyle.Render("Gain"))
	body.WriteString(fmt.Sprintf("%+.1f dB\n", m.GainDB))
	body.WriteString(labelStyle.Render("Lookahead"))
	body.WriteString(fmt.Sprintf("%.1f ms (%d samples)", m.LookaheadMs, m.Latency))

	if m.Position > 0 {
		body.WriteString("\n")
		body.WriteString(labelStyle.Render("Position"))
		body.WriteString(renderProgressBar(m.Position, barWidth))
	}

	b.WriteString(boxStyle.Render(body.String()))
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(fmt.Sprintf("Error: %v\n", m.Err))
	}
	b.WriteString(helpStyle.Render("↑/↓ gain · ←/→ lookahead · q quit"))
	b.WriteString("\n")

	return b.String()
}

// dbFraction maps [meterFloor, 0] dB onto [0, 1].
func dbFraction(db float64) float64 {
	if db <= meterFloor {
		return 0
	}
	if db >= 0 {
		return 1
	}
	return 1 - db/meterFloor
}

func renderBar(fraction float64, width int) string {
	fraction = max(0, min(1, fraction))
	filled := int(fraction * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// renderSparkline draws the fractions in r right-aligned in width cells.
func renderSparkline(r *buffer.Ring, width int) string {
	if r == nil {
		return strings.Repeat(" ", width)
	}
	n := min(r.Len(), width)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-n))
	for i := r.Len() - n; i < r.Len(); i++ {
		f := max(0, min(1, r.At(i)))
		b.WriteRune(sparkLevels[int(f*float64(len(sparkLevels)-1)+0.5)])
	}
	return b.String()
}

func renderProgressBar(progress float64, width int) string {
	progress = max(0, min(1, progress))
	return fmt.Sprintf("%s %d%%", renderBar(progress, width), int(progress*100))
}

func formatDB(db float64) string {
	if db <= sidechain.MinusInfinityDB {
		return "-inf dB"
	}
	return fmt.Sprintf("%5.1f dB", db)
}
