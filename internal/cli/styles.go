// Package cli implements the esc command line: offline rendering and live
// playback of sidechain ducking.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-esc/dsp/core"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#5FAFFF")
	errorColor   = lipgloss.Color("#D70000")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints version information.
func PrintVersion(w io.Writer, version string) {
	fmt.Fprintln(w, TitleStyle.Render("esc"))
	printField(w, "Version:", version)
}

// PrintError prints an error message.
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// RenderSummary describes a finished render for PrintSummary.
type RenderSummary struct {
	Input      string
	Output     string
	SampleRate int
	Channels   int
	Frames     int
	Latency    int
	InputPeak  float64
	OutputPeak float64
	Elapsed    time.Duration
	Realtime   float64
}

// PrintSummary prints a render summary as aligned key/value pairs.
func PrintSummary(w io.Writer, s RenderSummary) {
	fmt.Fprintln(w, TitleStyle.Render(s.Input+" → "+s.Output))
	printField(w, "Format:", fmt.Sprintf("%d Hz, %d ch, %d frames", s.SampleRate, s.Channels, s.Frames))
	printField(w, "Latency:", fmt.Sprintf("%d samples", s.Latency))
	printField(w, "Peak in:", formatDB(s.InputPeak))
	printField(w, "Peak out:", formatDB(s.OutputPeak))
	printField(w, "Time:", fmt.Sprintf("%s (%.0fx realtime)", s.Elapsed.Round(time.Millisecond), s.Realtime))
}

func printField(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(key), ValueStyle.Render(value))
}

func formatDB(linear float64) string {
	if linear <= 0 {
		return "-inf dBFS"
	}
	return fmt.Sprintf("%.1f dBFS", core.LinearToDB(linear))
}
