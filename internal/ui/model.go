// Package ui provides the Bubbletea meter shown while audio plays.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-esc/dsp/buffer"
	"github.com/cwbudde/algo-esc/dsp/effects/sidechain"
)

// RefreshInterval is the meter redraw period.
const RefreshInterval = 33 * time.Millisecond

// HistoryLength is the number of ticks the level history shows.
const HistoryLength = barWidth

const (
	gainStepDB      = 1.0
	lookaheadStepMs = 0.1
)

// Controls is the parameter surface the meter reads and adjusts.
type Controls interface {
	Processor() *sidechain.Processor
	GainDB() float64
	SetGainDB(db float64)
	LookaheadMs() float64
	SetLookaheadMs(ms float64)
}

// Progress reports playback position in [0, 1].
type Progress interface {
	Progress() float64
}

// TickMsg triggers a meter refresh.
type TickMsg time.Time

// DoneMsg reports that playback ended.
type DoneMsg struct {
	Err error
}

// Model is the Bubbletea model for the live meter.
type Model struct {
	Title    string
	controls Controls
	progress Progress

	// Snapshot taken on every tick.
	LevelDB     float64
	ReductionDB float64
	Latency     int
	GainDB      float64
	LookaheadMs float64
	Position    float64

	Done bool
	Err  error

	Width int

	// Output level per tick as a meter fraction, oldest first.
	history *buffer.Ring
}

// NewModel creates a meter for controls and opens the processor's editor
// gate so metering runs. progress may be nil.
func NewModel(title string, controls Controls, progress Progress) Model {
	controls.Processor().SetEditorOpen(true)

	m := Model{
		Title:    title,
		controls: controls,
		progress: progress,
		history:  buffer.NewRing(HistoryLength),
	}
	m.refresh()
	return m
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m.finish(nil)
		case "up", "k":
			m.controls.SetGainDB(m.controls.GainDB() + gainStepDB)
		case "down", "j":
			m.controls.SetGainDB(m.controls.GainDB() - gainStepDB)
		case "right", "l":
			m.controls.SetLookaheadMs(m.controls.LookaheadMs() + lookaheadStepMs)
		case "left", "h":
			m.controls.SetLookaheadMs(m.controls.LookaheadMs() - lookaheadStepMs)
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.Done {
			return m, nil
		}
		m.refresh()
		m.record()
		return m, tick()

	case DoneMsg:
		return m.finish(msg.Err)
	}

	return m, nil
}

// View renders the meter.
func (m Model) View() string {
	return renderMeterView(m)
}

func (m Model) finish(err error) (tea.Model, tea.Cmd) {
	m.controls.Processor().SetEditorOpen(false)
	m.Done = true
	m.Err = err
	return m, tea.Quit
}

func (m *Model) refresh() {
	p := m.controls.Processor()
	m.LevelDB = p.Meter().DB()
	m.ReductionDB = p.ReductionDB()
	m.Latency = p.Latency()
	m.GainDB = m.controls.GainDB()
	m.LookaheadMs = m.controls.LookaheadMs()
	if m.progress != nil {
		m.Position = m.progress.Progress()
	}
}

func (m *Model) record() {
	if m.history.Full() {
		m.history.PopFront()
	}
	m.history.PushBack(dbFraction(m.LevelDB))
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
