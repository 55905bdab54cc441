package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/cwbudde/algo-esc/dsp/core"
	"github.com/cwbudde/algo-esc/dsp/effects/sidechain"
	"github.com/cwbudde/algo-esc/internal/audio"
	"github.com/cwbudde/algo-esc/internal/host"
	"github.com/cwbudde/algo-esc/internal/ui"
)

// ConfigPath is the JSON file consulted for flag defaults.
const ConfigPath = "~/.config/esc/config.json"

// Env carries process state into command Run methods.
type Env struct {
	Context     context.Context
	Logger      *log.Logger
	Stdout      io.Writer
	Interactive bool
	Version     string
}

// CLI defines the command-line interface.
type CLI struct {
	LogLevel string          `name:"log-level" enum:"debug,info,warn,error" default:"warn" env:"ESC_LOG_LEVEL" help:"Log verbosity (${enum})."`
	Config   kong.ConfigFlag `short:"c" help:"JSON file with flag defaults."`

	Render  RenderCmd  `cmd:"" help:"Duck a WAV file offline and write the result."`
	Play    PlayCmd    `cmd:"" help:"Duck a WAV file live and play it with a meter."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Params are the processing flags shared by render and play.
type Params struct {
	Gain      float64 `default:"${gain}" env:"ESC_GAIN" help:"Sidechain gain in dB (${gain_min} to ${gain_max})."`
	Lookahead float64 `default:"${lookahead}" env:"ESC_LOOKAHEAD" help:"Main signal delay in ms (0 to ${lookahead_max})."`
	Trim      float64 `default:"0" env:"ESC_TRIM" help:"Main input trim in dB."`
	Cutoff    float64 `default:"${cutoff}" help:"Envelope filter cutoff in Hz."`
	Resonance float64 `default:"${resonance}" help:"Envelope filter Q."`
	Hold      float64 `default:"${hold}" help:"Gain reduction hold in seconds."`
	BlockSize int     `name:"block-size" default:"512" env:"ESC_BLOCK_SIZE" help:"Processing block size in frames."`
}

// Vars supplies the ${...} defaults used in flag tags.
func Vars() kong.Vars {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return kong.Vars{
		"gain":          f(sidechain.GainRange.Default),
		"gain_min":      f(sidechain.GainRange.Min),
		"gain_max":      f(sidechain.GainRange.Max),
		"lookahead":     f(sidechain.LookaheadRange.Default),
		"lookahead_max": f(sidechain.LookaheadRange.Max),
		"cutoff":        f(sidechain.DefaultCutoffHz),
		"resonance":     f(sidechain.DefaultResonance),
		"hold":          f(sidechain.DefaultReductionHoldSeconds),
	}
}

// NewParser builds the kong parser for cli. Extra options are appended
// after the defaults.
func NewParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("esc"),
		kong.Description("Sidechain ducking with lookahead delay."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Configuration(kong.JSON, ConfigPath),
		Vars(),
	}
	return kong.New(cli, append(opts, options...)...)
}

// NewLogger returns a charm logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "esc",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}), nil
}

// Validate rejects parameter combinations the processor cannot run.
func (p *Params) Validate() error {
	if p.BlockSize <= 0 {
		return fmt.Errorf("block size must be > 0: %d", p.BlockSize)
	}
	if p.Lookahead < sidechain.LookaheadRange.Min || p.Lookahead > sidechain.LookaheadRange.Max {
		return fmt.Errorf("lookahead out of range: %g ms", p.Lookahead)
	}
	return nil
}

func (p *Params) driver(sampleRate, channels int, logger *log.Logger) (*host.Driver, error) {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(sampleRate)),
		core.WithChannels(channels),
		core.WithBlockSize(p.BlockSize),
	)
	d, err := host.NewDriver(cfg, logger,
		sidechain.WithCutoff(p.Cutoff),
		sidechain.WithResonance(p.Resonance),
		sidechain.WithReductionHold(p.Hold),
	)
	if err != nil {
		return nil, err
	}
	d.SetGainDB(p.Gain)
	d.SetLookaheadMs(p.Lookahead)
	d.SetInputTrimDB(p.Trim)
	return d, nil
}

// loadSidechain returns a sidechain clip shaped like main. With an empty
// path main keys itself. Missing channels repeat the last one.
func loadSidechain(path string, main *audio.Clip) (*audio.Clip, error) {
	src := main
	if path != "" {
		var err error
		src, err = audio.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("sidechain: %w", err)
		}
		if src.SampleRate != main.SampleRate {
			return nil, fmt.Errorf("sidechain: sample rate %d Hz does not match input %d Hz", src.SampleRate, main.SampleRate)
		}
	}

	side, err := audio.NewClip(main.SampleRate, main.Channels(), main.Frames())
	if err != nil {
		return nil, err
	}
	for ch := range side.Data {
		copy(side.Data[ch], src.Data[min(ch, src.Channels()-1)])
	}
	return side, nil
}

// RenderCmd processes a file offline.
type RenderCmd struct {
	Input      string `arg:"" type:"existingfile" help:"Input WAV file."`
	Output     string `arg:"" type:"path" help:"Output WAV file."`
	Sidechain  string `short:"s" type:"existingfile" help:"Sidechain WAV file. Defaults to the input."`
	ControlOut string `name:"control-out" type:"path" help:"Also write the control signal to this WAV file."`
	BitDepth   int    `name:"bit-depth" default:"24" enum:"8,16,24" help:"Output bit depth (${enum})."`

	Params `embed:""`
}

// Run renders Input into Output.
func (c *RenderCmd) Run(env *Env) error {
	clip, err := audio.ReadFile(c.Input)
	if err != nil {
		return err
	}
	side, err := loadSidechain(c.Sidechain, clip)
	if err != nil {
		return err
	}

	d, err := c.driver(clip.SampleRate, clip.Channels(), env.Logger)
	if err != nil {
		return err
	}
	env.Logger.Debug("render", "input", c.Input, "sidechain", c.Sidechain, "frames", clip.Frames())

	stats, err := d.Render(env.Context, clip.Data, side.Data)
	if err != nil {
		return err
	}

	if err := audio.WriteFile(c.Output, clip, c.BitDepth); err != nil {
		return err
	}
	if c.ControlOut != "" {
		if err := audio.WriteFile(c.ControlOut, side, c.BitDepth); err != nil {
			return err
		}
	}

	PrintSummary(env.Stdout, RenderSummary{
		Input:      filepath.Base(c.Input),
		Output:     filepath.Base(c.Output),
		SampleRate: clip.SampleRate,
		Channels:   clip.Channels(),
		Frames:     stats.Frames,
		Latency:    stats.Latency,
		InputPeak:  stats.InputPeak,
		OutputPeak: stats.OutputPeak,
		Elapsed:    stats.Elapsed,
		Realtime:   stats.RealtimeFactor(float64(clip.SampleRate)),
	})
	return nil
}

// PlayCmd processes a file in real time and plays it.
type PlayCmd struct {
	Input     string        `arg:"" type:"existingfile" help:"Input WAV file."`
	Sidechain string        `short:"s" type:"existingfile" help:"Sidechain WAV file. Defaults to the input."`
	Loop      bool          `help:"Repeat until interrupted."`
	NoUI      bool          `name:"no-ui" help:"Play without the meter."`
	Buffer    time.Duration `default:"100ms" help:"Device buffer length."`

	Params `embed:""`
}

// Run plays Input through the processor.
func (c *PlayCmd) Run(env *Env) error {
	clip, err := audio.ReadFile(c.Input)
	if err != nil {
		return err
	}
	side, err := loadSidechain(c.Sidechain, clip)
	if err != nil {
		return err
	}

	d, err := c.driver(clip.SampleRate, clip.Channels(), env.Logger)
	if err != nil {
		return err
	}
	stream := host.NewStream(d, clip.Data, side.Data, c.Loop)

	player, err := host.NewPlayer(clip.SampleRate, stream.Channels(), c.Buffer)
	if err != nil {
		return err
	}
	defer player.Close()

	if c.NoUI || !env.Interactive {
		env.Logger.Info("playing", "input", c.Input, "seconds", clip.Duration(), "loop", c.Loop)
		return ignoreCanceled(player.Play(env.Context, stream))
	}
	return playWithMeter(env.Context, filepath.Base(c.Input), d, stream, player, env.Stdout)
}

func playWithMeter(ctx context.Context, title string, d *host.Driver, stream *host.Stream, player *host.Player, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewModel(title, d, stream), tea.WithOutput(out))

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := player.Play(ctx, stream)
		p.Send(ui.DoneMsg{Err: ignoreCanceled(err)})
	}()

	final, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	if m, ok := final.(ui.Model); ok {
		return m.Err
	}
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run prints the version.
func (c *VersionCmd) Run(env *Env) error {
	PrintVersion(env.Stdout, env.Version)
	return nil
}
