// Command esc applies sidechain ducking with a lookahead delay to WAV files.
//
// Usage:
//
//	esc render [flags] <input> <output>
//	esc play [flags] <input>
//	esc version
//
// Examples:
//
//	esc render -s kick.wav --gain 6 bass.wav bass-ducked.wav
//	esc render --lookahead 5 --control-out control.wav mix.wav out.wav
//	esc play --loop -s kick.wav pad.wav
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/cwbudde/algo-esc/internal/cli"
)

var version = "0.1.0"

func main() {
	var args cli.CLI
	parser, err := cli.NewParser(&args)
	if err != nil {
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger, err := cli.NewLogger(os.Stderr, args.LogLevel)
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&cli.Env{
		Context:     ctx,
		Logger:      logger,
		Stdout:      os.Stdout,
		Interactive: term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd())),
		Version:     version,
	})
	if err != nil {
		cli.PrintError(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}
