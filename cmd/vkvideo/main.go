// Command vkvideo transcodes a single H.264 video file into HEVC using the
// GPU's Vulkan Video decode and encode engines.
//
// Usage:
//
//	vkvideo [flags] <input.mp4> <output.mp4>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	vkvideo "github.com/thesyncim/vkvideo"
)

func main() {
	os.Exit(run())
}

func run() int {
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	lowDelay := pflag.Bool("low-delay-p", false, "encode IDR+P GOPs instead of all-intra")
	ring := pflag.Int("ring", 0, "frame ring size (min 2, default 3)")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <input.mp4> <output.mp4>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 2 {
		pflag.Usage()
		return 2
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg := vkvideo.Config{
		InputPath:  pflag.Arg(0),
		OutputPath: pflag.Arg(1),
		RingSize:   *ring,
		Adapter:    vkvideo.DefaultAdapterPolicy(),
	}
	if *lowDelay {
		cfg.RateMode = vkvideo.RateModeLowDelayP
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := vkvideo.NewPipeline(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer p.Close()

	if err := p.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
