// Package main is the entry point for touchmask.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/touchmask/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, ok := parseFlags()
	if !ok {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	runErr := application.Run(ctx)
	if err := application.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: shutdown: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

func parseFlags() (app.Options, bool) {
	var (
		opts        app.Options
		logLevel    string
		transport   string
		source      string
		showVersion bool
	)
	opts.Settings = make(map[string]any)

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.MappingPath, "mapping", "", "Path to key mapping file (.json, .yaml, .toml)")
	flag.StringVar(&opts.MappingPath, "m", "", "Path to key mapping file (shorthand)")
	flag.StringVar(&transport, "transport", "", "Device transport (scrcpy, websocket, log)")
	flag.StringVar(&source, "source", "", "Input source (terminal, evdev)")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "touchmask - keyboard and mouse to touch mapping for a mirrored Android device\n\n")
		fmt.Fprintf(os.Stderr, "Usage: touchmask [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEvery setting can also be given as TOUCHMASK_<SECTION>_<KEY>.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  touchmask -m pubg.json                      Map through the terminal, log commands\n")
		fmt.Fprintf(os.Stderr, "  touchmask -c touchmask.toml                 Use a configuration file\n")
		fmt.Fprintf(os.Stderr, "  touchmask -m pubg.json -transport scrcpy    Drive a scrcpy control socket\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("touchmask %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments %v\n", flag.Args())
		flag.Usage()
		return opts, false
	}

	if logLevel != "" {
		switch logLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", logLevel)
			return opts, false
		}
		opts.Settings["logging.level"] = logLevel
	}
	if transport != "" {
		opts.Settings["transport.kind"] = transport
	}
	if source != "" {
		opts.Settings["input.source"] = source
	}

	return opts, true
}
