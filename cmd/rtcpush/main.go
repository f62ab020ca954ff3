package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"libdb.so/rtcpush"
	"libdb.so/rtcpush/internal/gate"
	"libdb.so/rtcpush/internal/ports"
)

const defaultConfig = "rtcpush.toml"

var (
	config   = defaultConfig
	device   = ""
	baud     = 0
	weekday  = ""
	gateKind = string(gate.KindLine)
	yes      = false
	list     = false
	verbose  = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.StringVarP(&device, "device", "d", device, "serial device, overrides the configuration")
	pflag.IntVarP(&baud, "baud", "b", baud, "baud rate, overrides the configuration")
	pflag.StringVar(&weekday, "weekday", weekday, `weekday code (0-6) or "auto", overrides the configuration`)
	pflag.StringVar(&gateKind, "gate", gateKind, "how to wait for the go-ahead: line, confirm or none")
	pflag.BoolVarP(&yes, "yes", "y", yes, "do not wait for the go-ahead (same as --gate=none)")
	pflag.BoolVarP(&list, "list", "l", list, "list serial ports and exit")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if list {
		found, err := ports.List()
		if err != nil {
			return err
		}
		return ports.Print(os.Stdout, found)
	}

	cfg, err := readConfig(config, pflag.CommandLine.Changed("config"))
	if err != nil {
		return err
	}

	kind := overrides{
		device:  device,
		baud:    baud,
		weekday: weekday,
		gate:    gateKind,
		yes:     yes,
	}.apply(cfg)

	g, err := gate.Select(kind, gate.Options{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Prompt:      "Press enter to send the time to " + cfg.Device + "...",
		Title:       "Send the time to " + cfg.Device + "?",
		Description: "The date, time and weekday are written as three lines.",
		Fallback: func(requested, used gate.Kind) {
			slog.Warn(
				"stdin is not a terminal, using another gate",
				"requested", requested,
				"used", used)
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	p, err := rtcpush.NewPusher(cfg, slog.Default(),
		rtcpush.WithGate(g),
		rtcpush.WithReport(os.Stdout),
	)
	if err != nil {
		return fmt.Errorf("failed to create pusher: %w", err)
	}

	if _, err := p.Run(ctx); err != nil {
		var unavailable *rtcpush.DeviceUnavailableError
		if errors.As(err, &unavailable) && unavailable.Reason() != "" {
			return fmt.Errorf("%w (%s; try --list)", err, unavailable.Reason())
		}
		return fmt.Errorf("push failed: %w", err)
	}

	return nil
}

// overrides holds the flags that take precedence over the configuration
// file. Zero values leave the file's value alone.
type overrides struct {
	device  string
	baud    int
	weekday string
	gate    string
	yes     bool
}

// apply writes the overrides into cfg and returns the gate to use.
func (o overrides) apply(cfg *rtcpush.Config) gate.Kind {
	if o.device != "" {
		cfg.Device = o.device
	}
	if o.baud != 0 {
		cfg.Baud = o.baud
	}
	if o.weekday != "" {
		cfg.Weekday = o.weekday
	}

	if o.yes {
		return gate.KindNone
	}
	return gate.Kind(o.gate)
}

// readConfig reads the configuration file at path. A missing file is only an
// error if it was asked for explicitly.
func readConfig(path string, explicit bool) (*rtcpush.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return rtcpush.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := rtcpush.ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}
