// Package rtcpush sets the real-time clock of a serial-attached board to the
// host's current time. It opens the board's serial port, waits for the board
// to settle and for the operator to give the go-ahead, then sends the date,
// the time and the weekday code as three lines.
package rtcpush

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
	"libdb.so/rtcpush/rtcline"
)

// Port is the part of a serial port that the pusher uses. serial.Port
// implements it.
type Port interface {
	io.Writer
	// SetReadTimeout sets the timeout for reads on the port.
	SetReadTimeout(t time.Duration) error
	// Close closes the port.
	Close() error
}

var _ Port = (serial.Port)(nil)

// OpenFunc opens the named device at the given baud rate.
type OpenFunc func(device string, baud int) (Port, error)

// OpenSerial opens a serial port using go.bug.st/serial.
func OpenSerial(device string, baud int) (Port, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Gate is the interface for the operator go-ahead. Wait blocks until the
// operator allows the push to start, or returns an error if they refuse or
// ctx is done.
type Gate interface {
	Wait(ctx context.Context) error
}

// Option configures a Pusher.
type Option func(*Pusher)

// WithOpener sets the function used to open the port. The default is
// OpenSerial.
func WithOpener(open OpenFunc) Option {
	return func(p *Pusher) { p.open = open }
}

// WithGate sets the operator gate. Without one, the push starts right after
// the warm-up.
func WithGate(gate Gate) Option {
	return func(p *Pusher) { p.gate = gate }
}

// WithClock sets the clock. The default is SystemClock.
func WithClock(clock Clock) Option {
	return func(p *Pusher) { p.clock = clock }
}

// WithReport sets where the confirmation report is printed. Without one, no
// report is printed.
func WithReport(w io.Writer) Option {
	return func(p *Pusher) { p.report = w }
}

// Pusher sends the current time to the device once.
type Pusher struct {
	cfg    *Config
	logger *slog.Logger
	loc    *time.Location

	open   OpenFunc
	gate   Gate
	clock  Clock
	report io.Writer
}

// NewPusher creates a new pusher.
func NewPusher(cfg *Config, logger *slog.Logger, opts ...Option) (*Pusher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, errors.Wrap(err, "invalid timezone")
	}

	p := &Pusher{
		cfg:    cfg,
		logger: logger,
		loc:    loc,
		open:   OpenSerial,
		clock:  SystemClock{},
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Run opens the port, sends one frame and closes the port again. The port
// is closed on every return path. If ctx is canceled while a write is
// blocked, the port is closed to unblock it.
//
// The returned frame is the one that was being sent; it is zero if the
// failure happened before the timestamp was taken.
func (p *Pusher) Run(ctx context.Context) (rtcline.Frame, error) {
	p.logger.Debug(
		"opening serial port",
		"device", p.cfg.Device,
		"baud", p.cfg.Baud)

	port, err := p.open(p.cfg.Device, p.cfg.Baud)
	if err != nil {
		return rtcline.Frame{}, &DeviceUnavailableError{Device: p.cfg.Device, Err: err}
	}

	closePort := sync.OnceValue(func() error {
		p.logger.Debug("closing serial port")
		return port.Close()
	})
	defer closePort()

	if err := port.SetReadTimeout(time.Duration(p.cfg.ReadTimeout)); err != nil {
		return rtcline.Frame{}, &DeviceUnavailableError{
			Device: p.cfg.Device,
			Err:    errors.Wrap(err, "failed to set read timeout"),
		}
	}

	var frame rtcline.Frame
	done := make(chan struct{})

	errg, gctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		select {
		case <-gctx.Done():
			closePort()
			return gctx.Err()
		case <-done:
			return nil
		}
	})
	var pushErr error
	errg.Go(func() error {
		defer close(done)

		frame, pushErr = p.push(gctx, port)
		return pushErr
	})

	// Once every line is out, an interrupt only races the close.
	if err := errg.Wait(); err != nil && pushErr != nil {
		// A write that failed because the port was closed under it is
		// reported as the interruption.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return frame, ctxErr
		}
		return frame, pushErr
	}

	if p.report != nil {
		if err := Report(p.report, frame); err != nil {
			p.logger.Warn(
				"failed to print report",
				"error", err)
		}
	}

	if err := closePort(); err != nil {
		return frame, errors.Wrap(err, "failed to close serial port")
	}

	return frame, nil
}

func (p *Pusher) push(ctx context.Context, port io.Writer) (rtcline.Frame, error) {
	p.logger.Debug(
		"waiting for the device to settle",
		"warm_up", time.Duration(p.cfg.WarmUp))

	if err := p.clock.Sleep(ctx, time.Duration(p.cfg.WarmUp)); err != nil {
		return rtcline.Frame{}, err
	}

	if p.gate != nil {
		p.logger.Debug("waiting for the operator")

		if err := p.gate.Wait(ctx); err != nil {
			return rtcline.Frame{}, errors.Wrap(err, "not started")
		}
	}

	now := p.clock.Now().In(p.loc).Add(time.Duration(p.cfg.Offset))
	frame := rtcline.NewFrame(now, p.cfg.FormatOptions())

	p.logger.Debug(
		"sending frame",
		"date", frame.Date,
		"time", frame.Time,
		"weekday", frame.Weekday)

	err := rtcline.WriteFrame(port, frame, func(sent rtcline.Field) error {
		p.logger.Debug(
			"sent line",
			"field", sent)
		return p.clock.Sleep(ctx, time.Duration(p.cfg.Pause))
	})
	if err != nil {
		var lineErr *rtcline.LineError
		if errors.As(err, &lineErr) {
			return frame, &TransmissionError{Field: lineErr.Field, Err: lineErr.Err}
		}
		return frame, err
	}

	p.logger.Debug(
		"sent line",
		"field", rtcline.Fields[len(rtcline.Fields)-1])

	return frame, nil
}
