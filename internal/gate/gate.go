// Package gate implements the operator go-ahead that precedes a push.
package gate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// ErrDeclined is returned when the operator answers no.
var ErrDeclined = errors.New("declined by operator")

// Kind names a gate implementation.
type Kind string

const (
	// KindLine waits for the operator to press enter.
	KindLine Kind = "line"
	// KindConfirm asks a yes/no question.
	KindConfirm Kind = "confirm"
	// KindNone does not wait at all.
	KindNone Kind = "none"
)

// Kinds lists the valid gate kinds.
var Kinds = []Kind{KindLine, KindConfirm, KindNone}

// Line waits until one line is read from In. Whatever the operator types is
// discarded; there is no timeout.
type Line struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
}

// Wait prints the prompt and blocks until a line or EOF is read. If ctx is
// done first, Wait returns ctx.Err() and the read is abandoned.
func (g Line) Wait(ctx context.Context) error {
	if g.Out != nil && g.Prompt != "" {
		if _, err := io.WriteString(g.Out, g.Prompt); err != nil {
			return errors.Wrap(err, "failed to write prompt")
		}
	}

	read := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(g.In).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		read <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-read:
		if err != nil {
			return errors.Wrap(err, "failed to read operator input")
		}
		return nil
	}
}

// Confirm asks the operator a yes/no question using a huh form.
type Confirm struct {
	Title       string
	Description string
}

// Wait runs the form. It returns ErrDeclined if the operator says no, and
// huh.ErrUserAborted if they abort the form.
func (g Confirm) Wait(ctx context.Context) error {
	var ok bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(g.Title).
				Description(g.Description).
				Affirmative("Send").
				Negative("Cancel").
				Value(&ok),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	if !ok {
		return ErrDeclined
	}

	return nil
}

// None lets the push start immediately.
type None struct{}

// Wait returns nil.
func (None) Wait(ctx context.Context) error { return nil }

// Gate is the common interface of the gates in this package.
type Gate interface {
	Wait(ctx context.Context) error
}

var (
	_ Gate = Line{}
	_ Gate = Confirm{}
	_ Gate = None{}
)

// Options are the inputs Select needs to build a gate.
type Options struct {
	// Stdin is the operator's input.
	Stdin *os.File
	// Stdout receives the prompt of the line gate.
	Stdout io.Writer
	// Prompt is the text the line gate prints before waiting.
	Prompt string
	// Title is the question asked by the confirm gate.
	Title string
	// Description is shown below the title of the confirm gate.
	Description string
	// Fallback is called when the requested gate cannot be used and another
	// one is picked instead.
	Fallback func(requested, used Kind)
}

// ErrNoInput is returned by Select when a gate that waits for the operator is
// requested without an input to read from.
var ErrNoInput = errors.New("no operator input to wait on")

// Select returns the gate of the given kind. A confirm form needs a
// terminal; if Stdin is not one, the line gate is used instead.
func Select(kind Kind, opts Options) (Gate, error) {
	switch kind {
	case KindNone:
		return None{}, nil

	case KindConfirm:
		if opts.Stdin == nil {
			return nil, ErrNoInput
		}
		if term.IsTerminal(int(opts.Stdin.Fd())) {
			return opts.confirm(), nil
		}
		if opts.Fallback != nil {
			opts.Fallback(KindConfirm, KindLine)
		}
		fallthrough

	case KindLine, "":
		if opts.Stdin == nil {
			return nil, ErrNoInput
		}
		return Line{In: opts.Stdin, Out: opts.Stdout, Prompt: opts.Prompt}, nil

	default:
		return nil, fmt.Errorf("unknown gate %q, want one of %v", kind, Kinds)
	}
}

func (opts Options) confirm() Confirm {
	return Confirm{Title: opts.Title, Description: opts.Description}
}
