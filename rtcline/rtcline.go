// Package rtcline implements the RTC line protocol: three newline-terminated
// ASCII lines carrying the date, the time and the weekday code, in that
// order. There is no header, checksum or acknowledgment.
package rtcline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Terminator ends every line on the wire.
const Terminator = "\n"

// DefaultWeekday is the weekday code sent when none is configured. It is a
// constant and does not follow the date being sent; use WeekdayAuto to
// derive the code from the timestamp instead.
const DefaultWeekday = "3"

// WeekdayAuto derives the weekday code from the timestamp, 0 being Sunday.
const WeekdayAuto = "auto"

// Field identifies one line of a frame.
type Field uint8

const (
	FieldDate Field = iota
	FieldTime
	FieldWeekday
)

// String returns a string representation of the field.
func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldTime:
		return "time"
	case FieldWeekday:
		return "weekday"
	default:
		return fmt.Sprintf("Field(%d)", f)
	}
}

// Fields lists the fields in wire order.
var Fields = [...]Field{FieldDate, FieldTime, FieldWeekday}

// Frame is one complete transmission.
type Frame struct {
	Date    string
	Time    string
	Weekday string
}

// FormatOptions controls how a timestamp is turned into a frame.
type FormatOptions struct {
	// Weekday is either a literal code (e.g. "3") or WeekdayAuto.
	// An empty string means DefaultWeekday.
	Weekday string
	// ZeroPad pads month, day, hour, minute and second to two digits.
	// The device firmware accepts both forms.
	ZeroPad bool
}

// NewFrame formats t into a frame. The fields of t are used as-is; the
// caller picks the location.
func NewFrame(t time.Time, opts FormatOptions) Frame {
	return Frame{
		Date:    FormatDate(t, opts.ZeroPad),
		Time:    FormatTime(t, opts.ZeroPad),
		Weekday: Weekday(t, opts.Weekday),
	}
}

// FormatDate formats the date as YEAR-MONTH-DAY.
func FormatDate(t time.Time, zeroPad bool) string {
	if zeroPad {
		return t.Format("2006-01-02")
	}
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}

// FormatTime formats the time as HOUR:MINUTE:SECOND.
func FormatTime(t time.Time, zeroPad bool) string {
	if zeroPad {
		return t.Format("15:04:05")
	}
	return fmt.Sprintf("%d:%d:%d", t.Hour(), t.Minute(), t.Second())
}

// Weekday returns the weekday code for t under the given mode.
func Weekday(t time.Time, mode string) string {
	switch mode {
	case "":
		return DefaultWeekday
	case WeekdayAuto:
		return strconv.Itoa(int(t.Weekday()))
	default:
		return mode
	}
}

// ValidWeekdayMode reports whether mode is accepted by Weekday.
func ValidWeekdayMode(mode string) bool {
	if mode == "" || mode == WeekdayAuto {
		return true
	}
	return len(mode) == 1 && mode[0] >= '0' && mode[0] <= '6'
}

// Line returns the value of the given field.
func (f Frame) Line(field Field) string {
	switch field {
	case FieldDate:
		return f.Date
	case FieldTime:
		return f.Time
	case FieldWeekday:
		return f.Weekday
	default:
		return ""
	}
}

// Lines returns the frame's values in wire order, without terminators.
func (f Frame) Lines() []string {
	lines := make([]string, len(Fields))
	for i, field := range Fields {
		lines[i] = f.Line(field)
	}
	return lines
}

// LineError is returned when a line cannot be written or read.
type LineError struct {
	Field Field
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s line: %v", e.Field, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// WriteFrame writes the frame to w, one Write call per line. between is
// called after every line except the last; it is used to pace the device
// and may be nil. WriteFrame stops at the first error.
func WriteFrame(w io.Writer, f Frame, between func(Field) error) error {
	for i, field := range Fields {
		if _, err := io.WriteString(w, f.Line(field)+Terminator); err != nil {
			return &LineError{Field: field, Err: err}
		}

		if between != nil && i < len(Fields)-1 {
			if err := between(field); err != nil {
				return err
			}
		}
	}

	return nil
}

// ReadFrame reads a frame the way the device does: three lines, in order.
// A trailing carriage return on a line is dropped.
func ReadFrame(r io.Reader) (Frame, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var values [len(Fields)]string
	for i, field := range Fields {
		line, err := br.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Frame{}, &LineError{Field: field, Err: err}
		}
		values[i] = strings.TrimSuffix(strings.TrimSuffix(line, Terminator), "\r")
	}

	return Frame{
		Date:    values[FieldDate],
		Time:    values[FieldTime],
		Weekday: values[FieldWeekday],
	}, nil
}
