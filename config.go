package rtcpush

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/rtcpush/rtcline"
)

// Config is the configuration for a single push.
type Config struct {
	// Device is the path to the device file of the RTC board.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0, or COMn on Windows.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// ReadTimeout is the read timeout set on the port after opening it.
	ReadTimeout TOMLDuration `toml:"read_timeout"`
	// WarmUp is how long to wait after opening the port before writing.
	// Most boards reset when the port is opened.
	WarmUp TOMLDuration `toml:"warm_up"`
	// Pause is the delay between two lines.
	Pause TOMLDuration `toml:"pause"`
	// Weekday is the weekday code to send. It is either a single digit from
	// 0 (Sunday) to 6, or "auto" to derive it from the date. The default is
	// the constant "3", which does not follow the date.
	Weekday string `toml:"weekday"`
	// ZeroPad pads the date and time fields to two digits.
	ZeroPad bool `toml:"zero_pad"`
	// Offset is added to the timestamp before it is sent. It compensates
	// for the time the device takes to apply the value.
	Offset TOMLDuration `toml:"offset"`
	// Timezone is the IANA name of the location the timestamp is taken in.
	// If empty, the local time is used.
	Timezone string `toml:"timezone"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Device:      "/dev/ttyUSB0",
		Baud:        115200,
		ReadTimeout: TOMLDuration(time.Second),
		WarmUp:      TOMLDuration(2 * time.Second),
		Pause:       TOMLDuration(100 * time.Millisecond),
		Weekday:     rtcline.DefaultWeekday,
	}
}

// Validate validates the configuration. All problems are reported at once
// as criterio.FieldErrors.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.Device == "" {
		errs = errs.Append("device", errors.New("no device configured"))
	}

	if c.Baud <= 0 {
		errs = errs.Append("baud", fmt.Errorf("invalid baud rate %d", c.Baud))
	}

	for _, d := range []struct {
		field string
		value TOMLDuration
	}{
		{"read_timeout", c.ReadTimeout},
		{"warm_up", c.WarmUp},
		{"pause", c.Pause},
	} {
		if d.value < 0 {
			errs = errs.Append(d.field, fmt.Errorf("negative duration %s", time.Duration(d.value)))
		}
	}

	if !rtcline.ValidWeekdayMode(c.Weekday) {
		errs = errs.Append("weekday", fmt.Errorf("%q is neither a digit from 0 to 6 nor %q", c.Weekday, rtcline.WeekdayAuto))
	}

	if _, err := c.Location(); err != nil {
		errs = errs.Append("timezone", err)
	}

	return errs.ToError()
}

// Location returns the location the timestamp is taken in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// FormatOptions returns the rtcline options for this configuration.
func (c *Config) FormatOptions() rtcline.FormatOptions {
	return rtcline.FormatOptions{
		Weekday: c.Weekday,
		ZeroPad: c.ZeroPad,
	}
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Fields missing from the
// input keep their DefaultConfig values.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}
