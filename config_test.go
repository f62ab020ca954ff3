package rtcpush

import (
	"strings"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, TOMLDuration(time.Second), cfg.ReadTimeout)
	assert.Equal(t, TOMLDuration(2*time.Second), cfg.WarmUp)
	assert.Equal(t, TOMLDuration(100*time.Millisecond), cfg.Pause)
	assert.Equal(t, "3", cfg.Weekday)
	assert.False(t, cfg.ZeroPad)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
device   = "COM7"
warm_up  = "3s"
pause    = "250ms"
weekday  = "auto"
zero_pad = true
offset   = "5s"
timezone = "UTC"
`))
	require.NoError(t, err)

	assert.Equal(t, "COM7", cfg.Device)
	assert.Equal(t, TOMLDuration(3*time.Second), cfg.WarmUp)
	assert.Equal(t, TOMLDuration(250*time.Millisecond), cfg.Pause)
	assert.Equal(t, "auto", cfg.Weekday)
	assert.True(t, cfg.ZeroPad)
	assert.Equal(t, TOMLDuration(5*time.Second), cfg.Offset)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfig_KeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`device = "/dev/ttyACM1"`))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, TOMLDuration(2*time.Second), cfg.WarmUp)
	assert.Equal(t, "3", cfg.Weekday)
}

func TestParseConfig_BadDuration(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`warm_up = "two seconds"`))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := &Config{
		Device:   "",
		Baud:     -1,
		WarmUp:   TOMLDuration(-time.Second),
		Weekday:  "7",
		Timezone: "Nowhere/Atlantis",
	}

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	fields := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"device", "baud", "warm_up", "weekday", "timezone"}, fields)
}

func TestValidate_Weekday(t *testing.T) {
	for _, weekday := range []string{"", "0", "6", "auto"} {
		cfg := DefaultConfig()
		cfg.Weekday = weekday
		assert.NoError(t, cfg.Validate(), "weekday %q", weekday)
	}

	cfg := DefaultConfig()
	cfg.Weekday = "friday"
	assert.ErrorContains(t, cfg.Validate(), "friday")
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "Europe/Lisbon"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", loc.String())
}

func TestTOMLDuration_MarshalText(t *testing.T) {
	text, err := TOMLDuration(1500 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))
}
