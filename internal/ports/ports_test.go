package ports

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
)

func TestList_SortsAndCopiesDetails(t *testing.T) {
	ports, err := list(func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523", Product: "USB Serial"},
			{Name: "/dev/ttyS0"},
			{Name: "/dev/ttyACM0", IsUSB: true, VID: "2e8a", PID: "000a", SerialNumber: "E66138"},
		}, nil
	})
	require.NoError(t, err)

	require.Len(t, ports, 3)
	assert.Equal(t, "/dev/ttyACM0", ports[0].Name)
	assert.Equal(t, "/dev/ttyS0", ports[1].Name)
	assert.Equal(t, "/dev/ttyUSB0", ports[2].Name)
	assert.Equal(t, "E66138", ports[0].SerialNumber)
	assert.False(t, ports[1].IsUSB)
}

func TestList_Error(t *testing.T) {
	boom := errors.New("boom")

	_, err := list(func() ([]*enumerator.PortDetails, error) { return nil, boom })

	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "enumerate")
}

func TestPortString(t *testing.T) {
	assert.Equal(t, "/dev/ttyS0", Port{Name: "/dev/ttyS0"}.String())
	assert.Equal(t,
		"/dev/ttyUSB0 (USB 1a86:7523 USB Serial, serial 42)",
		Port{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1a86", PID: "7523", Product: "USB Serial", SerialNumber: "42"}.String())
	assert.Equal(t,
		"/dev/ttyACM0 (USB 2e8a:000a)",
		Port{Name: "/dev/ttyACM0", IsUSB: true, VID: "2e8a", PID: "000a"}.String())
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Print(&buf, nil))
	assert.Equal(t, "no serial ports found\n", buf.String())

	buf.Reset()
	require.NoError(t, Print(&buf, []Port{{Name: "COM7"}, {Name: "COM8"}}))
	assert.Equal(t, "COM7\nCOM8\n", buf.String())
}
