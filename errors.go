package rtcpush

import (
	"fmt"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"libdb.so/rtcpush/rtcline"
)

// DeviceUnavailableError is returned when the serial device cannot be opened
// or configured. Nothing has been written when it is returned.
type DeviceUnavailableError struct {
	Device string
	Err    error
}

func (e *DeviceUnavailableError) Error() string {
	return fmt.Sprintf("device %s unavailable: %v", e.Device, e.Err)
}

func (e *DeviceUnavailableError) Unwrap() error { return e.Err }

// Reason returns a short description of why the device is unavailable, if
// the serial library reported one.
func (e *DeviceUnavailableError) Reason() string {
	var portErr *serial.PortError
	if !errors.As(e.Err, &portErr) {
		return ""
	}

	switch portErr.Code() {
	case serial.PortNotFound:
		return "not found"
	case serial.PortBusy:
		return "in use"
	case serial.PermissionDenied:
		return "permission denied"
	case serial.InvalidSpeed:
		return "unsupported baud rate"
	default:
		return portErr.EncodedErrorString()
	}
}

// TransmissionError is returned when a line cannot be written to the device.
// The lines before Field have been sent.
type TransmissionError struct {
	Field rtcline.Field
	Err   error
}

func (e *TransmissionError) Error() string {
	return fmt.Sprintf("failed to send %s: %v", e.Field, e.Err)
}

func (e *TransmissionError) Unwrap() error { return e.Err }
