// Package ports lists the serial ports on the host, so the operator can find
// the device to push to.
package ports

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"go.bug.st/serial/enumerator"
)

// Port describes a serial port.
type Port struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// String returns the port name with its USB details, if any.
func (p Port) String() string {
	if !p.IsUSB {
		return p.Name
	}

	s := fmt.Sprintf("%s (USB %s:%s", p.Name, p.VID, p.PID)
	if p.Product != "" {
		s += " " + p.Product
	}
	if p.SerialNumber != "" {
		s += ", serial " + p.SerialNumber
	}
	return s + ")"
}

// Enumerator returns the ports present on the host.
type Enumerator func() ([]*enumerator.PortDetails, error)

// List returns the serial ports on the host, sorted by name.
func List() ([]Port, error) {
	return list(enumerator.GetDetailedPortsList)
}

func list(enumerate Enumerator) ([]Port, error) {
	details, err := enumerate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate serial ports")
	}

	ports := make([]Port, 0, len(details))
	for _, d := range details {
		ports = append(ports, Port{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}

	sort.Slice(ports, func(i, j int) bool {
		return ports[i].Name < ports[j].Name
	})

	return ports, nil
}

// Print writes one port per line to w.
func Print(w io.Writer, ports []Port) error {
	if len(ports) == 0 {
		_, err := fmt.Fprintln(w, "no serial ports found")
		return err
	}

	for _, p := range ports {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}

	return nil
}
