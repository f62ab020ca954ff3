package rtcpush

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"libdb.so/rtcpush/rtcline"
)

var (
	reportHeadingStyle = lipgloss.NewStyle().Bold(true)
	reportLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(9)
	reportValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var reportLabels = map[rtcline.Field]string{
	rtcline.FieldDate:    "Date:",
	rtcline.FieldTime:    "Time:",
	rtcline.FieldWeekday: "Weekday:",
}

// Report prints the values that were sent to the device.
func Report(w io.Writer, f rtcline.Frame) error {
	if _, err := fmt.Fprintln(w, reportHeadingStyle.Render("Sent to the RTC:")); err != nil {
		return err
	}

	for _, field := range rtcline.Fields {
		label := reportLabelStyle.Render(reportLabels[field])
		value := reportValueStyle.Render(f.Line(field))
		if _, err := fmt.Fprintln(w, label+value); err != nil {
			return err
		}
	}

	return nil
}
