// Package format renders times and durations for terminal output.
package format

import (
	"strings"
	"time"
)

// Formatter renders times with the layouts chosen by DISPLAY_DATE and
// DISPLAY_TIME.
type Formatter struct {
	date string
	time string
}

// New returns a formatter. displayDate is a preset ("mm/dd/yyyy",
// "yyyy-mm-dd", "dd/mm/yyyy") or a Go layout; displayTime is "12h" or "24h".
func New(displayDate, displayTime string) Formatter {
	return Formatter{date: dateLayout(displayDate), time: timeLayout(displayTime)}
}

// Date formats only the date portion.
// Example output: "2024-01-23" or "01/23/2024"
func (f Formatter) Date(t time.Time) string {
	return t.Format(f.date)
}

// DateShort formats the date without the year.
// Example output: "01-23" or "23/01"
func (f Formatter) DateShort(t time.Time) string {
	return t.Format(shortLayout(f.date))
}

// Time formats the time with seconds.
// Example output: "15:04:05" or "3:04:05 PM"
func (f Formatter) Time(t time.Time) string {
	return t.Format(f.time)
}

// Full formats date and time.
func (f Formatter) Full(t time.Time) string {
	return f.Date(t) + " " + f.Time(t)
}

// Duration rounds d for display: milliseconds under a minute, seconds above.
func Duration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func dateLayout(displayDate string) string {
	switch displayDate {
	case "":
		return "2006-01-02"
	case "mm/dd/yyyy":
		return "01/02/2006"
	case "yyyy-mm-dd":
		return "2006-01-02"
	case "dd/mm/yyyy":
		return "02/01/2006"
	default:
		// A custom Go layout such as "Jan 02 2006".
		return displayDate
	}
}

// shortLayout strips year patterns from layout.
func shortLayout(layout string) string {
	short := layout
	for _, year := range []string{"2006", "/06", "-06", " 06"} {
		short = strings.ReplaceAll(short, year, "")
	}
	short = strings.TrimSpace(short)
	short = strings.Trim(short, "/-")
	if short == "" {
		return "Jan 02"
	}
	return short
}

func timeLayout(displayTime string) string {
	if displayTime == "12h" {
		return "3:04:05 PM"
	}
	return "15:04:05"
}
