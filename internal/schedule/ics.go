package schedule

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"cadence/internal/store"
)

const (
	prodID        = "-//Cadence//Training Plans//EN"
	uidDomain     = "cadence"
	startHour     = 7
	maxLineOctets = 75
)

// UID is the stable event identifier for the plan on date
func UID(date string) string {
	return date + "@" + uidDomain
}

// Summary is the event title for a plan
func Summary(p store.Plan) string {
	return p.Sport + " — " + p.Intensity
}

// WriteICS writes every stored plan as a VEVENT in date order. Start
// times are floating local 07:00. Keys that are not dates are skipped.
func WriteICS(w io.Writer, plans store.Plans, now time.Time) error {
	var b strings.Builder

	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:" + prodID + "\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")

	stamp := now.UTC().Format("20060102T150405Z")
	for _, date := range plans.SortedDates() {
		day, err := time.Parse(DateLayout, date)
		if err != nil {
			continue
		}
		plan := plans[date]

		b.WriteString("BEGIN:VEVENT\r\n")
		b.WriteString("UID:" + UID(date) + "\r\n")
		b.WriteString("DTSTAMP:" + stamp + "\r\n")
		fmt.Fprintf(&b, "DTSTART:%sT%02d0000\r\n", day.Format("20060102"), startHour)
		fmt.Fprintf(&b, "DURATION:PT%dM\r\n", plan.DurationMin)
		b.WriteString(formatProperty("SUMMARY", Summary(plan)))
		b.WriteString(formatProperty("DESCRIPTION", plan.Rationale))
		b.WriteString("END:VEVENT\r\n")
	}

	b.WriteString("END:VCALENDAR\r\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeText escapes TEXT values
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// foldLine wraps a content line at 75 octets without splitting a UTF-8
// sequence. Continuation lines start with a single space.
func foldLine(line string) string {
	var b strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// the leading space counts toward the next line
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	return b.String()
}

func formatProperty(name, value string) string {
	return foldLine(name+":"+escapeText(value)) + "\r\n"
}
