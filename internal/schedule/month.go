package schedule

import (
	"time"

	"cadence/internal/store"
)

// DateLayout is the key format of the plan store
const DateLayout = "2006-01-02"

// YearMonth identifies a calendar page
type YearMonth struct {
	Year  int
	Month time.Month
}

// Prev returns the month before ym
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Next returns the month after ym
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Day is one cell of the grid. Padding cells have Day == 0.
type Day struct {
	Day  int
	Date string
	Plan *store.Plan
}

// Month is a Sunday-first grid of weeks
type Month struct {
	YearMonth
	Name  string
	Weeks [][7]Day
	Prev  YearMonth
	Next  YearMonth
}

// BuildMonth lays out ym with the plans stored for its days
func BuildMonth(ym YearMonth, plans store.Plans) Month {
	first := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
	daysIn := first.AddDate(0, 1, -1).Day()

	m := Month{
		YearMonth: ym,
		Name:      ym.Month.String(),
		Prev:      ym.Prev(),
		Next:      ym.Next(),
	}

	var week [7]Day
	col := int(first.Weekday())
	for d := 1; d <= daysIn; d++ {
		date := time.Date(ym.Year, ym.Month, d, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		cell := Day{Day: d, Date: date}
		if p, ok := plans[date]; ok {
			cell.Plan = &p
		}
		week[col] = cell
		col++
		if col == 7 {
			m.Weeks = append(m.Weeks, week)
			week = [7]Day{}
			col = 0
		}
	}
	if col > 0 {
		m.Weeks = append(m.Weeks, week)
	}
	return m
}

// ParseYearMonth reads year and month query values, falling back to now's
// month for anything missing or out of range
func ParseYearMonth(year, month int, now time.Time) YearMonth {
	ym := YearMonth{Year: now.Year(), Month: now.Month()}
	if year > 0 && year <= 9999 {
		ym.Year = year
	}
	if month >= 1 && month <= 12 {
		ym.Month = time.Month(month)
	}
	return ym
}
