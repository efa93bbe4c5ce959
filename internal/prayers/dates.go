package prayers

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// CivilDate keeps only the calendar date of t, as midnight UTC.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(dateLayout) }

// WeekStart returns the Sunday on or before date.
func WeekStart(date time.Time) time.Time {
	d := CivilDate(date)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// ShabbatFriday returns the Friday of the Shabbat on or after date. A
// Saturday maps to the day before.
func ShabbatFriday(date time.Time) time.Time {
	d := CivilDate(date)
	if d.Weekday() == time.Saturday {
		return d.AddDate(0, 0, -1)
	}
	return d.AddDate(0, 0, (int(time.Friday)-int(d.Weekday())+7)%7)
}
