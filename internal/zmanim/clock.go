package zmanim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// ErrInvalidInput is returned when a value that must be a time of day
// is not one. Missing values are never reported with it.
var ErrInvalidInput = errors.New("invalid input")

// Clock is a time of day in minutes since midnight, 24h local time.
type Clock int

// NewClock builds a Clock, wrapping out of range values around the day.
func NewClock(hours, minutes int) Clock {
	return normalize(hours*60 + minutes)
}

func normalize(m int) Clock {
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return Clock(m)
}

// ParseClock parses "HH:MM" or "HH:MM:SS". Seconds are dropped.
func ParseClock(value string) (Clock, error) {
	s := strings.TrimSpace(value)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q is not a time of day", ErrInvalidInput, value)
	}

	h, ok := digits(parts[0], 1, 2)
	if !ok || h > 23 {
		return 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidInput, value)
	}
	m, ok := digits(parts[1], 2, 2)
	if !ok || m > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidInput, value)
	}
	if len(parts) == 3 {
		if sec, ok := digits(parts[2], 2, 2); !ok || sec > 59 {
			return 0, fmt.Errorf("%w: bad second in %q", ErrInvalidInput, value)
		}
	}
	return Clock(h*60 + m), nil
}

// digits parses an unsigned decimal field of minLen to maxLen digits.
func digits(field string, minLen, maxLen int) (int, bool) {
	if len(field) < minLen || len(field) > maxLen {
		return 0, false
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(field)
	return n, err == nil
}

// MustParseClock is like ParseClock but panics on error.
func MustParseClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int { return int(c) }

// Hour returns the hour, 0-23.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute within the hour, 0-59.
func (c Clock) Minute() int { return int(c) % 60 }

// Add returns c shifted by n minutes, wrapping around midnight.
func (c Clock) Add(n int) Clock { return normalize(int(c) + n) }

// String returns the time formatted as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText encodes c as "HH:MM".
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts anything ParseClock does.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
