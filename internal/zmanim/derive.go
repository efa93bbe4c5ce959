// Package zmanim derives communal prayer times from daily astronomical
// times. Every derived time falls on a 5-minute mark.
package zmanim

import (
	"strings"
	"time"
)

const (
	// Mincha starts between 16 and 11 minutes before sunset.
	minchaEarliestOffset = 16
	minchaLatestOffset   = 11

	// Arvit starts between 1 minute before and 4 minutes after nightfall.
	arvitEarliestOffset = 1
	arvitLatestOffset   = 4

	// approximate nightfall when no tzait time is published
	nightfallAfterSunset = 18

	shabbatMinchaBeforeHavdalah = 60

	step = 5
)

// Fallback is returned by the Shabbat functions when their input is
// missing. It is a display placeholder only.
var Fallback = NewClock(18, 45)

// DailyTimes holds one date's astronomical times as published by the
// almanac. Empty or malformed times are ignored record by record.
type DailyTimes struct {
	Date           time.Time
	Sunset         string
	BeinHaShmashos string
}

// WeeklyPrayerTimes are the Sunday-Thursday communal times of a week.
// A nil field means there was no data to derive it from.
type WeeklyPrayerTimes struct {
	Mincha *Clock `json:"mincha"`
	Arvit  *Clock `json:"arvit"`
}

// ShabbatPrayerTimes are the Friday and Saturday afternoon times.
type ShabbatPrayerTimes struct {
	Kabalat Clock `json:"kabalat"`
	Mincha  Clock `json:"mincha"`
}

// WeeklyMinchaTime picks the Mincha time for the week: the 5-minute mark
// nearest the middle of [earliest sunset - 16, earliest sunset - 11].
// Ties go to the earlier mark.
func WeeklyMinchaTime(week []DailyTimes) (Clock, bool) {
	earliest, found := 0, false
	for _, day := range week {
		sunset, ok := parseOptional(day.Sunset)
		if !ok {
			continue
		}
		if !found || sunset.Minutes() < earliest {
			earliest = sunset.Minutes()
			found = true
		}
	}
	if !found {
		return 0, false
	}

	mark, ok := nearestMark(earliest-minchaEarliestOffset, earliest-minchaLatestOffset)
	if !ok {
		return 0, false
	}
	return normalize(mark), true
}

// WeeklyArvitTime picks the Arvit time for the week from the latest
// nightfall. Nightfall is bein hashmashos when published, sunset + 18
// otherwise.
func WeeklyArvitTime(week []DailyTimes) (Clock, bool) {
	latest, found := 0, false
	for _, day := range week {
		nightfall, ok := nightfallOf(day)
		if !ok {
			continue
		}
		if !found || nightfall > latest {
			latest = nightfall
			found = true
		}
	}
	if !found {
		return 0, false
	}

	if mod(latest, step) == 0 {
		return normalize(latest), true
	}

	lo, hi := latest-arvitEarliestOffset, latest+arvitLatestOffset
	down := floorMark(latest)
	up := down + step
	switch {
	case down >= lo && down <= hi:
		return normalize(down), true
	case up >= lo && up <= hi:
		return normalize(up), true
	case abs(2*down-(lo+hi)) <= abs(2*up-(lo+hi)):
		return normalize(down), true
	default:
		return normalize(up), true
	}
}

// Weekly derives both weekday times at once.
func Weekly(week []DailyTimes) WeeklyPrayerTimes {
	var out WeeklyPrayerTimes
	if m, ok := WeeklyMinchaTime(week); ok {
		out.Mincha = &m
	}
	if a, ok := WeeklyArvitTime(week); ok {
		out.Arvit = &a
	}
	return out
}

// ShabbatKabalatTime returns the Friday Mincha and Kabalat Shabbat time,
// using the same window as the weekday Mincha. An empty sunset yields
// Fallback.
func ShabbatKabalatTime(fridaySunset string) (Clock, error) {
	if strings.TrimSpace(fridaySunset) == "" {
		return Fallback, nil
	}
	sunset, err := ParseClock(fridaySunset)
	if err != nil {
		return 0, err
	}
	mark, ok := nearestMark(sunset.Minutes()-minchaEarliestOffset, sunset.Minutes()-minchaLatestOffset)
	if !ok {
		return Fallback, nil
	}
	return normalize(mark), nil
}

// ShabbatMinchaTime returns havdalah - 60 minutes rounded down to a
// 5-minute mark. An empty havdalah yields Fallback.
func ShabbatMinchaTime(havdalah string) (Clock, error) {
	if strings.TrimSpace(havdalah) == "" {
		return Fallback, nil
	}
	h, err := ParseClock(havdalah)
	if err != nil {
		return 0, err
	}
	return normalize(floorMark(h.Minutes() - shabbatMinchaBeforeHavdalah)), nil
}

// Shabbat derives both Shabbat times at once.
func Shabbat(fridaySunset, havdalah string) (ShabbatPrayerTimes, error) {
	kabalat, err := ShabbatKabalatTime(fridaySunset)
	if err != nil {
		return ShabbatPrayerTimes{}, err
	}
	mincha, err := ShabbatMinchaTime(havdalah)
	if err != nil {
		return ShabbatPrayerTimes{}, err
	}
	return ShabbatPrayerTimes{Kabalat: kabalat, Mincha: mincha}, nil
}

func nightfallOf(day DailyTimes) (int, bool) {
	if tzait, ok := parseOptional(day.BeinHaShmashos); ok {
		return tzait.Minutes(), true
	}
	if sunset, ok := parseOptional(day.Sunset); ok {
		return sunset.Minutes() + nightfallAfterSunset, true
	}
	return 0, false
}

func parseOptional(value string) (Clock, bool) {
	if strings.TrimSpace(value) == "" {
		return 0, false
	}
	c, err := ParseClock(value)
	if err != nil {
		return 0, false
	}
	return c, true
}

// nearestMark returns the multiple of 5 in [lo, hi] closest to the
// midpoint, preferring the earlier one on a tie. Bounds may be negative.
func nearestMark(lo, hi int) (int, bool) {
	best, found := 0, false
	for c := floorMark(lo); c <= hi; c += step {
		if c < lo {
			continue
		}
		if !found || abs(2*c-(lo+hi)) < abs(2*best-(lo+hi)) {
			best = c
			found = true
		}
	}
	return best, found
}

func floorMark(m int) int { return m - mod(m, step) }

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
