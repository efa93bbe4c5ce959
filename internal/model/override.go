package model

import "time"

// Prayers an admin may override.
const (
	PrayerMincha        = "mincha"
	PrayerArvit         = "arvit"
	PrayerKabalat       = "kabalat"
	PrayerShabbatMincha = "shabbat_mincha"
)

// PrayerOverride replaces a derived time for the week starting WeekStart (a Sunday).
type PrayerOverride struct {
	WeekStart time.Time `db:"week_start" json:"week_start"`
	Prayer    string    `db:"prayer"     json:"prayer"`
	Time      string    `db:"time"       json:"time"`
	Note      *string   `db:"note"       json:"note"`
	UpdatedBy int       `db:"updated_by" json:"updated_by"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func IsOverridablePrayer(name string) bool {
	switch name {
	case PrayerMincha, PrayerArvit, PrayerKabalat, PrayerShabbatMincha:
		return true
	}
	return false
}
