package model

import "time"

const (
	HolidayMajor       = "major"
	HolidayMinor       = "minor"
	HolidayModern      = "modern"
	HolidayRoshChodesh = "roshchodesh"
	HolidayFast        = "fast"
)

type Holiday struct {
	Date     time.Time `db:"date"     json:"date"`
	Title    string    `db:"title"    json:"title"`
	Hebrew   string    `db:"hebrew"   json:"hebrew"`
	Category string    `db:"category" json:"category"`
}
