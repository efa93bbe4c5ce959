package model

import "time"

// DailyZmanim is one date's astronomical times as published by the almanac.
// Times are "HH:MM" local strings; an empty string means not published.
type DailyZmanim struct {
	Date           time.Time `db:"date"            json:"date"`
	AlotHaShachar  string    `db:"alot_hashachar"  json:"alot_hashachar"`
	Sunrise        string    `db:"sunrise"         json:"sunrise"`
	Chatzot        string    `db:"chatzot"         json:"chatzot"`
	MinchaGedola   string    `db:"mincha_gedola"   json:"mincha_gedola"`
	PlagHaMincha   string    `db:"plag_hamincha"   json:"plag_hamincha"`
	Sunset         string    `db:"sunset"          json:"sunset"`
	BeinHaShmashos string    `db:"bein_hashmashos" json:"bein_hashmashos"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}

// ShabbatTimes is keyed by the Friday it starts on.
type ShabbatTimes struct {
	Friday         time.Time `db:"friday"          json:"friday"`
	Parasha        string    `db:"parasha"         json:"parasha"`
	CandleLighting string    `db:"candle_lighting" json:"candle_lighting"`
	Havdalah       string    `db:"havdalah"        json:"havdalah"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}
