package model

import "time"

// Class is a recurring shiur on the synagogue's weekly schedule.
type Class struct {
	ID        int       `db:"id"         json:"id"`
	Title     string    `db:"title"      json:"title"`
	Teacher   string    `db:"teacher"    json:"teacher"`
	Weekday   int       `db:"weekday"    json:"weekday"` // time.Weekday, 0 = Sunday
	StartTime string    `db:"start_time" json:"start_time"`
	Location  *string   `db:"location"   json:"location"`
	FlyerURL  *string   `db:"flyer_url"  json:"flyer_url"`
	CreatedBy int       `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
