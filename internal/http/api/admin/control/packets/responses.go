package packets

// OverrideResponse flattens model.PrayerOverride dates.
type OverrideResponse struct {
	WeekStart string  `json:"week_start"`
	Prayer    string  `json:"prayer"`
	Time      string  `json:"time"`
	Note      *string `json:"note"`
	UpdatedBy int     `json:"updated_by"`
	UpdatedAt string  `json:"updated_at"`
}

type ClassResponse struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Teacher   string  `json:"teacher"`
	Weekday   int     `json:"weekday"`
	StartTime string  `json:"start_time"`
	Location  *string `json:"location"`
	FlyerURL  *string `json:"flyer_url"`
	UpdatedAt string  `json:"updated_at"`
}
