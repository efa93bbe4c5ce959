package packets

// PUT /overrides
type SetOverrideRequest struct {
	Week   string  `json:"week"   binding:"required"` // any date of the week, YYYY-MM-DD
	Prayer string  `json:"prayer" binding:"required,oneof=mincha arvit kabalat shabbat_mincha"`
	Time   string  `json:"time"   binding:"required"` // HH:MM
	Note   *string `json:"note"`
}

type ListOverridesQuery struct {
	Week string `form:"week"`
}

type CreateClassRequest struct {
	Title     string  `json:"title"      binding:"required"`
	Teacher   string  `json:"teacher"`
	Weekday   *int    `json:"weekday"    binding:"required,min=0,max=6"`
	StartTime string  `json:"start_time" binding:"required"`
	Location  *string `json:"location"`
}

type UpdateClassRequest struct {
	Title     *string `json:"title"`
	Teacher   *string `json:"teacher"`
	Weekday   *int    `json:"weekday" binding:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time"`
	Location  *string `json:"location"`
}
