package endpoints

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api"
	adminendpoints "github.com/Nixie-Tech-LLC/minyan/internal/http/api/admin/control/endpoints"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
)

// longest holiday range served in one request
const maxHolidaySpan = 366 * 24 * time.Hour

type PrayerController struct {
	store    db.Store
	schedule *prayers.Service
}

func NewPrayerController(store db.Store, schedule *prayers.Service) *PrayerController {
	return &PrayerController{store: store, schedule: schedule}
}

// PrayerModule mounts the public schedule endpoints
func PrayerModule(store db.Store, schedule *prayers.Service) api.Module {
	ctl := NewPrayerController(store, schedule)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/zmanim", ctl.getDay)
		c.PUBLIC_GET("/prayers/week", ctl.getWeek)
		c.PUBLIC_GET("/shabbat", ctl.getShabbat)
		c.PUBLIC_GET("/holidays", ctl.listHolidays)
		c.PUBLIC_GET("/classes", ctl.listClasses)
		c.PUBLIC_GET("/simulate", ctl.simulate)
	})
}

// dateQuery reads ?key=YYYY-MM-DD, defaulting to today.
func (p *PrayerController) dateQuery(ctx *gin.Context, key string) (time.Time, *api.APIError) {
	raw := ctx.Query(key)
	if raw == "" {
		return p.schedule.Today(), nil
	}
	d, err := prayers.ParseDate(raw)
	if err != nil {
		return time.Time{}, api.BadRequest(err.Error())
	}
	return d, nil
}

func (p *PrayerController) getDay(ctx *gin.Context) (any, *api.APIError) {
	date, apiErr := p.dateQuery(ctx, "date")
	if apiErr != nil {
		return nil, apiErr
	}
	day, err := p.schedule.Day(ctx.Request.Context(), date)
	if err != nil {
		return nil, api.Internal("failed to load zmanim")
	}
	return day, nil
}

func (p *PrayerController) getWeek(ctx *gin.Context) (any, *api.APIError) {
	date, apiErr := p.dateQuery(ctx, "date")
	if apiErr != nil {
		return nil, apiErr
	}
	week, err := p.schedule.Week(ctx.Request.Context(), date)
	if err != nil {
		return nil, api.Internal("failed to load prayer times")
	}
	return week, nil
}

func (p *PrayerController) getShabbat(ctx *gin.Context) (any, *api.APIError) {
	date, apiErr := p.dateQuery(ctx, "date")
	if apiErr != nil {
		return nil, apiErr
	}
	shabbat, err := p.schedule.Shabbat(ctx.Request.Context(), date)
	if err != nil {
		return nil, api.Internal("failed to load shabbat times")
	}
	return shabbat, nil
}

func (p *PrayerController) listHolidays(ctx *gin.Context) (any, *api.APIError) {
	from, apiErr := p.dateQuery(ctx, "from")
	if apiErr != nil {
		return nil, apiErr
	}
	to := from.AddDate(0, 0, 30)
	if ctx.Query("to") != "" {
		if to, apiErr = p.dateQuery(ctx, "to"); apiErr != nil {
			return nil, apiErr
		}
	}
	if to.Before(from) {
		return nil, api.BadRequest("to must not be before from")
	}
	if to.Sub(from) > maxHolidaySpan {
		return nil, api.BadRequest("range too long, at most one year")
	}

	holidays, err := p.store.ListHolidays(from, to)
	if err != nil {
		return nil, api.Internal("failed to list holidays")
	}
	return holidays, nil
}

func (p *PrayerController) listClasses(ctx *gin.Context) (any, *api.APIError) {
	classes, err := p.store.ListClasses()
	if err != nil {
		return nil, api.Internal("failed to list classes")
	}
	out := make([]packets.ClassResponse, 0, len(classes))
	for _, c := range classes {
		out = append(out, adminendpoints.ToClassResponse(c))
	}
	return out, nil
}

// GET /simulate?date= previews what the site would show on any date.
func (p *PrayerController) simulate(ctx *gin.Context) (any, *api.APIError) {
	date, apiErr := p.dateQuery(ctx, "date")
	if apiErr != nil {
		return nil, apiErr
	}
	board, err := p.schedule.Simulate(ctx.Request.Context(), date)
	if err != nil {
		return nil, api.Internal("failed to simulate date")
	}
	return board, nil
}
