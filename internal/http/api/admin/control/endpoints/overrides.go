package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/minyan/internal/model"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
	"github.com/Nixie-Tech-LLC/minyan/internal/zmanim"
)

type OverrideController struct {
	store    db.Store
	schedule *prayers.Service
}

func NewOverrideController(store db.Store, schedule *prayers.Service) *OverrideController {
	return &OverrideController{store: store, schedule: schedule}
}

// OverrideModule mounts the admin prayer time override endpoints
func OverrideModule(store db.Store, schedule *prayers.Service) api.Module {
	ctl := NewOverrideController(store, schedule)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/overrides", ctl.listOverrides)
		c.PUT("/overrides", ctl.setOverride)
		c.DELETE("/overrides/:week/:prayer", ctl.deleteOverride)
	})
}

func (o *OverrideController) listOverrides(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var query packets.ListOverridesQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	week := o.schedule.Today()
	if query.Week != "" {
		parsed, err := prayers.ParseDate(query.Week)
		if err != nil {
			return nil, api.BadRequest(err.Error())
		}
		week = parsed
	}

	list, err := o.store.ListPrayerOverrides(prayers.WeekStart(week))
	if err != nil {
		return nil, api.Internal("failed to list overrides")
	}

	response := make([]packets.OverrideResponse, 0, len(list))
	for _, it := range list {
		response = append(response, toOverrideResponse(it))
	}
	return response, nil
}

func (o *OverrideController) setOverride(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.SetOverrideRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	week, err := prayers.ParseDate(request.Week)
	if err != nil {
		return nil, api.BadRequest(err.Error())
	}
	at, err := zmanim.ParseClock(request.Time)
	if err != nil {
		return nil, api.BadRequest(err.Error())
	}

	saved, err := o.store.SetPrayerOverride(prayers.WeekStart(week), request.Prayer, at.String(), request.Note, user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not save override"}
	}
	log.Info().Int("user_id", user.ID).Str("prayer", request.Prayer).Str("time", at.String()).
		Str("week_start", prayers.FormatDate(prayers.WeekStart(week))).Msg("prayer time overridden")

	o.announce(ctx, week)
	return toOverrideResponse(saved), nil
}

func (o *OverrideController) deleteOverride(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	week, err := prayers.ParseDate(ctx.Param("week"))
	if err != nil {
		return nil, api.BadRequest(err.Error())
	}
	prayer := ctx.Param("prayer")
	if !model.IsOverridablePrayer(prayer) {
		return nil, api.BadRequest("unknown prayer")
	}

	if err := o.store.DeletePrayerOverride(prayers.WeekStart(week), prayer); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, api.NotFound("override not found")
		}
		return nil, api.Internal("could not delete override")
	}

	o.announce(ctx, week)
	return gin.H{"message": "deleted"}, nil
}

// announce refreshes the displays; a failed push does not fail the request.
func (o *OverrideController) announce(ctx *gin.Context, week time.Time) {
	if err := o.schedule.Announce(ctx.Request.Context(), week); err != nil {
		log.Error().Err(err).Msg("could not push prayer times to display boards")
	}
}

func toOverrideResponse(o model.PrayerOverride) packets.OverrideResponse {
	return packets.OverrideResponse{
		WeekStart: prayers.FormatDate(o.WeekStart),
		Prayer:    o.Prayer,
		Time:      o.Time,
		Note:      o.Note,
		UpdatedBy: o.UpdatedBy,
		UpdatedAt: o.UpdatedAt.Format(time.RFC3339),
	}
}
