package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/http/api"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
)

// BoardModule serves the HTML page shown on the synagogue's display screens.
func BoardModule(schedule *prayers.Service) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.Group.GET("/board", func(ctx *gin.Context) {
			board, err := schedule.Board(ctx.Request.Context(), schedule.Today())
			if err != nil {
				log.Error().Err(err).Msg("failed to build board")
				ctx.String(http.StatusInternalServerError, "failed to get prayer times")
				return
			}
			ctx.HTML(http.StatusOK, "board.html", board)
		})
	})
}
