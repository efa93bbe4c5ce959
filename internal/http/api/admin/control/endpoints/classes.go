package endpoints

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/minyan/internal/model"
	"github.com/Nixie-Tech-LLC/minyan/internal/storage"
	"github.com/Nixie-Tech-LLC/minyan/internal/zmanim"
)

type ClassController struct {
	store   db.Store
	storage storage.Storage
}

func newClassController(store db.Store, storage storage.Storage) *ClassController {
	return &ClassController{store: store, storage: storage}
}

// ClassModule mounts the authenticated class schedule endpoints
func ClassModule(store db.Store, storage storage.Storage) api.Module {
	ctl := newClassController(store, storage)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/classes", ctl.createClass)
		c.PUT("/classes/:id", ctl.updateClass)
		c.DELETE("/classes/:id", ctl.deleteClass)
		c.POST("/classes/:id/flyer", ctl.uploadFlyer)
	})
}

func (c *ClassController) createClass(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateClassRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	start, err := zmanim.ParseClock(request.StartTime)
	if err != nil {
		return nil, api.BadRequest(err.Error())
	}

	created, err := c.store.CreateClass(model.Class{
		Title:     request.Title,
		Teacher:   request.Teacher,
		Weekday:   *request.Weekday,
		StartTime: start.String(),
		Location:  request.Location,
		CreatedBy: user.ID,
	})
	if err != nil {
		return nil, api.Internal("could not create class")
	}
	return ToClassResponse(created), nil
}

func (c *ClassController) updateClass(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, api.BadRequest("invalid id")
	}

	var request packets.UpdateClassRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if request.StartTime != nil {
		start, err := zmanim.ParseClock(*request.StartTime)
		if err != nil {
			return nil, api.BadRequest(err.Error())
		}
		formatted := start.String()
		request.StartTime = &formatted
	}

	err = c.store.UpdateClass(id, request.Title, request.Teacher, request.Weekday, request.StartTime, request.Location)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.NotFound("class not found")
	}
	if err != nil {
		return nil, api.Internal("could not update class")
	}

	updated, err := c.store.GetClass(id)
	if err != nil {
		return nil, api.Internal("could not fetch updated class")
	}
	return ToClassResponse(updated), nil
}

func (c *ClassController) deleteClass(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, api.BadRequest("invalid id")
	}

	err = c.store.DeleteClass(id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, api.NotFound("class not found")
	}
	if err != nil {
		return nil, api.Internal("could not delete class")
	}
	return gin.H{"message": "deleted"}, nil
}

// POST /classes/:id/flyer, multipart field "file"
func (c *ClassController) uploadFlyer(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, api.BadRequest("invalid id")
	}
	if _, err := c.store.GetClass(id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, api.NotFound("class not found")
		}
		return nil, api.Internal("could not fetch class")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, api.BadRequest("file is required")
	}

	url, err := c.storage.SaveFile(fileHeader, fileHeader.Filename)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return nil, api.BadRequest("flyer must be an image or a PDF")
	}
	if err != nil {
		log.Error().Err(err).Int("class_id", id).Msg("flyer upload failed")
		return nil, api.Internal("could not store flyer")
	}
	if err := c.store.SetClassFlyer(id, url); err != nil {
		return nil, api.Internal("could not attach flyer")
	}

	updated, err := c.store.GetClass(id)
	if err != nil {
		return nil, api.Internal("could not fetch updated class")
	}
	return ToClassResponse(updated), nil
}

func ToClassResponse(c model.Class) packets.ClassResponse {
	return packets.ClassResponse{
		ID:        c.ID,
		Title:     c.Title,
		Teacher:   c.Teacher,
		Weekday:   c.Weekday,
		StartTime: c.StartTime,
		Location:  c.Location,
		FlyerURL:  c.FlyerURL,
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
