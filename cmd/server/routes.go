package main

import (
	"html/template"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/minyan/internal/config"
	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/minyan/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/minyan/internal/http/api/admin/control/endpoints"
	publicapi "github.com/Nixie-Tech-LLC/minyan/internal/http/api/public/endpoints"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
	"github.com/Nixie-Tech-LLC/minyan/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store db.Store, schedule *prayers.Service, storageSystem storage.Storage, tmpl *template.Template) {
	r.SetHTMLTemplate(tmpl)
	// CORS
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api",
	},
		publicapi.PrayerModule(store, schedule),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(cfg.JWTSecret, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Users:     store,
	},
		// control modules
		adminapi.OverrideModule(store, schedule),
		adminapi.ClassModule(store, storageSystem),
		// session endpoints that require auth
		authapi.AuthSessionModule(cfg.JWTSecret, store),
	)

	api.MountGroup(r, api.GroupConfig{}, publicapi.BoardModule(schedule))

	// Static content
	if !cfg.UseSpaces {
		r.Static("/uploads", cfg.UploadDir)
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return c
}
