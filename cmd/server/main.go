package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/almanac"
	"github.com/Nixie-Tech-LLC/minyan/internal/config"
	"github.com/Nixie-Tech-LLC/minyan/internal/db"
	"github.com/Nixie-Tech-LLC/minyan/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/minyan/internal/poller"
	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
	"github.com/Nixie-Tech-LLC/minyan/internal/redis"
)

func main() {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore(cfg)

	var cache prayers.Cache
	if cfg.RedisAddress != "" {
		client := redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("address", cfg.RedisAddress).Msg("redis unreachable, schedules will not be cached")
		} else {
			cache = redis.NewCache(client, "minyan:", cfg.CacheTTL)
			log.Info().Str("address", cfg.RedisAddress).Msg("redis cache enabled")
		}
	}

	schedule := prayers.NewService(store, cache, cfg.Timezone)

	if cfg.MQTTBrokerURL != "" {
		client, err := middleware.CreateMQTTClient(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			log.Error().Err(err).Msg("display boards will only refresh by polling /board")
		} else {
			schedule.WithPublisher(middleware.NewBoardPublisher(client, middleware.BoardTopic))
			defer client.Disconnect(250)
		}
	}

	if cfg.AlmanacGeonameID != "" {
		source := almanac.NewClient(cfg.AlmanacBaseURL, cfg.AlmanacGeonameID, cfg.AlmanacTimeout)
		go poller.New(source, store, schedule, cfg.PollInterval, cfg.PollDaysAhead).Run(ctx)
	} else {
		log.Warn().Msg("ALMANAC_GEONAME_ID not set, almanac polling disabled")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	RegisterRoutes(r, cfg, store, schedule, InitStorage(cfg), LoadTemplates(cfg.TemplatesGlob))

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore connects to Postgres and applies migrations, or returns an
// empty in-memory store for DATABASE_URL=memory://.
func openStore(cfg *config.Config) db.Store {
	if strings.HasPrefix(cfg.DatabaseURL, "memory://") {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return db.NewMemStore()
	}

	// initialize PostgreSQL
	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	return db.NewStore(db.DB)
}
