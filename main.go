package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventsapi/config"
	"eventsapi/db"
	"eventsapi/images"
	"eventsapi/middlewares"
	"eventsapi/models"
	"eventsapi/routes"
	"eventsapi/utils"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load()

	// Postgres (memberships)
	sqldb, err := db.Open(cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer sqldb.Close()

	// Mongo (users, sessions, events)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mg, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("mongo.Connect")
	}
	if err := mg.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("mongo ping")
	}
	defer func() { _ = mg.Disconnect(context.Background()) }()

	mdb := mg.Database(cfg.MongoDB)
	usersCol := mdb.Collection("users")
	sessionsCol := mdb.Collection("sessions")
	eventsCol := mdb.Collection("events")

	// Redis (response cache, quotas)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	// S3 (profile images)
	imgStore, err := images.NewS3Store(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("s3")
	}

	inv := utils.NewCacheInvalidator(rdb)

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middlewares.RequestLogging(logger))
	server.Use(middlewares.ResponseCache(rdb, cfg.CacheTTL))

	routes.RegisterRoutes(server, cfg,
		models.NewMongoUserRepository(usersCol),
		models.NewMongoSessionRepository(sessionsCol),
		models.NewMongoEventRepository(eventsCol),
		models.NewSQLMembershipRepository(sqldb),
		imgStore, rdb, inv, logger)

	logger.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := server.Run(cfg.Addr); err != nil {
		logger.Fatal().Err(err).Msg("gin.Run")
	}
}
