package main

import (
	"context"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/campus-enrollments/api/swagger"
	"github.com/noah-isme/campus-enrollments/internal/handler"
	"github.com/noah-isme/campus-enrollments/internal/models"
	"github.com/noah-isme/campus-enrollments/internal/repository"
	"github.com/noah-isme/campus-enrollments/internal/server"
	"github.com/noah-isme/campus-enrollments/internal/service"
	"github.com/noah-isme/campus-enrollments/pkg/cache"
	"github.com/noah-isme/campus-enrollments/pkg/config"
	"github.com/noah-isme/campus-enrollments/pkg/database"
	"github.com/noah-isme/campus-enrollments/pkg/logger"
)

// @title Campus Courses API
// @version 1.0.0
// @description Course catalogue consulted by the enrollment service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "courses")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db, models.CourseSchema); err != nil {
		logr.Sugar().Fatalw("schema setup failed", "error", err)
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var cacheSvc *service.CacheService
	if cfg.Courses.CacheEnabled {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("course cache disabled, redis unavailable", "error", err)
		} else {
			defer rdb.Close()
			cacheSvc = service.NewCacheService(repository.NewCacheRepository(rdb, "courses:"), metrics, cfg.Courses.CacheTTL, logr, true)
			checks["redis"] = redisCheck(rdb)
		}
	}

	courseRepo := repository.NewCourseRepository(db, metrics)
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, validator.New(), logr)
	courseHandler := handler.NewCourseHandler(courseSvc)

	r, api := server.NewEngine(cfg, logr, metrics, swagger.CoursesInstance, checks)

	courses := api.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", courseHandler.Create)
	courses.PUT("/:id", courseHandler.Update)
	courses.DELETE("/:id", courseHandler.Delete)

	if err := server.Run(cfg, r, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func redisCheck(rdb *redis.Client) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
