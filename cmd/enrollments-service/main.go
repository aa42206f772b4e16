package main

import (
	"context"
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/campus-enrollments/api/swagger"
	"github.com/noah-isme/campus-enrollments/internal/client"
	"github.com/noah-isme/campus-enrollments/internal/handler"
	"github.com/noah-isme/campus-enrollments/internal/models"
	"github.com/noah-isme/campus-enrollments/internal/repository"
	"github.com/noah-isme/campus-enrollments/internal/server"
	"github.com/noah-isme/campus-enrollments/internal/service"
	"github.com/noah-isme/campus-enrollments/pkg/config"
	"github.com/noah-isme/campus-enrollments/pkg/database"
	"github.com/noah-isme/campus-enrollments/pkg/logger"
)

// @title Campus Enrollments API
// @version 1.0.0
// @description Enrolls students in courses after confirming both with their owning services
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "enrollments")
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
	if err := database.EnsureSchema(ctx, db, models.EnrollmentSchema); err != nil {
		logr.Sugar().Fatalw("schema setup failed", "error", err)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	enrollmentRepo := repository.NewEnrollmentRepository(db, metrics)
	students := client.NewStudentClient(cfg.Peers, metrics)
	courses := client.NewCourseClient(cfg.Peers, metrics)

	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, students, courses, validate, metrics, logr)
	exportSvc := service.NewExportService(enrollmentSvc, logr)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, exportSvc)

	r, api := server.NewEngine(cfg, logr, metrics, swagger.EnrollmentsInstance, map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	})

	enrollments := api.Group("/enrollments")
	enrollments.GET("", enrollmentHandler.List)
	enrollments.GET("/export", enrollmentHandler.Export)
	enrollments.GET("/:id", enrollmentHandler.Get)
	enrollments.POST("", enrollmentHandler.Create)
	enrollments.PUT("/:id", enrollmentHandler.Update)
	enrollments.DELETE("/:id", enrollmentHandler.Delete)

	logr.Sugar().Infow("peer services",
		"students", cfg.Peers.StudentServiceURL,
		"courses", cfg.Peers.CourseServiceURL,
		"timeout", cfg.Peers.Timeout,
	)
	if err := server.Run(cfg, r, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
