package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-enrollments/internal/handler"
	"github.com/noah-isme/campus-enrollments/internal/middleware"
	"github.com/noah-isme/campus-enrollments/internal/service"
	"github.com/noah-isme/campus-enrollments/pkg/config"
	"github.com/noah-isme/campus-enrollments/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-enrollments/pkg/middleware/cors"
	"github.com/noah-isme/campus-enrollments/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/campus-enrollments/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// NewEngine builds a gin engine with the common middleware chain and the
// observability routes. Service routes are added by the caller under the
// returned API group.
func NewEngine(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, docsInstance string, checks map[string]handler.ReadinessCheck) (*gin.Engine, *gin.RouterGroup) {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docsInstance)))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(ratelimit.Middleware(ratelimit.New(cfg.RateLimit)))
	return r, api
}

// Run serves h until SIGINT or SIGTERM, then drains in-flight requests.
func Run(cfg *config.Config, h http.Handler, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
