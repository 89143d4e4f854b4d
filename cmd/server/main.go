package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rhyrak/go-enroll/internal/config"
	"github.com/rhyrak/go-enroll/internal/csvio"
	"github.com/rhyrak/go-enroll/internal/enrollment"
	"github.com/rhyrak/go-enroll/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := csvio.LoadCatalog(cfg.Enrollment)
	if err != nil {
		logger.Fatal("loading catalog failed", zap.Error(err))
	}

	var enrollments *store.EnrollmentStore
	var directory *enrollment.Directory
	if cfg.DatabaseURL != "" {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("connecting to database failed", zap.Error(err))
		}
		defer pool.Close()
		enrollments = store.NewEnrollmentStore(pool)
		if err := enrollments.EnsureSchema(ctx); err != nil {
			logger.Fatal("creating schema failed", zap.Error(err))
		}
		rows, err := enrollments.Load(ctx)
		if err != nil {
			logger.Fatal("loading enrollments failed", zap.Error(err))
		}
		if len(rows) > 0 {
			if directory, err = csvio.BuildDirectory(catalog, rows); err != nil {
				logger.Fatal("stored enrollments are invalid", zap.Error(err))
			}
			logger.Info("enrollments loaded from database", zap.Int("rows", len(rows)))
		}
	}
	if directory == nil {
		if directory, err = csvio.LoadDirectory(cfg.Enrollment, catalog); err != nil {
			logger.Fatal("loading students failed", zap.Error(err))
		}
	}
	if valid, report := enrollment.Validate(catalog, directory); !valid {
		logger.Fatal("loaded state is inconsistent", zap.String("report", report))
	}
	logger.Info("state loaded",
		zap.Int("classes", catalog.Len()),
		zap.Int("students", directory.Len()))

	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &server{
		engine: enrollment.NewEngine(catalog, directory, cfg.Enrollment, logger),
		store:  enrollments,
		cfg:    cfg.Enrollment,
		logger: logger,
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(srv),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown error", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("http server error", zap.Error(err))
	}
}
