// cmd/activity-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mergington-activities/internal/analytics"
	"mergington-activities/internal/api"
	"mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/enrollment"
	"mergington-activities/internal/events"
	"mergington-activities/pkg/registry"

	"go.uber.org/zap"
)

const serviceName = "activity-server"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": serviceName,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting activity server...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(serviceName)
	defer obs.Shutdown()

	if cfg.Tracing.Enabled {
		tracing, err := observability.NewTracing(observability.TracingConfig{
			ServiceName:    serviceName,
			ServiceVersion: cfg.App.Version,
			Endpoint:       cfg.Tracing.JaegerEndpoint,
			SampleRatio:    cfg.Tracing.SampleRatio,
		})
		if err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		} else {
			obs.WithTracing(tracing, serviceName)
			zapLog.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.JaegerEndpoint))
		}
	}

	ctx := context.Background()

	// --- Seed the registry ---
	seed, fellBack, err := registry.LoadOrDefault(cfg.Registry.SeedPath)
	if err != nil {
		zapLog.Fatal("activity seed failed", zap.Error(err), zap.String("path", cfg.Registry.SeedPath))
	}
	if fellBack {
		zapLog.Warn("Seed file not found, using built-in activities",
			zap.String("path", cfg.Registry.SeedPath))
	}
	reg := enrollment.NewRegistry(seed)
	zapLog.Info("Activity registry seeded",
		zap.Int("activities", len(seed.Activities)),
		zap.String("seedVersion", seed.Version),
	)

	// --- Event sinks ---
	fanout := events.NewFanout()

	var pg *database.PostgresClient
	if cfg.Audit.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Error("audit log disabled", zap.Error(err))
		} else {
			defer pg.Close()
			audit := events.NewAuditLog(pg.DB)
			if err := audit.EnsureSchema(ctx); err != nil {
				zapLog.Error("audit log disabled", zap.Error(err))
			} else {
				fanout.Add("audit", audit)
				zapLog.Info("PostgreSQL audit log enabled")
			}
		}
	}

	if cfg.Notifications.Events.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Error("event topic disabled", zap.Error(err))
		} else {
			fanout.Add("sns", events.NewSNSPublisher(snsClient, cfg.Notifications.Events.TopicARN))
			zapLog.Info("SNS event topic enabled", zap.String("topic", cfg.Notifications.Events.TopicARN))
		}
	}

	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Error("confirmation email disabled", zap.Error(err))
		} else {
			fanout.Add("email", events.NewEmailNotifier(sesClient, cfg.Notifications.Email.FromEmail))
			zapLog.Info("SES confirmation email enabled")
		}
	}

	var publisher events.Publisher = events.Nop{}
	if fanout.Len() > 0 {
		publisher = fanout
	}

	enrollSvc := enrollment.NewService(reg, publisher, log, config.GetDuration(cfg.Notifications.Timeout)).
		WithAsyncPublish(cfg.Notifications.QueueSize)

	// --- Analytics, optionally cached in Redis ---
	analyticsSvc := analytics.NewService(reg, analytics.Options{
		HoursPerSession: cfg.Registry.HoursPerSession,
		AttendanceRate:  cfg.Registry.AttendanceRate,
		CompletionRate:  cfg.Registry.CompletionRate,
	}, log)

	if cfg.Cache.Enabled {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Error("analytics cache disabled", zap.Error(err))
		} else {
			defer redis.Close()
			analyticsSvc.WithCache(redis.Client, config.GetDuration(cfg.Cache.TTL))
			zapLog.Info("Redis analytics cache enabled")
		}
	}

	// --- HTTP ---
	router := api.NewRouter(api.RouterConfig{
		StaticDir:      cfg.Server.StaticDir,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	}, api.Dependencies{
		Enrollment: enrollSvc,
		Analytics:  analyticsSvc,
		Obs:        obs,
		Logger:     log,
	})

	srv := api.NewServer(api.ServerConfig{
		Address:      cfg.Server.Address,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		IdleTimeout:  config.GetDuration(cfg.Server.IdleTimeout),
	}, router)

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	enrollSvc.Close()

	zapLog.Info("Activity server stopped gracefully")
}
