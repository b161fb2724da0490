package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"agrisense/config"
	"agrisense/database"
	"agrisense/pkg/apperr"
	"agrisense/pkg/climate"
	"agrisense/pkg/observability"
	"agrisense/router"

	// Field
	fieldCtrlImp "agrisense/pkg/field/controllerImp"
	fieldRepoImp "agrisense/pkg/field/repositoryImp"
	fieldSvcImp "agrisense/pkg/field/serviceImp"

	// Catalog
	catalogCtrlImp "agrisense/pkg/catalog/controllerImp"
	catalogRepoImp "agrisense/pkg/catalog/repositoryImp"
	catalogSvcImp "agrisense/pkg/catalog/serviceImp"

	// Crop
	cropCtrlImp "agrisense/pkg/crop/controllerImp"
	cropRepoImp "agrisense/pkg/crop/repositoryImp"
	cropSvcImp "agrisense/pkg/crop/serviceImp"

	// Devices + telemetry
	deviceCtrlImp "agrisense/pkg/device/controllerImp"
	deviceRepoImp "agrisense/pkg/device/repositoryImp"
	deviceSvcImp "agrisense/pkg/device/serviceImp"
	readingCtrlImp "agrisense/pkg/reading/controllerImp"
	readingRepoImp "agrisense/pkg/reading/repositoryImp"
	readingSvcImp "agrisense/pkg/reading/serviceImp"
	"agrisense/pkg/telemetry/kafka"
	"agrisense/pkg/telemetry/lastseen"
	"agrisense/pkg/telemetry/mqtt"

	// Auth + Health
	authCtrlImp "agrisense/pkg/auth/controllerImp"
	healthCtrlImp "agrisense/pkg/health/controllerImp"
)

func main() {
	// 1) Config + logging
	cfg := config.Load()
	logger := observability.SetupLogging(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// 2) DB + automigrate
	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	var checks []healthCtrlImp.Check

	// 3) Optional telemetry collaborators
	var seen lastseen.Store
	if cfg.RedisAddr != "" {
		rs := lastseen.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}), "")
		seen = rs
		checks = append(checks, healthCtrlImp.Check{Name: "redis", Probe: rs.Ping})
		slog.Info("last-seen cache enabled", "addr", cfg.RedisAddr)
	} else {
		seen = lastseen.NewMemory()
	}
	readingDeps := readingSvcImp.Deps{Clock: clock, LastSeen: seen, Metrics: metrics}
	var kw *kafka.Writer
	if len(cfg.KafkaBrokers) > 0 {
		kw = kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaReadingsTopic)
		readingDeps.Publisher = kw
		slog.Info("publishing readings", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReadingsTopic)
	}

	// 4) Repos/Services/Controllers
	fRepo := fieldRepoImp.New(db)
	cRepo := catalogRepoImp.New(db)
	crRepo := cropRepoImp.New(db)
	dRepo := deviceRepoImp.New(db)
	rRepo := readingRepoImp.New(db)

	cropSvc := cropSvcImp.NewCropService(crRepo, fRepo, cRepo, clock)
	readingSvc := readingSvcImp.NewReadingService(rRepo, dRepo, readingDeps)
	deviceSvc := deviceSvcImp.NewDeviceService(dRepo, fRepo, rRepo, deviceSvcImp.Deps{
		Clock: clock, LastSeen: seen, Metrics: metrics, Tolerance: cfg.LivenessTolerance,
	})
	frost := climate.NewEvaluator(cropSvc, rRepo, cfg.FrostWindow, clock, metrics)

	var mq *mqtt.Client
	if cfg.MQTTBrokerURL != "" {
		mq, err = mqtt.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			slog.Error("mqtt connect", "broker", cfg.MQTTBrokerURL, "error", err)
			os.Exit(1)
		}
		ing := mqtt.NewIngestor(cfg.MQTTTopicPrefix, readingSvc)
		if err := ing.Start(mq); err != nil {
			slog.Error("mqtt subscribe", "topic", ing.Topic(), "error", err)
			os.Exit(1)
		}
		checks = append(checks, healthCtrlImp.Check{Name: "mqtt", Probe: func(context.Context) error {
			if !mq.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		}})
		slog.Info("mqtt ingest subscribed", "topic", ing.Topic())
	}

	// 5) Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Use(echoMiddleware.Recover())
	e.Use(observability.RequestLogger(logger))

	r := router.New(
		e,
		router.Options{DevUserID: cfg.DevUserID, RequireUser: cfg.RequireUser},
		fieldCtrlImp.New(fieldSvcImp.NewFieldService(fRepo)),
		catalogCtrlImp.New(catalogSvcImp.NewCatalogService(cRepo)),
		cropCtrlImp.New(cropSvc, frost),
		deviceCtrlImp.New(deviceSvc),
		readingCtrlImp.New(readingSvc),
		authCtrlImp.NewAuthController(cfg.DevUserID),
		healthCtrlImp.NewHealthCtrl(db, checks...),
	)

	// 6) Start, then drain on SIGINT/SIGTERM
	go func() {
		slog.Info("listening", "port", cfg.Port)
		if err := r.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	mq.Close()
	if kw != nil {
		if err := kw.Close(); err != nil {
			slog.Warn("kafka writer close", "error", err)
		}
	}
	slog.Info("stopped")
}
