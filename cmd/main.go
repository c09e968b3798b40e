package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reflow_oven/internal/config"
	"reflow_oven/internal/engine"
	"reflow_oven/internal/handlers"
	"reflow_oven/internal/hardware"
	"reflow_oven/internal/logger"
	"reflow_oven/internal/repository"
	"reflow_oven/internal/repository/db"
	"reflow_oven/internal/server"
	"reflow_oven/internal/service"
	"reflow_oven/internal/telemetry"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(sqlDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, cleanup, err := buildEngine(cfg, log, repos)
	if err != nil {
		log.Fatalw("failed to wire hardware", "err", err)
	}
	defer cleanup()
	go eng.Run(ctx)

	services := service.NewService(cfg, repos, eng)
	apiHandler := handlers.NewHandler(services, log)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)
}

// buildEngine assembles the control loop against either the real lines or
// the simulated plant. In GPIO mode the plant still stands in for the
// thermocouple front-end, so the SSR output is teed back into it to keep
// the loop closed during bring-up.
func buildEngine(cfg *config.Config, log *logger.Logger, repos *repository.Repository) (*engine.Engine, func(), error) {
	stores := engine.Stores{
		Runs:     repos.RunRepo,
		Counters: repos.CounterRepo,
		Events:   repos.EventRepo,
		State:    repos.StateRepo,
	}

	var telem engine.Telemetry
	cleanup := func() {}
	if cfg.MQTT.Enabled {
		pub, err := telemetry.NewPublisher(cfg.MQTT, log.Named("telemetry"))
		if err != nil {
			return nil, nil, err
		}
		telem = pub
		cleanup = func() {
			if cerr := pub.Close(); cerr != nil {
				log.Errorw("failed to close mqtt publisher", "err", cerr)
			}
		}
	}

	plant := hardware.NewPlant()
	var (
		sensor   engine.Sensor = plant
		heater   engine.Heater = plant
		button   engine.ButtonInput
		notifier engine.Notifier
	)
	if cfg.GPIO.Enabled {
		gpio, err := hardware.OpenGPIO(cfg.GPIO)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		heater = heaterTee{gpio, plant}
		button = gpio
		notifier = gpio
		prev := cleanup
		cleanup = func() {
			if cerr := gpio.Close(); cerr != nil {
				log.Errorw("failed to release gpio lines", "err", cerr)
			}
			prev()
		}
	} else {
		button = hardware.NoButton{}
		notifier = hardware.NewConsoleNotifier(log.Named("notify"))
	}

	eng := engine.New(cfg, log.Named("engine"), sensor, heater, button, notifier, telem, stores)
	return eng, cleanup, nil
}

// heaterTee drives two actuators from one output, used to mirror the SSR
// state into the simulated plant.
type heaterTee struct {
	primary, shadow engine.Heater
}

func (t heaterTee) Set(on bool) error {
	if err := t.primary.Set(on); err != nil {
		return err
	}
	return t.shadow.Set(on)
}

func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks on SIGINT/SIGTERM, then stops the control loop
// (which drops the heater) before draining in-flight HTTP requests.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
