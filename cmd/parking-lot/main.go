package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"parking-lot/internal/config"
	"parking-lot/internal/logging"
	"parking-lot/internal/parking"
	"parking-lot/internal/server"
)

var (
	mode = flag.String("mode", "cli", "Mode to run: cli, server, or both")
	port = flag.String("port", "", "Port for HTTP server (overrides PORT)")
)

type app struct {
	cfg       *config.Config
	telemetry *parking.TelemetryProvider
	service   *parking.InstrumentedEngine
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider(ctx, cfg.OTelServiceName, cfg.OTelEndpoint, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	logging.Init(cfg.OTelServiceName, cfg.Environment, cfg.IsDevelopment())

	engine, err := parking.NewEngine(parking.Inventory{
		TwoWheel:  cfg.TwoWheelSpots,
		FourWheel: cfg.FourWheelSpots,
		Oversize:  cfg.OversizeSpots,
	}, cfg.RatePerHour)
	if err != nil {
		log.Fatalf("Failed to create parking engine: %v", err)
	}

	service, err := parking.NewInstrumentedEngine(engine, telemetryProvider)
	if err != nil {
		log.Fatalf("Failed to instrument parking engine: %v", err)
	}

	prometheus.MustRegister(parking.NewOccupancyCollector(engine))

	logging.Info(ctx, "parking engine ready",
		"capacity", engine.Status().Capacity,
		"rate_per_hour", cfg.RatePerHour,
		"mode", *mode,
	)

	a := &app{cfg: cfg, telemetry: telemetryProvider, service: service}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		a.runCLI(ctx, cancel, sigChan)
	case "server":
		a.runServer(ctx, cancel, sigChan)
	case "both":
		a.runBoth(ctx, cancel, sigChan)
	default:
		log.Fatalf("Invalid mode: %s. Must be cli, server, or both", *mode)
	}
}

func (a *app) newServer() *server.Server {
	return server.NewServer(a.cfg.Port, a.service, a.cfg.OTelServiceName, prometheus.DefaultGatherer)
}

func (a *app) runCLI(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	shell := parking.NewShell(a.service, a.telemetry, os.Stdin, os.Stdout)
	shell.Run(ctx)

	a.shutdownTelemetry()
}

func (a *app) runServer(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	srv := a.newServer()

	go func() {
		<-sigChan
		log.Println("Received shutdown signal...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting server mode on %s", srv.GetAddress())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Server error: %v", err)
	}

	a.shutdownTelemetry()
}

func (a *app) runBoth(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) {
	srv := a.newServer()

	serverDone := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", srv.GetAddress())
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell := parking.NewShell(a.service, a.telemetry, os.Stdin, os.Stdout)
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		log.Println("Received shutdown signal...")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
		}
	case <-cliDone:
		log.Println("CLI exited")
	case <-ctx.Done():
		log.Println("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	a.shutdownTelemetry()
}

func (a *app) shutdownTelemetry() {
	log.Println("Shutting down telemetry...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}
