package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/banking/infra"
	infraeventbus "github.com/amirasaad/banking/infra/eventbus"
	infrarepo "github.com/amirasaad/banking/infra/repository"
	"github.com/amirasaad/banking/pkg/app"
	"github.com/amirasaad/banking/pkg/config"
	"github.com/amirasaad/banking/pkg/domain/events"
	"github.com/amirasaad/banking/pkg/eventbus"
	"github.com/amirasaad/banking/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.Default()
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	db, err := infra.NewDatabase(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	bus, err := newEventBus(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}

	a := app.New(&app.Deps{
		Uow:      infrarepo.NewUoW(db),
		EventBus: bus,
		Logger:   logger,
	}, cfg)

	a.Scheduler.Start(context.Background())
	defer a.Scheduler.Stop()

	fiberApp := webapi.SetupApp(a)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
		"events_backend", cfg.Events.Backend,
	)
	return fiberApp.Listen(addr)
}

// newEventBus selects the bus backend from configuration: Redis Streams for
// durable fan-out, in-memory otherwise.
func newEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	if cfg.Events.Backend != "redis" {
		return infraeventbus.NewWithMemory(logger), nil
	}
	types := map[string]func() eventbus.Event{
		events.TypeTransaction: func() eventbus.Event { return &events.TransactionEvent{} },
	}
	return infraeventbus.NewWithRedis(
		cfg.Redis.URL, cfg.Events.Stream, cfg.Events.Group, types, logger)
}
