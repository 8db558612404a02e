package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/config"
	"github.com/aristath/prefill/internal/modules/audit"
	"github.com/aristath/prefill/internal/modules/clients"
	clientshandlers "github.com/aristath/prefill/internal/modules/clients/handlers"
	"github.com/aristath/prefill/internal/modules/instruments"
	instrumentshandlers "github.com/aristath/prefill/internal/modules/instruments/handlers"
	"github.com/aristath/prefill/internal/modules/marketdata"
	marketdatahandlers "github.com/aristath/prefill/internal/modules/marketdata/handlers"
	"github.com/aristath/prefill/internal/modules/orders"
	"github.com/aristath/prefill/internal/modules/prefill"
	prefillhandlers "github.com/aristath/prefill/internal/modules/prefill/handlers"
	"github.com/aristath/prefill/internal/modules/rules"
	ruleshandlers "github.com/aristath/prefill/internal/modules/rules/handlers"
	"github.com/aristath/prefill/internal/scheduler"
	"github.com/aristath/prefill/internal/server"
	"github.com/aristath/prefill/internal/services"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
//  1. Initialize databases
//  2. Initialize repositories
//  3. Initialize services
//  4. Register jobs and routes
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	InitializeRepositories(container, log)

	if err := InitializeServices(ctx, container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := RegisterJobs(container, cfg, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	RegisterRoutes(container, log)

	log.Info().Msg("Dependency injection wiring completed successfully")
	return container, nil
}

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(c *Container, log zerolog.Logger) {
	conn := c.PrefillDB.Conn()
	c.ClientRepo = clients.NewRepository(conn, log)
	c.InstrumentRepo = instruments.NewRepository(conn, log)
	c.OrderRepo = orders.NewRepository(conn, log)
	c.RulesRepo = rules.NewRepository(conn, log)
	if c.AuditDB != nil {
		c.AuditRepo = audit.NewRepository(c.AuditDB.Conn(), log)
	}
}

// InitializeServices loads the rule set, builds the engine and the prefill service
func InitializeServices(ctx context.Context, c *Container, cfg *config.Config, log zerolog.Logger) error {
	// YAML file rules replace the built-in defaults as the base; rule_config rows override that
	base, err := rules.LoadFile(cfg.RulesFile, prefill.DefaultRules())
	if err != nil {
		return fmt.Errorf("failed to load rules file: %w", err)
	}

	c.RulesService = rules.NewService(c.RulesRepo, base, log)
	current, err := c.RulesService.Init(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize rules: %w", err)
	}

	engine, err := prefill.NewEngine(current, cfg.Session)
	if err != nil {
		return fmt.Errorf("failed to build prefill engine: %w", err)
	}

	c.MarketCache = marketdata.NewCache()
	if cfg.MarketFeedURL != "" {
		c.MarketFeed = marketdata.NewFeed(cfg.MarketFeedURL, c.MarketCache, log)
	}

	// A nil *audit.Repository inside the interface would not compare equal to nil
	var sink services.AuditSink
	if c.AuditRepo != nil {
		sink = c.AuditRepo
	}

	c.PrefillService = services.NewPrefillService(
		engine,
		c.ClientRepo,
		c.InstrumentRepo,
		c.OrderRepo,
		c.MarketCache,
		sink,
		log,
	)
	c.RulesService.OnChange(c.PrefillService.SetRules)

	return nil
}

// RegisterJobs registers the maintenance jobs. An empty schedule disables a job.
func RegisterJobs(c *Container, cfg *config.Config, log zerolog.Logger) error {
	c.Scheduler = scheduler.New(log)

	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.RulesReloadSchedule, scheduler.NewReloadRulesJob(c.RulesService, log)},
		{cfg.WALCheckSchedule, scheduler.NewCheckWALCheckpointsJob(log, c.Databases()...)},
	}

	for _, j := range jobs {
		if j.schedule == "" {
			continue
		}
		if err := c.Scheduler.AddJob(j.schedule, j.job); err != nil {
			return fmt.Errorf("failed to register %s: %w", j.job.Name(), err)
		}
	}
	return nil
}

// RegisterRoutes builds the module handlers mounted under /api
func RegisterRoutes(c *Container, log zerolog.Logger) {
	var auditReader prefillhandlers.AuditReader
	if c.AuditRepo != nil {
		auditReader = c.AuditRepo
	}

	c.Routes = []server.RouteRegistrar{
		prefillhandlers.NewHandler(c.PrefillService, auditReader, log),
		ruleshandlers.NewHandler(c.RulesService, log),
		marketdatahandlers.NewHandler(c.MarketCache, log),
		clientshandlers.NewHandler(c.ClientRepo, log),
		instrumentshandlers.NewHandler(c.InstrumentRepo, log),
	}
}
