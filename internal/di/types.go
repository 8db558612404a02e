// Package di provides dependency injection wiring and initialization.
package di

import (
	"errors"

	"github.com/aristath/prefill/internal/database"
	"github.com/aristath/prefill/internal/modules/audit"
	"github.com/aristath/prefill/internal/modules/clients"
	"github.com/aristath/prefill/internal/modules/instruments"
	"github.com/aristath/prefill/internal/modules/marketdata"
	"github.com/aristath/prefill/internal/modules/orders"
	"github.com/aristath/prefill/internal/modules/rules"
	"github.com/aristath/prefill/internal/scheduler"
	"github.com/aristath/prefill/internal/server"
	"github.com/aristath/prefill/internal/services"
)

// Container holds every wired dependency of the service
type Container struct {
	// Databases
	PrefillDB *database.DB // clients, instruments, orders, rule_config
	AuditDB   *database.DB // prefill_audit, nil when auditing is disabled

	// Repositories
	ClientRepo     *clients.Repository
	InstrumentRepo *instruments.Repository
	OrderRepo      *orders.Repository
	RulesRepo      *rules.Repository
	AuditRepo      *audit.Repository

	// Services
	RulesService   *rules.Service
	PrefillService *services.PrefillService
	MarketCache    *marketdata.Cache
	MarketFeed     *marketdata.Feed // nil when MARKET_FEED_URL is unset

	Scheduler *scheduler.Scheduler

	// Modules mounted under /api
	Routes []server.RouteRegistrar
}

// Databases returns the open databases in a stable order
func (c *Container) Databases() []*database.DB {
	dbs := make([]*database.DB, 0, 2)
	for _, db := range []*database.DB{c.PrefillDB, c.AuditDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() error {
	var errs []error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
