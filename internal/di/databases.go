package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/prefill/internal/config"
	"github.com/aristath/prefill/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens and migrates the prefill database and, when enabled,
// the audit database
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// prefill.db - reference data, order history and rule overrides
	prefillDB, err := openDatabase(cfg.DataDir, "prefill", database.ProfileStandard)
	if err != nil {
		return nil, err
	}
	container.PrefillDB = prefillDB

	// audit.db - append-only record of returned suggestion sets
	if cfg.AuditEnabled {
		auditDB, err := openDatabase(cfg.DataDir, "audit", database.ProfileLedger)
		if err != nil {
			prefillDB.Close()
			return nil, err
		}
		container.AuditDB = auditDB
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Bool("audit", cfg.AuditEnabled).
		Msg("Databases initialized")

	return container, nil
}

func openDatabase(dataDir, name string, profile database.DatabaseProfile) (*database.DB, error) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database: %w", name, err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
	}
	return db, nil
}
