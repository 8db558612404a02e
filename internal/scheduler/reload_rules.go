package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/prefill/internal/modules/prefill"
	"github.com/rs/zerolog"
)

// RulesReloader re-reads persisted rule overrides and publishes them to listeners
type RulesReloader interface {
	Reload(ctx context.Context) (prefill.Rules, error)
}

// ReloadRulesJob picks up rule_config rows edited outside the HTTP API
type ReloadRulesJob struct {
	rules   RulesReloader
	timeout time.Duration
	log     zerolog.Logger
}

// NewReloadRulesJob creates a new ReloadRulesJob
func NewReloadRulesJob(rules RulesReloader, log zerolog.Logger) *ReloadRulesJob {
	return &ReloadRulesJob{
		rules:   rules,
		timeout: 10 * time.Second,
		log:     log.With().Str("job", "reload_rules").Logger(),
	}
}

// Name returns the job name
func (j *ReloadRulesJob) Name() string {
	return "reload_rules"
}

// Run executes the reload
func (j *ReloadRulesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	rules, err := j.rules.Reload(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload rules: %w", err)
	}

	j.log.Debug().
		Float64("urgency_baseline", rules.Urgency.Baseline).
		Msg("Rules reloaded")
	return nil
}
