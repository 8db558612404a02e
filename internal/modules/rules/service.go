package rules

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/modules/prefill"
)

// ErrInvalidRules wraps a configuration that fails prefill.Rules validation
var ErrInvalidRules = errors.New("invalid rule configuration")

// Listener receives every successfully loaded configuration
type Listener func(prefill.Rules) error

// Service owns the layered rule configuration: compiled defaults, the optional
// rules file (both folded into base) and the rule_config rows on top.
type Service struct {
	repo *Repository
	base prefill.Rules
	log  zerolog.Logger

	mu        sync.Mutex
	listeners []Listener
}

// NewService creates a rules service over repo with base as factory defaults
func NewService(repo *Repository, base prefill.Rules, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		base: base,
		log:  log.With().Str("service", "rules").Logger(),
	}
}

// OnChange registers fn to be called after every reload
func (s *Service) OnChange(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Base returns the factory defaults
func (s *Service) Base() prefill.Rules {
	return s.base
}

// Init seeds missing rows and performs the first load
func (s *Service) Init(ctx context.Context) (prefill.Rules, error) {
	if _, err := s.repo.Seed(ctx, s.base); err != nil {
		return s.base, err
	}
	return s.Reload(ctx)
}

// Current returns the effective configuration without notifying listeners
func (s *Service) Current(ctx context.Context) (prefill.Rules, error) {
	return s.repo.LoadRules(ctx, s.base)
}

// Reload reads the stored rows, validates the result and notifies listeners.
// An invalid stored configuration is rejected and listeners keep the previous one.
func (s *Service) Reload(ctx context.Context) (prefill.Rules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.repo.LoadRules(ctx, s.base)
	if err != nil {
		return s.base, err
	}
	if err := rules.Validate(); err != nil {
		return s.base, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	for _, fn := range s.listeners {
		if err := fn(rules); err != nil {
			return rules, fmt.Errorf("rules listener failed: %w", err)
		}
	}
	s.log.Debug().Msg("Rule config loaded")
	return rules, nil
}

// Update validates values against the current configuration, stores them and
// reloads. Unknown keys reject the whole update.
func (s *Service) Update(ctx context.Context, values map[string]float64) (int, error) {
	var unknown []string
	for key := range values {
		if _, ok := s.base.Get(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return 0, fmt.Errorf("%w: %v", prefill.ErrUnknownRule, unknown)
	}

	current, err := s.Current(ctx)
	if err != nil {
		return 0, err
	}
	candidate, _ := current.WithOverrides(values)
	if err := candidate.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	n, err := s.repo.UpdateMany(ctx, values)
	if err != nil {
		return 0, err
	}
	if _, err := s.Reload(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// Reset restores the factory defaults and reloads
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.ResetToDefaults(ctx, s.base); err != nil {
		return err
	}
	_, err := s.Reload(ctx)
	return err
}

// Params returns every stored parameter
func (s *Service) Params(ctx context.Context) ([]prefill.Param, error) {
	return s.repo.GetAll(ctx)
}

// Category returns the stored parameters of one category
func (s *Service) Category(ctx context.Context, category string) ([]prefill.Param, error) {
	return s.repo.GetByCategory(ctx, category)
}

// Categories lists the stored categories
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}
