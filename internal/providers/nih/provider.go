// Package nih implements the ClinicalTrials.gov (NIH) provider. It serves
// the ClinicalTrials model from the registry's public v2 API, which needs
// no credentials.
//
// Docs: https://clinicaltrials.gov/data-api/api
package nih

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phuslu/log"
	"github.com/sony/gobreaker"

	"github.com/seenimoa/catalystiv/internal/infra"
	"github.com/seenimoa/catalystiv/internal/provider"
)

const (
	providerName   = "nih"
	DefaultBaseURL = "https://clinicaltrials.gov/api/v2/studies"
)

// Config tunes the provider. Zero fields take the defaults.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	DefaultLimit    int
	BreakerFailures uint32        // consecutive failures that open the breaker
	BreakerCooldown time.Duration // how long the breaker stays open
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Timeout:         infra.DefaultTimeout,
		DefaultLimit:    defaultLimit,
		BreakerFailures: 5,
		BreakerCooldown: time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = d.BreakerFailures
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = d.BreakerCooldown
	}
	return c
}

// Provider implements provider.Provider for ClinicalTrials.gov.
type Provider struct {
	provider.BaseProvider
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// New creates the provider with DefaultConfig.
func New() *Provider {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates the provider and registers its fetchers.
func NewWithConfig(cfg Config) *Provider {
	cfg = cfg.withDefaults()
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"NIH ClinicalTrials.gov - registry of clinical studies",
			"https://clinicaltrials.gov",
			nil,
		),
		cfg:     cfg,
		client:  infra.NewHTTPClient(cfg.Timeout),
		breaker: newBreaker(cfg),
	}

	p.RegisterFetcher(newClinicalTrialsFetcher(p))
	return p
}

func newBreaker(cfg Config) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nih-clinical-trials",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A caller abandoning its own request says nothing about the registry.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

// Ping requests a single study.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGetWith(ctx, p.client, p.cfg.BaseURL+"?format=json&pageSize=1", jsonHeaders())
	if err != nil {
		return fmt.Errorf("nih ping: %w", err)
	}
	body.Close()
	return nil
}

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}
