// Package providers initializes and registers the concrete data providers
// with a provider registry.
package providers

import (
	"time"

	"github.com/seenimoa/catalystiv/internal/config"
	"github.com/seenimoa/catalystiv/internal/provider"
	"github.com/seenimoa/catalystiv/internal/providers/nih"
)

// RegisterAll registers every available provider with the global registry.
func RegisterAll(cfg *config.Config) error {
	return RegisterAllTo(provider.Global(), cfg)
}

// RegisterAllTo registers every available provider to the given registry.
// A nil cfg means the built-in defaults.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}

	// --- ClinicalTrials.gov (free, no API key) ---
	ct := nih.NewWithConfig(NIHConfig(cfg.NIH))
	if err := ct.Init(nil); err != nil {
		return err
	}
	return reg.Register(ct)
}

// NIHConfig converts the file/env settings into provider settings.
func NIHConfig(c config.NIHConfig) nih.Config {
	cfg := nih.Config{
		BaseURL:         c.BaseURL,
		Timeout:         time.Duration(c.TimeoutSec) * time.Second,
		DefaultLimit:    c.DefaultLimit,
		BreakerCooldown: time.Duration(c.BreakerCooldownSec) * time.Second,
	}
	if c.BreakerFailures > 0 {
		cfg.BreakerFailures = uint32(c.BreakerFailures)
	}
	return cfg
}
