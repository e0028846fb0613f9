// Package datasource assembles research summaries from caller-supplied option
// data and the clinical trials served by the provider registry.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/catalystiv/internal/analysis/research"
	"github.com/seenimoa/catalystiv/internal/analysis/volatility"
	"github.com/seenimoa/catalystiv/internal/provider"
	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// DefaultConcurrency bounds ResearchBatch when no limit is configured.
const DefaultConcurrency = 4

// ResearchRequest is one symbol's research input.
type ResearchRequest struct {
	Symbol          string                 `json:"symbol" yaml:"symbol" toml:"symbol" validate:"required"`
	UnderlyingPrice float64                `json:"underlying_price" yaml:"underlying_price" toml:"underlying_price" validate:"gt=0"`
	Chain           models.Chain           `json:"chain,omitempty" yaml:"chain,omitempty" toml:"chain,omitempty"`
	Expirations     []string               `json:"expirations,omitempty" yaml:"expirations,omitempty" toml:"expirations,omitempty"`
	EarningsDate    string                 `json:"earnings_date,omitempty" yaml:"earnings_date,omitempty" toml:"earnings_date,omitempty"`
	Sponsor         string                 `json:"sponsor,omitempty" yaml:"sponsor,omitempty" toml:"sponsor,omitempty"`
	TrialLimit      int                    `json:"trial_limit,omitempty" yaml:"trial_limit,omitempty" toml:"trial_limit,omitempty" validate:"gte=0,lte=1000"`
	ClinicalTrials  []models.ClinicalTrial `json:"clinical_trials,omitempty" yaml:"clinical_trials,omitempty" toml:"clinical_trials,omitempty"`
	ATMIV           *float64               `json:"atm_iv,omitempty" yaml:"atm_iv,omitempty" toml:"atm_iv,omitempty"`
	IVRank          *float64               `json:"iv_rank,omitempty" yaml:"iv_rank,omitempty" toml:"iv_rank,omitempty"`
	IVPercentile    *float64               `json:"iv_percentile,omitempty" yaml:"iv_percentile,omitempty" toml:"iv_percentile,omitempty"`
}

// Aggregator fetches trial catalysts through the registry and combines them
// with the caller's option data.
type Aggregator struct {
	registry    *provider.Registry
	concurrency int
}

// NewAggregator creates an aggregator. A nil registry means the global one.
func NewAggregator(reg *provider.Registry, concurrency int) *Aggregator {
	if reg == nil {
		reg = provider.Global()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Aggregator{registry: reg, concurrency: concurrency}
}

// Registry returns the provider registry used by this aggregator.
func (a *Aggregator) Registry() *provider.Registry {
	return a.registry
}

// Research builds the summary for one symbol. When a sponsor is named the
// trials are fetched alongside the IV analytics; an empty registry answer
// just means there are no trial catalysts. Any other fetch failure is
// returned.
func (a *Aggregator) Research(ctx context.Context, req ResearchRequest) (models.ResearchSummary, error) {
	symbol := utils.NormalizeSymbol(req.Symbol)

	var earnings *time.Time
	if req.EarningsDate != "" {
		d, err := utils.ParseDateStrict(req.EarningsDate)
		if err != nil {
			return models.ResearchSummary{}, &provider.ErrInvalidParam{
				Param:  "earnings_date",
				Value:  req.EarningsDate,
				Detail: "Invalid date format. Use YYYY-MM-DD",
			}
		}
		earnings = &d
	}

	in := research.SummaryInput{
		Symbol:         symbol,
		Price:          req.UnderlyingPrice,
		Expirations:    req.Expirations,
		EarningsDate:   earnings,
		ClinicalTrials: req.ClinicalTrials,
		ATMIV:          req.ATMIV,
		IVRank:         req.IVRank,
		IVPercentile:   req.IVPercentile,
	}
	if len(in.Expirations) == 0 {
		in.Expirations = req.Chain.Expirations()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	if req.Sponsor != "" {
		g.Go(func() error {
			trials, err := a.fetchTrials(gctx, symbol, req.Sponsor, req.TrialLimit)
			if err != nil {
				return err
			}
			mu.Lock()
			in.ClinicalTrials = append(trials, in.ClinicalTrials...)
			mu.Unlock()
			return nil
		})
	}

	if in.ATMIV == nil && len(req.Chain) > 0 {
		g.Go(func() error {
			iv, ok := volatility.ATMIV(req.Chain, req.UnderlyingPrice, "")
			if !ok {
				return nil
			}
			mu.Lock()
			in.ATMIV = &iv
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.ResearchSummary{}, err
	}

	s := research.BuildSummary(in)
	log.Info().Str("symbol", symbol).Int("catalysts", len(s.Catalysts)).Int("trials", len(in.ClinicalTrials)).Msg("research summary built")
	return s, nil
}

// ResearchBatch runs Research for every request with bounded concurrency.
// Results keep the order of reqs. The first failure cancels the rest.
func (a *Aggregator) ResearchBatch(ctx context.Context, reqs []ResearchRequest) ([]models.ResearchSummary, error) {
	out := make([]models.ResearchSummary, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range reqs {
		g.Go(func() error {
			s, err := a.Research(gctx, reqs[i])
			if err != nil {
				return fmt.Errorf("%s: %w", reqs[i].Symbol, err)
			}
			out[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchTrials queries the registry's ClinicalTrials model. An empty answer
// surfaces as *provider.ErrEmptyData.
func (a *Aggregator) FetchTrials(ctx context.Context, params provider.QueryParams) ([]models.ClinicalTrial, error) {
	result, err := a.registry.Fetch(ctx, provider.ModelClinicalTrials, params)
	if err != nil {
		return nil, err
	}
	trials, ok := result.Data.([]models.ClinicalTrial)
	if !ok {
		return nil, fmt.Errorf("provider %q returned %T for %s", result.Provider, result.Data, provider.ModelClinicalTrials)
	}
	return trials, nil
}

func (a *Aggregator) fetchTrials(ctx context.Context, symbol, sponsor string, limit int) ([]models.ClinicalTrial, error) {
	params := provider.QueryParams{
		provider.ParamSymbol:  symbol,
		provider.ParamSponsor: sponsor,
	}
	if limit > 0 {
		params[provider.ParamLimit] = strconv.Itoa(limit)
	}

	trials, err := a.FetchTrials(ctx, params)
	var empty *provider.ErrEmptyData
	if errors.As(err, &empty) {
		log.Debug().Str("symbol", symbol).Str("sponsor", sponsor).Msg(empty.Error())
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("clinical trials: %w", err)
	}
	return trials, nil
}
