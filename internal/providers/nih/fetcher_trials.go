package nih

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phuslu/log"

	"github.com/seenimoa/catalystiv/internal/infra"
	"github.com/seenimoa/catalystiv/internal/provider"
)

const (
	msgNoTrials        = "No clinical trials found for the given query."
	msgNoTrialsInRange = "No clinical trials found matching the date criteria."
)

// ---- ClinicalTrials fetcher ----

type clinicalTrialsFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newClinicalTrialsFetcher(p *Provider) *clinicalTrialsFetcher {
	return &clinicalTrialsFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelClinicalTrials,
			"Clinical trials by sponsor, condition or intervention, sorted by primary completion date",
			nil,
			[]string{
				provider.ParamSymbol, provider.ParamSponsor, provider.ParamCondition,
				provider.ParamIntervention, provider.ParamPhase, provider.ParamStatus,
				provider.ParamStudyType, provider.ParamStartDate, provider.ParamEndDate,
				provider.ParamLimit,
			},
		),
		p: p,
	}
}

// Fetch returns []models.ClinicalTrial. A failed request is treated as an
// empty registry answer and reported as *provider.ErrEmptyData.
func (f *clinicalTrialsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	q, err := QueryFromParams(params)
	if err != nil {
		return nil, err
	}

	studies := f.p.fetchStudies(ctx, q)
	if len(studies) == 0 {
		return nil, &provider.ErrEmptyData{Message: msgNoTrials}
	}

	trials := filterByCompletion(transformStudies(studies), q.StartDate, q.EndDate)
	if len(trials) == 0 {
		return nil, &provider.ErrEmptyData{Message: msgNoTrialsInRange}
	}
	sortByCompletion(trials)

	log.Debug().Int("studies", len(studies)).Int("trials", len(trials)).Msg("clinical trials fetched")
	return newResult(trials), nil
}

// fetchStudies makes the single registry request through the breaker. It
// never retries; every failure collapses to nil.
func (p *Provider) fetchStudies(ctx context.Context, q TrialQuery) []study {
	url := p.cfg.BaseURL + "?" + buildQuery(q, p.cfg.DefaultLimit).Encode()
	log.Debug().Str("url", url).Msg("querying clinical trials registry")

	res, err := p.breaker.Execute(func() (interface{}, error) {
		return p.getStudies(ctx, url)
	})
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("clinical trials request failed")
		return nil
	}
	resp, ok := res.(*studiesResponse)
	if !ok || resp == nil {
		return nil
	}
	return resp.Studies
}

func (p *Provider) getStudies(ctx context.Context, url string) (*studiesResponse, error) {
	body, _, err := infra.DoGetWith(ctx, p.client, url, jsonHeaders())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp studiesResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parse clinical trials JSON: %w", err)
	}
	return &resp, nil
}
