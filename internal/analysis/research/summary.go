// Package research assembles IV metrics, catalysts and strategy ideas into
// a per-symbol options research summary, and renders it as text.
package research

import (
	"fmt"
	"sort"
	"time"

	"github.com/seenimoa/catalystiv/internal/analysis/catalyst"
	"github.com/seenimoa/catalystiv/internal/analysis/volatility"
	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// ExpectedMoveHorizons are the day counts reported in the overview.
var ExpectedMoveHorizons = []int{7, 14, 30, 45}

const (
	maxTrialCatalysts = 5
	nearCatalystDays  = 14
	missingDaysUntil  = 999

	earningsDaysBefore = 5
	earningsDaysAfter  = 7
	trialDaysBefore    = 5
	trialDaysAfter     = 14

	highIVThreshold = 70
	lowIVThreshold  = 30
)

// SummaryInput carries everything BuildSummary needs. Optional metrics are nil when unknown.
type SummaryInput struct {
	Symbol         string
	Price          float64
	Expirations    []string
	EarningsDate   *time.Time
	ClinicalTrials []models.ClinicalTrial
	ATMIV          *float64
	IVRank         *float64
	IVPercentile   *float64
}

// BuildSummary combines IV metrics, the earnings date and upcoming trial
// readouts into one research summary. It does no I/O.
func BuildSummary(in SummaryInput) models.ResearchSummary {
	s := models.ResearchSummary{
		Symbol:          in.Symbol,
		UnderlyingPrice: in.Price,
		Overview: models.ResearchOverview{
			ATMIV:         in.ATMIV,
			IVRank:        in.IVRank,
			IVPercentile:  in.IVPercentile,
			IVEnvironment: ClassifyIVEnvironment(in.IVRank, in.IVPercentile),
		},
		Catalysts:             make([]models.CatalystRecord, 0),
		ExpirationsByCatalyst: make(map[string][]string),
	}

	if in.ATMIV != nil && *in.ATMIV != 0 {
		iv := volatility.NormalizeIV(*in.ATMIV)
		s.Overview.ExpectedMoves = make(map[string]models.ExpectedMove, len(ExpectedMoveHorizons))
		for _, days := range ExpectedMoveHorizons {
			s.Overview.ExpectedMoves[models.ExpectedMoveKey(days)] = volatility.ExpectedMove(in.Price, iv, days)
		}
	}

	if in.EarningsDate != nil {
		rec := earningsCatalyst(*in.EarningsDate, in.Expirations)
		s.Catalysts = append(s.Catalysts, rec)
		s.ExpirationsByCatalyst[string(models.CatalystEarnings)] = rec.RelevantExpirations
	}

	trials := in.ClinicalTrials
	if len(trials) > maxTrialCatalysts {
		trials = trials[:maxTrialCatalysts]
	}
	for _, t := range trials {
		if rec, ok := trialCatalyst(t, in.Expirations); ok {
			s.Catalysts = append(s.Catalysts, rec)
		}
	}

	sort.SliceStable(s.Catalysts, func(i, j int) bool {
		return daysUntil(s.Catalysts[i]) < daysUntil(s.Catalysts[j])
	})

	nearCatalyst := false
	for _, c := range s.Catalysts {
		if daysUntil(c) <= nearCatalystDays {
			nearCatalyst = true
			break
		}
	}

	s.StrategyIdeas = strategyIdeas(ivMetric(in.IVRank, in.IVPercentile), nearCatalyst, len(in.Expirations))
	return s
}

func earningsCatalyst(date time.Time, expirations []string) models.CatalystRecord {
	days := utils.DaysUntil(date)
	nearest, _ := catalyst.NearestPostCatalystExpiration(expirations, date, catalyst.DefaultPostMinDays, catalyst.DefaultPostMaxDays)
	return models.CatalystRecord{
		Type:                  models.CatalystEarnings,
		Date:                  utils.FormatDate(date),
		DaysUntil:             &days,
		RelevantExpirations:   catalyst.FilterByProximity(expirations, date, earningsDaysBefore, earningsDaysAfter),
		NearestPostExpiration: nearest,
	}
}

// trialCatalyst reports false for trials without a future primary completion date.
func trialCatalyst(t models.ClinicalTrial, expirations []string) (models.CatalystRecord, bool) {
	date, ok := utils.ParseDate(t.PrimaryCompletionDate)
	if !ok {
		return models.CatalystRecord{}, false
	}
	days := utils.DaysUntil(date)
	if days <= 0 {
		return models.CatalystRecord{}, false
	}
	return models.CatalystRecord{
		Type:                models.CatalystClinicalTrial,
		Name:                t.DisplayName(),
		Phase:               t.Phase,
		Date:                utils.FormatDate(date),
		DaysUntil:           &days,
		NCTID:               t.NCTID,
		RelevantExpirations: catalyst.FilterByProximity(expirations, date, trialDaysBefore, trialDaysAfter),
	}, true
}

func daysUntil(c models.CatalystRecord) int {
	if c.DaysUntil == nil {
		return missingDaysUntil
	}
	return *c.DaysUntil
}

// ivMetric prefers IV rank and falls back to IV percentile.
func ivMetric(rank, percentile *float64) *float64 {
	if rank != nil {
		return rank
	}
	return percentile
}

// ClassifyIVEnvironment buckets the IV rank, or the percentile when the rank is unknown.
func ClassifyIVEnvironment(rank, percentile *float64) models.IVEnvironment {
	m := ivMetric(rank, percentile)
	if m == nil {
		return models.IVUnknown
	}
	switch v := *m; {
	case v >= 80:
		return models.IVVeryHigh
	case v >= 60:
		return models.IVElevated
	case v >= 40:
		return models.IVNeutral
	case v >= 20:
		return models.IVLow
	default:
		return models.IVVeryLow
	}
}

func strategyIdeas(metric *float64, nearCatalyst bool, expirationCount int) []models.StrategyIdea {
	ideas := make([]models.StrategyIdea, 0)

	if metric != nil {
		v := *metric
		switch {
		case v >= highIVThreshold:
			ideas = append(ideas,
				models.StrategyIdea{
					Strategy:    "iron_condor",
					Rationale:   fmt.Sprintf("IV Rank at %.0f%% suggests elevated premium levels", v),
					Bias:        "neutral",
					RiskProfile: "defined_risk",
				},
				models.StrategyIdea{
					Strategy:    "short_strangle",
					Rationale:   "Sell premium when IV is rich",
					Bias:        "neutral",
					RiskProfile: "undefined_risk",
				},
			)
			if nearCatalyst {
				ideas = append(ideas, models.StrategyIdea{
					Strategy:    "short_straddle_pre_earnings",
					Rationale:   "Capture IV crush post-catalyst, but manage gamma risk",
					Bias:        "neutral",
					RiskProfile: "high_risk",
					TimingNote:  "Enter 1-2 days before, exit immediately after",
				})
			}
		case v <= lowIVThreshold:
			ideas = append(ideas,
				models.StrategyIdea{
					Strategy:    "long_straddle",
					Rationale:   fmt.Sprintf("IV Rank at %.0f%% suggests cheap premium", v),
					Bias:        "neutral",
					RiskProfile: "defined_risk",
				},
				models.StrategyIdea{
					Strategy:    "calendar_spread",
					Rationale:   "Buy cheap front-month IV, sell back-month",
					Bias:        "directional",
					RiskProfile: "defined_risk",
				},
			)
			if nearCatalyst {
				ideas = append(ideas, models.StrategyIdea{
					Strategy:    "long_straddle_pre_catalyst",
					Rationale:   "Buy cheap premium before catalyst-driven IV expansion",
					Bias:        "neutral",
					RiskProfile: "defined_risk",
					TimingNote:  "Enter 5-10 days before, exit before or right after",
				})
			}
		default:
			ideas = append(ideas, models.StrategyIdea{
				Strategy:    "vertical_spread",
				Rationale:   "Neutral IV environment favors directional plays with defined risk",
				Bias:        "directional",
				RiskProfile: "defined_risk",
			})
		}
	}

	if nearCatalyst && expirationCount > 2 {
		ideas = append(ideas, models.StrategyIdea{
			Strategy:    "post_catalyst_expiration",
			Rationale:   "Target first expiration after catalyst for maximum theta capture",
			Bias:        "neutral",
			RiskProfile: "varies",
		})
	}
	return ideas
}
