package models

import "fmt"

// PriceRange is the low/high bound of an expected move.
type PriceRange struct {
	Low  float64 `json:"low"  yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// ExpectedMove is a one-standard-deviation move over a horizon.
type ExpectedMove struct {
	Dollars float64    `json:"dollars" yaml:"dollars"`
	Percent float64    `json:"percent" yaml:"percent"`
	Range   PriceRange `json:"range"   yaml:"range"`
}

// IVCrush is the volatility drop across an event.
type IVCrush struct {
	Crush    float64 `json:"crush"     yaml:"crush"`
	CrushPct float64 `json:"crush_pct" yaml:"crush_pct"`
}

// TermPoint is one ATM IV sample of the term structure.
type TermPoint struct {
	Expiration string  `json:"expiration" yaml:"expiration"`
	ATMIV      float64 `json:"atm_iv"     yaml:"atm_iv"`
}

// IVEnvironment buckets the current IV rank (or percentile).
type IVEnvironment string

const (
	IVVeryHigh IVEnvironment = "very_high"
	IVElevated IVEnvironment = "elevated"
	IVNeutral  IVEnvironment = "neutral"
	IVLow      IVEnvironment = "low"
	IVVeryLow  IVEnvironment = "very_low"
	IVUnknown  IVEnvironment = "unknown"
)

// ExpectedMoveKey names the overview entry for a horizon, e.g. "expected_move_7d".
func ExpectedMoveKey(days int) string {
	return fmt.Sprintf("expected_move_%dd", days)
}

// ResearchOverview holds the IV picture of the underlying.
type ResearchOverview struct {
	ATMIV         *float64                `json:"atm_iv"                   yaml:"atm_iv"`
	IVRank        *float64                `json:"iv_rank"                  yaml:"iv_rank"`
	IVPercentile  *float64                `json:"iv_percentile"            yaml:"iv_percentile"`
	IVEnvironment IVEnvironment           `json:"iv_environment"           yaml:"iv_environment"`
	ExpectedMoves map[string]ExpectedMove `json:"expected_moves,omitempty" yaml:"expected_moves,omitempty"`
}

// CatalystRecord is a catalyst enriched with the expirations that bracket it.
type CatalystRecord struct {
	Type                  CatalystType `json:"type"                              yaml:"type"`
	Date                  string       `json:"date"                              yaml:"date"`
	DaysUntil             *int         `json:"days_until,omitempty"              yaml:"days_until,omitempty"`
	Name                  string       `json:"name,omitempty"                    yaml:"name,omitempty"`
	Phase                 string       `json:"phase,omitempty"                   yaml:"phase,omitempty"`
	NCTID                 string       `json:"nct_id,omitempty"                  yaml:"nct_id,omitempty"`
	RelevantExpirations   []string     `json:"relevant_expirations"              yaml:"relevant_expirations"`
	NearestPostExpiration string       `json:"nearest_post_expiration,omitempty" yaml:"nearest_post_expiration,omitempty"`
}

// StrategyIdea is a suggested structure for the current conditions.
type StrategyIdea struct {
	Strategy    string `json:"strategy"              yaml:"strategy"`
	Rationale   string `json:"rationale"             yaml:"rationale"`
	Bias        string `json:"bias"                  yaml:"bias"`
	RiskProfile string `json:"risk_profile"          yaml:"risk_profile"`
	TimingNote  string `json:"timing_note,omitempty" yaml:"timing_note,omitempty"`
}

// ResearchSummary is the combined options research output for one symbol.
type ResearchSummary struct {
	Symbol                string              `json:"symbol"                  yaml:"symbol"`
	UnderlyingPrice       float64             `json:"underlying_price"        yaml:"underlying_price"`
	Overview              ResearchOverview    `json:"overview"                yaml:"overview"`
	Catalysts             []CatalystRecord    `json:"catalysts"               yaml:"catalysts"`
	StrategyIdeas         []StrategyIdea      `json:"strategy_ideas"          yaml:"strategy_ideas"`
	ExpirationsByCatalyst map[string][]string `json:"expirations_by_catalyst" yaml:"expirations_by_catalyst"`
}
