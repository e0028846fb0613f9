package derivatives

import (
	"fmt"
	"math"

	"github.com/seenimoa/catalystiv/internal/analysis/catalyst"
	"github.com/seenimoa/catalystiv/internal/analysis/volatility"
	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// Scoring fallbacks when the chain carries less than the score needs.
const (
	defaultIVRank      = 50.0
	defaultScoringDTE  = 30
	defaultScoringIV   = 0.3
	defaultMovePctNoIV = 5.0
)

// CatalystScreenParams configure CatalystScreen.
type CatalystScreenParams struct {
	CatalystDate         string   // strict YYYY-MM-DD
	UnderlyingPrice      *float64 // falls back to the first row's underlying_price
	MinIV                *float64
	MaxStrikeDistancePct *float64 // default 10
	OptionType           models.OptionType
	IncludeScoring       *bool    // nil means score
	IVRank               *float64 // used for scoring, default 50
}

// CatalystScreen screens a chain for the first expiration after a catalyst
// and, when asked, scores every surviving row with its own IV and DTE.
func CatalystScreen(chain models.Chain, p CatalystScreenParams) (models.Chain, error) {
	if len(chain) == 0 {
		return nil, invalid("data", errNoData)
	}

	catalystDate, err := utils.ParseDateStrict(p.CatalystDate)
	if err != nil {
		return nil, invalid("catalyst_date", fmt.Sprintf("Invalid date format. Use YYYY-MM-DD: %q", p.CatalystDate))
	}

	price, ok := resolvePrice(chain, p.UnderlyingPrice)
	if !ok {
		return nil, invalid("underlying_price", "Underlying price is required.")
	}

	if p.OptionType != "" && !p.OptionType.Valid() {
		return nil, invalid("option_type", fmt.Sprintf("Invalid option_type %q. Choose from call, put.", p.OptionType))
	}

	opts := catalyst.DefaultScreenOptions()
	opts.MinIV = p.MinIV
	opts.OptionType = p.OptionType
	if p.MaxStrikeDistancePct != nil {
		opts.MaxStrikeDistancePct = *p.MaxStrikeDistancePct
	}

	screened := catalyst.ScreenBeforeEarnings(chain, catalystDate, price, opts)
	if len(screened) == 0 || (p.IncludeScoring != nil && !*p.IncludeScoring) {
		return screened, nil
	}

	ivRank := defaultIVRank
	if p.IVRank != nil {
		ivRank = *p.IVRank
	}
	fallbackIV := defaultScoringIV
	if atm, ok := volatility.ATMIV(chain, price, ""); ok && atm != 0 {
		fallbackIV = atm
	}
	daysToCatalyst := utils.DaysUntil(catalystDate)

	for i := range screened {
		row := &screened[i]

		dte := defaultScoringDTE
		if exp, ok := utils.ParseDate(row.Expiration); ok {
			dte = utils.DaysUntil(exp)
		}

		iv := fallbackIV
		if row.ImpliedVolatility != nil {
			iv = *row.ImpliedVolatility
		}
		iv = volatility.NormalizeIV(iv)

		movePct := defaultMovePctNoIV
		if iv != 0 {
			movePct = iv * math.Sqrt(math.Max(float64(dte), 0)/volatility.DaysPerYear) * 100
		}

		score := catalyst.ScorePlay(movePct, ivRank, daysToCatalyst, dte)
		row.CatalystScore = models.Float(score.CompositeScore)
		row.Recommendation = score.Recommendation
	}
	return screened, nil
}
