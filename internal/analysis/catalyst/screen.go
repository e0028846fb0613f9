package catalyst

import (
	"math"
	"time"

	"github.com/seenimoa/catalystiv/internal/analysis/volatility"
	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// DefaultMaxStrikeDistancePct bounds how far from the underlying a screened strike may be.
const DefaultMaxStrikeDistancePct = 10.0

// ScreenOptions are the optional filters of ScreenBeforeEarnings.
type ScreenOptions struct {
	MinIV                *float64          // decimal; nil disables the filter
	MaxStrikeDistancePct float64           // percent of price
	OptionType           models.OptionType // empty keeps both sides
}

// DefaultScreenOptions keeps both sides within 10% of the underlying.
func DefaultScreenOptions() ScreenOptions {
	return ScreenOptions{MaxStrikeDistancePct: DefaultMaxStrikeDistancePct}
}

// ScreenBeforeEarnings narrows a chain to the contracts positioned for an
// earnings event: the first expiration strictly after the event, strikes
// near price, an optional minimum IV and an optional side. The input chain
// is never modified; the result is a fresh chain. A non-positive price
// matches no strikes.
func ScreenBeforeEarnings(chain models.Chain, earnings time.Time, price float64, opts ScreenOptions) models.Chain {
	if price <= 0 {
		return models.Chain{}
	}
	out := firstExpirationAfter(chain, earnings)
	if len(out) == 0 {
		return models.Chain{}
	}

	out = filterRows(out, func(r models.OptionRow) bool {
		return math.Abs(r.Strike-price)/price*100 <= opts.MaxStrikeDistancePct
	})
	if len(out) == 0 {
		return models.Chain{}
	}

	if opts.MinIV != nil && out.HasField(models.FieldImpliedVolatility) {
		minIV := *opts.MinIV
		out = filterRows(out, func(r models.OptionRow) bool {
			return r.ImpliedVolatility != nil && volatility.NormalizeIV(*r.ImpliedVolatility) >= minIV
		})
	}

	if opts.OptionType != "" {
		out = filterRows(out, func(r models.OptionRow) bool {
			return r.OptionType == opts.OptionType
		})
	}
	return out
}

func firstExpirationAfter(chain models.Chain, event time.Time) models.Chain {
	event = utils.DateOf(event)
	var first time.Time
	found := false
	for _, r := range chain {
		d, ok := utils.ParseDate(r.Expiration)
		if !ok || !d.After(event) {
			continue
		}
		if !found || d.Before(first) {
			first, found = d, true
		}
	}
	if !found {
		return nil
	}
	return filterRows(chain, func(r models.OptionRow) bool {
		d, ok := utils.ParseDate(r.Expiration)
		return ok && d.Equal(first)
	})
}

// filterRows copies the rows accepted by keep into a new chain.
func filterRows(chain models.Chain, keep func(models.OptionRow) bool) models.Chain {
	out := make(models.Chain, 0, len(chain))
	for _, r := range chain {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}
