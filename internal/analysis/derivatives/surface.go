package derivatives

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// Surface selections.
const (
	SelectOTM   = "otm"
	SelectITM   = "itm"
	SelectCalls = "calls"
	SelectPuts  = "puts"
)

// SurfaceParams filter a chain for a volatility surface. Nil pointers disable a filter.
type SurfaceParams struct {
	Target           string   // numeric column to report, default implied_volatility
	UnderlyingPrice  *float64 // falls back to the first row's underlying_price
	OptionType       string   // otm (default), itm, calls or puts
	DTEMin           *int
	DTEMax           *int
	Moneyness        *float64 // percent band around the underlying, 0–100
	StrikeMin        *float64
	StrikeMax        *float64
	OpenInterestOnly bool
	VolumeOnly       bool
}

// SurfacePoint is one projected row of the surface. It serializes with the
// target column under its own name.
type SurfacePoint struct {
	Expiration   string
	Strike       float64
	OptionType   models.OptionType
	DTE          int
	Target       string
	Value        float64
	OpenInterest int64
	Volume       int64
}

func (p SurfacePoint) fields() map[string]any {
	return map[string]any{
		"expiration":    p.Expiration,
		"strike":        p.Strike,
		"option_type":   p.OptionType,
		"dte":           p.DTE,
		p.Target:        p.Value,
		"open_interest": p.OpenInterest,
		"volume":        p.Volume,
	}
}

func (p SurfacePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.fields())
}

func (p SurfacePoint) MarshalYAML() (any, error) {
	return p.fields(), nil
}

// Surface filters and projects a chain for a volatility (or other target)
// surface. Rows need dte ≥ 0 and a positive target value; dte is derived
// from the expiration when the row has none.
func Surface(chain models.Chain, p SurfaceParams) ([]SurfacePoint, error) {
	if len(chain) == 0 {
		return nil, invalid("data", errNoData)
	}
	target := p.Target
	if target == "" {
		target = models.FieldImpliedVolatility
	}
	if !chain.HasField(target) {
		return nil, invalid("target", fmt.Sprintf("No %s field found.", target))
	}

	selection := p.OptionType
	if selection == "" {
		selection = SelectOTM
	}
	switch selection {
	case SelectOTM, SelectITM, SelectCalls, SelectPuts:
	default:
		return nil, invalid("option_type", fmt.Sprintf("Invalid option_type %q. Choose from otm, itm, calls, puts.", selection))
	}
	if p.Moneyness != nil && (*p.Moneyness < 0 || *p.Moneyness > 100) {
		return nil, invalid("moneyness", "Moneyness must be between 0 and 100.")
	}

	price, hasPrice := resolvePrice(chain, p.UnderlyingPrice)
	needsPrice := selection == SelectOTM || selection == SelectITM
	if needsPrice && !hasPrice {
		return nil, invalid("underlying_price", "Underlying price is required for OTM/ITM filtering.")
	}
	if p.Moneyness != nil && *p.Moneyness > 0 && !hasPrice {
		return nil, invalid("underlying_price", "Underlying price is required for moneyness filtering.")
	}

	points := make([]SurfacePoint, 0, len(chain))
	for _, r := range chain {
		pt, ok := project(r, target)
		if !ok || !p.keep(pt, price) {
			continue
		}
		switch selection {
		case SelectOTM:
			if (pt.OptionType == models.Call && pt.Strike > price) || (pt.OptionType == models.Put && pt.Strike < price) {
				points = append(points, pt)
			}
		case SelectITM:
			if (pt.OptionType == models.Call && pt.Strike < price) || (pt.OptionType == models.Put && pt.Strike > price) {
				points = append(points, pt)
			}
		case SelectCalls:
			if pt.OptionType == models.Call {
				points = append(points, pt)
			}
		case SelectPuts:
			if pt.OptionType == models.Put {
				points = append(points, pt)
			}
		}
	}

	if needsPrice {
		sort.SliceStable(points, func(i, j int) bool {
			a, b := points[i], points[j]
			if a.Expiration != b.Expiration {
				return a.Expiration < b.Expiration
			}
			if a.Strike != b.Strike {
				return a.Strike < b.Strike
			}
			return a.OptionType < b.OptionType
		})
	}
	return points, nil
}

// project reports false for rows that cannot appear on any surface.
func project(r models.OptionRow, target string) (SurfacePoint, bool) {
	if !r.OptionType.Valid() {
		return SurfacePoint{}, false
	}
	value, ok := r.Field(target)
	if !ok || value <= 0 {
		return SurfacePoint{}, false
	}

	var dte int
	if r.DTE != nil {
		dte = *r.DTE
	} else {
		exp, ok := utils.ParseDate(r.Expiration)
		if !ok {
			return SurfacePoint{}, false
		}
		dte = utils.DaysUntil(exp)
	}
	if dte < 0 {
		return SurfacePoint{}, false
	}

	return SurfacePoint{
		Expiration:   r.Expiration,
		Strike:       r.Strike,
		OptionType:   r.OptionType,
		DTE:          dte,
		Target:       target,
		Value:        value,
		OpenInterest: r.OpenInterest,
		Volume:       r.Volume,
	}, true
}

func (p SurfaceParams) keep(pt SurfacePoint, price float64) bool {
	if p.OpenInterestOnly && pt.OpenInterest <= 0 {
		return false
	}
	if p.VolumeOnly && pt.Volume <= 0 {
		return false
	}
	if p.DTEMin != nil && pt.DTE < *p.DTEMin {
		return false
	}
	if p.DTEMax != nil && pt.DTE > *p.DTEMax {
		return false
	}
	if p.Moneyness != nil && *p.Moneyness > 0 {
		m := *p.Moneyness / 100
		if pt.Strike < (1-m)*price || pt.Strike > (1+m)*price {
			return false
		}
	}
	if p.StrikeMin != nil && pt.Strike < *p.StrikeMin {
		return false
	}
	if p.StrikeMax != nil && pt.Strike > *p.StrikeMax {
		return false
	}
	return true
}

// resolvePrice prefers the explicit price, then the first row's underlying_price.
func resolvePrice(chain models.Chain, explicit *float64) (float64, bool) {
	if explicit != nil && *explicit > 0 {
		return *explicit, true
	}
	if len(chain) > 0 && chain[0].UnderlyingPrice != nil && *chain[0].UnderlyingPrice > 0 {
		return *chain[0].UnderlyingPrice, true
	}
	return 0, false
}
