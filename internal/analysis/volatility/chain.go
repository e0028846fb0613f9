package volatility

import (
	"math"
	"sort"

	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// expirationKey is the date part of an expiration value.
func expirationKey(exp string) string {
	return utils.Truncate(exp, len(utils.DateLayout))
}

// ATMIV returns the implied volatility at the strike nearest price. When
// expiration is non-empty only that expiration is considered. The call and
// put IVs at the ATM strike are averaged when both exist. It reports false
// for an empty chain, a chain without IVs, or an expiration with no rows.
func ATMIV(chain models.Chain, price float64, expiration string) (float64, bool) {
	if len(chain) == 0 || !chain.HasField(models.FieldImpliedVolatility) {
		return 0, false
	}

	rows := chain
	if expiration != "" {
		rows = make(models.Chain, 0, len(chain))
		for _, r := range chain {
			if expirationKey(r.Expiration) == expiration {
				rows = append(rows, r)
			}
		}
		if len(rows) == 0 {
			return 0, false
		}
	}

	atm := findATMStrike(rows, price)

	var callIV, putIV, firstIV *float64
	var seenCall, seenPut, seenAny bool
	for _, r := range rows {
		if r.Strike != atm {
			continue
		}
		if !seenAny {
			seenAny = true
			firstIV = r.ImpliedVolatility
		}
		switch r.OptionType {
		case models.Call:
			if !seenCall {
				seenCall = true
				callIV = r.ImpliedVolatility
			}
		case models.Put:
			if !seenPut {
				seenPut = true
				putIV = r.ImpliedVolatility
			}
		}
	}

	var sum float64
	var n int
	for _, iv := range []*float64{callIV, putIV} {
		if iv != nil {
			sum += *iv
			n++
		}
	}
	if n > 0 {
		return sum / float64(n), true
	}
	if firstIV != nil {
		return *firstIV, true
	}
	return 0, false
}

// TermStructure samples the ATM IV of every expiration in the chain,
// normalized to decimal form and sorted by expiration.
func TermStructure(chain models.Chain, price float64) []models.TermPoint {
	points := make([]models.TermPoint, 0)
	seen := make(map[string]bool)
	for _, r := range chain {
		exp := expirationKey(r.Expiration)
		if exp == "" || seen[exp] {
			continue
		}
		seen[exp] = true

		iv, ok := ATMIV(chain, price, exp)
		if !ok {
			continue
		}
		points = append(points, models.TermPoint{
			Expiration: exp,
			ATMIV:      utils.Round(NormalizeIV(iv), 4),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Expiration < points[j].Expiration
	})
	return points
}

// findATMStrike returns the strike closest to price; the first row wins ties.
func findATMStrike(rows models.Chain, price float64) float64 {
	closest := rows[0].Strike
	minDiff := math.Abs(closest - price)
	for _, r := range rows[1:] {
		if diff := math.Abs(r.Strike - price); diff < minDiff {
			minDiff = diff
			closest = r.Strike
		}
	}
	return closest
}
