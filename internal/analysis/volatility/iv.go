// Package volatility derives implied-volatility metrics from price and IV
// inputs: rank, percentile, expected move, ATM IV and the term structure.
// Every function is pure and safe for concurrent use.
package volatility

import (
	"math"

	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// DaysPerYear is the default annualization basis for expected moves.
const DaysPerYear = 365

// percentScaleThreshold separates decimal IVs from percentage-scaled ones.
// Values above it are assumed to be quoted in percent. Decimal IVs above
// 1000% are misread by this rule.
const percentScaleThreshold = 10

// NormalizeIV converts a percentage-scaled IV (e.g. 35) to decimal form (0.35).
// Values at or below the threshold are returned unchanged.
func NormalizeIV(iv float64) float64 {
	if iv > percentScaleThreshold {
		return iv / 100
	}
	return iv
}

// NormalizeAll returns a fresh slice with NormalizeIV applied to each value,
// so that histories mixing decimal and percent quotes compare on one scale.
func NormalizeAll(ivs []float64) []float64 {
	out := make([]float64, len(ivs))
	for i, iv := range ivs {
		out[i] = NormalizeIV(iv)
	}
	return out
}

// IVRank places current within [low, high] on a 0–100 scale. Values outside
// the range saturate, and a degenerate range yields the midpoint 50.
func IVRank(current, low, high float64) float64 {
	if high == low {
		return 50
	}
	rank := (current - low) / (high - low) * 100
	return utils.Round(utils.Clamp(rank, 0, 100), 2)
}

// IVPercentile is the percentage of historical observations strictly below
// current. An empty history yields 50.
func IVPercentile(current float64, historical []float64) float64 {
	if len(historical) == 0 {
		return 50
	}
	below := 0
	for _, h := range historical {
		if h < current {
			below++
		}
	}
	return utils.Round(float64(below)/float64(len(historical))*100, 2)
}

// ExpectedMove is the one-standard-deviation move implied by a decimal IV
// over days calendar days, annualized on a 365-day year.
func ExpectedMove(price, iv float64, days int) models.ExpectedMove {
	return ExpectedMoveAnnualized(price, iv, days, DaysPerYear)
}

// ExpectedMoveAnnualized is ExpectedMove with an explicit annualization basis
// (e.g. 252 for trading days). Non-positive days collapse the range to price.
func ExpectedMoveAnnualized(price, iv float64, days, annualization int) models.ExpectedMove {
	timeFactor := 0.0
	if days > 0 && annualization > 0 {
		timeFactor = math.Sqrt(float64(days) / float64(annualization))
	}
	move := price * iv * timeFactor
	return models.ExpectedMove{
		Dollars: utils.Round(move, 2),
		Percent: utils.Round(iv*timeFactor*100, 2),
		Range: models.PriceRange{
			Low:  utils.Round(price-move, 2),
			High: utils.Round(price+move, 2),
		},
	}
}

// ExpectedMoveFromStraddle treats the ATM straddle premium as the
// market-implied move, skew included.
func ExpectedMoveFromStraddle(straddle, price float64) models.ExpectedMove {
	pct := 0.0
	if price != 0 {
		pct = straddle / price * 100
	}
	return models.ExpectedMove{
		Dollars: utils.Round(straddle, 2),
		Percent: utils.Round(pct, 2),
		Range: models.PriceRange{
			Low:  utils.Round(price-straddle, 2),
			High: utils.Round(price+straddle, 2),
		},
	}
}

// IVCrush measures the IV drop across an event such as earnings.
func IVCrush(preIV, postIV float64) models.IVCrush {
	crush := preIV - postIV
	pct := 0.0
	if preIV > 0 {
		pct = crush / preIV * 100
	}
	return models.IVCrush{
		Crush:    utils.Round(crush, 4),
		CrushPct: utils.Round(pct, 2),
	}
}
