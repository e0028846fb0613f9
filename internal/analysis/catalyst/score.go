package catalyst

import (
	"math"

	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// Recommendation texts of ScorePlay, strongest first.
const (
	RecStrongSellPremium = "Strong sell premium candidate (high IV, good timing)"
	RecStrongBuyPremium  = "Strong buy premium candidate (low IV, good timing)"
	RecModerate          = "Moderate opportunity (consider position sizing)"
	RecWeak              = "Weak setup (proceed with caution)"
	RecPoor              = "Poor setup (consider waiting for better entry)"
)

// Composite weights.
const (
	weightIVRank = 0.40
	weightTime   = 0.35
	weightMove   = 0.25
)

// ScorePlay rates a catalyst-timed options trade on a 0–100 scale from the
// IV rank, how soon after the catalyst the option expires, and the size of
// the expected move (in percent).
func ScorePlay(expectedMovePct, ivRank float64, daysToCatalyst, daysToExpiration int) models.CatalystPlayScore {
	timeScore := timeAlignmentScore(daysToExpiration - daysToCatalyst)
	moveScore := expectedMoveScore(expectedMovePct)
	composite := ivRank*weightIVRank + timeScore*weightTime + moveScore*weightMove

	return models.CatalystPlayScore{
		CompositeScore:     utils.Round(composite, 1),
		IVRankScore:        utils.Round(ivRank, 1),
		TimeAlignmentScore: utils.Round(timeScore, 1),
		ExpectedMoveScore:  utils.Round(moveScore, 1),
		Recommendation:     recommendation(composite, ivRank),
	}
}

// timeAlignmentScore favours expirations 0–3 days after the catalyst. The
// score steps down at 3 and 7 days without interpolation.
func timeAlignmentScore(daysAfter int) float64 {
	d := float64(daysAfter)
	switch {
	case daysAfter < 0:
		return math.Max(0, 50+10*d)
	case daysAfter <= 3:
		return 100
	case daysAfter <= 7:
		return 80
	default:
		return math.Max(30, 80-5*(d-7))
	}
}

func expectedMoveScore(pct float64) float64 {
	switch {
	case pct < 2:
		return 20
	case pct < 5:
		return 50
	case pct < 10:
		return 80
	default:
		return 100
	}
}

// recommendation uses the unrounded composite.
func recommendation(score, ivRank float64) string {
	switch {
	case score >= 80 && ivRank >= 70:
		return RecStrongSellPremium
	case score >= 80 && ivRank < 30:
		return RecStrongBuyPremium
	case score >= 60:
		return RecModerate
	case score >= 40:
		return RecWeak
	default:
		return RecPoor
	}
}
