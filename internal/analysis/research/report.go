package research

import (
	"fmt"
	"strings"

	"github.com/seenimoa/catalystiv/internal/analysis/volatility"
	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

const (
	reportMoveHorizonsShown = 3 // 7, 14 and 30 days
	reportCatalystsShown    = 5
	reportIdeasShown        = 4
	reportNameWidth         = 50
)

// FormatReport renders a research summary as a plain-text report.
func FormatReport(s models.ResearchSummary) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("═══ OPTIONS RESEARCH: %s ═══", s.Symbol)
	line("Underlying Price: $%.2f", s.UnderlyingPrice)
	line("")

	ov := s.Overview
	line("── IV METRICS ──")
	if ov.ATMIV != nil && *ov.ATMIV != 0 {
		line("ATM IV: %.1f%%", volatility.NormalizeIV(*ov.ATMIV)*100)
	}
	if ov.IVRank != nil {
		line("IV Rank: %.0f%%", *ov.IVRank)
	}
	if ov.IVPercentile != nil {
		line("IV Percentile: %.0f%%", *ov.IVPercentile)
	}
	env := ov.IVEnvironment
	if env == "" {
		env = models.IVUnknown
	}
	line("Environment: %s", utils.TitleCase(string(env)))
	line("")

	for _, days := range ExpectedMoveHorizons[:reportMoveHorizonsShown] {
		if em, ok := ov.ExpectedMoves[models.ExpectedMoveKey(days)]; ok {
			line("%d-day Expected Move: ±$%.2f (%.1f%%)", days, em.Dollars, em.Percent)
		}
	}
	line("")

	if len(s.Catalysts) > 0 {
		line("── UPCOMING CATALYSTS ──")
		for i, c := range s.Catalysts {
			if i == reportCatalystsShown {
				break
			}
			typ := c.Type
			if typ == "" {
				typ = models.CatalystOther
			}
			days := "?"
			if c.DaysUntil != nil {
				days = fmt.Sprint(*c.DaysUntil)
			}
			line("• %s: %s (%s days)", utils.TitleCase(string(typ)), c.Date, days)
			if c.Name != "" {
				line("  %s...", utils.Truncate(c.Name, reportNameWidth))
			}
			if c.NearestPostExpiration != "" {
				line("  → Nearest post-event expiration: %s", c.NearestPostExpiration)
			}
		}
		line("")
	}

	if len(s.StrategyIdeas) > 0 {
		line("── STRATEGY IDEAS ──")
		for i, idea := range s.StrategyIdeas {
			if i == reportIdeasShown {
				break
			}
			line("• %s", utils.TitleCase(idea.Strategy))
			line("  %s", idea.Rationale)
			if idea.TimingNote != "" {
				line("  Timing: %s", idea.TimingNote)
			}
		}
		line("")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
