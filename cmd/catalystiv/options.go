package main

import (
	"github.com/spf13/cobra"

	"github.com/seenimoa/catalystiv/internal/analysis/derivatives"
	"github.com/seenimoa/catalystiv/internal/analysis/research"
	"github.com/seenimoa/catalystiv/internal/analysis/volatility"
	"github.com/seenimoa/catalystiv/pkg/models"
)

// ivMetrics is the ivrank command's output.
type ivMetrics struct {
	CurrentIV     float64              `json:"current_iv"              yaml:"current_iv"`
	IVRank        *float64             `json:"iv_rank,omitempty"       yaml:"iv_rank,omitempty"`
	IVPercentile  *float64             `json:"iv_percentile,omitempty" yaml:"iv_percentile,omitempty"`
	IVEnvironment models.IVEnvironment `json:"iv_environment"          yaml:"iv_environment"`
	ExpectedMove  *models.ExpectedMove `json:"expected_move,omitempty" yaml:"expected_move,omitempty"`
}

// historyDoc is the file form of an IV history.
type historyDoc struct {
	History []float64 `json:"history" yaml:"history" toml:"history"`
}

// --- IV Rank Command ---

var ivrankCmd = &cobra.Command{
	Use:   "ivrank",
	Short: "Compute IV rank, IV percentile and expected move",
	Long: `Compute IV rank from a 52-week range, IV percentile from a history file,
and the one-standard-deviation expected move.

Examples:
  catalystiv ivrank --current 0.45 --low 0.25 --high 0.85
  catalystiv ivrank --current 45 --history iv_history.yaml --price 120 --days 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		current, _ := flags.GetFloat64("current")
		price, _ := flags.GetFloat64("price")
		days, _ := flags.GetInt("days")
		historyFile, _ := flags.GetString("history")

		out := ivMetrics{CurrentIV: current}
		iv := volatility.NormalizeIV(current)
		if flags.Changed("low") && flags.Changed("high") {
			low, _ := flags.GetFloat64("low")
			high, _ := flags.GetFloat64("high")
			rank := volatility.IVRank(iv, volatility.NormalizeIV(low), volatility.NormalizeIV(high))
			out.IVRank = &rank
		}
		if historyFile != "" {
			var doc historyDoc
			if err := decodeFile(historyFile, &doc); err != nil {
				return err
			}
			pct := volatility.IVPercentile(iv, volatility.NormalizeAll(doc.History))
			out.IVPercentile = &pct
		}
		if price > 0 && days > 0 {
			move := volatility.ExpectedMove(price, iv, days)
			out.ExpectedMove = &move
		}
		out.IVEnvironment = research.ClassifyIVEnvironment(out.IVRank, out.IVPercentile)

		return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), out)
	},
}

func init() {
	ivrankCmd.Flags().Float64("current", 0, "current implied volatility (decimal or percent)")
	ivrankCmd.Flags().Float64("low", 0, "52-week IV low")
	ivrankCmd.Flags().Float64("high", 0, "52-week IV high")
	ivrankCmd.Flags().String("history", "", "IV history file (json, yaml or toml with a 'history' list)")
	ivrankCmd.Flags().Float64("price", 0, "underlying price for the expected move")
	ivrankCmd.Flags().Int("days", 30, "expected move horizon in calendar days")
	_ = ivrankCmd.MarkFlagRequired("current")
}

// --- Screen Command ---

var screenCmd = &cobra.Command{
	Use:   "screen [chain-file]",
	Short: "Screen an option chain ahead of a catalyst",
	Long: `Keep the contracts of the first expiration after the catalyst whose strikes
are near the underlying, scoring each one unless --no-score is given.

Examples:
  catalystiv screen chain.json --catalyst-date 2026-11-05 --price 100
  catalystiv screen chain.toml --catalyst-date 2026-11-05 --type call --iv-rank 72
  catalystiv screen chain.json --catalyst-date 2026-11-05 --no-score`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadChain(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		catalystDate, _ := flags.GetString("catalyst-date")
		optionType, _ := flags.GetString("type")
		noScore, _ := flags.GetBool("no-score")

		p := derivatives.CatalystScreenParams{
			CatalystDate:         catalystDate,
			UnderlyingPrice:      floatFlag(cmd, "price", doc.UnderlyingPrice),
			MinIV:                floatFlag(cmd, "min-iv", nil),
			MaxStrikeDistancePct: floatFlag(cmd, "max-distance", &cfg.Screener.MaxStrikeDistancePct),
			OptionType:           models.OptionType(optionType),
			IncludeScoring:       models.Bool(!noScore),
			IVRank:               floatFlag(cmd, "iv-rank", nil),
		}
		rows, err := derivatives.CatalystScreen(doc.Chain, p)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), rows)
	},
}

func init() {
	screenCmd.Flags().String("catalyst-date", "", "catalyst date (YYYY-MM-DD)")
	screenCmd.Flags().Float64("price", 0, "underlying price (default: from the chain file)")
	screenCmd.Flags().Float64("min-iv", 0, "minimum implied volatility (decimal)")
	screenCmd.Flags().Float64("max-distance", 0, "maximum strike distance from price, percent (default: screener.max_strike_distance_pct)")
	screenCmd.Flags().String("type", "", "option side to keep (call, put)")
	screenCmd.Flags().Bool("no-score", false, "skip catalyst scores and recommendations")
	screenCmd.Flags().Float64("iv-rank", 0, "IV rank used for scoring (default 50)")
	_ = screenCmd.MarkFlagRequired("catalyst-date")
}

// --- Surface Command ---

var surfaceCmd = &cobra.Command{
	Use:   "surface [chain-file]",
	Short: "Filter an option chain into volatility surface points",
	Long: `Project a chain onto (expiration, strike, dte, target) points.

Examples:
  catalystiv surface chain.json --price 100
  catalystiv surface chain.yaml --type calls --target delta --dte-max 60 --oi`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadChain(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		target, _ := flags.GetString("target")
		selection, _ := flags.GetString("type")
		oi, _ := flags.GetBool("oi")
		volume, _ := flags.GetBool("volume")

		points, err := derivatives.Surface(doc.Chain, derivatives.SurfaceParams{
			Target:           target,
			UnderlyingPrice:  floatFlag(cmd, "price", doc.UnderlyingPrice),
			OptionType:       selection,
			DTEMin:           intFlag(cmd, "dte-min"),
			DTEMax:           intFlag(cmd, "dte-max"),
			Moneyness:        floatFlag(cmd, "moneyness", nil),
			StrikeMin:        floatFlag(cmd, "strike-min", nil),
			StrikeMax:        floatFlag(cmd, "strike-max", nil),
			OpenInterestOnly: oi,
			VolumeOnly:       volume,
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), points)
	},
}

func init() {
	surfaceCmd.Flags().String("target", models.FieldImpliedVolatility, "numeric column to report")
	surfaceCmd.Flags().Float64("price", 0, "underlying price (default: from the chain)")
	surfaceCmd.Flags().String("type", derivatives.SelectOTM, "selection (otm, itm, calls, puts)")
	surfaceCmd.Flags().Int("dte-min", 0, "minimum days to expiration")
	surfaceCmd.Flags().Int("dte-max", 0, "maximum days to expiration")
	surfaceCmd.Flags().Float64("moneyness", 0, "keep strikes within this percent of the price (0-100)")
	surfaceCmd.Flags().Float64("strike-min", 0, "minimum strike")
	surfaceCmd.Flags().Float64("strike-max", 0, "maximum strike")
	surfaceCmd.Flags().Bool("oi", false, "keep only rows with open interest")
	surfaceCmd.Flags().Bool("volume", false, "keep only rows with volume")
}

// floatFlag returns the flag's value when it was set on the command line, else fallback.
func floatFlag(cmd *cobra.Command, name string, fallback *float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return fallback
	}
	return &v
}

// intFlag returns the flag's value when it was set, else nil.
func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil
	}
	return &v
}

func outputFormat(cmd *cobra.Command) string {
	f, err := cmd.Flags().GetString("output")
	if err != nil || f == "" {
		return formatJSON
	}
	return f
}
