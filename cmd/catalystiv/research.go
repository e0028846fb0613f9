package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/seenimoa/catalystiv/internal/analysis/research"
	"github.com/seenimoa/catalystiv/internal/datasource"
	"github.com/seenimoa/catalystiv/internal/provider"
)

// batchDoc is the file form of a research batch.
type batchDoc struct {
	Requests []datasource.ResearchRequest `json:"requests" yaml:"requests" toml:"requests" validate:"required,min=1,dive"`
}

// --- Research Command ---

var researchCmd = &cobra.Command{
	Use:   "research [chain-file]",
	Short: "Build an options research summary",
	Long: `Combine IV metrics, the earnings date and upcoming clinical-trial readouts
into a research summary with strategy ideas.

Examples:
  catalystiv research chain.json --symbol MRNA --price 120 --earnings 2026-11-05
  catalystiv research chain.yaml --symbol MRNA --sponsor Moderna --iv-rank 72 --format text
  catalystiv research --batch requests.toml -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		batchFile, _ := flags.GetString("batch")
		format, _ := flags.GetString("format")

		reg, err := newRegistry()
		if err != nil {
			return err
		}
		agg := datasource.NewAggregator(reg, cfg.Research.ConcurrentBuilds)

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout())
		defer cancel()

		if batchFile != "" {
			var doc batchDoc
			if err := decodeFile(batchFile, &doc); err != nil {
				return err
			}
			if err := validator.New().Struct(doc); err != nil {
				return fmt.Errorf("%s: %w", batchFile, err)
			}
			summaries, err := agg.ResearchBatch(ctx, doc.Requests)
			if err != nil {
				return err
			}
			if format == formatText {
				for _, s := range summaries {
					fmt.Fprintln(cmd.OutOrStdout(), research.FormatReport(s))
				}
				return nil
			}
			return writeOutput(cmd.OutOrStdout(), pickFormat(cmd, format), summaries)
		}

		req, err := researchRequestFromFlags(cmd, args)
		if err != nil {
			return err
		}
		summary, err := agg.Research(ctx, req)
		if err != nil {
			return err
		}
		if format == formatText {
			fmt.Fprint(cmd.OutOrStdout(), research.FormatReport(summary))
			return nil
		}
		return writeOutput(cmd.OutOrStdout(), pickFormat(cmd, format), summary)
	},
}

func init() {
	researchCmd.Flags().String("symbol", "", "underlying symbol (default: from the chain file)")
	researchCmd.Flags().Float64("price", 0, "underlying price (default: from the chain file)")
	researchCmd.Flags().String("earnings", "", "next earnings date (YYYY-MM-DD)")
	researchCmd.Flags().String("sponsor", "", "trial sponsor to look up on ClinicalTrials.gov")
	researchCmd.Flags().Int("trial-limit", 0, "maximum trials to fetch")
	researchCmd.Flags().Float64("atm-iv", 0, "ATM implied volatility (default: from the chain)")
	researchCmd.Flags().Float64("iv-rank", 0, "IV rank (0-100)")
	researchCmd.Flags().Float64("iv-percentile", 0, "IV percentile (0-100)")
	researchCmd.Flags().String("batch", "", "file with a 'requests' list to research concurrently")
	researchCmd.Flags().String("format", "", "text for the plain report; json or yaml override --output")
}

func researchRequestFromFlags(cmd *cobra.Command, args []string) (datasource.ResearchRequest, error) {
	flags := cmd.Flags()
	var doc chainDoc
	if len(args) == 1 {
		var err error
		if doc, err = loadChain(args[0]); err != nil {
			return datasource.ResearchRequest{}, err
		}
	}

	req := datasource.ResearchRequest{
		Symbol:       doc.Symbol,
		Chain:        doc.Chain,
		ATMIV:        floatFlag(cmd, "atm-iv", nil),
		IVRank:       floatFlag(cmd, "iv-rank", nil),
		IVPercentile: floatFlag(cmd, "iv-percentile", nil),
	}
	if doc.UnderlyingPrice != nil {
		req.UnderlyingPrice = *doc.UnderlyingPrice
	}
	if p := floatFlag(cmd, "price", nil); p != nil {
		req.UnderlyingPrice = *p
	}
	if s, _ := flags.GetString("symbol"); s != "" {
		req.Symbol = s
	}
	req.EarningsDate, _ = flags.GetString("earnings")
	req.Sponsor, _ = flags.GetString("sponsor")
	req.TrialLimit, _ = flags.GetInt("trial-limit")

	if req.Symbol == "" {
		return req, fmt.Errorf("--symbol is required")
	}
	if req.UnderlyingPrice <= 0 {
		return req, fmt.Errorf("--price must be positive")
	}
	return req, nil
}

// --- Trials Command ---

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "List clinical trials from ClinicalTrials.gov",
	Long: `Query the clinical trials registry by sponsor, condition or intervention,
sorted by primary completion date.

Examples:
  catalystiv trials --sponsor Moderna --phase phase3 --status recruiting
  catalystiv trials --condition asthma --from 2026-10-01 --to 2027-06-30 --limit 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		params := provider.QueryParams{}
		for flag, key := range map[string]string{
			"symbol":       provider.ParamSymbol,
			"sponsor":      provider.ParamSponsor,
			"condition":    provider.ParamCondition,
			"intervention": provider.ParamIntervention,
			"phase":        provider.ParamPhase,
			"status":       provider.ParamStatus,
			"study-type":   provider.ParamStudyType,
			"from":         provider.ParamStartDate,
			"to":           provider.ParamEndDate,
		} {
			if v, _ := flags.GetString(flag); v != "" {
				params[key] = v
			}
		}
		if limit, _ := flags.GetInt("limit"); limit > 0 {
			params[provider.ParamLimit] = strconv.Itoa(limit)
		}

		reg, err := newRegistry()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout())
		defer cancel()

		trials, err := datasource.NewAggregator(reg, cfg.Research.ConcurrentBuilds).FetchTrials(ctx, params)
		if provider.IsEmptyData(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), []struct{}{})
		}
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat(cmd), trials)
	},
}

func init() {
	trialsCmd.Flags().String("symbol", "", "ticker used as the sponsor when --sponsor is empty")
	trialsCmd.Flags().String("sponsor", "", "lead sponsor name")
	trialsCmd.Flags().String("condition", "", "condition or disease")
	trialsCmd.Flags().String("intervention", "", "intervention or drug name")
	trialsCmd.Flags().String("phase", "", "phase (early_phase1, phase1, phase2, phase3, phase4, not_applicable)")
	trialsCmd.Flags().String("status", "", "overall status (e.g. recruiting, completed)")
	trialsCmd.Flags().String("study-type", "", "study type (interventional, observational, expanded_access)")
	trialsCmd.Flags().String("from", "", "earliest primary completion date (YYYY-MM-DD)")
	trialsCmd.Flags().String("to", "", "latest primary completion date (YYYY-MM-DD)")
	trialsCmd.Flags().Int("limit", 0, "maximum studies to request (max 1000)")
}

// commandTimeout bounds one CLI invocation's network work.
func commandTimeout() time.Duration {
	return time.Duration(cfg.API.RequestTimeoutSec) * time.Second
}

// pickFormat lets --format json|yaml override --output.
func pickFormat(cmd *cobra.Command, format string) string {
	if format == formatJSON || format == formatYAML {
		return format
	}
	return outputFormat(cmd)
}
