package api

import (
	"net/http"

	"github.com/seenimoa/catalystiv/internal/analysis/catalyst"
	"github.com/seenimoa/catalystiv/internal/analysis/derivatives"
	"github.com/seenimoa/catalystiv/internal/analysis/research"
	"github.com/seenimoa/catalystiv/internal/analysis/volatility"
	"github.com/seenimoa/catalystiv/internal/provider"
	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// ============================================================
// Request / Response types
// ============================================================

// IVMetricsRequest asks for any combination of rank, percentile, expected
// move, straddle-implied move and crush. Sections whose inputs are missing
// are left out of the response.
type IVMetricsRequest struct {
	CurrentIV       float64   `json:"current_iv"       validate:"gte=0"`
	IVLow           *float64  `json:"iv_low"           validate:"omitempty,gte=0"`
	IVHigh          *float64  `json:"iv_high"          validate:"omitempty,gte=0"`
	Historical      []float64 `json:"historical_iv"`
	UnderlyingPrice float64   `json:"underlying_price" validate:"gte=0"`
	Days            int       `json:"days"             validate:"gte=0"`
	Annualization   int       `json:"annualization"    validate:"omitempty,gt=0"`
	StraddlePrice   *float64  `json:"straddle_price"   validate:"omitempty,gte=0"`
	PostEventIV     *float64  `json:"post_event_iv"    validate:"omitempty,gte=0"`
}

// IVMetricsResponse carries the computed metrics.
type IVMetricsResponse struct {
	IVRank        *float64             `json:"iv_rank,omitempty"`
	IVPercentile  *float64             `json:"iv_percentile,omitempty"`
	ExpectedMove  *models.ExpectedMove `json:"expected_move,omitempty"`
	StraddleMove  *models.ExpectedMove `json:"straddle_move,omitempty"`
	IVCrush       *models.IVCrush      `json:"iv_crush,omitempty"`
	NormalizedIV  float64              `json:"normalized_iv"`
	IVEnvironment models.IVEnvironment `json:"iv_environment"`
}

// TermStructureRequest samples ATM IVs from a chain.
type TermStructureRequest struct {
	Chain           models.Chain `json:"chain"            validate:"required,min=1"`
	UnderlyingPrice float64      `json:"underlying_price" validate:"gt=0"`
	Expiration      string       `json:"expiration"`
}

// TermStructureResponse holds the ATM IV and the per-expiration samples.
type TermStructureResponse struct {
	ATMIV         *float64           `json:"atm_iv"`
	TermStructure []models.TermPoint `json:"term_structure"`
}

// SurfaceRequest mirrors derivatives.SurfaceParams plus the chain.
type SurfaceRequest struct {
	Chain           models.Chain `json:"chain"`
	Target          string       `json:"target"`
	UnderlyingPrice *float64     `json:"underlying_price" validate:"omitempty,gt=0"`
	OptionType      string       `json:"option_type"`
	DTEMin          *int         `json:"dte_min"          validate:"omitempty,gte=0"`
	DTEMax          *int         `json:"dte_max"          validate:"omitempty,gte=0"`
	Moneyness       *float64     `json:"moneyness"`
	StrikeMin       *float64     `json:"strike_min"`
	StrikeMax       *float64     `json:"strike_max"`
	OpenInterest    bool         `json:"oi"`
	Volume          bool         `json:"volume"`
}

// CatalystScreenRequest mirrors derivatives.CatalystScreenParams plus the chain.
type CatalystScreenRequest struct {
	Chain                models.Chain `json:"chain"`
	CatalystDate         string       `json:"catalyst_date"`
	UnderlyingPrice      *float64     `json:"underlying_price"        validate:"omitempty,gt=0"`
	MinIV                *float64     `json:"min_iv"                  validate:"omitempty,gte=0"`
	MaxStrikeDistancePct *float64     `json:"max_strike_distance_pct" validate:"omitempty,gt=0"`
	OptionType           string       `json:"option_type"`
	IncludeScoring       *bool        `json:"include_scoring"`
	IVRank               *float64     `json:"iv_rank"                 validate:"omitempty,gte=0,lte=100"`
}

// ScoreRequest holds the inputs of a catalyst play score.
type ScoreRequest struct {
	ExpectedMovePct  float64 `json:"expected_move_pct"  validate:"gte=0"`
	IVRank           float64 `json:"iv_rank"            validate:"gte=0,lte=100"`
	DaysToCatalyst   int     `json:"days_to_catalyst"`
	DaysToExpiration int     `json:"days_to_expiration"`
}

// CombineRequest pairs catalysts with expirations.
type CombineRequest struct {
	Expirations []string               `json:"expirations" validate:"required"`
	Catalysts   []models.CatalystEvent `json:"catalysts"`
	DateField   string                 `json:"date_field"`
	NameField   string                 `json:"name_field"`
}

// CatalystExpirationsRequest asks which expirations bracket one catalyst.
// Nil windows take the configured screener defaults.
type CatalystExpirationsRequest struct {
	Expirations  []string `json:"expirations"   validate:"required"`
	CatalystDate string   `json:"catalyst_date" validate:"required"`
	DaysBefore   *int     `json:"days_before"   validate:"omitempty,gte=0"`
	DaysAfter    *int     `json:"days_after"    validate:"omitempty,gte=0"`
	PostMinDays  *int     `json:"post_min_days" validate:"omitempty,gte=0"`
	PostMaxDays  *int     `json:"post_max_days" validate:"omitempty,gte=0"`
}

// CatalystExpirationsResponse lists the bracketing expirations.
type CatalystExpirationsResponse struct {
	CatalystDate                  string   `json:"catalyst_date"`
	DaysToCatalyst                int      `json:"days_to_catalyst"`
	RelevantExpirations           []string `json:"relevant_expirations"`
	NearestPostCatalystExpiration string   `json:"nearest_post_catalyst_expiration,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleIVMetrics(w http.ResponseWriter, r *http.Request) {
	var req IVMetricsRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	iv := volatility.NormalizeIV(req.CurrentIV)
	resp := IVMetricsResponse{NormalizedIV: iv}

	// Inputs may mix decimal and percent quotes; rank them on one scale.
	if req.IVLow != nil && req.IVHigh != nil {
		rank := volatility.IVRank(iv, volatility.NormalizeIV(*req.IVLow), volatility.NormalizeIV(*req.IVHigh))
		resp.IVRank = &rank
	}
	if len(req.Historical) > 0 {
		pct := volatility.IVPercentile(iv, volatility.NormalizeAll(req.Historical))
		resp.IVPercentile = &pct
	}
	if req.UnderlyingPrice > 0 && req.Days > 0 {
		annual := req.Annualization
		if annual == 0 {
			annual = volatility.DaysPerYear
		}
		move := volatility.ExpectedMoveAnnualized(req.UnderlyingPrice, iv, req.Days, annual)
		resp.ExpectedMove = &move
	}
	if req.StraddlePrice != nil && req.UnderlyingPrice > 0 {
		move := volatility.ExpectedMoveFromStraddle(*req.StraddlePrice, req.UnderlyingPrice)
		resp.StraddleMove = &move
	}
	if req.PostEventIV != nil {
		crush := volatility.IVCrush(iv, volatility.NormalizeIV(*req.PostEventIV))
		resp.IVCrush = &crush
	}
	resp.IVEnvironment = research.ClassifyIVEnvironment(resp.IVRank, resp.IVPercentile)

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleTermStructure(w http.ResponseWriter, r *http.Request) {
	var req TermStructureRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	resp := TermStructureResponse{
		TermStructure: volatility.TermStructure(req.Chain, req.UnderlyingPrice),
	}
	if iv, ok := volatility.ATMIV(req.Chain, req.UnderlyingPrice, req.Expiration); ok {
		resp.ATMIV = &iv
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	var req SurfaceRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	points, err := derivatives.Surface(req.Chain, derivatives.SurfaceParams{
		Target:           req.Target,
		UnderlyingPrice:  req.UnderlyingPrice,
		OptionType:       req.OptionType,
		DTEMin:           req.DTEMin,
		DTEMax:           req.DTEMax,
		Moneyness:        req.Moneyness,
		StrikeMin:        req.StrikeMin,
		StrikeMax:        req.StrikeMax,
		OpenInterestOnly: req.OpenInterest,
		VolumeOnly:       req.Volume,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: points})
}

func (s *Server) handleCatalystScreen(w http.ResponseWriter, r *http.Request) {
	var req CatalystScreenRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	maxDistance := req.MaxStrikeDistancePct
	if maxDistance == nil {
		d := s.cfg.Screener.MaxStrikeDistancePct
		maxDistance = &d
	}

	rows, err := derivatives.CatalystScreen(req.Chain, derivatives.CatalystScreenParams{
		CatalystDate:         req.CatalystDate,
		UnderlyingPrice:      req.UnderlyingPrice,
		MinIV:                req.MinIV,
		MaxStrikeDistancePct: maxDistance,
		OptionType:           models.OptionType(req.OptionType),
		IncludeScoring:       req.IncludeScoring,
		IVRank:               req.IVRank,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if rows == nil {
		rows = models.Chain{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rows})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	score := catalyst.ScorePlay(req.ExpectedMovePct, req.IVRank, req.DaysToCatalyst, req.DaysToExpiration)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: score})
}

func (s *Server) handleCombine(w http.ResponseWriter, r *http.Request) {
	var req CombineRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	combined := catalyst.CombineWithOptions(req.Expirations, req.Catalysts, catalyst.FieldMapping{
		DateField: req.DateField,
		NameField: req.NameField,
	})
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: combined})
}

func (s *Server) handleCatalystExpirations(w http.ResponseWriter, r *http.Request) {
	var req CatalystExpirationsRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	date, err := utils.ParseDateStrict(req.CatalystDate)
	if err != nil {
		writeFailure(w, r, &provider.ErrInvalidParam{
			Param:  "catalyst_date",
			Value:  req.CatalystDate,
			Detail: "Invalid date format. Use YYYY-MM-DD",
		})
		return
	}

	sc := s.cfg.Screener
	before, after := orDefault(req.DaysBefore, sc.DaysBefore), orDefault(req.DaysAfter, sc.DaysAfter)
	postMin, postMax := orDefault(req.PostMinDays, sc.PostCatalystMinDays), orDefault(req.PostMaxDays, sc.PostCatalystMaxDays)

	resp := CatalystExpirationsResponse{
		CatalystDate:        utils.FormatDate(date),
		DaysToCatalyst:      utils.DaysUntil(date),
		RelevantExpirations: catalyst.FilterByProximity(req.Expirations, date, before, after),
	}
	if nearest, ok := catalyst.NearestPostCatalystExpiration(req.Expirations, date, postMin, postMax); ok {
		resp.NearestPostCatalystExpiration = nearest
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
