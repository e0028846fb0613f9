package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/seenimoa/catalystiv/internal/analysis/derivatives"
	"github.com/seenimoa/catalystiv/internal/config"
	"github.com/seenimoa/catalystiv/internal/logging"
	"github.com/seenimoa/catalystiv/internal/provider"
	"github.com/seenimoa/catalystiv/internal/providers"
	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

const trialsFixture = `{
  "studies": [
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT01234567", "briefTitle": "AB-1 pivotal"},
        "statusModule": {"overallStatus": "ACTIVE_NOT_RECRUITING", "primaryCompletionDateStruct": {"date": "2026-12-15", "type": "ESTIMATED"}},
        "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Acme Bio"}},
        "designModule": {"studyType": "INTERVENTIONAL", "phases": ["PHASE3"]}
      }
    }
  ]
}`

// testServer wires a server to a fake ClinicalTrials.gov upstream. Queries
// mentioning "Nobody" come back empty.
func testServer(t *testing.T) *Server {
	t.Helper()

	orig := utils.Now
	utils.Now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { utils.Now = orig })

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Query().Get("query.term"), "Nobody") {
			fmt.Fprint(w, `{"studies": []}`)
			return
		}
		fmt.Fprint(w, trialsFixture)
	}))
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.NIH.BaseURL = upstream.URL
	cfg.NIH.TimeoutSec = 2

	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, cfg); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	return NewServer(cfg, reg)
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// decodeData re-decodes the envelope's data into v.
func decodeData(t *testing.T, resp APIResponse, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

func sampleChain() models.Chain {
	var chain models.Chain
	for _, exp := range []string{"2026-11-20", "2026-12-18"} {
		for _, k := range []float64{95, 100, 105} {
			for _, side := range []models.OptionType{models.Call, models.Put} {
				chain = append(chain, models.OptionRow{
					Strike:            k,
					Expiration:        exp,
					OptionType:        side,
					ImpliedVolatility: models.Float(0.40),
					OpenInterest:      100,
					Volume:            10,
				})
			}
		}
	}
	return chain
}

// ════════════════════════════════════════════════════════════════════
// Envelope and error mapping
// ════════════════════════════════════════════════════════════════════

func TestAPIResponseJSON(t *testing.T) {
	data, err := json.Marshal(APIResponse{Success: false, Error: "something went wrong"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"data"`) {
		t.Errorf("nil data should be omitted: %s", data)
	}

	var got APIResponse
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Success || got.Error != "something went wrong" {
		t.Errorf("round trip: %+v", got)
	}
}

func TestStatusFor(t *testing.T) {
	var fieldErrs validator.ValidationErrors
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &derivatives.ValidationError{Field: "data", Message: "No data to process!"}, http.StatusBadRequest},
		{"struct validation", fieldErrs, http.StatusBadRequest},
		{"invalid param", fmt.Errorf("wrap: %w", &provider.ErrInvalidParam{Param: "phase"}), http.StatusBadRequest},
		{"missing param", &provider.ErrMissingParam{Param: "symbol"}, http.StatusBadRequest},
		{"body", &requestError{msg: "bad json"}, http.StatusBadRequest},
		{"empty", fmt.Errorf("fetch: %w", &provider.ErrEmptyData{}), http.StatusNotFound},
		{"no provider", &provider.ErrProviderNotFound{Name: "x"}, http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Health, providers, config
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := doRequest(t, srv, "GET", path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		resp := decodeResponse(t, rec)
		data, ok := resp.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("%s: data is %T", path, resp.Data)
		}
		if data["status"] != "ok" || data["today"] != "2026-10-16" {
			t.Errorf("%s: unexpected data %v", path, data)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := testServer(t)

	rec := doRequest(t, srv, "GET", "/health", nil)
	if rec.Header().Get(logging.RequestIDHeader) == "" {
		t.Error("expected a generated request ID")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(logging.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if got := rec.Header().Get(logging.RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestHandleProviders(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "GET", "/api/v1/providers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var data struct {
		Providers []provider.ProviderInfo         `json:"providers"`
		Coverage  map[provider.ModelType][]string `json:"coverage"`
	}
	decodeData(t, decodeResponse(t, rec), &data)
	if len(data.Providers) != 1 || data.Providers[0].Name != "nih" {
		t.Errorf("providers = %+v", data.Providers)
	}
	if got := data.Coverage[provider.ModelClinicalTrials]; len(got) != 1 || got[0] != "nih" {
		t.Errorf("coverage = %v", data.Coverage)
	}
}

func TestHandleGetConfig(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "GET", "/api/v1/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var data ConfigResponse
	decodeData(t, decodeResponse(t, rec), &data)
	if data.Config == nil || data.Config.Research.ConcurrentBuilds != 4 {
		t.Errorf("config = %+v", data.Config)
	}
	if data.ConfigFile != "" {
		t.Errorf("no file was read, got %q", data.ConfigFile)
	}
}

// ════════════════════════════════════════════════════════════════════
// IV analytics
// ════════════════════════════════════════════════════════════════════

func TestHandleIVMetrics(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/options/iv", map[string]interface{}{
		"current_iv":       35,
		"iv_low":           20,
		"iv_high":          50,
		"historical_iv":    []float64{20, 30, 40, 50},
		"underlying_price": 100,
		"days":             365,
		"straddle_price":   8,
		"post_event_iv":    25,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got IVMetricsResponse
	decodeData(t, decodeResponse(t, rec), &got)
	if got.IVRank == nil || *got.IVRank != 50 {
		t.Errorf("iv_rank = %v, want 50", got.IVRank)
	}
	if got.IVPercentile == nil || *got.IVPercentile != 50 {
		t.Errorf("iv_percentile = %v, want 50", got.IVPercentile)
	}
	if got.NormalizedIV != 0.35 {
		t.Errorf("normalized_iv = %v, want 0.35", got.NormalizedIV)
	}
	if got.ExpectedMove == nil || got.ExpectedMove.Dollars != 35 {
		t.Errorf("expected_move = %+v, want 35 dollars", got.ExpectedMove)
	}
	if got.StraddleMove == nil || got.StraddleMove.Percent != 8 {
		t.Errorf("straddle_move = %+v, want 8%%", got.StraddleMove)
	}
	if got.IVCrush == nil || got.IVCrush.Crush != 0.1 {
		t.Errorf("iv_crush = %+v, want 0.1", got.IVCrush)
	}
	if got.IVEnvironment != models.IVNeutral {
		t.Errorf("iv_environment = %q, want neutral", got.IVEnvironment)
	}
}

func TestHandleIVMetricsMixedScales(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/options/iv", map[string]interface{}{
		"current_iv":    45,
		"iv_low":        0.2,
		"iv_high":       0.7,
		"historical_iv": []float64{0.2, 30, 0.5, 60},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got IVMetricsResponse
	decodeData(t, decodeResponse(t, rec), &got)
	if got.IVRank == nil || *got.IVRank != 50 {
		t.Errorf("iv_rank = %v, want 50", got.IVRank)
	}
	if got.IVPercentile == nil || *got.IVPercentile != 50 {
		t.Errorf("iv_percentile = %v, want 50", got.IVPercentile)
	}
	if got.IVEnvironment != models.IVNeutral {
		t.Errorf("iv_environment = %q, want neutral", got.IVEnvironment)
	}
}

func TestHandleIVMetricsRejectsNegative(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/options/iv", map[string]interface{}{"current_iv": -1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleTermStructure(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/options/term_structure", TermStructureRequest{
		Chain:           sampleChain(),
		UnderlyingPrice: 100,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got TermStructureResponse
	decodeData(t, decodeResponse(t, rec), &got)
	if got.ATMIV == nil || *got.ATMIV != 0.4 {
		t.Errorf("atm_iv = %v, want 0.4", got.ATMIV)
	}
	if len(got.TermStructure) != 2 || got.TermStructure[0].Expiration != "2026-11-20" {
		t.Errorf("term_structure = %+v", got.TermStructure)
	}
}

func TestHandleSurface(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/options/surface", map[string]interface{}{
		"chain":            sampleChain(),
		"underlying_price": 100,
		"dte_max":          40,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var points []map[string]interface{}
	decodeData(t, decodeResponse(t, rec), &points)
	// OTM in the November expiration: put 95 and call 105.
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d: %v", len(points), points)
	}
	if points[0]["strike"] != 95.0 || points[0]["option_type"] != "put" {
		t.Errorf("first point = %v", points[0])
	}
	if points[1]["implied_volatility"] != 0.4 {
		t.Errorf("second point = %v", points[1])
	}
}

func TestHandleSurfaceErrors(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		name string
		body map[string]interface{}
		msg  string
	}{
		{"empty chain", map[string]interface{}{"chain": []interface{}{}}, "No data to process!"},
		{"no price", map[string]interface{}{"chain": sampleChain()}, "Underlying price is required for OTM/ITM filtering."},
		{"missing target", map[string]interface{}{"chain": sampleChain(), "target": "delta", "underlying_price": 100}, "No delta field found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, "POST", "/api/v1/options/surface", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Error != tt.msg {
				t.Errorf("error = %q, want %q", resp.Error, tt.msg)
			}
		})
	}
}

func TestHandleSurfaceBadJSON(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/options/surface", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Catalysts
// ════════════════════════════════════════════════════════════════════

func TestHandleCatalystScreen(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/options/catalyst_screen", map[string]interface{}{
		"chain":            sampleChain(),
		"catalyst_date":    "2026-11-05",
		"underlying_price": 100,
		"include_scoring":  true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var rows models.Chain
	decodeData(t, decodeResponse(t, rec), &rows)
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Expiration != "2026-11-20" {
			t.Errorf("unexpected expiration %s", r.Expiration)
		}
		if r.CatalystScore == nil || r.Recommendation == "" {
			t.Errorf("row %v %s not scored", r.Strike, r.OptionType)
		}
	}
}

func TestHandleCatalystScreenScoringDefault(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		name       string
		scoring    interface{}
		wantScored bool
	}{
		{"omitted", nil, true},
		{"enabled", true, true},
		{"disabled", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]interface{}{
				"chain":            sampleChain(),
				"catalyst_date":    "2026-11-05",
				"underlying_price": 100,
			}
			if tt.scoring != nil {
				body["include_scoring"] = tt.scoring
			}
			rec := doRequest(t, srv, "POST", "/api/v1/options/catalyst_screen", body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			var rows models.Chain
			decodeData(t, decodeResponse(t, rec), &rows)
			if len(rows) == 0 {
				t.Fatal("expected screened rows")
			}
			for _, r := range rows {
				if scored := r.CatalystScore != nil; scored != tt.wantScored {
					t.Errorf("row %v %s: scored=%v, want %v", r.Strike, r.OptionType, scored, tt.wantScored)
				}
			}
		})
	}
}

func TestHandleCatalystScreenErrors(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"no price", map[string]interface{}{"chain": sampleChain(), "catalyst_date": "2026-11-05"}, http.StatusBadRequest},
		{"bad date", map[string]interface{}{"chain": sampleChain(), "catalyst_date": "Nov 5", "underlying_price": 100}, http.StatusBadRequest},
		{"bad rank", map[string]interface{}{"chain": sampleChain(), "catalyst_date": "2026-11-05", "underlying_price": 100, "iv_rank": 120}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, "POST", "/api/v1/options/catalyst_screen", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleScore(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/options/score", ScoreRequest{
		ExpectedMovePct:  10,
		IVRank:           20,
		DaysToCatalyst:   10,
		DaysToExpiration: 15,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got models.CatalystPlayScore
	decodeData(t, decodeResponse(t, rec), &got)
	if got.CompositeScore <= 0 || got.Recommendation == "" {
		t.Errorf("score = %+v", got)
	}
}

func TestHandleCombine(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/catalysts/combine", CombineRequest{
		Expirations: []string{"2026-11-20", "2026-12-18"},
		Catalysts: []models.CatalystEvent{
			{Name: "no date"},
			{Fields: map[string]string{"event_date": "2026-11-17", "title": "FDA decision"}},
		},
		DateField: "event_date",
		NameField: "title",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.CatalystExpirations
	decodeData(t, decodeResponse(t, rec), &got)
	if len(got) != 1 {
		t.Fatalf("expected 1 catalyst, got %d", len(got))
	}
	if got[0].CatalystName != "FDA decision" || got[0].NearestPostCatalystExpiration != "2026-11-20" {
		t.Errorf("combined = %+v", got[0])
	}
}

func TestHandleCatalystExpirationsUsesConfigWindows(t *testing.T) {
	srv := testServer(t)
	srv.cfg.Screener.DaysBefore = 0
	srv.cfg.Screener.DaysAfter = 3

	rec := doRequest(t, srv, "POST", "/api/v1/catalysts/expirations", CatalystExpirationsRequest{
		Expirations:  []string{"2026-11-13", "2026-11-20", "2026-11-27"},
		CatalystDate: "2026-11-18",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got CatalystExpirationsResponse
	decodeData(t, decodeResponse(t, rec), &got)
	if len(got.RelevantExpirations) != 1 || got.RelevantExpirations[0] != "2026-11-20" {
		t.Errorf("relevant = %v", got.RelevantExpirations)
	}
	if got.NearestPostCatalystExpiration != "2026-11-20" || got.DaysToCatalyst != 33 {
		t.Errorf("response = %+v", got)
	}
}

// ════════════════════════════════════════════════════════════════════
// Research and clinical trials
// ════════════════════════════════════════════════════════════════════

func TestHandleResearch(t *testing.T) {
	srv := testServer(t)
	body := map[string]interface{}{
		"symbol":           "abio",
		"underlying_price": 100,
		"chain":            sampleChain(),
		"earnings_date":    "2026-11-12",
		"sponsor":          "Acme Bio",
		"iv_rank":          80,
	}

	rec := doRequest(t, srv, "POST", "/api/v1/research", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got models.ResearchSummary
	decodeData(t, decodeResponse(t, rec), &got)
	if got.Symbol != "ABIO" {
		t.Errorf("symbol = %q", got.Symbol)
	}
	if len(got.Catalysts) != 2 {
		t.Fatalf("expected earnings + trial catalysts, got %+v", got.Catalysts)
	}
	if got.Catalysts[0].Type != models.CatalystEarnings || got.Catalysts[1].NCTID != "NCT01234567" {
		t.Errorf("catalysts = %+v", got.Catalysts)
	}
	if got.Overview.IVEnvironment != models.IVVeryHigh && got.Overview.IVEnvironment != models.IVElevated {
		t.Errorf("iv_environment = %q", got.Overview.IVEnvironment)
	}

	rec = doRequest(t, srv, "POST", "/api/v1/research?format=text", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("text: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "ABIO") {
		t.Errorf("report missing symbol:\n%s", rec.Body.String())
	}
}

func TestHandleResearchValidation(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing symbol", map[string]interface{}{"underlying_price": 10}},
		{"zero price", map[string]interface{}{"symbol": "X"}},
		{"bad earnings", map[string]interface{}{"symbol": "X", "underlying_price": 10, "earnings_date": "12/11/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, "POST", "/api/v1/research", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleResearchBatch(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, "POST", "/api/v1/research/batch", map[string]interface{}{
		"requests": []map[string]interface{}{
			{"symbol": "AAA", "underlying_price": 10},
			{"symbol": "BBB", "underlying_price": 20, "sponsor": "Nobody"},
			{"symbol": "CCC", "underlying_price": 30, "sponsor": "Acme Bio"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got []models.ResearchSummary
	decodeData(t, decodeResponse(t, rec), &got)
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}
	for i, sym := range []string{"AAA", "BBB", "CCC"} {
		if got[i].Symbol != sym {
			t.Errorf("summary %d symbol = %q, want %q", i, got[i].Symbol, sym)
		}
	}
	if len(got[1].Catalysts) != 0 || len(got[2].Catalysts) != 1 {
		t.Errorf("catalyst counts = %d, %d", len(got[1].Catalysts), len(got[2].Catalysts))
	}

	rec = doRequest(t, srv, "POST", "/api/v1/research/batch", map[string]interface{}{"requests": []interface{}{}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", rec.Code)
	}
}

func TestHandleClinicalTrials(t *testing.T) {
	srv := testServer(t)

	rec := doRequest(t, srv, "GET", "/api/v1/clinical_trials?sponsor=Acme+Bio&phase=phase3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var trials []models.ClinicalTrial
	decodeData(t, decodeResponse(t, rec), &trials)
	if len(trials) != 1 || trials[0].NCTID != "NCT01234567" {
		t.Errorf("trials = %+v", trials)
	}

	rec = doRequest(t, srv, "GET", "/api/v1/clinical_trials?sponsor=Nobody", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); !strings.Contains(resp.Error, "No clinical trials found for the given query.") {
		t.Errorf("error = %q", resp.Error)
	}

	rec = doRequest(t, srv, "GET", "/api/v1/clinical_trials?phase=7", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad phase: expected 400, got %d", rec.Code)
	}
}
