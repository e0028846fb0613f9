package nih

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/seenimoa/catalystiv/internal/provider"
	"github.com/seenimoa/catalystiv/pkg/models"
)

const studiesFixture = `{
  "studies": [
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT00000003", "briefTitle": "Undated study"},
        "statusModule": {"overallStatus": "RECRUITING", "primaryCompletionDateStruct": {"date": "2027-03", "type": "ESTIMATED"}},
        "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Acme Bio"}}
      }
    },
    {
      "protocolSection": {
        "identificationModule": {
          "nctId": "NCT00000002",
          "briefTitle": "Late study",
          "officialTitle": "A Phase 3 Study of AB-2 in Adults",
          "acronym": "LATE"
        },
        "statusModule": {
          "overallStatus": "ACTIVE_NOT_RECRUITING",
          "startDateStruct": {"date": "2024-01-10"},
          "primaryCompletionDateStruct": {"date": "2027-06-30", "type": "ESTIMATED"},
          "completionDateStruct": {"date": "2027-12-31", "type": "ESTIMATED"},
          "lastUpdatePostDateStruct": {"date": "2026-09-01", "type": "ACTUAL"},
          "studyFirstPostDateStruct": {"date": "2023-12-01", "type": "ACTUAL"}
        },
        "sponsorCollaboratorsModule": {
          "leadSponsor": {"name": "Acme Bio"},
          "collaborators": [{"name": "Univ A"}, {"name": "Univ B"}]
        },
        "designModule": {"studyType": "INTERVENTIONAL", "phases": ["PHASE2", "PHASE3"], "enrollmentInfo": {"count": 420}},
        "conditionsModule": {"conditions": ["Asthma", "COPD"]},
        "armsInterventionsModule": {"interventions": [{"type": "DRUG", "name": "AB-2"}, {"type": "DRUG", "name": "Placebo"}]},
        "outcomesModule": {"primaryOutcomes": [{"measure": "FEV1 change"}, {"measure": "Second"}]}
      }
    },
    {
      "protocolSection": {
        "identificationModule": {"nctId": "NCT00000001", "briefTitle": "Early study"},
        "statusModule": {"overallStatus": "RECRUITING", "primaryCompletionDateStruct": "2026-12-15", "lastUpdateSubmitDate": "2026-08-20"},
        "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Acme Bio"}}
      }
    }
  ]
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	for _, m := range mutate {
		m(&cfg)
	}
	return NewWithConfig(cfg)
}

func fetchTrials(t *testing.T, p *Provider, params provider.QueryParams) ([]models.ClinicalTrial, error) {
	t.Helper()
	f := p.Fetcher(provider.ModelClinicalTrials)
	if f == nil {
		t.Fatal("ClinicalTrials fetcher not registered")
	}
	res, err := f.Fetch(context.Background(), params)
	if err != nil {
		return nil, err
	}
	trials, ok := res.Data.([]models.ClinicalTrial)
	if !ok {
		t.Fatalf("expected []models.ClinicalTrial, got %T", res.Data)
	}
	return trials, nil
}

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()
	if info.Name != "nih" {
		t.Errorf("expected name nih, got %s", info.Name)
	}
	if info.Website == "" {
		t.Error("expected non-empty website")
	}
	if len(info.Credentials) != 0 {
		t.Errorf("expected 0 credentials, got %d", len(info.Credentials))
	}
	if len(info.Models) != 1 || info.Models[0] != provider.ModelClinicalTrials {
		t.Errorf("expected [ClinicalTrials], got %v", info.Models)
	}
}

func TestFetchTransformsAndSorts(t *testing.T) {
	var gotQuery map[string][]string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(studiesFixture))
	})

	trials, err := fetchTrials(t, p, provider.QueryParams{
		provider.ParamSymbol:  "ACME",
		provider.ParamSponsor: "Acme Bio",
		provider.ParamPhase:   "phase3",
		provider.ParamStatus:  "recruiting",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if got := gotQuery["query.term"]; len(got) != 1 || got[0] != "AREA[LeadSponsorName]Acme Bio" {
		t.Errorf("query.term = %v", got)
	}
	if got := gotQuery["filter.advanced"]; len(got) != 1 || got[0] != "AREA[Phase]PHASE3 AND AREA[OverallStatus]RECRUITING" {
		t.Errorf("filter.advanced = %v", got)
	}
	if got := gotQuery["pageSize"]; len(got) != 1 || got[0] != "100" {
		t.Errorf("pageSize = %v", got)
	}

	if len(trials) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(trials))
	}
	order := []string{trials[0].NCTID, trials[1].NCTID, trials[2].NCTID}
	want := []string{"NCT00000001", "NCT00000002", "NCT00000003"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	early := trials[0]
	if early.PrimaryCompletionDate != "2026-12-15" {
		t.Errorf("bare date string should parse, got %q", early.PrimaryCompletionDate)
	}
	if early.LastUpdateDate != "2026-08-20" {
		t.Errorf("LastUpdateDate = %q", early.LastUpdateDate)
	}
	if early.Title != "Early study" {
		t.Errorf("title should fall back to brief title, got %q", early.Title)
	}

	late := trials[1]
	checks := map[string][2]string{
		"title":         {late.Title, "A Phase 3 Study of AB-2 in Adults"},
		"brief_title":   {late.BriefTitle, "Late study"},
		"acronym":       {late.Acronym, "LATE"},
		"sponsor":       {late.Sponsor, "Acme Bio"},
		"collaborators": {late.Collaborators, "Univ A, Univ B"},
		"status":        {late.Status, "ACTIVE_NOT_RECRUITING"},
		"phase":         {late.Phase, "PHASE2, PHASE3"},
		"conditions":    {late.Conditions, "Asthma, COPD"},
		"interventions": {late.Interventions, "AB-2, Placebo"},
		"start":         {late.StartDate, "2024-01-10"},
		"primary":       {late.PrimaryCompletionDate, "2027-06-30"},
		"completion":    {late.CompletionDate, "2027-12-31"},
		"study_type":    {late.StudyType, "INTERVENTIONAL"},
		"outcome":       {late.PrimaryOutcome, "FEV1 change"},
		"last_update":   {late.LastUpdateDate, "2026-09-01"},
		"first_posted":  {late.FirstPostedDate, "2023-12-01"},
		"url":           {late.URL, "https://clinicaltrials.gov/study/NCT00000002"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}
	if late.Enrollment == nil || *late.Enrollment != 420 {
		t.Errorf("enrollment = %v", late.Enrollment)
	}
	if late.ResultsFirstPostedDate != "" {
		t.Errorf("absent date should be empty, got %q", late.ResultsFirstPostedDate)
	}

	if trials[2].PrimaryCompletionDate != "" {
		t.Errorf("month-precision date should be absent, got %q", trials[2].PrimaryCompletionDate)
	}
}

func TestFetchDateWindow(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(studiesFixture))
	})

	trials, err := fetchTrials(t, p, provider.QueryParams{
		provider.ParamSponsor:   "Acme Bio",
		provider.ParamStartDate: "2027-01-01",
		provider.ParamEndDate:   "2027-06-30",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// NCT1 is before the window; the undated NCT3 is never excluded.
	if len(trials) != 2 || trials[0].NCTID != "NCT00000002" || trials[1].NCTID != "NCT00000003" {
		t.Fatalf("unexpected trials: %+v", trials)
	}
}

func TestFetchEmptyResults(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"studies": []}`))
	})

	_, err := fetchTrials(t, p, provider.QueryParams{provider.ParamSponsor: "Nobody"})
	var empty *provider.ErrEmptyData
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyData, got %v", err)
	}
	if empty.Message != msgNoTrials {
		t.Errorf("message = %q", empty.Message)
	}
}

func TestFetchNothingInWindow(t *testing.T) {
	body := `{"studies": [{"protocolSection": {"identificationModule": {"nctId": "NCT9"},
		"statusModule": {"primaryCompletionDateStruct": {"date": "2025-01-01"}}}}]}`
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	_, err := fetchTrials(t, p, provider.QueryParams{provider.ParamStartDate: "2026-01-01"})
	var empty *provider.ErrEmptyData
	if !errors.As(err, &empty) || empty.Message != msgNoTrialsInRange {
		t.Fatalf("expected date-window ErrEmptyData, got %v", err)
	}
}

func TestFetchFailureIsEmpty(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"malformed json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"studies": [`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			p := newTestProvider(t, h)
			_, err := fetchTrials(t, p, provider.QueryParams{provider.ParamSponsor: "Acme"})
			if !provider.IsEmptyData(err) {
				t.Fatalf("expected ErrEmptyData, got %v", err)
			}
		})
	}
}

func TestBreakerOpensWithoutRetrying(t *testing.T) {
	var hits int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "down", http.StatusBadGateway)
	}, func(c *Config) {
		c.BreakerFailures = 2
		c.BreakerCooldown = time.Hour
	})

	for i := 0; i < 4; i++ {
		if _, err := fetchTrials(t, p, provider.QueryParams{}); !provider.IsEmptyData(err) {
			t.Fatalf("call %d: expected ErrEmptyData, got %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("expected 2 requests before the breaker opened, got %d", got)
	}
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	var hits int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(studiesFixture))
	}, func(c *Config) {
		c.BreakerFailures = 1
		c.BreakerCooldown = time.Hour
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := p.Fetcher(provider.ModelClinicalTrials)
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(ctx, provider.QueryParams{}); err == nil {
			t.Fatalf("call %d: expected an error for a cancelled context", i)
		}
	}
	if state := p.breaker.State(); state != gobreaker.StateClosed {
		t.Fatalf("breaker state = %s after cancelled calls, want closed", state)
	}

	trials, err := fetchTrials(t, p, provider.QueryParams{})
	if err != nil {
		t.Fatalf("fetch after cancellations: %v", err)
	}
	if len(trials) == 0 {
		t.Error("expected trials once the caller stops cancelling")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 registry request, got %d", got)
	}
}

func TestFetchInvalidParams(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid params")
	})

	for _, params := range []provider.QueryParams{
		{provider.ParamPhase: "phase9"},
		{provider.ParamStatus: "paused"},
		{provider.ParamStudyType: "survey"},
		{provider.ParamStartDate: "01/02/2026"},
		{provider.ParamLimit: "ten"},
	} {
		_, err := fetchTrials(t, p, params)
		var invalid *provider.ErrInvalidParam
		if !errors.As(err, &invalid) {
			t.Errorf("%v: expected ErrInvalidParam, got %v", params, err)
		}
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		q        TrialQuery
		term     string
		advanced string
		size     string
	}{
		{
			name: "symbol as sponsor",
			q:    TrialQuery{Symbol: "MRNA", Condition: "Influenza", Intervention: "mRNA-1010"},
			term: "AREA[LeadSponsorName]MRNA AND AREA[Condition]Influenza AND AREA[InterventionName]mRNA-1010",
			size: "100",
		},
		{
			name:     "all filters",
			q:        TrialQuery{Phase: "not_applicable", Status: "completed", StudyType: "expanded_access", Limit: 5000},
			advanced: "AREA[Phase]NA AND AREA[OverallStatus]COMPLETED AND AREA[StudyType]EXPANDED_ACCESS",
			size:     "1000",
		},
		{
			name:     "early phase",
			q:        TrialQuery{Phase: "early_phase1", Limit: 20},
			advanced: "AREA[Phase]EARLY_PHASE1",
			size:     "20",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := buildQuery(tt.q, 100)
			if v.Get("format") != "json" {
				t.Errorf("format = %q", v.Get("format"))
			}
			if v.Get("query.term") != tt.term {
				t.Errorf("query.term = %q, want %q", v.Get("query.term"), tt.term)
			}
			if v.Get("filter.advanced") != tt.advanced {
				t.Errorf("filter.advanced = %q, want %q", v.Get("filter.advanced"), tt.advanced)
			}
			if v.Get("pageSize") != tt.size {
				t.Errorf("pageSize = %q, want %q", v.Get("pageSize"), tt.size)
			}
		})
	}
}

func TestDateFieldShapes(t *testing.T) {
	var got struct {
		A dateField `json:"a"`
		B dateField `json:"b"`
		C dateField `json:"c"`
		D dateField `json:"d"`
	}
	raw := `{"a": "2026-01-02", "b": {"date": "2026-03-04", "type": "ACTUAL"}, "c": null, "d": 17}`
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.A.Date != "2026-01-02" || got.B.Date != "2026-03-04" || got.B.Type != "ACTUAL" {
		t.Errorf("unexpected parse: %+v", got)
	}
	if got.C.Date != "" || got.D.Date != "" {
		t.Errorf("null and odd shapes should be absent: %+v", got)
	}
}

func TestSortByCompletionUndatedLast(t *testing.T) {
	trials := []models.ClinicalTrial{
		{NCTID: "a"},
		{NCTID: "b", PrimaryCompletionDate: "2027-01-01"},
		{NCTID: "c"},
		{NCTID: "d", PrimaryCompletionDate: "2026-01-01"},
	}
	sortByCompletion(trials)
	got := []string{trials[0].NCTID, trials[1].NCTID, trials[2].NCTID, trials[3].NCTID}
	want := []string{"d", "b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
