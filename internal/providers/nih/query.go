package nih

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/catalystiv/internal/provider"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

var phaseCodes = map[string]string{
	"early_phase1":   "EARLY_PHASE1",
	"phase1":         "PHASE1",
	"phase2":         "PHASE2",
	"phase3":         "PHASE3",
	"phase4":         "PHASE4",
	"not_applicable": "NA",
}

var statusCodes = map[string]string{
	"not_yet_recruiting":      "NOT_YET_RECRUITING",
	"recruiting":              "RECRUITING",
	"enrolling_by_invitation": "ENROLLING_BY_INVITATION",
	"active_not_recruiting":   "ACTIVE_NOT_RECRUITING",
	"completed":               "COMPLETED",
	"suspended":               "SUSPENDED",
	"terminated":              "TERMINATED",
	"withdrawn":               "WITHDRAWN",
}

var studyTypes = map[string]bool{
	"interventional":  true,
	"observational":   true,
	"expanded_access": true,
}

// TrialQuery is a validated clinical trials search.
type TrialQuery struct {
	Symbol       string
	Sponsor      string // takes precedence over Symbol as the lead sponsor
	Condition    string
	Intervention string
	Phase        string // early_phase1, phase1..phase4, not_applicable
	Status       string // e.g. recruiting, completed
	StudyType    string // interventional, observational, expanded_access
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int // 0 means the provider default
}

// QueryFromParams validates fetcher parameters into a TrialQuery.
func QueryFromParams(params provider.QueryParams) (TrialQuery, error) {
	q := TrialQuery{
		Symbol:       strings.TrimSpace(params[provider.ParamSymbol]),
		Sponsor:      strings.TrimSpace(params[provider.ParamSponsor]),
		Condition:    strings.TrimSpace(params[provider.ParamCondition]),
		Intervention: strings.TrimSpace(params[provider.ParamIntervention]),
		Phase:        strings.ToLower(strings.TrimSpace(params[provider.ParamPhase])),
		Status:       strings.ToLower(strings.TrimSpace(params[provider.ParamStatus])),
		StudyType:    strings.ToLower(strings.TrimSpace(params[provider.ParamStudyType])),
	}

	if q.Phase != "" {
		if _, ok := phaseCodes[q.Phase]; !ok {
			return q, &provider.ErrInvalidParam{Param: provider.ParamPhase, Value: q.Phase, Detail: "unknown phase"}
		}
	}
	if q.Status != "" {
		if _, ok := statusCodes[q.Status]; !ok {
			return q, &provider.ErrInvalidParam{Param: provider.ParamStatus, Value: q.Status, Detail: "unknown status"}
		}
	}
	if q.StudyType != "" && !studyTypes[q.StudyType] {
		return q, &provider.ErrInvalidParam{Param: provider.ParamStudyType, Value: q.StudyType, Detail: "unknown study type"}
	}

	for _, d := range []struct {
		key string
		dst **time.Time
	}{
		{provider.ParamStartDate, &q.StartDate},
		{provider.ParamEndDate, &q.EndDate},
	} {
		raw := strings.TrimSpace(params[d.key])
		if raw == "" {
			continue
		}
		t, err := utils.ParseDateStrict(raw)
		if err != nil {
			return q, &provider.ErrInvalidParam{Param: d.key, Value: raw, Detail: "expected YYYY-MM-DD"}
		}
		*d.dst = &t
	}

	if raw := strings.TrimSpace(params[provider.ParamLimit]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, &provider.ErrInvalidParam{Param: provider.ParamLimit, Value: raw, Detail: "expected a non-negative integer"}
		}
		q.Limit = n
	}
	return q, nil
}

// pageSize applies the default and the registry's hard cap.
func pageSize(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// buildQuery renders q as registry URL parameters.
func buildQuery(q TrialQuery, fallbackLimit int) url.Values {
	v := url.Values{}
	v.Set("format", "json")
	v.Set("pageSize", strconv.Itoa(pageSize(q.Limit, fallbackLimit)))

	var terms []string
	sponsor := q.Sponsor
	if sponsor == "" {
		sponsor = q.Symbol
	}
	if sponsor != "" {
		terms = append(terms, "AREA[LeadSponsorName]"+sponsor)
	}
	if q.Condition != "" {
		terms = append(terms, "AREA[Condition]"+q.Condition)
	}
	if q.Intervention != "" {
		terms = append(terms, "AREA[InterventionName]"+q.Intervention)
	}
	if len(terms) > 0 {
		v.Set("query.term", strings.Join(terms, " AND "))
	}

	var filters []string
	if q.Phase != "" {
		filters = append(filters, "AREA[Phase]"+phaseCodes[q.Phase])
	}
	if q.Status != "" {
		filters = append(filters, "AREA[OverallStatus]"+statusCodes[q.Status])
	}
	if q.StudyType != "" {
		filters = append(filters, "AREA[StudyType]"+strings.ToUpper(q.StudyType))
	}
	if len(filters) > 0 {
		v.Set("filter.advanced", strings.Join(filters, " AND "))
	}
	return v
}
