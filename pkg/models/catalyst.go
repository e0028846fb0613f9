package models

// CatalystType classifies a scheduled event.
type CatalystType string

const (
	CatalystEarnings      CatalystType = "earnings"
	CatalystClinicalTrial CatalystType = "clinical_trial"
	CatalystOther         CatalystType = "event"
)

// CatalystEvent is a caller-supplied event. Fields holds any additional
// columns so that callers can point date/name lookups at custom keys.
type CatalystEvent struct {
	Date   string            `json:"date,omitempty"   yaml:"date,omitempty"   toml:"date,omitempty"`
	Name   string            `json:"name,omitempty"   yaml:"name,omitempty"   toml:"name,omitempty"`
	Type   CatalystType      `json:"type,omitempty"   yaml:"type,omitempty"   toml:"type,omitempty"`
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
}

// Lookup returns the value stored under key. The named struct fields answer
// for "date", "name" and "type"; anything else is read from Fields.
func (e CatalystEvent) Lookup(key string) string {
	switch key {
	case "date":
		return e.Date
	case "name":
		return e.Name
	case "type":
		return string(e.Type)
	}
	return e.Fields[key]
}

// CatalystExpirations relates one catalyst to the expirations around it.
type CatalystExpirations struct {
	CatalystDate                  string       `json:"catalyst_date"                              yaml:"catalyst_date"`
	CatalystName                  string       `json:"catalyst_name"                              yaml:"catalyst_name"`
	CatalystType                  CatalystType `json:"catalyst_type"                              yaml:"catalyst_type"`
	RelevantExpirations           []string     `json:"relevant_expirations"                       yaml:"relevant_expirations"`
	NearestPostCatalystExpiration string       `json:"nearest_post_catalyst_expiration,omitempty" yaml:"nearest_post_catalyst_expiration,omitempty"`
	DaysToCatalyst                int          `json:"days_to_catalyst"                           yaml:"days_to_catalyst"`
}

// CatalystPlayScore is the heuristic score of a catalyst-timed trade.
type CatalystPlayScore struct {
	CompositeScore     float64 `json:"composite_score"      yaml:"composite_score"`
	IVRankScore        float64 `json:"iv_rank_score"        yaml:"iv_rank_score"`
	TimeAlignmentScore float64 `json:"time_alignment_score" yaml:"time_alignment_score"`
	ExpectedMoveScore  float64 `json:"expected_move_score"  yaml:"expected_move_score"`
	Recommendation     string  `json:"recommendation"       yaml:"recommendation"`
}
