package models

// ClinicalTrial is a flattened trials-registry record. Dates are YYYY-MM-DD
// strings and are empty when the registry had none or they did not parse.
type ClinicalTrial struct {
	NCTID                  string `json:"nct_id"                              yaml:"nct_id"`
	Title                  string `json:"title,omitempty"                     yaml:"title,omitempty"`
	BriefTitle             string `json:"brief_title,omitempty"               yaml:"brief_title,omitempty"`
	Acronym                string `json:"acronym,omitempty"                   yaml:"acronym,omitempty"`
	Sponsor                string `json:"sponsor,omitempty"                   yaml:"sponsor,omitempty"`
	Collaborators          string `json:"collaborators,omitempty"             yaml:"collaborators,omitempty"`
	Status                 string `json:"status,omitempty"                    yaml:"status,omitempty"`
	Phase                  string `json:"phase,omitempty"                     yaml:"phase,omitempty"`
	Conditions             string `json:"conditions,omitempty"                yaml:"conditions,omitempty"`
	Interventions          string `json:"interventions,omitempty"             yaml:"interventions,omitempty"`
	StartDate              string `json:"start_date,omitempty"                yaml:"start_date,omitempty"`
	PrimaryCompletionDate  string `json:"primary_completion_date,omitempty"   yaml:"primary_completion_date,omitempty"`
	CompletionDate         string `json:"completion_date,omitempty"           yaml:"completion_date,omitempty"`
	Enrollment             *int   `json:"enrollment,omitempty"                yaml:"enrollment,omitempty"`
	StudyType              string `json:"study_type,omitempty"                yaml:"study_type,omitempty"`
	PrimaryOutcome         string `json:"primary_outcome,omitempty"           yaml:"primary_outcome,omitempty"`
	LastUpdateDate         string `json:"last_update_date,omitempty"          yaml:"last_update_date,omitempty"`
	FirstPostedDate        string `json:"first_posted_date,omitempty"         yaml:"first_posted_date,omitempty"`
	ResultsFirstPostedDate string `json:"results_first_posted_date,omitempty" yaml:"results_first_posted_date,omitempty"`
	URL                    string `json:"url,omitempty"                       yaml:"url,omitempty"`
}

// DisplayName is the brief title, else the title, else "Unknown".
func (t ClinicalTrial) DisplayName() string {
	switch {
	case t.BriefTitle != "":
		return t.BriefTitle
	case t.Title != "":
		return t.Title
	}
	return "Unknown"
}
