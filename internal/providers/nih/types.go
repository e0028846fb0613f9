package nih

import (
	"bytes"
	"encoding/json"
)

// --- ClinicalTrials.gov API v2 response shapes ---

type studiesResponse struct {
	Studies       []study `json:"studies"`
	NextPageToken string  `json:"nextPageToken"`
}

type study struct {
	ProtocolSection protocolSection `json:"protocolSection"`
}

type protocolSection struct {
	Identification identificationModule `json:"identificationModule"`
	Status         statusModule         `json:"statusModule"`
	Sponsor        sponsorModule        `json:"sponsorCollaboratorsModule"`
	Design         designModule         `json:"designModule"`
	Conditions     conditionsModule     `json:"conditionsModule"`
	Arms           armsModule           `json:"armsInterventionsModule"`
	Outcomes       outcomesModule       `json:"outcomesModule"`
}

type identificationModule struct {
	NCTID         string `json:"nctId"`
	BriefTitle    string `json:"briefTitle"`
	OfficialTitle string `json:"officialTitle"`
	Acronym       string `json:"acronym"`
}

type statusModule struct {
	OverallStatus               string    `json:"overallStatus"`
	StartDateStruct             dateField `json:"startDateStruct"`
	PrimaryCompletionDateStruct dateField `json:"primaryCompletionDateStruct"`
	CompletionDateStruct        dateField `json:"completionDateStruct"`
	LastUpdateSubmitDate        dateField `json:"lastUpdateSubmitDate"`
	LastUpdatePostDateStruct    dateField `json:"lastUpdatePostDateStruct"`
	StudyFirstPostDateStruct    dateField `json:"studyFirstPostDateStruct"`
	ResultsFirstPostDateStruct  dateField `json:"resultsFirstPostDateStruct"`
}

type namedEntity struct {
	Name string `json:"name"`
}

type sponsorModule struct {
	LeadSponsor   namedEntity   `json:"leadSponsor"`
	Collaborators []namedEntity `json:"collaborators"`
}

type designModule struct {
	StudyType      string   `json:"studyType"`
	Phases         []string `json:"phases"`
	EnrollmentInfo struct {
		Count *int   `json:"count"`
		Type  string `json:"type"`
	} `json:"enrollmentInfo"`
}

type conditionsModule struct {
	Conditions []string `json:"conditions"`
}

type armsModule struct {
	Interventions []struct {
		Type string `json:"type"`
		Name string `json:"name"`
	} `json:"interventions"`
}

type outcomesModule struct {
	PrimaryOutcomes []struct {
		Measure   string `json:"measure"`
		TimeFrame string `json:"timeFrame"`
	} `json:"primaryOutcomes"`
}

// dateField accepts both registry date shapes: a bare "2024-01-15" string
// and a {"date": "...", "type": "ESTIMATED"} object.
type dateField struct {
	Date string `json:"date"`
	Type string `json:"type"`
}

func (d *dateField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		return json.Unmarshal(b, &d.Date)
	}
	type plain dateField
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		// an unexpected shape is an absent date, not a decode failure
		return nil
	}
	*d = dateField(p)
	return nil
}
