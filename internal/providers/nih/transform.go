package nih

import (
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

const studyURL = "https://clinicaltrials.gov/study/"

func transformStudies(studies []study) []models.ClinicalTrial {
	out := make([]models.ClinicalTrial, 0, len(studies))
	for _, s := range studies {
		out = append(out, transformStudy(s))
	}
	return out
}

func transformStudy(s study) models.ClinicalTrial {
	p := s.ProtocolSection
	id := p.Identification

	title := id.OfficialTitle
	if title == "" {
		title = id.BriefTitle
	}

	collaborators := make([]string, len(p.Sponsor.Collaborators))
	for i, c := range p.Sponsor.Collaborators {
		collaborators[i] = c.Name
	}
	interventions := make([]string, len(p.Arms.Interventions))
	for i, in := range p.Arms.Interventions {
		interventions[i] = in.Name
	}
	var primaryOutcome string
	if len(p.Outcomes.PrimaryOutcomes) > 0 {
		primaryOutcome = p.Outcomes.PrimaryOutcomes[0].Measure
	}

	lastUpdate := normalizeDate(p.Status.LastUpdatePostDateStruct)
	if lastUpdate == "" {
		lastUpdate = normalizeDate(p.Status.LastUpdateSubmitDate)
	}

	t := models.ClinicalTrial{
		NCTID:                  id.NCTID,
		Title:                  title,
		BriefTitle:             id.BriefTitle,
		Acronym:                id.Acronym,
		Sponsor:                p.Sponsor.LeadSponsor.Name,
		Collaborators:          strings.Join(collaborators, ", "),
		Status:                 p.Status.OverallStatus,
		Phase:                  strings.Join(p.Design.Phases, ", "),
		Conditions:             strings.Join(p.Conditions.Conditions, ", "),
		Interventions:          strings.Join(interventions, ", "),
		StartDate:              normalizeDate(p.Status.StartDateStruct),
		PrimaryCompletionDate:  normalizeDate(p.Status.PrimaryCompletionDateStruct),
		CompletionDate:         normalizeDate(p.Status.CompletionDateStruct),
		Enrollment:             p.Design.EnrollmentInfo.Count,
		StudyType:              p.Design.StudyType,
		PrimaryOutcome:         primaryOutcome,
		LastUpdateDate:         lastUpdate,
		FirstPostedDate:        normalizeDate(p.Status.StudyFirstPostDateStruct),
		ResultsFirstPostedDate: normalizeDate(p.Status.ResultsFirstPostDateStruct),
	}
	if id.NCTID != "" {
		t.URL = studyURL + id.NCTID
	}
	return t
}

// normalizeDate reduces a registry date to YYYY-MM-DD. Month-precision or
// malformed dates come back empty.
func normalizeDate(d dateField) string {
	parsed, ok := utils.ParseDate(d.Date)
	if !ok {
		return ""
	}
	return utils.FormatDate(parsed)
}

// filterByCompletion drops trials whose primary completion date falls
// outside [start, end]. Trials without that date are kept.
func filterByCompletion(trials []models.ClinicalTrial, start, end *time.Time) []models.ClinicalTrial {
	out := make([]models.ClinicalTrial, 0, len(trials))
	for _, t := range trials {
		d, ok := utils.ParseDate(t.PrimaryCompletionDate)
		if ok {
			if start != nil && d.Before(utils.DateOf(*start)) {
				continue
			}
			if end != nil && d.After(utils.DateOf(*end)) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// sortByCompletion orders trials by primary completion date, soonest first,
// with undated trials last.
func sortByCompletion(trials []models.ClinicalTrial) {
	sort.SliceStable(trials, func(i, j int) bool {
		a, b := trials[i].PrimaryCompletionDate, trials[j].PrimaryCompletionDate
		switch {
		case a == "":
			return false
		case b == "":
			return true
		}
		return a < b
	})
}
