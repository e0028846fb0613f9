package provider

// ModelType names a standard data model served by providers.
type ModelType string

const (
	// ModelClinicalTrials returns []models.ClinicalTrial sorted by primary
	// completion date.
	ModelClinicalTrials ModelType = "ClinicalTrials"
)

// AllModels returns every model type known to the engine.
func AllModels() []ModelType {
	return []ModelType{ModelClinicalTrials}
}

// ModelCategory groups a model for listings.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelClinicalTrials:
		return "Catalysts / Clinical Trials"
	default:
		return "Other"
	}
}
