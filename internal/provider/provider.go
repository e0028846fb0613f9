// Package provider defines the data provider abstraction: a Provider owns
// one Fetcher per model type, and a Registry routes requests for a model
// to the provider that serves it.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProviderCredential describes a credential a provider needs.
type ProviderCredential struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"`
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"`
}

// Provider is implemented by every data source.
type Provider interface {
	Info() ProviderInfo

	// Init validates and stores credentials. Called once before Register.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the given model type, or nil if unsupported.
	Fetcher(model ModelType) Fetcher

	SupportedModels() []ModelType

	// Ping verifies the provider is reachable.
	Ping(ctx context.Context) error
}

// QueryParams is the generic string parameter map passed to fetchers.
// Dates are YYYY-MM-DD. Each fetcher documents the keys it reads.
type QueryParams map[string]string

// Common query parameter keys.
const (
	ParamSymbol       = "symbol"
	ParamSponsor      = "sponsor"
	ParamCondition    = "condition"
	ParamIntervention = "intervention"
	ParamPhase        = "phase"
	ParamStatus       = "status"
	ParamStudyType    = "study_type"
	ParamStartDate    = "start_date"
	ParamEndDate      = "end_date"
	ParamLimit        = "limit"
	ParamProvider     = "provider"
)

// FetchResult wraps fetched data with its origin.
type FetchResult struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"` // typed per model, e.g. []models.ClinicalTrial
	FetchedAt time.Time `json:"fetched_at"`
}

// Fetcher retrieves one model type.
type Fetcher interface {
	ModelType() ModelType
	Description() string
	RequiredParams() []string
	OptionalParams() []string

	// Fetch retrieves data for the given query parameters. A query that
	// matches nothing returns *ErrEmptyData.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider doesn't support a model type.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidParam is returned when a query parameter has an unusable value.
type ErrInvalidParam struct {
	Param  string
	Value  string
	Detail string
}

func (e *ErrInvalidParam) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Param, e.Value, e.Detail)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ErrEmptyData reports that a well-formed query matched no records. It is
// distinct from a failed request.
type ErrEmptyData struct {
	Message string
}

func (e *ErrEmptyData) Error() string {
	if e.Message == "" {
		return "no data found"
	}
	return e.Message
}

// IsEmptyData reports whether err, or anything it wraps, is *ErrEmptyData.
func IsEmptyData(err error) bool {
	var empty *ErrEmptyData
	return errors.As(err, &empty)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
