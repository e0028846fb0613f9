package provider

import (
	"context"
	"sort"
)

// BaseFetcher carries the static description of a fetcher. Embed it in
// concrete fetchers and implement Fetch.
type BaseFetcher struct {
	model       ModelType
	description string
	required    []string
	optional    []string
}

func NewBaseFetcher(model ModelType, desc string, required, optional []string) BaseFetcher {
	return BaseFetcher{
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.description }
func (b *BaseFetcher) RequiredParams() []string { return b.required }
func (b *BaseFetcher) OptionalParams() []string { return b.optional }

// BaseProvider implements the bookkeeping half of Provider. Embed it in
// concrete providers.
type BaseProvider struct {
	info        ProviderInfo
	fetchers    map[ModelType]Fetcher
	credentials map[string]string
}

func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[ModelType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

// Init fails when a required credential is missing or empty.
func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, cred := range bp.info.Credentials {
		if !cred.Required {
			continue
		}
		if val, ok := credentials[cred.Name]; !ok || val == "" {
			return &ErrInvalidCredentials{
				Provider: bp.info.Name,
				Detail:   "missing required credential: " + cred.Name,
			}
		}
	}
	if credentials != nil {
		bp.credentials = credentials
	}
	return nil
}

func (bp *BaseProvider) Fetcher(model ModelType) Fetcher {
	return bp.fetchers[model]
}

// SupportedModels returns the registered model types in name order.
func (bp *BaseProvider) SupportedModels() []ModelType {
	out := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (bp *BaseProvider) Ping(ctx context.Context) error {
	return nil
}

// RegisterFetcher adds f, replacing any fetcher for the same model.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// Credential returns a stored credential value.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}
