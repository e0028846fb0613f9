// Package models defines the option chain, catalyst, clinical trial and
// research summary types shared across catalystiv.
package models

import "sort"

// OptionType is the side of an option contract.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Valid reports whether t is a known option side.
func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// Column names understood by OptionRow.Field.
const (
	FieldStrike            = "strike"
	FieldImpliedVolatility = "implied_volatility"
	FieldOpenInterest      = "open_interest"
	FieldVolume            = "volume"
	FieldDTE               = "dte"
	FieldUnderlyingPrice   = "underlying_price"
	FieldLastPrice         = "last_price"
	FieldBid               = "bid"
	FieldAsk               = "ask"
	FieldMark              = "mark"
	FieldDelta             = "delta"
	FieldGamma             = "gamma"
	FieldTheta             = "theta"
	FieldVega              = "vega"
)

// OptionRow is a single contract in an option chain as supplied by a chain provider.
// Optional columns are pointers so that "absent" and "zero" stay distinguishable.
type OptionRow struct {
	Strike            float64    `json:"strike"                       yaml:"strike"                       toml:"strike"`
	Expiration        string     `json:"expiration"                   yaml:"expiration"                   toml:"expiration"` // YYYY-MM-DD
	OptionType        OptionType `json:"option_type"                  yaml:"option_type"                  toml:"option_type"`
	ImpliedVolatility *float64   `json:"implied_volatility,omitempty" yaml:"implied_volatility,omitempty" toml:"implied_volatility,omitempty"`
	OpenInterest      int64      `json:"open_interest"                yaml:"open_interest"                toml:"open_interest"`
	Volume            int64      `json:"volume"                       yaml:"volume"                       toml:"volume"`
	DTE               *int       `json:"dte,omitempty"                yaml:"dte,omitempty"                toml:"dte,omitempty"`
	UnderlyingPrice   *float64   `json:"underlying_price,omitempty"   yaml:"underlying_price,omitempty"   toml:"underlying_price,omitempty"`

	LastPrice *float64 `json:"last_price,omitempty" yaml:"last_price,omitempty" toml:"last_price,omitempty"`
	Bid       *float64 `json:"bid,omitempty"        yaml:"bid,omitempty"        toml:"bid,omitempty"`
	Ask       *float64 `json:"ask,omitempty"        yaml:"ask,omitempty"        toml:"ask,omitempty"`
	Mark      *float64 `json:"mark,omitempty"       yaml:"mark,omitempty"       toml:"mark,omitempty"`
	Delta     *float64 `json:"delta,omitempty"      yaml:"delta,omitempty"      toml:"delta,omitempty"`
	Gamma     *float64 `json:"gamma,omitempty"      yaml:"gamma,omitempty"      toml:"gamma,omitempty"`
	Theta     *float64 `json:"theta,omitempty"      yaml:"theta,omitempty"      toml:"theta,omitempty"`
	Vega      *float64 `json:"vega,omitempty"       yaml:"vega,omitempty"       toml:"vega,omitempty"`

	// Extra holds provider-specific numeric columns.
	Extra map[string]float64 `json:"extra,omitempty" yaml:"extra,omitempty" toml:"extra,omitempty"`

	// Set by catalyst screening when scoring is requested.
	CatalystScore  *float64 `json:"catalyst_score,omitempty" yaml:"catalyst_score,omitempty" toml:"catalyst_score,omitempty"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty" toml:"recommendation,omitempty"`
}

// Field returns the numeric value of the named column and whether the row carries it.
func (r OptionRow) Field(name string) (float64, bool) {
	switch name {
	case FieldStrike:
		return r.Strike, true
	case FieldOpenInterest:
		return float64(r.OpenInterest), true
	case FieldVolume:
		return float64(r.Volume), true
	case FieldDTE:
		if r.DTE == nil {
			return 0, false
		}
		return float64(*r.DTE), true
	case FieldImpliedVolatility:
		return deref(r.ImpliedVolatility)
	case FieldUnderlyingPrice:
		return deref(r.UnderlyingPrice)
	case FieldLastPrice:
		return deref(r.LastPrice)
	case FieldBid:
		return deref(r.Bid)
	case FieldAsk:
		return deref(r.Ask)
	case FieldMark:
		return deref(r.Mark)
	case FieldDelta:
		return deref(r.Delta)
	case FieldGamma:
		return deref(r.Gamma)
	case FieldTheta:
		return deref(r.Theta)
	case FieldVega:
		return deref(r.Vega)
	}
	v, ok := r.Extra[name]
	return v, ok
}

// Clone returns a copy of the row that shares no pointers with r.
func (r OptionRow) Clone() OptionRow {
	c := r
	c.ImpliedVolatility = clonePtr(r.ImpliedVolatility)
	c.DTE = clonePtr(r.DTE)
	c.UnderlyingPrice = clonePtr(r.UnderlyingPrice)
	c.LastPrice = clonePtr(r.LastPrice)
	c.Bid = clonePtr(r.Bid)
	c.Ask = clonePtr(r.Ask)
	c.Mark = clonePtr(r.Mark)
	c.Delta = clonePtr(r.Delta)
	c.Gamma = clonePtr(r.Gamma)
	c.Theta = clonePtr(r.Theta)
	c.Vega = clonePtr(r.Vega)
	c.CatalystScore = clonePtr(r.CatalystScore)
	if r.Extra != nil {
		c.Extra = make(map[string]float64, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// Chain is an ordered collection of option rows.
type Chain []OptionRow

// HasField reports whether any row carries the named column.
func (c Chain) HasField(name string) bool {
	for _, r := range c {
		if _, ok := r.Field(name); ok {
			return true
		}
	}
	return false
}

// Expirations returns the distinct expiration strings in ascending order.
func (c Chain) Expirations() []string {
	seen := make(map[string]bool, len(c))
	out := make([]string, 0)
	for _, r := range c {
		if r.Expiration == "" || seen[r.Expiration] {
			continue
		}
		seen[r.Expiration] = true
		out = append(out, r.Expiration)
	}
	sort.Strings(out)
	return out
}

// Clone deep-copies the chain.
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	for i, r := range c {
		out[i] = r.Clone()
	}
	return out
}

// Float returns a pointer to v, for filling optional columns.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
