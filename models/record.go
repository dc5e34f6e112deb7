package models

// Record is one decoded provider row. Fields a provider does not carry stay zero.
type Record struct {
	Symbol     string  `json:"symbol"`
	Base       string  `json:"base,omitempty"`
	Quote      string  `json:"quote,omitempty"`
	Name       string  `json:"name,omitempty"`
	Status     string  `json:"status,omitempty"`
	Contract   string  `json:"contract,omitempty"`
	Stable     bool    `json:"stable,omitempty"`
	Metric     float64 `json:"metric,omitempty"`
	Venue      string  `json:"venue,omitempty"`
	Position   float64 `json:"position,omitempty"`
	AssetClass string  `json:"asset_class,omitempty"`
}

// ParsedSymbol is a record symbol split into its parts.
// Base is never empty; Quote and Product are optional.
type ParsedSymbol struct {
	Base    string
	Quote   string
	Product string
	Raw     string
}

// Key identifies the instrument a parsed symbol refers to within one run.
func (p ParsedSymbol) Key() string {
	return p.Base + p.Quote
}
