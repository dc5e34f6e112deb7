package processor

import (
	"regexp"
	"strings"

	"watchlist/models"
)

// SplitRule selects how a record symbol is broken into base and quote.
type SplitRule int

const (
	// SplitNone takes the whole symbol as the base.
	SplitNone SplitRule = iota
	// SplitFields uses the provider supplied base and quote fields.
	SplitFields
	// SplitDelimiter splits BASE<delim>QUOTE.
	SplitDelimiter
	// SplitProduct splits PRODUCT<delim>BASE<delim>QUOTE.
	SplitProduct
	// SplitQuery extracts the symbol= parameter from a URL.
	SplitQuery
)

var (
	symbolToken = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	querySymbol = regexp.MustCompile(`[?&]symbol=([A-Z0-9.-]+)`)
)

// Parse turns a record into a ParsedSymbol according to the profile split rule.
// A returned error always wraps models.ErrMalformedSymbol.
func Parse(p Profile, r models.Record) (models.ParsedSymbol, error) {
	var (
		ps  models.ParsedSymbol
		err error
	)
	switch p.Split {
	case SplitFields:
		ps, err = SplitBaseQuote(r.Symbol, r.Base, r.Quote)
	case SplitDelimiter:
		ps, err = SplitPair(r.Symbol, p.Delimiter)
	case SplitProduct:
		ps, err = SplitProductSymbol(r.Symbol, p.Delimiter)
	case SplitQuery:
		var sym string
		sym, err = ExtractQuerySymbol(r.Symbol)
		ps = models.ParsedSymbol{Base: sym, Raw: r.Symbol}
	default:
		ps, err = BareSymbol(r.Symbol)
	}
	if err != nil {
		return models.ParsedSymbol{}, err
	}
	if p.Uppercase {
		ps.Base = strings.ToUpper(ps.Base)
		ps.Quote = strings.ToUpper(ps.Quote)
	}
	return ps, nil
}

// SplitPair splits "BTC-USDT" style symbols. Everything before the last
// delimiter is the base.
func SplitPair(sym, delim string) (models.ParsedSymbol, error) {
	if delim == "" {
		return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "no delimiter configured")
	}
	parts := strings.Split(sym, delim)
	if len(parts) < 2 {
		return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "expected BASE"+delim+"QUOTE")
	}
	for _, part := range parts {
		if !symbolToken.MatchString(part) {
			return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "empty or invalid part")
		}
	}
	return models.ParsedSymbol{
		Base:  strings.Join(parts[:len(parts)-1], ""),
		Quote: parts[len(parts)-1],
		Raw:   sym,
	}, nil
}

// SplitProductSymbol splits "PERP_BTC_USDT" style symbols. The leading token is
// the product type, the last the quote, and any tokens in between are joined
// into the base.
func SplitProductSymbol(sym, delim string) (models.ParsedSymbol, error) {
	if delim == "" {
		return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "no delimiter configured")
	}
	parts := strings.Split(sym, delim)
	if len(parts) < 3 {
		return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "expected PRODUCT"+delim+"BASE"+delim+"QUOTE")
	}
	for _, part := range parts {
		if !symbolToken.MatchString(part) {
			return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "empty or invalid part")
		}
	}
	return models.ParsedSymbol{
		Product: parts[0],
		Base:    strings.Join(parts[1:len(parts)-1], ""),
		Quote:   parts[len(parts)-1],
		Raw:     sym,
	}, nil
}

// SplitBaseQuote validates provider supplied base and quote fields.
func SplitBaseQuote(sym, base, quote string) (models.ParsedSymbol, error) {
	if !symbolToken.MatchString(base) {
		return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "invalid base asset")
	}
	if quote != "" && !symbolToken.MatchString(quote) {
		return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "invalid quote asset")
	}
	return models.ParsedSymbol{Base: base, Quote: quote, Raw: sym}, nil
}

// BareSymbol accepts a symbol taken verbatim from a document, such as table cell text.
func BareSymbol(sym string) (models.ParsedSymbol, error) {
	base := strings.TrimSpace(sym)
	if base == "" {
		return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "empty symbol")
	}
	if strings.ContainsAny(base, ": \t\r\n") {
		return models.ParsedSymbol{}, models.MalformedSymbolError(sym, "symbol contains a separator")
	}
	return models.ParsedSymbol{Base: base, Raw: sym}, nil
}

// ExtractQuerySymbol returns the value of the symbol query parameter in href.
func ExtractQuerySymbol(href string) (string, error) {
	m := querySymbol.FindStringSubmatch(href)
	if m == nil || m[1] == "" {
		return "", models.MalformedSymbolError(href, "no symbol parameter")
	}
	return m[1], nil
}
