package processor

import (
	"watchlist/internal/symbols"
	"watchlist/models"
)

// Namespacer formats candidates as NAMESPACE:BASE[QUOTE][SUFFIX].
type Namespacer struct {
	Namespace   string
	Venues      symbols.VenueMap
	AppendQuote string
	KeepQuote   bool
	Suffix      string
}

func NewNamespacer(p Profile) Namespacer {
	return Namespacer{
		Namespace:   p.Namespace,
		Venues:      p.Venues,
		AppendQuote: p.AppendQuote,
		KeepQuote:   p.KeepQuote,
		Suffix:      p.Suffix,
	}
}

// Format builds the canonical ticker for c.
func (n Namespacer) Format(c Candidate) models.CanonicalTicker {
	ns := n.Namespace
	if n.Venues != nil && c.Record.Venue != "" {
		ns = n.Venues.Namespace(c.Record.Venue)
	}
	sym := c.Symbol.Base
	switch {
	case n.KeepQuote && c.Symbol.Quote != "":
		sym += c.Symbol.Quote
	case n.AppendQuote != "":
		sym += n.AppendQuote
	}
	return models.CanonicalTicker(ns + ":" + sym + n.Suffix)
}
