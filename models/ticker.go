package models

import (
	"fmt"
	"strings"
)

// PerpetualSuffix marks a perpetual derivative product.
const PerpetualSuffix = ".P"

// CanonicalTicker has the form NAMESPACE:SYMBOL[.SUFFIX].
type CanonicalTicker string

// Validate checks the single-separator invariant.
func (t CanonicalTicker) Validate() error {
	s := string(t)
	if strings.Count(s, ":") != 1 {
		return fmt.Errorf("ticker %q must contain exactly one ':'", s)
	}
	ns, sym, _ := strings.Cut(s, ":")
	if ns == "" || sym == "" {
		return fmt.Errorf("ticker %q has an empty namespace or symbol", s)
	}
	return nil
}

func (t CanonicalTicker) Namespace() string {
	ns, _, _ := strings.Cut(string(t), ":")
	return ns
}

func (t CanonicalTicker) Perpetual() bool {
	return strings.HasSuffix(string(t), PerpetualSuffix)
}

// Watchlist is an ordered list of tickers without duplicates.
type Watchlist []CanonicalTicker

// Lines renders the watchlist in the artifact format: one ticker per line, newline terminated.
func (w Watchlist) Lines() []byte {
	var b strings.Builder
	for _, t := range w {
		b.WriteString(string(t))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func (w Watchlist) Strings() []string {
	out := make([]string, len(w))
	for i, t := range w {
		out[i] = string(t)
	}
	return out
}
