package processor

import (
	"fmt"
	"regexp"
	"sort"

	"watchlist/internal/symbols"
)

// Profile is the per-provider rule set driving the generic pipeline.
type Profile struct {
	ID    string
	Label string

	Split     SplitRule
	Delimiter string
	Uppercase bool

	Statuses         []string
	Contracts        []string
	Product          string
	RejectStableFlag bool
	AssetClasses     []string
	Quote            string
	Denylist         []string
	Patterns         []*regexp.Regexp
	DenySuffixes     []string
	StableNames      []string
	WrappedName      string
	WrapPrefixes     []string
	RequirePosition  bool

	Rank RankMode

	Namespace   string
	Venues      symbols.VenueMap
	KeepQuote   bool
	AppendQuote string
	Suffix      string
}

// Provider ids.
const (
	BinanceSpot           = "binance-spot"
	BinancePerp           = "binance-perp"
	KucoinSpot            = "kucoin-spot"
	WooPerp               = "woo-perp"
	WooSpot               = "woo-spot"
	BybitPerp             = "bybit-perp"
	CoingeckoTop          = "coingecko-top"
	StockanalysisHoldings = "stockanalysis-holdings"
	EarningshubWeek       = "earningshub-week"
	IBKRStocks            = "ibkr-stocks"
	IBKROptions           = "ibkr-options"
)

// Profiles holds the rule set of every provider, keyed by provider id.
var Profiles = map[string]Profile{
	BinanceSpot: {
		ID:        BinanceSpot,
		Label:     "BINANCE-SPOT",
		Split:     SplitFields,
		Statuses:  []string{"TRADING"},
		Quote:     "USDT",
		Denylist:  FiatAndPeggedBases,
		Namespace: "BINANCE",
		KeepQuote: true,
	},
	BinancePerp: {
		ID:        BinancePerp,
		Label:     "BINANCE-PERP",
		Split:     SplitFields,
		Statuses:  []string{"TRADING"},
		Contracts: []string{"PERPETUAL"},
		Quote:     "USDT",
		Denylist:  FiatAndPeggedBases,
		Namespace: "BINANCE",
		KeepQuote: true,
		Suffix:    ".P",
	},
	KucoinSpot: {
		ID:           KucoinSpot,
		Label:        "KUCOIN-SPOT",
		Split:        SplitDelimiter,
		Delimiter:    "-",
		Quote:        "USDT",
		Patterns:     LeveragedTokens,
		DenySuffixes: DirectionalSuffixes,
		Rank:         RankMetricDesc,
		Namespace:    "KUCOIN",
		KeepQuote:    true,
	},
	WooPerp: {
		ID:               WooPerp,
		Label:            "WOO-PERP",
		Split:            SplitProduct,
		Delimiter:        "_",
		Statuses:         []string{"1"},
		Product:          "PERP",
		RejectStableFlag: true,
		Namespace:        "WOONETWORK",
		KeepQuote:        true,
		Suffix:           ".P",
	},
	WooSpot: {
		ID:               WooSpot,
		Label:            "WOO-SPOT",
		Split:            SplitProduct,
		Delimiter:        "_",
		Statuses:         []string{"1"},
		Product:          "SPOT",
		RejectStableFlag: true,
		Namespace:        "WOONETWORK",
		KeepQuote:        true,
	},
	BybitPerp: {
		ID:        BybitPerp,
		Label:     "BYBIT-PERP",
		Split:     SplitFields,
		Statuses:  []string{"Trading"},
		Contracts: []string{"LinearPerpetual"},
		Quote:     "USDT",
		Denylist:  FiatAndPeggedBases,
		Patterns:  LeveragedTokens,
		Namespace: "BYBIT",
		KeepQuote: true,
		Suffix:    ".P",
	},
	CoingeckoTop: {
		ID:           CoingeckoTop,
		Label:        "COINGECKO-TOP100",
		Split:        SplitNone,
		Uppercase:    true,
		Denylist:     Stablecoins,
		StableNames:  StableNameMarkers,
		WrappedName:  WrappedNamePrefix,
		WrapPrefixes: WrapPrefixes,
		Namespace:    "BINANCE",
		AppendQuote:  "USDT",
	},
	StockanalysisHoldings: {
		ID:        StockanalysisHoldings,
		Label:     "HOLDINGS",
		Split:     SplitNone,
		Namespace: "NASDAQ",
	},
	EarningshubWeek: {
		ID:        EarningshubWeek,
		Label:     "EARNINGS",
		Split:     SplitQuery,
		Namespace: "NASDAQ",
	},
	IBKRStocks: {
		ID:              IBKRStocks,
		Label:           "IBKR-STOCKS",
		Split:           SplitNone,
		AssetClasses:    []string{"STK"},
		RequirePosition: true,
		Namespace:       "NYSE",
		Venues:          symbols.IBKRVenues,
	},
	IBKROptions: {
		ID:              IBKROptions,
		Label:           "IBKR-OPTIONS",
		Split:           SplitNone,
		AssetClasses:    []string{"OPT"},
		RequirePosition: true,
		Namespace:       "NYSE",
		Venues:          symbols.IBKRVenues,
	},
}

// Lookup returns the profile registered under id.
func Lookup(id string) (Profile, error) {
	p, ok := Profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("unknown provider profile %q", id)
	}
	return p, nil
}

// IDs lists the registered provider ids in sorted order.
func IDs() []string {
	ids := make([]string, 0, len(Profiles))
	for id := range Profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithNamespace returns a copy of p using ns when ns is not empty.
func (p Profile) WithNamespace(ns string) Profile {
	if ns != "" {
		p.Namespace = ns
	}
	return p
}

// WithLabel returns a copy of p with a different artifact label.
func (p Profile) WithLabel(label string) Profile {
	p.Label = label
	return p
}
