package processor

import (
	"testing"

	"watchlist/internal/symbols"
	"watchlist/models"
)

func TestNamespacerFormat(t *testing.T) {
	tests := []struct {
		name string
		n    Namespacer
		c    Candidate
		want models.CanonicalTicker
	}{
		{
			name: "perpetual",
			n:    Namespacer{Namespace: "WOONETWORK", KeepQuote: true, Suffix: ".P"},
			c:    candidate("BTC", "USDT"),
			want: "WOONETWORK:BTCUSDT.P",
		},
		{
			name: "spot",
			n:    Namespacer{Namespace: "KUCOIN", KeepQuote: true},
			c:    candidate("ETH", "USDT"),
			want: "KUCOIN:ETHUSDT",
		},
		{
			name: "appended quote",
			n:    Namespacer{Namespace: "BINANCE", AppendQuote: "USDT"},
			c:    candidate("SOL", ""),
			want: "BINANCE:SOLUSDT",
		},
		{
			name: "equity",
			n:    Namespacer{Namespace: "NASDAQ"},
			c:    candidate("AAPL", ""),
			want: "NASDAQ:AAPL",
		},
		{
			name: "venue mapped",
			n:    Namespacer{Namespace: "NYSE", Venues: symbols.IBKRVenues},
			c:    Candidate{Record: models.Record{Venue: "IBIS2"}, Symbol: models.ParsedSymbol{Base: "SAP"}},
			want: "XETR:SAP",
		},
		{
			name: "venue passthrough",
			n:    Namespacer{Namespace: "NYSE", Venues: symbols.IBKRVenues},
			c:    Candidate{Record: models.Record{Venue: "LSE"}, Symbol: models.ParsedSymbol{Base: "VOD"}},
			want: "LSE:VOD",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.n.Format(tt.c)
			if got != tt.want {
				t.Fatalf("Format = %q want %q", got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("invalid ticker: %v", err)
			}
		})
	}
}

func TestNamespacerInjectiveOverProduct(t *testing.T) {
	c := candidate("BTC", "USDT")
	perp := NewNamespacer(Profiles[WooPerp]).Format(c)
	spot := NewNamespacer(Profiles[WooSpot]).Format(c)
	if perp == spot {
		t.Fatalf("perp and spot collapsed to %q", perp)
	}
}
