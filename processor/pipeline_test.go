package processor

import (
	"bytes"
	"strings"
	"testing"

	"watchlist/models"
)

func tickers(w models.Watchlist) []string {
	return w.Strings()
}

func TestKucoinSpotPipeline(t *testing.T) {
	records := []models.Record{
		{Symbol: "BTC-USDT", Metric: 100000},
		{Symbol: "ETH-USDT", Metric: 100},
		{Symbol: "XMR-USDT", Metric: 1e8},
		{Symbol: "ETH-BTC", Metric: 1e9},
		{Symbol: "BTC3L-USDT", Metric: 1e9},
		{Symbol: "WLDUP-USDT", Metric: 1e9},
		{Symbol: "JUP-USDT", Metric: 1e9},
		{Symbol: "SUPER-USDT", Metric: 1},
		{Symbol: "BROKEN", Metric: 1e10},
	}
	w, rep := NewPipeline(Profiles[KucoinSpot]).Run(records)
	want := []string{"KUCOIN:XMRUSDT", "KUCOIN:BTCUSDT", "KUCOIN:ETHUSDT", "KUCOIN:SUPERUSDT"}
	if got := tickers(w); !equalStrings(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if rep.Malformed != 1 {
		t.Fatalf("malformed = %d want 1", rep.Malformed)
	}
	if rep.Rejected[RuleQuote] != 1 || rep.Rejected[RulePattern] != 1 || rep.Rejected[RuleSuffix] != 2 {
		t.Fatalf("unexpected rejections %v", rep.Rejected)
	}
	if rep.Input != len(records) || rep.Emitted != len(want) {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestBinanceSpotPipeline(t *testing.T) {
	records := []models.Record{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Status: "TRADING"},
		{Symbol: "ETHBTC", Base: "ETH", Quote: "BTC", Status: "TRADING"},
		{Symbol: "USDCUSDT", Base: "USDC", Quote: "USDT", Status: "TRADING"},
		{Symbol: "LUNAUSDT", Base: "LUNA", Quote: "USDT", Status: "BREAK"},
		{Symbol: "EURUSDT", Base: "EUR", Quote: "USDT", Status: "TRADING"},
		{Symbol: "SOLUSDT", Base: "SOL", Quote: "USDT", Status: "TRADING"},
	}
	got := tickers(Run(Profiles[BinanceSpot], records))
	if want := []string{"BINANCE:BTCUSDT", "BINANCE:SOLUSDT"}; !equalStrings(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestBinancePerpPipeline(t *testing.T) {
	records := []models.Record{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Status: "TRADING", Contract: "PERPETUAL"},
		{Symbol: "BTCUSDT_250926", Base: "BTC", Quote: "USDT", Status: "TRADING", Contract: "CURRENT_QUARTER"},
		{Symbol: "ETHUSDC", Base: "ETH", Quote: "USDC", Status: "TRADING", Contract: "PERPETUAL"},
	}
	got := tickers(Run(Profiles[BinancePerp], records))
	if want := []string{"BINANCE:BTCUSDT.P"}; !equalStrings(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestWooPipelines(t *testing.T) {
	records := []models.Record{
		{Symbol: "PERP_BTC_USDT", Status: "1"},
		{Symbol: "SPOT_BTC_USDT", Status: "1"},
		{Symbol: "SPOT_USDC_USDT", Status: "1", Stable: true},
		{Symbol: "PERP_ETH_USDT", Status: "0"},
		{Symbol: "SPOT_ETH_USDC", Status: "1"},
		{Symbol: "PERP_DOGE", Status: "1"},
	}
	perp := tickers(Run(Profiles[WooPerp], records))
	if want := []string{"WOONETWORK:BTCUSDT.P"}; !equalStrings(perp, want) {
		t.Fatalf("perp got %v want %v", perp, want)
	}
	spot := tickers(Run(Profiles[WooSpot], records))
	if want := []string{"WOONETWORK:BTCUSDT", "WOONETWORK:ETHUSDC"}; !equalStrings(spot, want) {
		t.Fatalf("spot got %v want %v", spot, want)
	}
}

func TestBybitPerpPipeline(t *testing.T) {
	records := []models.Record{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Status: "Trading", Contract: "LinearPerpetual"},
		{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT", Status: "PreLaunch", Contract: "LinearPerpetual"},
		{Symbol: "BTC-26SEP25", Base: "BTC", Quote: "USDT", Status: "Trading", Contract: "LinearFutures"},
		{Symbol: "SOLPERP", Base: "SOL", Quote: "USDC", Status: "Trading", Contract: "LinearPerpetual"},
	}
	got := tickers(Run(Profiles[BybitPerp], records))
	if want := []string{"BYBIT:BTCUSDT.P"}; !equalStrings(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestCoingeckoTopPipeline(t *testing.T) {
	records := []models.Record{
		{Symbol: "btc", Name: "Bitcoin"},
		{Symbol: "usdt", Name: "Tether"},
		{Symbol: "usdc", Name: "USD Coin"},
		{Symbol: "eth", Name: "Ethereum"},
		{Symbol: "wbtc", Name: "Wrapped Bitcoin"},
		{Symbol: "steth", Name: "Lido Staked Ether"},
		{Symbol: "usde", Name: "Ethena USDe"},
		{Symbol: "w", Name: "Wormhole"},
	}
	got := tickers(Run(Profiles[CoingeckoTop], records))
	if want := []string{"BINANCE:BTCUSDT", "BINANCE:ETHUSDT", "BINANCE:WUSDT"}; !equalStrings(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestEarningshubPipelineDedup(t *testing.T) {
	hrefs := []string{
		"/earnings-calendar/week-of/2025-11-10?symbol=AAPL",
		"/earnings-calendar/week-of/2025-11-10?symbol=MSFT",
		"/earnings-calendar/week-of/2025-11-10?symbol=AAPL",
		"/earnings-calendar/week-of/2025-11-10?symbol=TSLA",
		"/earnings-calendar/week-of/2025-11-10",
	}
	records := make([]models.Record, len(hrefs))
	for i, h := range hrefs {
		records[i] = models.Record{Symbol: h}
	}
	w, rep := NewPipeline(Profiles[EarningshubWeek]).Run(records)
	if want := []string{"NASDAQ:AAPL", "NASDAQ:MSFT", "NASDAQ:TSLA"}; !equalStrings(tickers(w), want) {
		t.Fatalf("got %v want %v", tickers(w), want)
	}
	if rep.Duplicate != 1 || rep.Malformed != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestHoldingsPipelineNamespaceOverride(t *testing.T) {
	records := []models.Record{{Symbol: "NVDA"}, {Symbol: "MSFT"}, {Symbol: " "}}
	got := tickers(Run(Profiles[StockanalysisHoldings].WithNamespace("NYSE"), records))
	if want := []string{"NYSE:NVDA", "NYSE:MSFT"}; !equalStrings(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestIBKRPipelines(t *testing.T) {
	records := []models.Record{
		{Symbol: "AAPL", AssetClass: "STK", Venue: "ISLAND", Position: 10},
		{Symbol: "IBM", AssetClass: "STK", Venue: "SMART", Position: 0},
		{Symbol: "SAP", AssetClass: "STK", Venue: "IBIS", Position: 5},
		{Symbol: "VOD", AssetClass: "STK", Venue: "LSE", Position: -2},
		{Symbol: "SPY", AssetClass: "OPT", Venue: "SMART", Position: 1},
		{Symbol: "SPY", AssetClass: "OPT", Venue: "SMART", Position: -1},
		{Symbol: "QQQ", AssetClass: "OPT", Venue: "SMART", Position: 0},
	}
	stocks := tickers(Run(Profiles[IBKRStocks], records))
	if want := []string{"NASDAQ:AAPL", "XETR:SAP", "LSE:VOD"}; !equalStrings(stocks, want) {
		t.Fatalf("stocks got %v want %v", stocks, want)
	}
	options := tickers(Run(Profiles[IBKROptions], records))
	if want := []string{"NYSE:SPY"}; !equalStrings(options, want) {
		t.Fatalf("options got %v want %v", options, want)
	}
}

func TestPipelineEmptyInput(t *testing.T) {
	for _, id := range IDs() {
		w, rep := NewPipeline(Profiles[id]).Run(nil)
		if len(w) != 0 || rep.Emitted != 0 {
			t.Fatalf("%s: expected empty watchlist, got %v", id, w)
		}
	}
}

func TestPipelineIdempotent(t *testing.T) {
	records := []models.Record{
		{Symbol: "BTC-USDT", Metric: 5},
		{Symbol: "ETH-USDT", Metric: 5},
		{Symbol: "SOL-USDT", Metric: 7},
	}
	p := NewPipeline(Profiles[KucoinSpot])
	a, _ := p.Run(records)
	b, _ := p.Run(records)
	if !bytes.Equal(a.Lines(), b.Lines()) {
		t.Fatalf("runs differ:\n%s\n%s", a.Lines(), b.Lines())
	}
}

func TestPipelineOutputInvariants(t *testing.T) {
	records := []models.Record{
		{Symbol: "PERP_BTC_USDT", Status: "1"},
		{Symbol: "PERP_ETH_USDT", Status: "1"},
		{Symbol: "PERP_BTC_USDT", Status: "1"},
	}
	w := Run(Profiles[WooPerp], records)
	seen := map[models.CanonicalTicker]bool{}
	for _, tk := range w {
		if err := tk.Validate(); err != nil {
			t.Fatalf("invalid ticker: %v", err)
		}
		if !strings.HasSuffix(string(tk), ".P") {
			t.Fatalf("perpetual ticker without suffix: %s", tk)
		}
		if seen[tk] {
			t.Fatalf("duplicate ticker %s", tk)
		}
		seen[tk] = true
	}
	if len(w) != 2 {
		t.Fatalf("expected 2 tickers, got %v", w)
	}
}

func TestLookup(t *testing.T) {
	if _, err := Lookup(KucoinSpot); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if _, err := Lookup("nope"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
}
