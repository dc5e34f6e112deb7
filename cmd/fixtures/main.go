package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/reader"
	"watchlist/reader/earningshub"
)

// fixture is one raw provider payload stored for offline tests.
type fixture struct {
	name string
	path string
	url  func(cfg *config.Config) string
}

var fixtures = []fixture{
	{"binance spot", "reader/binance/testdata/exchange_info_spot.json", func(c *config.Config) string {
		return strings.TrimRight(c.Source.Binance.SpotURL, "/") + "/api/v3/exchangeInfo?permissions=SPOT"
	}},
	{"binance futures", "reader/binance/testdata/exchange_info_futures.json", func(c *config.Config) string {
		return strings.TrimRight(c.Source.Binance.FuturesURL, "/") + "/fapi/v1/exchangeInfo"
	}},
	{"kucoin", "reader/kucoin/testdata/all_tickers.json", func(c *config.Config) string {
		return strings.TrimRight(c.Source.Kucoin.URL, "/") + "/api/v1/market/allTickers"
	}},
	{"woo", "reader/woo/testdata/info.json", func(c *config.Config) string {
		return strings.TrimRight(c.Source.Woo.URL, "/") + "/v1/public/info"
	}},
	{"bybit", "reader/bybit/testdata/instruments_linear.json", func(c *config.Config) string {
		return fmt.Sprintf("%s/v5/market/instruments-info?category=%s&limit=%d",
			strings.TrimRight(c.Source.Bybit.URL, "/"), c.Source.Bybit.Category, c.Source.Bybit.Limit)
	}},
	{"coingecko", "reader/coingecko/testdata/markets.json", func(c *config.Config) string {
		return fmt.Sprintf("%s/api/v3/coins/markets?vs_currency=%s&order=market_cap_desc&per_page=%d&page=1",
			strings.TrimRight(c.Source.Coingecko.URL, "/"), c.Source.Coingecko.VsCurrency, c.Source.Coingecko.PerPage)
	}},
	{"stockanalysis", "reader/stockanalysis/testdata/spy_holdings.html", func(c *config.Config) string {
		return strings.TrimRight(c.Source.Stockanalysis.URL, "/") + "/etf/spy/holdings"
	}},
}

func main() {
	log := logger.GetLogger()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "", "Path to configuration file")
	root := flag.String("root", ".", "Repository root the fixture paths are relative to")
	browser := flag.Bool("browser", true, "Also render the earnings calendar in a headless browser")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolvePath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	ctx := context.Background()
	client := reader.NewHTTPClient(cfg.HTTP)

	failed := 0
	for _, f := range fixtures {
		if err := fetchFixture(ctx, client, cfg, *root, f); err != nil {
			fmt.Fprintf(os.Stderr, "  x %s: %v\n", f.name, err)
			failed++
			continue
		}
		fmt.Fprintf(os.Stderr, "  ok %s -> %s\n", f.name, f.path)
	}

	// The bybit fixture stores the result object only; the reader decodes that.
	if err := unwrapBybit(filepath.Join(*root, "reader/bybit/testdata/instruments_linear.json")); err != nil {
		fmt.Fprintf(os.Stderr, "  x bybit unwrap: %v\n", err)
		failed++
	}

	if *browser {
		path := filepath.Join(*root, "reader/earningshub/testdata/week.html")
		b := earningshub.NewBrowser(cfg)
		r := earningshub.NewReader(cfg, b, time.Now())
		html, err := b.FetchRenderedDocument(ctx, r.URL(), cfg.Source.Earningshub.RenderWait)
		if err == nil {
			err = os.WriteFile(path, []byte(html), 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "  x earningshub: %v\n", err)
			failed++
		} else {
			fmt.Fprintf(os.Stderr, "  ok earningshub -> %s\n", path)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func fetchFixture(ctx context.Context, client *http.Client, cfg *config.Config, root string, f fixture) error {
	body, err := reader.Get(ctx, client, "fixtures", f.url(cfg))
	if err != nil {
		return err
	}
	path := filepath.Join(root, f.path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
