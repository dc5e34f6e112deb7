package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"watchlist/config"
	"watchlist/internal/aggregator"
	"watchlist/logger"
	"watchlist/processor"
	"watchlist/reader"
	"watchlist/reader/binance"
	"watchlist/reader/bybit"
	"watchlist/reader/coingecko"
	"watchlist/reader/earningshub"
	"watchlist/reader/ibkr"
	"watchlist/reader/kucoin"
	"watchlist/reader/stockanalysis"
	"watchlist/reader/woo"
	"watchlist/writer"
)

const usage = `usage: watchlist [-config path] <command> [flags]

commands:
  woo -perp -spot         WOO X perpetual and/or spot instruments
  binance                 Binance spot USDT pairs
  binance-perp            Binance USDT perpetuals
  kucoin                  KuCoin spot USDT pairs by 24h volume
  bybit                   Bybit USDT linear perpetuals
  coingecko               CoinGecko top coins by market cap
  etf <TICKER>...         holdings of one or more ETFs
  earnings [-week DATE]   tickers reporting earnings in the week of DATE (YYYY-MM-DD)
  ibkr                    stock and option positions of an IBKR gateway session
  all                     every crypto source
`

var errUsage = errors.New("invalid usage")

// etfTicker bounds ETF arguments, which also name the artifact file.
var etfTicker = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.-]*$`)

// app wires configuration to sources and writers for one CLI invocation.
type app struct {
	cfg     *config.Config
	client  *http.Client
	browser earningshub.RenderedFetcher
	writer  writer.Writer
	out     io.Writer
	log     *logger.Log
}

func newApp(cfg *config.Config, w writer.Writer, out io.Writer) *app {
	return &app{
		cfg:     cfg,
		client:  reader.NewHTTPClient(cfg.HTTP),
		browser: earningshub.NewBrowser(cfg),
		writer:  w,
		out:     out,
		log:     logger.GetLogger(),
	}
}

func (a *app) job(id string, src aggregator.Source) aggregator.Job {
	p := processor.Profiles[id]
	return aggregator.Job{Label: p.Label, Source: src, Profile: p, Policy: aggregator.FailEmpty}
}

func (a *app) wooJobs(perp, spot bool) []aggregator.Job {
	src := aggregator.Shared(woo.NewReader(a.cfg, a.client))
	var jobs []aggregator.Job
	if perp {
		jobs = append(jobs, a.job(processor.WooPerp, src))
	}
	if spot {
		jobs = append(jobs, a.job(processor.WooSpot, src))
	}
	return jobs
}

func (a *app) cryptoJobs() []aggregator.Job {
	jobs := a.wooJobs(true, true)
	return append(jobs,
		a.job(processor.BinanceSpot, binance.NewSpotReader(a.cfg, a.client)),
		a.job(processor.BinancePerp, binance.NewPerpReader(a.cfg, a.client)),
		a.job(processor.KucoinSpot, kucoin.NewReader(a.cfg)),
		a.job(processor.BybitPerp, bybit.NewReader(a.cfg, a.client)),
		a.job(processor.CoingeckoTop, coingecko.NewReader(a.cfg, a.client)),
	)
}

func (a *app) etfJobs(tickers []string) []aggregator.Job {
	base := processor.Profiles[processor.StockanalysisHoldings].WithNamespace(a.cfg.Source.Stockanalysis.Namespace)
	jobs := make([]aggregator.Job, 0, len(tickers))
	for _, t := range tickers {
		label := strings.ToUpper(t) + "-" + base.Label
		jobs = append(jobs, aggregator.Job{
			Label:   label,
			Source:  stockanalysis.NewReader(a.cfg, a.client, t),
			Profile: base.WithLabel(label),
			Policy:  aggregator.FailLoud,
		})
	}
	return jobs
}

func (a *app) earningsJob(week time.Time) aggregator.Job {
	r := earningshub.NewReader(a.cfg, a.browser, week)
	if week.IsZero() {
		week = time.Now()
	}
	p := processor.Profiles[processor.EarningshubWeek].WithNamespace(a.cfg.Source.Earningshub.Namespace)
	p = p.WithLabel(p.Label + "-" + earningshub.MondayOf(week).Format("2006-01-02"))
	return aggregator.Job{Label: p.Label, Source: r, Profile: p, Policy: aggregator.FailEmpty}
}

func (a *app) ibkrJobs() []aggregator.Job {
	client := a.client
	if a.cfg.Source.IBKR.InsecureSkipVerify {
		client = reader.NewInsecureHTTPClient(a.cfg.HTTP)
	}
	src := aggregator.Shared(ibkr.NewReader(a.cfg, client))
	return []aggregator.Job{
		a.job(processor.IBKRStocks, src),
		a.job(processor.IBKROptions, src),
	}
}

// parse maps a command line to the jobs it runs.
func (a *app) parse(args []string) ([]aggregator.Job, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch cmd {
	case "woo":
		perp := fs.Bool("perp", false, "WOO X perpetuals")
		spot := fs.Bool("spot", false, "WOO X spot")
		if err := fs.Parse(rest); err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		if !*perp && !*spot {
			return nil, fmt.Errorf("%w: woo needs -perp, -spot or both", errUsage)
		}
		return a.wooJobs(*perp, *spot), nil
	case "binance":
		return []aggregator.Job{a.job(processor.BinanceSpot, binance.NewSpotReader(a.cfg, a.client))}, nil
	case "binance-perp":
		return []aggregator.Job{a.job(processor.BinancePerp, binance.NewPerpReader(a.cfg, a.client))}, nil
	case "kucoin":
		return []aggregator.Job{a.job(processor.KucoinSpot, kucoin.NewReader(a.cfg))}, nil
	case "bybit":
		return []aggregator.Job{a.job(processor.BybitPerp, bybit.NewReader(a.cfg, a.client))}, nil
	case "coingecko":
		return []aggregator.Job{a.job(processor.CoingeckoTop, coingecko.NewReader(a.cfg, a.client))}, nil
	case "etf":
		if err := fs.Parse(rest); err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		if fs.NArg() == 0 {
			return nil, fmt.Errorf("%w: etf needs at least one ticker", errUsage)
		}
		tickers := make([]string, 0, fs.NArg())
		for _, t := range fs.Args() {
			t = strings.TrimSpace(t)
			if !etfTicker.MatchString(t) {
				return nil, fmt.Errorf("%w: invalid etf ticker %q", errUsage, t)
			}
			tickers = append(tickers, t)
		}
		return a.etfJobs(tickers), nil
	case "earnings":
		weekFlag := fs.String("week", "", "any date in the week, YYYY-MM-DD")
		if err := fs.Parse(rest); err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		var week time.Time
		if *weekFlag != "" {
			t, err := time.Parse("2006-01-02", *weekFlag)
			if err != nil {
				return nil, fmt.Errorf("%w: -week: %v", errUsage, err)
			}
			week = t
		}
		return []aggregator.Job{a.earningsJob(week)}, nil
	case "ibkr":
		return a.ibkrJobs(), nil
	case "all":
		return a.cryptoJobs(), nil
	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// run executes jobs concurrently, writes every definitive watchlist and
// prints one line per job. It returns false when any job or write failed loud.
func (a *app) run(ctx context.Context, jobs []aggregator.Job) bool {
	ok := true
	for _, res := range aggregator.RunAll(ctx, jobs) {
		if res.Err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", res.Err)
			ok = false
			continue
		}
		loc, err := a.writer.Write(ctx, res.Label, res.Watchlist)
		if err != nil {
			a.log.WithComponent("main").WithError(err).WithFields(logger.Fields{"label": res.Label}).Error("failed to write watchlist")
			fmt.Fprintf(a.out, "Error: %v\n", err)
			ok = false
			continue
		}
		a.log.WithComponent("main").WithFields(logger.Fields{
			"label":    res.Label,
			"location": loc,
			"tickers":  len(res.Watchlist),
		}).Debug("watchlist written")
		fmt.Fprintf(a.out, "%s: %d tickers\n", res.Label, len(res.Watchlist))
	}
	return ok
}
