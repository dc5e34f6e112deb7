package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"watchlist/models"
	"watchlist/processor"
)

func staticSource(id string, records []models.Record, err error) Source {
	return SourceFunc{ID: id, Fn: func(ctx context.Context) ([]models.Record, error) {
		return records, err
	}}
}

func TestRunProducesWatchlist(t *testing.T) {
	records := []models.Record{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Status: "TRADING"},
		{Symbol: "USDCUSDT", Base: "USDC", Quote: "USDT", Status: "TRADING"},
		{Symbol: "ETHBTC", Base: "ETH", Quote: "BTC", Status: "TRADING"},
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Status: "TRADING"},
	}
	res := Run(context.Background(), Job{
		Label:   "BINANCE-SPOT",
		Source:  staticSource("binance_spot", records, nil),
		Profile: processor.Profiles[processor.BinanceSpot],
	})
	if res.Failed() {
		t.Fatalf("unexpected failure: %v %v", res.Err, res.Degraded)
	}
	if got := res.Watchlist.Strings(); len(got) != 1 || got[0] != "BINANCE:BTCUSDT" {
		t.Fatalf("unexpected watchlist %v", got)
	}
	if res.Report.Input != 4 || res.Report.Duplicate != 1 {
		t.Fatalf("unexpected report %+v", res.Report)
	}
	if res.Report.Rejected[processor.RuleDenylist] != 1 || res.Report.Rejected[processor.RuleQuote] != 1 {
		t.Fatalf("unexpected rejections %v", res.Report.Rejected)
	}
}

func TestRunFailurePolicy(t *testing.T) {
	fetchErr := models.FetchError("woo", errors.New("connection reset"))
	absent := models.StructuralAbsenceError("stockanalysis", "#main table tbody")

	tests := []struct {
		name         string
		policy       Policy
		err          error
		wantErr      bool
		wantDegraded bool
	}{
		{"fail empty on fetch", FailEmpty, fetchErr, false, true},
		{"fail empty on decode", FailEmpty, models.DecodeError("woo", errors.New("bad json")), false, true},
		{"fail loud on structure", FailLoud, absent, true, false},
		{"fail loud on fetch", FailLoud, fetchErr, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(context.Background(), Job{
				Label:   "X",
				Source:  staticSource("x", nil, tt.err),
				Profile: processor.Profiles[processor.StockanalysisHoldings],
				Policy:  tt.policy,
			})
			if (res.Err != nil) != tt.wantErr {
				t.Fatalf("Err = %v, wantErr %v", res.Err, tt.wantErr)
			}
			if (res.Degraded != nil) != tt.wantDegraded {
				t.Fatalf("Degraded = %v, want %v", res.Degraded, tt.wantDegraded)
			}
			if res.Watchlist == nil || len(res.Watchlist) != 0 {
				t.Fatalf("expected empty non-nil watchlist, got %v", res.Watchlist)
			}
			if tt.wantErr && !errors.Is(res.Err, tt.err) {
				t.Fatalf("error chain lost: %v", res.Err)
			}
		})
	}
}

func TestRunAllKeepsJobOrder(t *testing.T) {
	var jobs []Job
	for i := 0; i < 8; i++ {
		delay := time.Duration(8-i) * time.Millisecond
		sym := fmt.Sprintf("T%d", i)
		jobs = append(jobs, Job{
			Label: sym,
			Source: SourceFunc{ID: sym, Fn: func(ctx context.Context) ([]models.Record, error) {
				time.Sleep(delay)
				return []models.Record{{Symbol: sym}}, nil
			}},
			Profile: processor.Profiles[processor.StockanalysisHoldings],
		})
	}
	jobs = append(jobs, Job{
		Label:   "BROKEN",
		Source:  staticSource("broken", nil, models.FetchError("broken", errors.New("down"))),
		Profile: processor.Profiles[processor.StockanalysisHoldings],
	})

	results := RunAll(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i := 0; i < 8; i++ {
		want := fmt.Sprintf("NASDAQ:T%d", i)
		if results[i].Label != jobs[i].Label || len(results[i].Watchlist) != 1 || string(results[i].Watchlist[0]) != want {
			t.Fatalf("result %d = %+v, want %s", i, results[i], want)
		}
	}
	if !results[8].Failed() || results[8].Err != nil {
		t.Fatalf("broken source should degrade to empty, got %+v", results[8])
	}
}

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{models.FetchError("a", errors.New("x")), "fetch"},
		{models.DecodeError("a", errors.New("x")), "decode"},
		{models.StructuralAbsenceError("a", "table"), "structural_absence"},
		{errors.New("x"), "unknown"},
	}
	for _, tt := range tests {
		if got := failureKind(tt.err); got != tt.want {
			t.Errorf("failureKind(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestSharedFetchesOnce(t *testing.T) {
	var calls int32
	src := Shared(SourceFunc{ID: "woo", Fn: func(ctx context.Context) ([]models.Record, error) {
		atomic.AddInt32(&calls, 1)
		return []models.Record{
			{Symbol: "PERP_BTC_USDT", Status: "1"},
			{Symbol: "SPOT_BTC_USDT", Status: "1"},
		}, nil
	}})
	if src.Name() != "woo" {
		t.Fatalf("unexpected name %q", src.Name())
	}

	results := RunAll(context.Background(), []Job{
		{Label: "WOO-PERP", Source: src, Profile: processor.Profiles[processor.WooPerp]},
		{Label: "WOO-SPOT", Source: src, Profile: processor.Profiles[processor.WooSpot]},
	})
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one fetch, got %d", n)
	}
	if got := results[0].Watchlist.Strings(); len(got) != 1 || got[0] != "WOONETWORK:BTCUSDT.P" {
		t.Fatalf("unexpected perp watchlist %v", got)
	}
	if got := results[1].Watchlist.Strings(); len(got) != 1 || got[0] != "WOONETWORK:BTCUSDT" {
		t.Fatalf("unexpected spot watchlist %v", got)
	}
}
