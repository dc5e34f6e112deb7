package kucoin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	sdklog "github.com/Kucoin/kucoin-universal-sdk/sdk/golang/extension/logger"
	kclog "github.com/Kucoin/kucoin-universal-sdk/sdk/golang/pkg/common/logger"

	"watchlist/config"
	"watchlist/models"
	"watchlist/processor"
)

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "all_tickers.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func TestNewReader(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Timeout = time.Second
	if r := NewReader(&cfg); r == nil || r.Name() != "kucoin_spot" {
		t.Fatal("NewReader returned an unusable reader")
	}
}

func TestNewReaderRoutesSDKLogs(t *testing.T) {
	cfg := config.Default()
	NewReader(&cfg)
	if _, ok := kclog.GetLogger().(*sdklog.LogrusAdapter); !ok {
		t.Fatalf("sdk logger is %T, want logrus adapter", kclog.GetLogger())
	}
}

func TestFetchRanksByVolume(t *testing.T) {
	body := fixture(t)
	r := NewReaderWithSource(func(context.Context) ([]byte, error) { return body, nil })

	records, err := r.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got := processor.Run(processor.Profiles[processor.KucoinSpot], records).Strings()
	want := []string{"KUCOIN:XMRUSDT", "KUCOIN:BTCUSDT", "KUCOIN:ETHUSDT", "KUCOIN:KCSUSDT", "KUCOIN:SUPERUSDT"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestFetchSourceError(t *testing.T) {
	r := NewReaderWithSource(func(context.Context) ([]byte, error) { return nil, errors.New("dial tcp: refused") })
	if _, err := r.Fetch(context.Background()); !errors.Is(err, models.ErrFetch) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantLen int
	}{
		{"ok", `{"code":"200000","data":{"ticker":[{"symbol":"BTC-USDT","vol":"1.5"}]}}`, nil, 1},
		{"empty vol", `{"code":"200000","data":{"ticker":[{"symbol":"BTC-USDT","vol":""}]}}`, nil, 1},
		{"empty list", `{"code":"200000","data":{"ticker":[]}}`, nil, 0},
		{"api error", `{"code":"429000","msg":"too many requests"}`, models.ErrFetch, 0},
		{"missing ticker", `{"code":"200000","data":{}}`, models.ErrDecode, 0},
		{"bad vol", `{"code":"200000","data":{"ticker":[{"symbol":"BTC-USDT","vol":"lots"}]}}`, models.ErrDecode, 0},
		{"not json", `<html>`, models.ErrDecode, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Decode([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || len(records) != tt.wantLen {
				t.Fatalf("Decode = %v, %v", records, err)
			}
		})
	}
}
