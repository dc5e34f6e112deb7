package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	sdklog "github.com/Kucoin/kucoin-universal-sdk/sdk/golang/extension/logger"
	sdkapi "github.com/Kucoin/kucoin-universal-sdk/sdk/golang/pkg/api"
	kclog "github.com/Kucoin/kucoin-universal-sdk/sdk/golang/pkg/common/logger"
	spotmarket "github.com/Kucoin/kucoin-universal-sdk/sdk/golang/pkg/generate/spot/market"
	sdktype "github.com/Kucoin/kucoin-universal-sdk/sdk/golang/pkg/types"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
)

const source = "kucoin_spot"

// TickerSource returns a raw allTickers document.
type TickerSource func(ctx context.Context) ([]byte, error)

// Reader lists KuCoin spot tickers with their 24h volume.
type Reader struct {
	fetch TickerSource
	log   *logger.Log
}

// NewReader creates a reader backed by the KuCoin universal SDK spot market API.
func NewReader(cfg *config.Config) *Reader {
	// The SDK logs to stdout unless given a logger before its first client.
	kclog.SetLogger(sdklog.NewLogrusAdapterWith(logger.GetLogger().Logger))

	transportOpt := sdktype.NewTransportOptionBuilder().
		SetMaxIdleConns(cfg.HTTP.MaxIdleConns).
		SetMaxIdleConnsPerHost(cfg.HTTP.MaxIdleConns).
		SetIdleConnTimeout(cfg.HTTP.IdleConnTimeout).
		SetTimeout(cfg.HTTP.Timeout).
		Build()

	option := sdktype.NewClientOptionBuilder().
		WithSpotEndpoint(cfg.Source.Kucoin.URL).
		WithTransportOption(transportOpt).
		Build()

	marketAPI := sdkapi.NewClient(option).RestService().GetSpotService().GetMarketAPI()

	logger.GetLogger().WithComponent(source).WithFields(logger.Fields{
		"base_url": cfg.Source.Kucoin.URL,
	}).Debug("kucoin reader initialized")

	return NewReaderWithSource(sdkSource(marketAPI))
}

// NewReaderWithSource creates a reader over an arbitrary ticker source.
func NewReaderWithSource(fetch TickerSource) *Reader {
	return &Reader{fetch: fetch, log: logger.GetLogger()}
}

func sdkSource(marketAPI spotmarket.MarketAPI) TickerSource {
	return func(ctx context.Context) ([]byte, error) {
		resp, err := marketAPI.GetAllTickers(ctx)
		if err != nil {
			return nil, err
		}
		var envelope allTickersResponse
		envelope.Code = successCode
		payload, err := json.Marshal(resp.Ticker)
		if err != nil {
			return nil, err
		}
		envelope.Data.Ticker = payload
		return json.Marshal(envelope)
	}
}

func (r *Reader) Name() string { return source }

// Fetch returns one record per ticker with the 24h volume as its metric.
func (r *Reader) Fetch(ctx context.Context) ([]models.Record, error) {
	start := time.Now()
	body, err := r.fetch(ctx)
	if err != nil {
		return nil, models.FetchError(source, err)
	}
	records, err := Decode(body)
	if err != nil {
		return nil, err
	}
	log := r.log.WithComponent(source)
	logger.LogPerformanceEntry(log, source, "all_tickers", time.Since(start), nil)
	logger.LogDataFlowEntry(log, "kucoin_api", "pipeline", len(records), "tickers")
	return records, nil
}

const successCode = "200000"

type allTickersResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data struct {
		Time   int64           `json:"time"`
		Ticker json.RawMessage `json:"ticker"`
	} `json:"data"`
}

type tickerRow struct {
	Symbol string `json:"symbol"`
	Vol    string `json:"vol"`
}

// Decode parses an allTickers document. A non-success code is a fetch failure;
// a volume that is not a number is a decode failure.
func Decode(body []byte) ([]models.Record, error) {
	var resp allTickersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, models.DecodeError(source, err)
	}
	if resp.Code != "" && resp.Code != successCode {
		return nil, models.FetchError(source, fmt.Errorf("api code %s: %s", resp.Code, resp.Msg))
	}
	if len(resp.Data.Ticker) == 0 {
		return nil, models.DecodeError(source, fmt.Errorf("missing data.ticker"))
	}

	var rows []tickerRow
	if err := json.Unmarshal(resp.Data.Ticker, &rows); err != nil {
		return nil, models.DecodeError(source, err)
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		var vol float64
		if row.Vol != "" {
			v, err := strconv.ParseFloat(row.Vol, 64)
			if err != nil {
				return nil, models.DecodeError(source, fmt.Errorf("symbol %s: vol %q: %w", row.Symbol, row.Vol, err))
			}
			vol = v
		}
		records = append(records, models.Record{Symbol: row.Symbol, Metric: vol})
	}
	return records, nil
}
