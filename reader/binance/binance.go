package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	futures "github.com/adshao/go-binance/v2/futures"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
)

const (
	spotSource = "binance_spot"
	perpSource = "binance_perp"
)

// SpotReader lists Binance spot symbols from exchangeInfo?permissions=SPOT.
type SpotReader struct {
	client *gobinance.Client
	log    *logger.Log
}

// NewSpotReader creates a spot reader backed by the go-binance client.
func NewSpotReader(cfg *config.Config, httpClient *http.Client) *SpotReader {
	client := gobinance.NewClient("", "")
	client.HTTPClient = httpClient
	if cfg.Source.Binance.SpotURL != "" {
		client.BaseURL = cfg.Source.Binance.SpotURL
	}
	return &SpotReader{client: client, log: logger.GetLogger()}
}

func (r *SpotReader) Name() string { return spotSource }

// Fetch returns one record per listed spot symbol, in document order.
func (r *SpotReader) Fetch(ctx context.Context) ([]models.Record, error) {
	start := time.Now()
	info, err := r.client.NewExchangeInfoService().Permissions("SPOT").Do(ctx)
	if err != nil {
		return nil, models.FetchError(spotSource, err)
	}
	records := spotRecords(info)
	log := r.log.WithComponent(spotSource)
	logger.LogPerformanceEntry(log, spotSource, "exchange_info", time.Since(start), nil)
	logger.LogDataFlowEntry(log, "binance_api", "pipeline", len(records), "symbols")
	return records, nil
}

// DecodeSpot decodes a raw spot exchangeInfo document.
func DecodeSpot(body []byte) ([]models.Record, error) {
	var info gobinance.ExchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, models.DecodeError(spotSource, err)
	}
	return spotRecords(&info), nil
}

func spotRecords(info *gobinance.ExchangeInfo) []models.Record {
	if info == nil {
		return nil
	}
	records := make([]models.Record, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		records = append(records, models.Record{
			Symbol: s.Symbol,
			Base:   s.BaseAsset,
			Quote:  s.QuoteAsset,
			Status: string(s.Status),
		})
	}
	return records
}

// PerpReader lists Binance USDⓈ-M futures symbols.
type PerpReader struct {
	client *futures.Client
	log    *logger.Log
}

// NewPerpReader creates a futures reader backed by the go-binance futures client.
func NewPerpReader(cfg *config.Config, httpClient *http.Client) *PerpReader {
	client := futures.NewClient("", "")
	client.HTTPClient = httpClient
	if cfg.Source.Binance.FuturesURL != "" {
		client.BaseURL = cfg.Source.Binance.FuturesURL
	}
	return &PerpReader{client: client, log: logger.GetLogger()}
}

func (r *PerpReader) Name() string { return perpSource }

// Fetch returns one record per futures symbol, carrying its contract type.
func (r *PerpReader) Fetch(ctx context.Context) ([]models.Record, error) {
	start := time.Now()
	info, err := r.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, models.FetchError(perpSource, err)
	}
	records := perpRecords(info)
	log := r.log.WithComponent(perpSource)
	logger.LogPerformanceEntry(log, perpSource, "exchange_info", time.Since(start), nil)
	logger.LogDataFlowEntry(log, "binance_futures_api", "pipeline", len(records), "symbols")
	return records, nil
}

// DecodePerp decodes a raw futures exchangeInfo document.
func DecodePerp(body []byte) ([]models.Record, error) {
	var info futures.ExchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, models.DecodeError(perpSource, err)
	}
	return perpRecords(&info), nil
}

func perpRecords(info *futures.ExchangeInfo) []models.Record {
	if info == nil {
		return nil
	}
	records := make([]models.Record, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		records = append(records, models.Record{
			Symbol:   s.Symbol,
			Base:     s.BaseAsset,
			Quote:    s.QuoteAsset,
			Status:   string(s.Status),
			Contract: string(s.ContractType),
		})
	}
	return records
}
