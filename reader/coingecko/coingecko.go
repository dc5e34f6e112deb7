package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
	"watchlist/reader"
)

const source = "coingecko"

// Reader lists the top coins by market cap from /api/v3/coins/markets.
type Reader struct {
	client *http.Client
	url    string
	log    *logger.Log
}

func NewReader(cfg *config.Config, client *http.Client) *Reader {
	q := url.Values{}
	q.Set("vs_currency", cfg.Source.Coingecko.VsCurrency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(cfg.Source.Coingecko.PerPage))
	q.Set("page", "1")
	return &Reader{
		client: client,
		url:    strings.TrimRight(cfg.Source.Coingecko.URL, "/") + "/api/v3/coins/markets?" + q.Encode(),
		log:    logger.GetLogger(),
	}
}

func (r *Reader) Name() string { return source }

// Fetch returns the coins in market-cap order.
func (r *Reader) Fetch(ctx context.Context) ([]models.Record, error) {
	body, err := reader.Get(ctx, r.client, source, r.url)
	if err != nil {
		return nil, err
	}
	records, err := Decode(body)
	if err != nil {
		return nil, err
	}
	logger.LogDataFlowEntry(r.log.WithComponent(source), "coingecko_api", "pipeline", len(records), "coins")
	return records, nil
}

type coin struct {
	ID        string   `json:"id"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	MarketCap *float64 `json:"market_cap"`
}

// Decode parses a coins/markets document.
func Decode(body []byte) ([]models.Record, error) {
	var coins []coin
	if err := reader.DecodeJSON(source, body, &coins); err != nil {
		return nil, err
	}
	records := make([]models.Record, 0, len(coins))
	for _, c := range coins {
		if c.Symbol == "" {
			return nil, models.DecodeError(source, fmt.Errorf("coin %q has no symbol", c.ID))
		}
		r := models.Record{Symbol: c.Symbol, Name: c.Name}
		if c.MarketCap != nil {
			r.Metric = *c.MarketCap
		}
		records = append(records, r)
	}
	return records, nil
}
