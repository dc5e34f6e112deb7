package woo

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
	"watchlist/reader"
)

const source = "woo"

// Reader lists WOO X instruments from /v1/public/info.
type Reader struct {
	client *http.Client
	url    string
	log    *logger.Log
}

func NewReader(cfg *config.Config, client *http.Client) *Reader {
	return &Reader{
		client: client,
		url:    strings.TrimRight(cfg.Source.Woo.URL, "/") + "/v1/public/info",
		log:    logger.GetLogger(),
	}
}

func (r *Reader) Name() string { return source }

// Fetch returns every listed instrument. The perp and spot profiles pick
// their product from the symbol prefix.
func (r *Reader) Fetch(ctx context.Context) ([]models.Record, error) {
	body, err := reader.Get(ctx, r.client, source, r.url)
	if err != nil {
		return nil, err
	}
	records, err := Decode(body)
	if err != nil {
		return nil, err
	}
	logger.LogDataFlowEntry(r.log.WithComponent(source), "woo_api", "pipeline", len(records), "instruments")
	return records, nil
}

type infoResponse struct {
	Success *bool     `json:"success"`
	Rows    []infoRow `json:"rows"`
}

type infoRow struct {
	Symbol    string `json:"symbol"`
	IsStable  int    `json:"is_stable"`
	IsTrading int    `json:"is_trading"`
}

// Decode parses a public info document. is_trading is carried as the record
// status and is_stable as its stable flag.
func Decode(body []byte) ([]models.Record, error) {
	var resp infoResponse
	if err := reader.DecodeJSON(source, body, &resp); err != nil {
		return nil, err
	}
	if resp.Success != nil && !*resp.Success {
		return nil, models.FetchError(source, fmt.Errorf("api reported success=false"))
	}
	if resp.Rows == nil {
		return nil, models.DecodeError(source, fmt.Errorf("missing rows"))
	}
	records := make([]models.Record, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		records = append(records, models.Record{
			Symbol: row.Symbol,
			Status: strconv.Itoa(row.IsTrading),
			Stable: row.IsStable != 0,
		})
	}
	return records, nil
}
