package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	bybit "github.com/bybit-exchange/bybit.go.api"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
)

const source = "bybit_perp"

// InstrumentSource returns the raw result object of one instruments-info page.
// An empty cursor requests the first page.
type InstrumentSource func(ctx context.Context, cursor string) ([]byte, error)

// maxPages bounds the cursor walk against a server that never ends it.
const maxPages = 50

// Reader lists Bybit linear contracts.
type Reader struct {
	fetch InstrumentSource
	log   *logger.Log
}

// NewReader creates a reader backed by the Bybit v5 REST client.
func NewReader(cfg *config.Config, httpClient *http.Client) *Reader {
	base := cfg.Source.Bybit.URL
	if parsed, err := url.Parse(base); err == nil && parsed.Host != "" {
		base = fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	}

	client := bybit.NewBybitHttpClient("", "", bybit.WithBaseURL(base))
	client.HTTPClient = httpClient

	category, limit := cfg.Source.Bybit.Category, cfg.Source.Bybit.Limit

	logger.GetLogger().WithComponent(source).WithFields(logger.Fields{
		"base_url": base,
		"category": cfg.Source.Bybit.Category,
	}).Debug("bybit reader initialized")

	return NewReaderWithSource(func(ctx context.Context, cursor string) ([]byte, error) {
		params := map[string]interface{}{
			"category": category,
			"limit":    limit,
		}
		if cursor != "" {
			params["cursor"] = cursor
		}
		resp, err := client.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
		if err != nil {
			return nil, err
		}
		if resp.RetCode != 0 {
			return nil, fmt.Errorf("retCode %d: %s", resp.RetCode, resp.RetMsg)
		}
		return json.Marshal(resp.Result)
	})
}

// NewReaderWithSource creates a reader over an arbitrary instrument source.
func NewReaderWithSource(fetch InstrumentSource) *Reader {
	return &Reader{fetch: fetch, log: logger.GetLogger()}
}

func (r *Reader) Name() string { return source }

func (r *Reader) Fetch(ctx context.Context) ([]models.Record, error) {
	log := r.log.WithComponent(source)

	var records []models.Record
	seen := make(map[string]struct{})
	cursor := ""
	for page := 0; ; page++ {
		if page == maxPages {
			return nil, models.DecodeError(source, fmt.Errorf("instrument listing exceeds %d pages", maxPages))
		}
		start := time.Now()
		body, err := r.fetch(ctx, cursor)
		if err != nil {
			return nil, models.FetchError(source, err)
		}
		logger.LogPerformanceEntry(log, source, "api_request", time.Since(start), logger.Fields{"page": page})

		res, err := decodePage(body)
		if err != nil {
			return nil, err
		}
		records = append(records, res.records()...)
		if res.NextPageCursor == "" {
			break
		}
		if _, ok := seen[res.NextPageCursor]; ok {
			return nil, models.DecodeError(source, fmt.Errorf("cursor %q repeated", res.NextPageCursor))
		}
		seen[res.NextPageCursor] = struct{}{}
		cursor = res.NextPageCursor
	}
	logger.LogDataFlowEntry(log, "bybit_api", "pipeline", len(records), "instruments")
	return records, nil
}

type instrumentsResult struct {
	Category       string       `json:"category"`
	NextPageCursor string       `json:"nextPageCursor"`
	List           []instrument `json:"list"`
}

type instrument struct {
	Symbol       string `json:"symbol"`
	ContractType string `json:"contractType"`
	Status       string `json:"status"`
	BaseCoin     string `json:"baseCoin"`
	QuoteCoin    string `json:"quoteCoin"`
}

// Decode parses the result object of a single instruments-info page.
func Decode(body []byte) ([]models.Record, error) {
	res, err := decodePage(body)
	if err != nil {
		return nil, err
	}
	return res.records(), nil
}

func decodePage(body []byte) (*instrumentsResult, error) {
	var res instrumentsResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, models.DecodeError(source, err)
	}
	if res.List == nil {
		return nil, models.DecodeError(source, fmt.Errorf("missing instrument list"))
	}
	return &res, nil
}

func (res *instrumentsResult) records() []models.Record {
	records := make([]models.Record, 0, len(res.List))
	for _, in := range res.List {
		records = append(records, models.Record{
			Symbol:   in.Symbol,
			Base:     in.BaseCoin,
			Quote:    in.QuoteCoin,
			Status:   in.Status,
			Contract: in.ContractType,
		})
	}
	return records
}
