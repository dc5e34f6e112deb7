package stockanalysis

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
	"watchlist/reader"
)

const (
	source = "stockanalysis"

	// TableSelector locates the holdings table body.
	TableSelector = "#main table tbody"
	// TickerSelector locates ticker links inside the table body.
	TickerSelector = "td a"
)

// Reader scrapes the holdings page of one ETF.
type Reader struct {
	client *http.Client
	ticker string
	url    string
	log    *logger.Log
}

func NewReader(cfg *config.Config, client *http.Client, ticker string) *Reader {
	t := strings.ToLower(strings.TrimSpace(ticker))
	return &Reader{
		client: client,
		ticker: t,
		url:    fmt.Sprintf("%s/etf/%s/holdings", strings.TrimRight(cfg.Source.Stockanalysis.URL, "/"), url.PathEscape(t)),
		log:    logger.GetLogger(),
	}
}

func (r *Reader) Name() string { return source + "_" + r.ticker }

// Fetch returns one record per holding, in table order. A page without the
// holdings table is an error, never an empty result.
func (r *Reader) Fetch(ctx context.Context) ([]models.Record, error) {
	body, err := reader.Get(ctx, r.client, source, r.url)
	if err != nil {
		return nil, err
	}
	records, err := Extract(body)
	if err != nil {
		return nil, err
	}
	logger.LogDataFlowEntry(r.log.WithComponent(source).WithFields(logger.Fields{"etf": r.ticker}),
		"stockanalysis_page", "pipeline", len(records), "holdings")
	return records, nil
}

// Extract reads holding tickers from a holdings page.
func Extract(body []byte) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, models.DecodeError(source, err)
	}
	table := doc.Find(TableSelector).First()
	if table.Length() == 0 {
		return nil, models.StructuralAbsenceError(source, TableSelector)
	}
	var records []models.Record
	table.Find(TickerSelector).Each(func(_ int, s *goquery.Selection) {
		records = append(records, models.Record{Symbol: strings.TrimSpace(s.Text())})
	})
	return records, nil
}
