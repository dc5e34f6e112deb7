package earningshub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
)

const (
	source = "earningshub"

	// LinkSelector matches calendar entries linking to a ticker.
	LinkSelector = `a[href*="symbol="]`

	weekLayout = "2006-01-02"
)

// MondayOf returns the Monday starting the week that contains t.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Reader collects the tickers reporting earnings during one week.
type Reader struct {
	fetcher RenderedFetcher
	url     string
	wait    time.Duration
	week    string
	log     *logger.Log
}

// NewReader reads the calendar for the week starting on week. A zero week
// selects the current week.
func NewReader(cfg *config.Config, fetcher RenderedFetcher, week time.Time) *Reader {
	if week.IsZero() {
		week = time.Now()
	}
	w := MondayOf(week).Format(weekLayout)
	return &Reader{
		fetcher: fetcher,
		url:     fmt.Sprintf("%s/earnings-calendar/week-of/%s", strings.TrimRight(cfg.Source.Earningshub.URL, "/"), w),
		wait:    cfg.Source.Earningshub.RenderWait,
		week:    w,
		log:     logger.GetLogger(),
	}
}

// NewBrowser builds the headless browser fetcher from configuration.
func NewBrowser(cfg *config.Config) *Browser {
	return &Browser{
		ExecPath:          cfg.Source.Earningshub.ChromePath,
		NavigationTimeout: cfg.Source.Earningshub.NavigationTimeout,
		UserAgent:         cfg.HTTP.UserAgent,
		NoSandbox:         runningAsRoot(),
	}
}

func (r *Reader) Name() string { return source }

// URL is the calendar page the reader renders.
func (r *Reader) URL() string { return r.url }

// Fetch renders the calendar and returns one record per ticker link. The
// record symbol is the link href; the symbol is extracted downstream.
func (r *Reader) Fetch(ctx context.Context) ([]models.Record, error) {
	html, err := r.fetcher.FetchRenderedDocument(ctx, r.url, r.wait)
	if err != nil {
		return nil, models.FetchError(source, err)
	}
	records, err := Extract(html)
	if err != nil {
		return nil, err
	}
	logger.LogDataFlowEntry(r.log.WithComponent(source).WithFields(logger.Fields{"week": r.week}),
		"earningshub_page", "pipeline", len(records), "calendar_links")
	return records, nil
}

// Extract returns the href of every ticker link in document order.
func Extract(html string) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.DecodeError(source, err)
	}
	var records []models.Record
	doc.Find(LinkSelector).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			records = append(records, models.Record{Symbol: href, Name: strings.TrimSpace(s.Text())})
		}
	})
	return records, nil
}
