package ibkr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"watchlist/config"
	"watchlist/logger"
	"watchlist/models"
	"watchlist/reader"
)

const (
	source = "ibkr"

	// maxPages bounds position pagination for a single account.
	maxPages = 50
)

// Reader lists brokerage positions through the Client Portal gateway. Every
// account visible to the gateway session is read unless one is configured.
type Reader struct {
	client    *http.Client
	base      string
	accountID string
	log       *logger.Log
}

func NewReader(cfg *config.Config, client *http.Client) *Reader {
	return &Reader{
		client:    client,
		base:      strings.TrimRight(cfg.Source.IBKR.URL, "/") + "/v1/api",
		accountID: cfg.Source.IBKR.AccountID,
		log:       logger.GetLogger(),
	}
}

func (r *Reader) Name() string { return source }

// Fetch returns one record per position, including zero positions.
func (r *Reader) Fetch(ctx context.Context) ([]models.Record, error) {
	log := r.log.WithComponent(source)

	accounts := []string{r.accountID}
	if r.accountID == "" {
		var err error
		if accounts, err = r.accounts(ctx); err != nil {
			return nil, err
		}
	}

	var records []models.Record
	for _, acct := range accounts {
		rows, err := r.positions(ctx, acct)
		if err != nil {
			return nil, err
		}
		log.WithFields(logger.Fields{"account": acct, "positions": len(rows)}).Debug("account positions read")
		records = append(records, rows...)
	}
	logger.LogDataFlowEntry(log, "ibkr_gateway", "pipeline", len(records), "positions")
	return records, nil
}

type account struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
}

func (r *Reader) accounts(ctx context.Context) ([]string, error) {
	body, err := reader.Get(ctx, r.client, source, r.base+"/portfolio/accounts")
	if err != nil {
		return nil, err
	}
	var list []account
	if err := reader.DecodeJSON(source, body, &list); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, a := range list {
		id := a.AccountID
		if id == "" {
			id = a.ID
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, models.FetchError(source, fmt.Errorf("gateway session has no accounts"))
	}
	return ids, nil
}

func (r *Reader) positions(ctx context.Context, acct string) ([]models.Record, error) {
	var records []models.Record
	for page := 0; page < maxPages; page++ {
		u := fmt.Sprintf("%s/portfolio/%s/positions/%d", r.base, url.PathEscape(acct), page)
		body, err := reader.Get(ctx, r.client, source, u)
		if err != nil {
			return nil, err
		}
		rows, err := Decode(body)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}
		records = append(records, rows...)
	}
	return records, nil
}

type position struct {
	ContractDesc    string  `json:"contractDesc"`
	Ticker          string  `json:"ticker"`
	Position        float64 `json:"position"`
	AssetClass      string  `json:"assetClass"`
	ListingExchange string  `json:"listingExchange"`
}

// Decode parses one page of positions.
func Decode(body []byte) ([]models.Record, error) {
	var rows []position
	if err := reader.DecodeJSON(source, body, &rows); err != nil {
		return nil, err
	}
	records := make([]models.Record, 0, len(rows))
	for _, p := range rows {
		records = append(records, models.Record{
			Symbol:     Symbol(p.Ticker, p.ContractDesc),
			Name:       p.ContractDesc,
			Position:   p.Position,
			AssetClass: p.AssetClass,
			Venue:      p.ListingExchange,
		})
	}
	return records, nil
}

// Symbol returns the underlying ticker of a position. Share class separators
// are written with a dot ("BRK B" becomes "BRK.B"). Without a ticker the first
// word of the contract description is used.
func Symbol(ticker, desc string) string {
	t := strings.TrimSpace(ticker)
	if t == "" {
		fields := strings.Fields(desc)
		if len(fields) == 0 {
			return ""
		}
		t = fields[0]
	}
	return strings.Join(strings.Fields(t), ".")
}
