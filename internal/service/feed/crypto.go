package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinGauge/internal/domain/models"
	xhttp "FinGauge/pkg/http"
)

// coinMarket mirrors the fields read from the markets endpoint.
type coinMarket struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"current_price"`
	Change24h float64 `json:"price_change_percentage_24h_in_currency"`
	Change7d  float64 `json:"price_change_percentage_7d_in_currency"`
}

// Markets fetches live spot quotes for the given CoinGecko ids.
func (c *Client) Markets(ctx context.Context, ids []string) ([]models.CryptoQuote, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	u := strings.TrimRight(c.cfg.Feeds.CoinGeckoBaseURL, "/") + "/api/v3/coins/markets"
	params := map[string][]string{
		"vs_currency":             {"usd"},
		"ids":                     {strings.Join(ids, ",")},
		"price_change_percentage": {"1h,24h,7d"},
	}

	start := time.Now()
	var rows []coinMarket
	err := c.http.Get(ctx, &xhttp.RequestOptions{
		URL:         u,
		QueryParams: params,
	}, &rows)
	c.observe("coingecko", start, err)
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}

	out := make([]models.CryptoQuote, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CryptoQuote{
			ID:        r.ID,
			Symbol:    r.Symbol,
			Name:      r.Name,
			Price:     r.Price,
			Change24h: r.Change24h,
			Change7d:  r.Change7d,
		})
	}
	return out, nil
}
