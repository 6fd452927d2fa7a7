// Package coinpaprika fetches coin metadata and live prices from the
// CoinPaprika public API.
//
// No API key is required. Requests are spaced by a rate limiter so that a
// refresh of many coins stays within the free tier.
package coinpaprika

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/coinfolio"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL         = "https://api.coinpaprika.com/v1"
	DefaultTimeout         = 30 * time.Second
	DefaultRequestInterval = 120 * time.Millisecond
	DefaultCoinListLimit   = 1000
)

// ErrNoQuote is returned when a ticker has no price in the quote currency.
var ErrNoQuote = errors.New("no quote")

// Client is a CoinPaprika API client.
type Client struct {
	baseURL    string
	quote      string
	coinLimit  int
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log.With().Str("component", "coinpaprika").Logger() }
}

// WithRequestInterval sets the minimum delay between two requests. Zero disables the limit.
func WithRequestInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithQuoteCurrency sets the currency prices are read in.
func WithQuoteCurrency(code string) ClientOption {
	return func(c *Client) { c.quote = strings.ToUpper(code) }
}

// WithCoinListLimit sets how many coins FetchCoins keeps, by rank.
func WithCoinListLimit(n int) ClientOption {
	return func(c *Client) { c.coinLimit = n }
}

// WithCache caches successful GET responses in dir for ttl.
// It must come after WithHTTPClient, if any.
func WithCache(dir string, ttl time.Duration) ClientOption {
	return func(c *Client) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc := *c.httpClient
		hc.Transport = &diskCache{base: base, dir: dir, ttl: ttl, log: &c.log}
		c.httpClient = &hc
	}
}

// NewClient creates a new CoinPaprika client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		quote:      coinfolio.DefaultCurrency,
		coinLimit:  DefaultCoinListLimit,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a rate limited GET on path and decodes the JSON body into v.
func (c *Client) get(ctx context.Context, path string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Dur("elapsed", elapsed).Msg("request failed")
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("request")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot GET %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

type coinResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Rank     int    `json:"rank"`
	IsActive bool   `json:"is_active"`
}

// FetchCoins returns the active, ranked coins sorted by rank, at most the
// configured coin list limit.
func (c *Client) FetchCoins(ctx context.Context) ([]coinfolio.Coin, error) {
	var resp []coinResponse
	if err := c.get(ctx, "/coins", &resp); err != nil {
		return nil, err
	}
	coins := make([]coinfolio.Coin, 0, len(resp))
	for _, r := range resp {
		if !r.IsActive || r.Rank <= 0 {
			continue
		}
		coins = append(coins, coinfolio.Coin{ID: r.ID, Name: r.Name, Symbol: r.Symbol, Rank: r.Rank})
	}
	slices.SortStableFunc(coins, func(a, b coinfolio.Coin) int { return a.Rank - b.Rank })
	if c.coinLimit > 0 && len(coins) > c.coinLimit {
		coins = coins[:c.coinLimit]
	}
	c.log.Info().Int("coins", len(coins)).Msg("coin list fetched")
	return coins, nil
}

// FetchPrice returns the current price of the coin with the given id.
func (c *Client) FetchPrice(ctx context.Context, id string) (coinfolio.Price, error) {
	var ticker any
	q := url.Values{"quotes": {c.quote}}
	if err := c.get(ctx, "/tickers/"+url.PathEscape(id)+"?"+q.Encode(), &ticker); err != nil {
		return coinfolio.Price{}, err
	}

	path := fmt.Sprintf("$.quotes.%s.price", c.quote)
	jval, err := jsonpath.Get(path, ticker)
	if err != nil {
		return coinfolio.Price{}, fmt.Errorf("%w for %q in %s", ErrNoQuote, id, c.quote)
	}
	price, ok := jval.(float64)
	if !ok {
		return coinfolio.Price{}, fmt.Errorf("%w for %q: %v is not a number", ErrNoQuote, id, jval)
	}

	p := coinfolio.Price{Price: price, UpdatedAt: time.Now().UTC()}
	if jval, err := jsonpath.Get("$.last_updated", ticker); err == nil {
		if s, ok := jval.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				p.UpdatedAt = t
			}
		}
	}
	return p, nil
}

// RefreshPrices fetches the price of every id and returns current updated
// with them, and the number of prices fetched.
//
// A failure on one id is logged and leaves its previous price in place.
// Only a cancelled context interrupts the refresh.
func (c *Client) RefreshPrices(ctx context.Context, ids []string, current coinfolio.Prices) (coinfolio.Prices, int, error) {
	updated := make(coinfolio.Prices, len(current)+len(ids))
	for k, v := range current {
		updated[k] = v
	}
	n := 0
	for _, id := range ids {
		p, err := c.FetchPrice(ctx, id)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return updated, n, ctxErr
		}
		if err != nil {
			c.log.Warn().Err(err).Str("coin", id).Msg("price not refreshed")
			continue
		}
		updated[id] = p
		n++
	}
	c.log.Info().Int("updated", n).Int("requested", len(ids)).Msg("prices refreshed")
	return updated, n, nil
}
