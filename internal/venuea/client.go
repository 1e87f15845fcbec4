package venuea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/EMMoasis/BothMarkets/internal/types"
	"github.com/EMMoasis/BothMarkets/internal/venue"
)

const (
	// DefaultBaseURL is venue A's production API host.
	DefaultBaseURL = "https://trading-api.venue-a.example/trade-api/v2"

	defaultRateLimit = 10.0
	defaultBurst     = 5

	pageSize = 1000
)

// Client is the venue-A adapter: an RSA-PS256-signed REST client over
// an integer-cent CLOB. Constructed the same way the teacher builds its
// Gamma/CLOB clients: a base URL, an *http.Client, and a
// *rate.Limiter, all overridable via functional options.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	signer     *Signer
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewClient builds a venue-A client signing requests with signer. A nil
// signer produces a read-only client usable for scan-only mode.
func NewClient(signer *Signer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		signer:  signer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() types.Venue { return types.VenueA }

// ListMarkets paginates GET /markets?status=open&limit=1000 via cursor
// and normalizes every page as it arrives.
func (c *Client) ListMarkets(ctx context.Context) ([]types.NormalizedMarket, error) {
	var out []types.NormalizedMarket
	cursor := ""
	for {
		params := url.Values{}
		params.Set("status", "open")
		params.Set("limit", strconv.Itoa(pageSize))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page MarketsPage
		if err := c.do(ctx, http.MethodGet, "/markets", params, nil, &page); err != nil {
			return nil, err
		}

		for _, m := range page.Markets {
			if nm, ok := NormalizeMarket(m); ok {
				out = append(out, nm)
			}
		}

		if page.Cursor == "" || len(page.Markets) == 0 {
			break
		}
		cursor = page.Cursor
	}
	return out, nil
}

// GetQuote reads the orderbook endpoint and never the summary: the summary
// endpoint's yes_ask/no_ask may be null, and a null must never be read
// as zero (§9 open question c).
func (c *Client) GetQuote(ctx context.Context, ticker string) (*venue.Quote, error) {
	var ob Orderbook
	if err := c.do(ctx, http.MethodGet, "/markets/"+ticker+"/orderbook", nil, nil, &ob); err != nil {
		return nil, err
	}
	return quoteFromOrderbook(ob), nil
}

func (c *Client) PlaceTaker(ctx context.Context, ticker string, side venue.Side, units decimal.Decimal, limitCents decimal.Decimal) (*venue.OrderResult, error) {
	req := OrderRequest{
		Ticker:        ticker,
		Side:          sideWire(side),
		Action:        "buy",
		Count:         int(units.IntPart()),
		Type:          "limit",
		LimitPrice:    int(limitCents.IntPart()),
		TimeInForce:   "immediate_or_cancel",
		ClientOrderID: fmt.Sprintf("arb-%d", time.Now().UnixNano()),
	}
	var resp OrderResponse
	if err := c.do(ctx, http.MethodPost, "/portfolio/orders", nil, req, &resp); err != nil {
		return nil, err
	}
	return &venue.OrderResult{
		OrderID:    resp.Order.OrderID,
		Requested:  units,
		Filled:     decimal.NewFromInt(int64(resp.Order.FilledCount)),
		PriceCents: decimal.NewFromInt(int64(resp.Order.YesPrice)),
	}, nil
}

func (c *Client) Cancel(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/portfolio/orders/"+orderID, nil, nil, nil)
}

func (c *Client) GetFill(ctx context.Context, orderID string) (*venue.OrderResult, error) {
	var resp OrderResponse
	if err := c.do(ctx, http.MethodGet, "/portfolio/orders/"+orderID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &venue.OrderResult{
		OrderID:    resp.Order.OrderID,
		Filled:     decimal.NewFromInt(int64(resp.Order.FilledCount)),
		PriceCents: decimal.NewFromInt(int64(resp.Order.YesPrice)),
	}, nil
}

func (c *Client) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	var resp BalanceResponse
	if err := c.do(ctx, http.MethodGet, "/portfolio/balance", nil, nil, &resp); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(int64(resp.BalanceCents)).Div(decimal.NewFromInt(100)), nil
}

func (c *Client) SellAtBid(ctx context.Context, ticker string, side venue.Side, units decimal.Decimal) (*venue.OrderResult, error) {
	req := OrderRequest{
		Ticker:        ticker,
		Side:          sideWire(side),
		Action:        "sell",
		Count:         int(units.IntPart()),
		Type:          "market",
		TimeInForce:   "immediate_or_cancel",
		ClientOrderID: fmt.Sprintf("unwind-%d", time.Now().UnixNano()),
	}
	var resp OrderResponse
	if err := c.do(ctx, http.MethodPost, "/portfolio/orders", nil, req, &resp); err != nil {
		return nil, err
	}
	return &venue.OrderResult{
		OrderID:    resp.Order.OrderID,
		Requested:  units,
		Filled:     decimal.NewFromInt(int64(resp.Order.FilledCount)),
		PriceCents: decimal.NewFromInt(int64(resp.Order.YesPrice)),
	}, nil
}

func sideWire(s venue.Side) string {
	if s == venue.SideYes {
		return "yes"
	}
	return "no"
}

// do issues a signed HTTP request and decodes the JSON response into
// result (skipped if result is nil).
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("venuea: rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("venuea: encode request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("venuea: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	if c.signer != nil {
		headers, err := c.signer.Headers(method, "/trade-api/v2"+path)
		if err != nil {
			return fmt.Errorf("venuea: sign request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &venue.TransportError{Venue: "A", Op: path, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	case http.StatusTooManyRequests:
		return &venue.RateLimitError{Venue: "A", Op: path}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &venue.AuthError{Venue: "A", Op: path, Code: resp.StatusCode}
	default:
		b, _ := io.ReadAll(resp.Body)
		return &venue.VenueProtocolError{Venue: "A", Op: path, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(b))}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &venue.VenueProtocolError{Venue: "A", Op: path, Err: err}
	}
	return nil
}

var _ venue.Adapter = (*Client)(nil)
