package priceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vitos/case_index/internal/domain"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:3000"

	searchPath = "/api/price-changes/search"
	chartPath  = "/api/price-changes/chart"
	statsPath  = "/api/price-changes/price-stats"
)

// StatusError is an HTTP error status from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("price API returned status %d", e.Code)
	}
	return fmt.Sprintf("price API returned status %d: %s", e.Code, e.Body)
}

// Client talks to the price-change HTTP API.
type Client struct {
	client *resty.Client
	logger *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &Client{client: client, logger: logger}
}

var _ domain.PriceChangeAPI = (*Client)(nil)

type searchEnvelope struct {
	Success bool               `json:"success"`
	Data    *domain.SearchPage `json:"data"`
}

type chartEnvelope struct {
	Success bool                    `json:"success"`
	Data    []domain.ChartDataPoint `json:"data"`
}

type statsEnvelope struct {
	Success bool               `json:"success"`
	Data    []domain.PriceStat `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}

	c.logger.Debug("Price API request",
		zap.String("path", path),
		zap.Any("params", params),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode() >= 400 {
		return &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, path, err)
	}
	return nil
}

func (c *Client) search(ctx context.Context, params map[string]string) (*domain.SearchPage, error) {
	var env searchEnvelope
	if err := c.get(ctx, searchPath, params, &env); err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, fmt.Errorf("%w: %s: unsuccessful envelope", domain.ErrMalformedResponse, searchPath)
	}
	if env.Data.Items == nil {
		env.Data.Items = []domain.CaseItem{}
	}
	return env.Data, nil
}

// SearchPriceChanges runs a paginated text search.
func (c *Client) SearchPriceChanges(ctx context.Context, params domain.SearchParams) (*domain.SearchPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	return c.search(ctx, map[string]string{
		"query":   params.Query,
		"page":    strconv.Itoa(page),
		"sort_by": string(params.SortBy),
	})
}

// TopMovers returns the first page of gainers or losers, limited to limit items.
func (c *Client) TopMovers(ctx context.Context, sortBy domain.SortOption, limit int) (*domain.SearchPage, error) {
	return c.search(ctx, map[string]string{
		"sort_by": string(sortBy),
		"page":    "1",
		"limit":   strconv.Itoa(limit),
	})
}

// GetItem looks up a single item through the search endpoint.
func (c *Client) GetItem(ctx context.Context, itemID int64) (*domain.CaseItem, error) {
	page, err := c.search(ctx, map[string]string{
		"item_id": strconv.FormatInt(itemID, 10),
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return nil, fmt.Errorf("item %d: %w", itemID, domain.ErrItemNotFound)
		}
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, fmt.Errorf("item %d: %w", itemID, domain.ErrItemNotFound)
	}
	item := page.Items[0]
	return &item, nil
}

func (c *Client) GetPriceChart(ctx context.Context, itemID int64, interval domain.ChartInterval) ([]domain.ChartDataPoint, error) {
	if interval == "" {
		interval = domain.DefaultChartInterval
	}
	var env chartEnvelope
	err := c.get(ctx, chartPath, map[string]string{
		"item_id":  strconv.FormatInt(itemID, 10),
		"interval": string(interval),
	}, &env)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s: unsuccessful envelope", domain.ErrMalformedResponse, chartPath)
	}
	if env.Data == nil {
		env.Data = []domain.ChartDataPoint{}
	}
	return env.Data, nil
}

func (c *Client) GetPriceStats(ctx context.Context, itemID int64) ([]domain.PriceStat, error) {
	var env statsEnvelope
	err := c.get(ctx, statsPath, map[string]string{
		"item_id": strconv.FormatInt(itemID, 10),
	}, &env)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s: unsuccessful envelope", domain.ErrMalformedResponse, statsPath)
	}
	if env.Data == nil {
		env.Data = []domain.PriceStat{}
	}
	return env.Data, nil
}
