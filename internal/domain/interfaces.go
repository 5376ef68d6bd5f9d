package domain

import (
	"context"
	"errors"
)

var (
	// ErrItemNotFound is returned when a lookup by item id yields no item.
	ErrItemNotFound = errors.New("item not found")
	// ErrMalformedResponse covers undecodable bodies and success=false envelopes.
	ErrMalformedResponse = errors.New("malformed response")
)

// PriceChangeAPI is the remote price-change service.
type PriceChangeAPI interface {
	SearchPriceChanges(ctx context.Context, params SearchParams) (*SearchPage, error)
	TopMovers(ctx context.Context, sortBy SortOption, limit int) (*SearchPage, error)
	GetItem(ctx context.Context, itemID int64) (*CaseItem, error)
	GetPriceChart(ctx context.Context, itemID int64, interval ChartInterval) ([]ChartDataPoint, error)
	GetPriceStats(ctx context.Context, itemID int64) ([]PriceStat, error)
}
