package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/query"
	"go.uber.org/zap"
)

// Query names, the first element of every cache key.
const (
	queryPriceChanges = "priceChanges"
	queryTopGainers   = "topGainers"
	queryTopLosers    = "topLosers"
	queryItem         = "item"
	queryPriceChart   = "priceChart"
	queryPriceStats   = "priceStats"
)

type MarketServiceConfig struct {
	PageSize        int
	TopMovers       int
	Freshness       time.Duration
	SearchFreshness time.Duration
	Retries         int
	RetryDelay      time.Duration
}

// MarketService serves the price-change queries through the response cache.
type MarketService struct {
	api    domain.PriceChangeAPI
	cache  *query.Client
	cfg    MarketServiceConfig
	logger *zap.Logger

	searchPolicy query.Policy
	moversPolicy query.Policy
	itemPolicy   query.Policy
	detailPolicy query.Policy
}

func NewMarketService(api domain.PriceChangeAPI, cache *query.Client, cfg MarketServiceConfig, logger *zap.Logger) *MarketService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.TopMovers <= 0 {
		cfg.TopMovers = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := query.Policy{
		Retry:       cfg.Retries,
		RetryDelay:  cfg.RetryDelay,
		ShouldRetry: retryable,
	}
	searchPolicy := base
	searchPolicy.StaleTime = cfg.SearchFreshness
	searchPolicy.KeepPreviousData = true

	fresh := base
	fresh.StaleTime = cfg.Freshness

	return &MarketService{
		api:          api,
		cache:        cache,
		cfg:          cfg,
		logger:       logger,
		searchPolicy: searchPolicy,
		moversPolicy: fresh,
		// Single-item lookups carry no freshness override; the cache still
		// coalesces concurrent requests.
		itemPolicy:   base,
		detailPolicy: fresh,
	}
}

// retryable keeps not-found and malformed responses from being retried.
func retryable(err error) bool {
	return !errors.Is(err, domain.ErrItemNotFound) &&
		!errors.Is(err, domain.ErrMalformedResponse) &&
		!errors.Is(err, context.Canceled)
}

func (s *MarketService) PageSize() int { return s.cfg.PageSize }

func (s *MarketService) TopMoversLimit() int { return s.cfg.TopMovers }

// CachedQueries is the number of entries currently held by the cache.
func (s *MarketService) CachedQueries() int { return s.cache.Len() }

func searchKey(params domain.SearchParams) query.Key {
	return query.Key{queryPriceChanges, params.Query, params.Page, string(params.SortBy)}
}

func normalizeSearch(params domain.SearchParams) domain.SearchParams {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.SortBy == "" {
		params.SortBy = domain.SortGainers
	}
	return params
}

func (s *MarketService) Search(ctx context.Context, params domain.SearchParams) (*domain.SearchPage, error) {
	params = normalizeSearch(params)
	return query.Fetch(ctx, s.cache, searchKey(params), s.searchPolicy, s.searchFn(params))
}

func (s *MarketService) searchFn(params domain.SearchParams) func(context.Context) (*domain.SearchPage, error) {
	return func(ctx context.Context) (*domain.SearchPage, error) {
		return s.api.SearchPriceChanges(ctx, params)
	}
}

func (s *MarketService) TopGainers(ctx context.Context, limit int) (*domain.SearchPage, error) {
	return s.topMovers(ctx, queryTopGainers, domain.SortGainers, limit)
}

func (s *MarketService) TopLosers(ctx context.Context, limit int) (*domain.SearchPage, error) {
	return s.topMovers(ctx, queryTopLosers, domain.SortLosers, limit)
}

func (s *MarketService) topMovers(ctx context.Context, name string, sortBy domain.SortOption, limit int) (*domain.SearchPage, error) {
	if limit <= 0 {
		limit = s.cfg.TopMovers
	}
	return query.Fetch(ctx, s.cache, query.Key{name, limit}, s.moversPolicy,
		func(ctx context.Context) (*domain.SearchPage, error) {
			return s.api.TopMovers(ctx, sortBy, limit)
		})
}

func (s *MarketService) Item(ctx context.Context, itemID int64) (*domain.CaseItem, error) {
	if itemID <= 0 {
		return nil, domain.ErrItemNotFound
	}
	return query.Fetch(ctx, s.cache, query.Key{queryItem, itemID}, s.itemPolicy,
		func(ctx context.Context) (*domain.CaseItem, error) {
			return s.api.GetItem(ctx, itemID)
		})
}

func (s *MarketService) Chart(ctx context.Context, itemID int64, interval domain.ChartInterval) ([]domain.ChartDataPoint, error) {
	if interval == "" {
		interval = domain.DefaultChartInterval
	}
	return query.Fetch(ctx, s.cache, query.Key{queryPriceChart, itemID, string(interval)}, s.detailPolicy,
		func(ctx context.Context) ([]domain.ChartDataPoint, error) {
			return s.api.GetPriceChart(ctx, itemID, interval)
		})
}

func (s *MarketService) PriceStats(ctx context.Context, itemID int64) ([]domain.PriceStat, error) {
	return query.Fetch(ctx, s.cache, query.Key{queryPriceStats, itemID}, s.detailPolicy,
		func(ctx context.Context) ([]domain.PriceStat, error) {
			return s.api.GetPriceStats(ctx, itemID)
		})
}

// Section is one independently loaded part of a view. A failed section does
// not affect its siblings.
type Section[T any] struct {
	Data T
	Err  error
}

func (s Section[T]) Failed() bool { return s.Err != nil }

type HomeView struct {
	Gainers Section[*domain.SearchPage]
	Losers  Section[*domain.SearchPage]
}

// Home loads the top gainers and top losers in parallel.
func (s *MarketService) Home(ctx context.Context) *HomeView {
	var (
		view HomeView
		wg   sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		view.Gainers.Data, view.Gainers.Err = s.TopGainers(ctx, s.cfg.TopMovers)
	}()
	go func() {
		defer wg.Done()
		view.Losers.Data, view.Losers.Err = s.TopLosers(ctx, s.cfg.TopMovers)
	}()
	wg.Wait()

	if view.Gainers.Err != nil {
		s.logger.Warn("Failed to load top gainers", zap.Error(view.Gainers.Err))
	}
	if view.Losers.Err != nil {
		s.logger.Warn("Failed to load top losers", zap.Error(view.Losers.Err))
	}
	return &view
}

type ItemDetail struct {
	ItemID   int64
	Interval domain.ChartInterval
	Item     Section[*domain.CaseItem]
	Chart    Section[[]domain.ChartDataPoint]
	Stats    Section[[]domain.PriceStat]
}

// NotFound reports whether the item lookup came back empty.
func (d *ItemDetail) NotFound() bool {
	return errors.Is(d.Item.Err, domain.ErrItemNotFound)
}

// ItemDetail issues the item, chart and stats requests concurrently.
func (s *MarketService) ItemDetail(ctx context.Context, itemID int64, interval domain.ChartInterval) *ItemDetail {
	if interval == "" {
		interval = domain.DefaultChartInterval
	}
	d := &ItemDetail{ItemID: itemID, Interval: interval}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		d.Item.Data, d.Item.Err = s.Item(ctx, itemID)
	}()
	go func() {
		defer wg.Done()
		d.Chart.Data, d.Chart.Err = s.Chart(ctx, itemID, interval)
	}()
	go func() {
		defer wg.Done()
		d.Stats.Data, d.Stats.Err = s.PriceStats(ctx, itemID)
	}()
	wg.Wait()

	for name, err := range map[string]error{"item": d.Item.Err, "chart": d.Chart.Err, "stats": d.Stats.Err} {
		if err != nil && !errors.Is(err, domain.ErrItemNotFound) {
			s.logger.Warn("Failed to load item detail section",
				zap.String("section", name),
				zap.Int64("item_id", itemID),
				zap.Error(err))
		}
	}
	return d
}

// WarmTopMovers refreshes both top-mover lists ahead of page loads.
func (s *MarketService) WarmTopMovers(ctx context.Context) {
	home := s.Home(ctx)
	if !home.Gainers.Failed() && !home.Losers.Failed() {
		s.logger.Debug("Warmed top movers",
			zap.Int("gainers", len(home.Gainers.Data.Items)),
			zap.Int("losers", len(home.Losers.Data.Items)))
	}
}
