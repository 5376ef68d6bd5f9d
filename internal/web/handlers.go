package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/usecase"
	"github.com/vitos/case_index/internal/view"
	"go.uber.org/zap"
)

// SearchView is one rendered page of search results.
type SearchView struct {
	Params domain.SearchParams
	Page   *domain.SearchPage
	Err    error
	Pager  view.Pager
	// Loading and Placeholder are only set by live sessions.
	Loading     bool
	Placeholder bool
}

func (v *SearchView) Count() int {
	if v.Page == nil {
		return 0
	}
	return v.Page.Total
}

func (v *SearchView) Empty() bool {
	return v.Page == nil || len(v.Page.Items) == 0
}

type homePage struct {
	Query  string
	SortBy domain.SortOption
	Home   *usecase.HomeView
	Search *SearchView
}

// moverRow is a ranked entry of a top-movers list.
type moverRow struct {
	Rank int
	domain.CaseItem
}

func rankMovers(page *domain.SearchPage) []moverRow {
	if page == nil {
		return nil
	}
	rows := make([]moverRow, len(page.Items))
	for i, it := range page.Items {
		rows[i] = moverRow{Rank: i + 1, CaseItem: it}
	}
	return rows
}

func (p *homePage) Gainers() []moverRow {
	if p.Home == nil {
		return nil
	}
	return rankMovers(p.Home.Gainers.Data)
}

func (p *homePage) Losers() []moverRow {
	if p.Home == nil {
		return nil
	}
	return rankMovers(p.Home.Losers.Data)
}

func parseSearchParams(r *http.Request) domain.SearchParams {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return domain.SearchParams{
		Query:  strings.TrimSpace(q.Get("q")),
		Page:   page,
		SortBy: domain.ParseSortOption(q.Get("sort")),
	}
}

func (s *Server) searchView(r *http.Request, params domain.SearchParams) *SearchView {
	sv := &SearchView{Params: params}
	sv.Page, sv.Err = s.marketService.Search(r.Context(), params)
	if sv.Err != nil {
		s.logger.Warn("Search failed",
			zap.String("query", params.Query),
			zap.Int("page", params.Page),
			zap.Error(sv.Err))
		return sv
	}
	sv.Pager = view.NewPager(params.Page, view.TotalPages(sv.Page.Total, s.marketService.PageSize()))
	return sv
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r)
	data := &homePage{Query: params.Query, SortBy: params.SortBy}

	if params.Query != "" {
		data.Search = s.searchView(r, params)
	} else {
		data.Home = s.marketService.Home(r.Context())
	}
	s.render(w, http.StatusOK, "home", data)
}

type itemPage struct {
	*usecase.ItemDetail
	Intervals []domain.ChartInterval
	Series    *view.Chart
	Line      *view.Sparkline
	Hover     *hoverTip
	StatCards []view.StatCard
}

func (p *itemPage) Title() string {
	if p.Item.Data != nil {
		return p.Item.Data.Name
	}
	return "Item"
}

// hoverTip is the chart tooltip for a server-side hover position.
type hoverTip struct {
	Index int
	Point view.ChartPoint
	At    view.Point
}

// ChartPrice is the price shown above the chart: the hovered point, else the
// latest point.
func (p *itemPage) ChartPrice() string {
	if p.Series == nil {
		return view.FormatPrice(0)
	}
	var idx *int
	if p.Hover != nil {
		idx = &p.Hover.Index
	}
	return view.FormatMajor(p.Series.CurrentPrice(idx))
}

func parseItemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("itemId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseInterval(r *http.Request) domain.ChartInterval {
	iv, err := domain.ParseChartInterval(r.URL.Query().Get("interval"))
	if err != nil {
		return domain.DefaultChartInterval
	}
	return iv
}

// parseHover reads the pointer fraction; ok is false when absent or invalid.
func parseHover(r *http.Request) (float64, bool) {
	raw := r.URL.Query().Get("hover")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// setSeries prepares the chart and applies the request's hover position.
func (p *itemPage) setSeries(r *http.Request, data []domain.ChartDataPoint) {
	p.Series = view.NewChart(data)
	p.Line, _ = p.Series.Sparkline()
	if f, ok := parseHover(r); ok && p.Line != nil {
		hp := p.Line.Hover(f)
		p.Hover = &hoverTip{Index: hp.Index, Point: p.Series.Points[hp.Index], At: hp.Point}
	}
}

func (s *Server) buildItemPage(r *http.Request, d *usecase.ItemDetail) *itemPage {
	p := &itemPage{ItemDetail: d, Intervals: domain.ChartIntervals}

	if !d.Chart.Failed() {
		p.setSeries(r, d.Chart.Data)
	}

	if !d.Stats.Failed() {
		var current int64
		if d.Item.Data != nil {
			current = d.Item.Data.LatestSellPrice
		}
		p.StatCards = view.NewStatCards(d.Stats.Data, current)
	}
	return p
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(r)
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	detail := s.marketService.ItemDetail(r.Context(), id, parseInterval(r))
	if detail.NotFound() {
		s.handleNotFound(w, r)
		return
	}
	s.render(w, http.StatusOK, "item", s.buildItemPage(r, detail))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, "not_found", nil)
}
