package web

import (
	"encoding/json"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/view"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

type searchResponse struct {
	Query      string            `json:"query"`
	Page       int               `json:"page"`
	SortBy     string            `json:"sort_by"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
	Pages      []string          `json:"pages"`
	Items      []domain.CaseItem `json:"items"`
}

type chartResponse struct {
	Interval      string           `json:"interval"`
	Points        []chartPointJSON `json:"points"`
	ChangeValue   string           `json:"change_value"`
	ChangePercent string           `json:"change_percent"`
	Positive      bool             `json:"positive"`
	CurrentPrice  string           `json:"current_price"`
	Hover         *chartPointJSON  `json:"hover,omitempty"`
	Sparkline     *sparklineJSON   `json:"sparkline,omitempty"`
}

type chartPointJSON struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
	Price     string `json:"price"`
}

type sparklineJSON struct {
	Polyline string `json:"polyline"`
	Area     string `json:"area"`
	Stroke   string `json:"stroke"`
}

type statJSON struct {
	Interval  string  `json:"interval"`
	Label     string  `json:"label"`
	HighPrice string  `json:"high_price"`
	LowPrice  string  `json:"low_price"`
	Position  float64 `json:"position"`
	Zone      string  `json:"zone"`
}

type itemResponse struct {
	Item       *domain.CaseItem `json:"item,omitempty"`
	ItemError  string           `json:"item_error,omitempty"`
	Chart      *chartResponse   `json:"chart,omitempty"`
	ChartError string           `json:"chart_error,omitempty"`
	Stats      []statJSON       `json:"stats"`
	StatsError string           `json:"stats_error,omitempty"`
	MarketURL  string           `json:"market_url,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func pageLabels(entries []view.PageEntry) []string {
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.String()
	}
	return labels
}

func (s *Server) handleSearchJSON(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r)
	sv := s.searchView(r, params)
	if sv.Err != nil {
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: view.ErrorMessage(sv.Err)})
		return
	}

	items := sv.Page.Items
	if items == nil {
		items = []domain.CaseItem{}
	}
	s.writeJSON(w, http.StatusOK, searchResponse{
		Query:      params.Query,
		Page:       params.Page,
		SortBy:     string(params.SortBy),
		Total:      sv.Page.Total,
		TotalPages: sv.Pager.Total,
		Pages:      pageLabels(sv.Pager.Entries),
		Items:      items,
	})
}

func newChartResponse(p *itemPage, interval domain.ChartInterval) *chartResponse {
	c := p.Series
	resp := &chartResponse{
		Interval:      string(interval),
		Points:        make([]chartPointJSON, len(c.Points)),
		ChangeValue:   view.FormatMajor(c.ChangeValue),
		ChangePercent: c.ChangePercentLabel(),
		Positive:      c.IsPositive(),
		CurrentPrice:  p.ChartPrice(),
	}
	for i, pt := range c.Points {
		resp.Points[i] = chartPointJSON{
			Index:     i,
			Timestamp: pt.Timestamp,
			Date:      pt.DateLabel(),
			Price:     view.FormatMajor(pt.DisplayPrice),
		}
	}
	if p.Hover != nil {
		hp := resp.Points[p.Hover.Index]
		resp.Hover = &hp
	}
	if p.Line != nil {
		resp.Sparkline = &sparklineJSON{
			Polyline: p.Line.PolylinePoints(),
			Area:     p.Line.AreaPoints(),
			Stroke:   c.StrokeColor(),
		}
	}
	return resp
}

func (s *Server) handleItemJSON(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(r)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrItemNotFound.Error()})
		return
	}
	detail := s.marketService.ItemDetail(r.Context(), id, parseInterval(r))
	if detail.NotFound() {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrItemNotFound.Error()})
		return
	}
	p := s.buildItemPage(r, detail)

	resp := itemResponse{Stats: []statJSON{}}
	if detail.Item.Failed() {
		resp.ItemError = view.ErrorMessage(detail.Item.Err)
	} else {
		resp.Item = detail.Item.Data
		resp.MarketURL = marketURL(detail.Item.Data.Name)
	}
	if detail.Chart.Failed() {
		resp.ChartError = view.ErrorMessage(detail.Chart.Err)
	} else {
		resp.Chart = newChartResponse(p, detail.Interval)
	}
	if detail.Stats.Failed() {
		resp.StatsError = view.ErrorMessage(detail.Stats.Err)
	}
	for _, c := range p.StatCards {
		resp.Stats = append(resp.Stats, statJSON{
			Interval:  c.Interval,
			Label:     c.Label,
			HighPrice: view.FormatPrice(c.HighPrice),
			LowPrice:  view.FormatPrice(c.LowPrice),
			Position:  c.Position.Percent,
			Zone:      string(c.Position.Zone),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChartJSON(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(r)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrItemNotFound.Error()})
		return
	}
	interval := parseInterval(r)
	data, err := s.marketService.Chart(r.Context(), id, interval)
	if err != nil {
		s.logger.Warn("Chart request failed", zap.Int64("item_id", id), zap.Error(err))
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: view.ErrorMessage(err)})
		return
	}

	p := &itemPage{}
	p.setSeries(r, data)
	s.writeJSON(w, http.StatusOK, newChartResponse(p, interval))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"started":        humanize.Time(s.startedAt),
		"cached_queries": s.marketService.CachedQueries(),
	})
}
