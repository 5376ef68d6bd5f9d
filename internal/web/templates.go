package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/view"
	"go.uber.org/zap"
)

const (
	steamImageBaseURL  = "https://community.fastly.steamstatic.com/economy/image/"
	steamMarketBaseURL = "https://steamcommunity.com/market/listings/730/"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))

var templateFuncs = template.FuncMap{
	"price":       view.FormatPrice,
	"major":       view.FormatMajor,
	"pct":         view.FormatPercent,
	"signedPct":   view.FormatSignedPercent,
	"errorText":   view.ErrorMessage,
	"imageURL":    imageURL,
	"marketURL":   marketURL,
	"itemURL":     itemURL,
	"pageURL":     pageURL,
	"sparkline":   sparklineOf,
	"comma":       func(n int) string { return humanize.Comma(int64(n)) },
	"plural":      plural,
	"add":         func(a, b int) int { return a + b },
	"sortOptions": func() []domain.SortOption { return []domain.SortOption{domain.SortGainers, domain.SortLosers} },
}

func imageURL(icon string, size int) string {
	return fmt.Sprintf("%s%s/%dfx%df", steamImageBaseURL, icon, size, size)
}

func marketURL(name string) string {
	return steamMarketBaseURL + url.PathEscape(name)
}

func itemURL(id int64) string {
	return "/item/" + strconv.FormatInt(id, 10)
}

// pageURL links to a search result page with the current query and sort.
func pageURL(q string, sortBy domain.SortOption, page int) string {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	v.Set("sort", string(sortBy))
	v.Set("page", strconv.Itoa(page))
	return "/?" + v.Encode()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func sparklineOf(samples []float64) *view.Sparkline {
	s, ok := view.NewSparkline(samples)
	if !ok {
		return nil
	}
	return s
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("Failed to write response", zap.Error(err))
	}
}

func renderFragment(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
