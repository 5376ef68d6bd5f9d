package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/case_index/internal/domain"
)

type searchCall struct {
	query  string
	page   string
	sortBy string
	itemID string
}

func newPriceAPI(t *testing.T) (*httptest.Server, func() []searchCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []searchCall
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/price-changes/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		calls = append(calls, searchCall{q.Get("query"), q.Get("page"), q.Get("sort_by"), q.Get("item_id")})
		mu.Unlock()

		page := domain.SearchPage{Total: 25, Items: []domain.CaseItem{
			{ItemID: 7, Name: "Chroma Case", OldSellPrice: 100, LatestSellPrice: 150, ChangePct: 50},
		}}
		if q.Get("item_id") != "" && q.Get("item_id") != "7" {
			page = domain.SearchPage{Items: []domain.CaseItem{}}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": page})
	})
	mux.HandleFunc("/api/price-changes/chart", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []domain.ChartDataPoint{
			{Timestamp: "2024-03-01T00:00:00Z", Price: 100},
			{Timestamp: "2024-03-08T00:00:00Z", Price: 150},
		}})
	})
	mux.HandleFunc("/api/price-changes/price-stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []domain.PriceStat{
			{Interval: "7d", Label: "7 Days", LowPrice: 100, HighPrice: 200},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, func() []searchCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]searchCall(nil), calls...)
	}
}

func runCmd(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CASE_INDEX_API_BASE_URL", apiURL)
	t.Setenv("LOG_LEVEL", "error")

	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config=" + filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	cmd := NewRootCmd("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "caseindex 1.2.3\n", out.String())
}

func TestSearchCmd(t *testing.T) {
	srv, calls := newPriceAPI(t)

	out, err := runCmd(t, srv.URL, "search", "Chroma", "--page", "2", "--sort", "losers")
	require.NoError(t, err)

	assert.Contains(t, out, "Chroma Case")
	assert.Contains(t, out, "25 results")
	assert.Contains(t, out, "[2]")
	assert.Equal(t, []searchCall{{query: "Chroma", page: "2", sortBy: "losers"}}, calls())
}

func TestSearchCmd_RejectsBadPage(t *testing.T) {
	srv, calls := newPriceAPI(t)

	_, err := runCmd(t, srv.URL, "search", "--page", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page must be at least 1")
	assert.Empty(t, calls())
}

func TestItemCmd(t *testing.T) {
	srv, _ := newPriceAPI(t)

	out, err := runCmd(t, srv.URL, "item", "7", "--interval", "7d")
	require.NoError(t, err)
	assert.Contains(t, out, "Chroma Case")
	assert.Contains(t, out, "Price History (7D)")
	assert.Contains(t, out, "7 Days")
}

func TestItemCmd_NotFound(t *testing.T) {
	srv, calls := newPriceAPI(t)

	tests := []struct {
		name     string
		id       string
		upstream bool
	}{
		{"Unknown id", "8", true},
		{"Non-numeric id", "abc", false},
		{"Negative id", "-3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(calls())
			_, err := runCmd(t, srv.URL, "item", "--", tt.id)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrItemNotFound)
			assert.Equal(t, tt.upstream, len(calls()) > before)
		})
	}
}

func TestItemCmd_BadInterval(t *testing.T) {
	srv, _ := newPriceAPI(t)

	_, err := runCmd(t, srv.URL, "item", "7", "--interval", "2y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chart interval")
}

func TestMoversCmd(t *testing.T) {
	srv, calls := newPriceAPI(t)

	out, err := runCmd(t, srv.URL, "movers")
	require.NoError(t, err)
	assert.Contains(t, out, "Top Gainers")
	assert.Contains(t, out, "Top Losers")
	assert.Len(t, calls(), 2)
}
