package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/query"
)

type snapshotRecorder struct {
	mu    sync.Mutex
	snaps []SearchSnapshot
}

func (r *snapshotRecorder) record(s SearchSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *snapshotRecorder) last() SearchSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return SearchSnapshot{}
	}
	return r.snaps[len(r.snaps)-1]
}

func (r *snapshotRecorder) all() []SearchSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SearchSnapshot(nil), r.snaps...)
}

const testDebounce = 30 * time.Millisecond

func startSession(t *testing.T, api *MockPriceAPI) (*SearchSession, *snapshotRecorder) {
	t.Helper()
	rec := &snapshotRecorder{}
	sess := newTestService(api).NewSearchSession(context.Background(), testDebounce, rec.record)
	t.Cleanup(sess.Close)

	sess.Start()
	waitSettled(t, rec, domain.SearchParams{Page: 1, SortBy: domain.SortGainers})
	return sess, rec
}

// waitSettled blocks until the latest snapshot is a success for want.
func waitSettled(t *testing.T, rec *snapshotRecorder, want domain.SearchParams) {
	t.Helper()
	require.Eventually(t, func() bool {
		s := rec.last()
		return s.Params == want && s.Result.Status == query.StatusSuccess
	}, time.Second, 5*time.Millisecond)
}

func TestSearchSession_DebouncesTyping(t *testing.T) {
	api := NewMockPriceAPI()
	sess, rec := startSession(t, api)

	for _, text := range []string{"C", "Ch", "Chr", "Chroma"} {
		sess.SetQuery(text)
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, rec.last().Searching())

	waitSettled(t, rec, domain.SearchParams{Query: "Chroma", Page: 1, SortBy: domain.SortGainers})

	searches := api.Searches()
	require.Len(t, searches, 2)
	assert.Equal(t, "", searches[0].Query)
	assert.Equal(t, "Chroma", searches[1].Query)
}

func TestSearchSession_QueryAndSortResetPage(t *testing.T) {
	api := NewMockPriceAPI()
	sess, rec := startSession(t, api)

	require.NoError(t, sess.GoToPage(3))
	waitSettled(t, rec, domain.SearchParams{Page: 3, SortBy: domain.SortGainers})

	sess.SetSort(domain.SortLosers)
	waitSettled(t, rec, domain.SearchParams{Page: 1, SortBy: domain.SortLosers})

	require.NoError(t, sess.GoToPage(2))
	waitSettled(t, rec, domain.SearchParams{Page: 2, SortBy: domain.SortLosers})

	sess.SetQuery("Chroma")
	waitSettled(t, rec, domain.SearchParams{Query: "Chroma", Page: 1, SortBy: domain.SortLosers})
}

func TestSearchSession_GoToPageBounds(t *testing.T) {
	api := NewMockPriceAPI() // 95 items, 5 pages
	sess, rec := startSession(t, api)

	assert.Equal(t, 5, rec.last().TotalPages)

	before := api.Calls("search")
	assert.NoError(t, sess.GoToPage(1), "current page is a no-op")
	assert.ErrorIs(t, sess.GoToPage(0), ErrPageOutOfRange)
	assert.ErrorIs(t, sess.GoToPage(6), ErrPageOutOfRange)
	assert.Equal(t, before, api.Calls("search"))
	assert.Equal(t, 1, sess.Snapshot().Params.Page)
}

func TestSearchSession_KeepsPreviousPageWhileLoading(t *testing.T) {
	api := NewMockPriceAPI()
	sess, rec := startSession(t, api)
	api.SetSearchDelay("", 50*time.Millisecond)

	require.NoError(t, sess.GoToPage(2))
	loading := rec.last()
	assert.True(t, loading.Result.Loading())
	assert.True(t, loading.Result.IsPlaceholder)
	require.NotNil(t, loading.Result.Data)
	assert.Equal(t, int64(1), loading.Result.Data.Items[0].ItemID)

	waitSettled(t, rec, domain.SearchParams{Page: 2, SortBy: domain.SortGainers})
	done := rec.last()
	assert.False(t, done.Result.IsPlaceholder)
	assert.Equal(t, int64(21), done.Result.Data.Items[0].ItemID)
	assert.Equal(t, 2, done.Pager.Current)
}

func TestSearchSession_LastParametersWin(t *testing.T) {
	api := NewMockPriceAPI()
	sess, rec := startSession(t, api)
	api.SetSearchDelay("slow", 150*time.Millisecond)

	sess.SetQuery("slow")
	require.Eventually(t, func() bool {
		for _, p := range api.Searches() {
			if p.Query == "slow" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	sess.SetQuery("fast")
	waitSettled(t, rec, domain.SearchParams{Query: "fast", Page: 1, SortBy: domain.SortGainers})

	// Give the slow response time to arrive; it must not be shown.
	time.Sleep(200 * time.Millisecond)
	final := rec.last()
	assert.Equal(t, "fast", final.Params.Query)
	assert.Equal(t, "fast 1", final.Result.Data.Items[0].Name)

	for _, s := range rec.all() {
		if s.Result.Status == query.StatusSuccess && s.Result.Data != nil && len(s.Result.Data.Items) > 0 {
			assert.NotEqual(t, "slow 1", s.Result.Data.Items[0].Name)
		}
	}
}

func TestSearchSession_ClearSkipsDebounce(t *testing.T) {
	api := NewMockPriceAPI()
	sess, rec := startSession(t, api)

	sess.SetQuery("Chroma")
	waitSettled(t, rec, domain.SearchParams{Query: "Chroma", Page: 1, SortBy: domain.SortGainers})

	sess.Clear()
	s := rec.last()
	assert.False(t, s.Searching())
	assert.Equal(t, "", s.Params.Query)
}

func TestSearchSession_CloseStopsUpdates(t *testing.T) {
	api := NewMockPriceAPI()
	sess, rec := startSession(t, api)

	sess.SetQuery("Chroma")
	sess.Close()
	n := len(rec.all())

	time.Sleep(3 * testDebounce)
	assert.Len(t, rec.all(), n)
	assert.Len(t, api.Searches(), 1)
}
