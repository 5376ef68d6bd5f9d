package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vitos/case_index/internal/debounce"
	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/query"
	"github.com/vitos/case_index/internal/view"
)

var ErrPageOutOfRange = errors.New("page out of range")

// SearchSnapshot is the state of a search session at one moment.
type SearchSnapshot struct {
	RawQuery   string
	Params     domain.SearchParams
	Result     query.Result[*domain.SearchPage]
	TotalPages int
	Pager      view.Pager
}

// Searching is true as soon as the user has typed something, before the
// debounced query catches up.
func (s SearchSnapshot) Searching() bool {
	return s.RawQuery != ""
}

// SearchSession drives an interactive search: text input is debounced, the
// page resets to 1 whenever the effective query or sort changes, and only the
// response for the latest parameters is ever published.
type SearchSession struct {
	ctx      context.Context
	svc      *MarketService
	debounce *debounce.Debouncer[string]
	observer *query.Observer[*domain.SearchPage]
	onUpdate func(SearchSnapshot)

	// fetchMu keeps parameter changes and the fetches they start in order.
	fetchMu sync.Mutex
	// publishMu makes building and publishing a snapshot atomic.
	publishMu sync.Mutex

	mu     sync.Mutex
	raw    string
	params domain.SearchParams
	result query.Result[*domain.SearchPage]
	closed bool
}

// NewSearchSession creates a session. onUpdate receives every snapshot, one
// at a time, and must not call back into the session.
func (s *MarketService) NewSearchSession(ctx context.Context, debounceDelay time.Duration, onUpdate func(SearchSnapshot)) *SearchSession {
	sess := &SearchSession{
		ctx:      ctx,
		svc:      s,
		onUpdate: onUpdate,
		params:   domain.SearchParams{Page: 1, SortBy: domain.SortGainers},
	}
	sess.debounce = debounce.New(debounceDelay, sess.applyQuery)
	sess.observer = query.NewObserver(s.cache, s.searchPolicy, sess.handleResult)
	return sess
}

// Start issues the initial search for the default parameters.
func (ss *SearchSession) Start() {
	ss.fetchMu.Lock()
	defer ss.fetchMu.Unlock()

	ss.mu.Lock()
	params := ss.params
	ss.mu.Unlock()
	ss.fetch(params)
}

// SetQuery records what the user typed. The search itself waits for the
// debounce delay.
func (ss *SearchSession) SetQuery(text string) {
	ss.publishMu.Lock()
	ss.mu.Lock()
	if ss.closed {
		ss.mu.Unlock()
		ss.publishMu.Unlock()
		return
	}
	ss.raw = text
	snap := ss.snapshotLocked()
	ss.mu.Unlock()
	ss.emit(snap)
	ss.publishMu.Unlock()

	ss.debounce.Set(text)
}

// applyQuery runs when the input has been quiet for the debounce delay.
func (ss *SearchSession) applyQuery(text string) {
	ss.fetchMu.Lock()
	defer ss.fetchMu.Unlock()

	ss.mu.Lock()
	if ss.closed || text == ss.params.Query {
		ss.mu.Unlock()
		return
	}
	ss.params.Query = text
	ss.params.Page = 1
	params := ss.params
	ss.mu.Unlock()

	ss.fetch(params)
}

// Clear empties the search box and returns to page 1 without waiting for the
// debounce.
func (ss *SearchSession) Clear() {
	ss.mu.Lock()
	ss.raw = ""
	ss.mu.Unlock()
	ss.debounce.Flush("")
}

func (ss *SearchSession) SetSort(sortBy domain.SortOption) {
	ss.fetchMu.Lock()
	defer ss.fetchMu.Unlock()

	ss.mu.Lock()
	if ss.closed || sortBy == ss.params.SortBy {
		ss.mu.Unlock()
		return
	}
	ss.params.SortBy = sortBy
	ss.params.Page = 1
	params := ss.params
	ss.mu.Unlock()

	ss.fetch(params)
}

// GoToPage moves to page. Selecting the current page does nothing; pages
// outside 1..TotalPages are rejected without a request.
func (ss *SearchSession) GoToPage(page int) error {
	ss.fetchMu.Lock()
	defer ss.fetchMu.Unlock()

	ss.mu.Lock()
	if ss.closed {
		ss.mu.Unlock()
		return nil
	}
	if page == ss.params.Page {
		ss.mu.Unlock()
		return nil
	}
	total := ss.totalPagesLocked()
	if !view.CanSelect(ss.params.Page, page, total) {
		ss.mu.Unlock()
		return ErrPageOutOfRange
	}
	ss.params.Page = page
	params := ss.params
	ss.mu.Unlock()

	ss.fetch(params)
	return nil
}

func (ss *SearchSession) fetch(params domain.SearchParams) {
	ss.observer.SetKey(ss.ctx, searchKey(params), ss.svc.searchFn(params))
}

func (ss *SearchSession) handleResult(res query.Result[*domain.SearchPage]) {
	ss.publishMu.Lock()
	defer ss.publishMu.Unlock()

	ss.mu.Lock()
	if ss.closed {
		ss.mu.Unlock()
		return
	}
	ss.result = res
	snap := ss.snapshotLocked()
	ss.mu.Unlock()
	ss.emit(snap)
}

func (ss *SearchSession) emit(snap SearchSnapshot) {
	if ss.onUpdate != nil {
		ss.onUpdate(snap)
	}
}

// Snapshot returns the current state without waiting for pending work.
func (ss *SearchSession) Snapshot() SearchSnapshot {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.snapshotLocked()
}

func (ss *SearchSession) totalPagesLocked() int {
	if !ss.result.HasData || ss.result.Data == nil {
		return 0
	}
	return view.TotalPages(ss.result.Data.Total, ss.svc.PageSize())
}

func (ss *SearchSession) snapshotLocked() SearchSnapshot {
	total := ss.totalPagesLocked()
	return SearchSnapshot{
		RawQuery:   ss.raw,
		Params:     ss.params,
		Result:     ss.result,
		TotalPages: total,
		Pager:      view.NewPager(ss.params.Page, total),
	}
}

// Close stops the session. Pending debounced input is dropped and no further
// snapshots are published.
func (ss *SearchSession) Close() {
	ss.debounce.Stop()
	ss.mu.Lock()
	ss.closed = true
	ss.mu.Unlock()
}
