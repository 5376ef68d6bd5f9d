package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/case_index/internal/view"
)

func labels(entries []view.PageEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []string
	}{
		{"No pages", 1, 0, []string{}},
		{"Few pages, first", 1, 3, []string{"1", "2", "3"}},
		{"Few pages, last", 3, 3, []string{"1", "2", "3"}},
		{"Exactly five", 4, 5, []string{"1", "2", "3", "4", "5"}},
		{"Start of long list", 1, 10, []string{"1", "2", "3", "4", "...", "10"}},
		{"Third page still at start", 3, 10, []string{"1", "2", "3", "4", "...", "10"}},
		{"End of long list", 10, 10, []string{"1", "...", "7", "8", "9", "10"}},
		{"Near end", 8, 10, []string{"1", "...", "7", "8", "9", "10"}},
		{"Middle", 5, 10, []string{"1", "...", "4", "5", "6", "...", "10"}},
		{"Six pages, page four", 4, 6, []string{"1", "...", "3", "4", "5", "6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, labels(view.Window(tt.current, tt.total)))
		})
	}
}

func TestWindow_SmallTotalIgnoresCurrent(t *testing.T) {
	for current := 1; current <= 3; current++ {
		got := view.Window(current, 3)
		for _, e := range got {
			assert.False(t, e.Ellipsis)
		}
		assert.Len(t, got, 3)
	}
}

func TestCanSelect(t *testing.T) {
	assert.False(t, view.CanSelect(1, 0, 10), "below first page")
	assert.False(t, view.CanSelect(10, 11, 10), "past last page")
	assert.False(t, view.CanSelect(4, 4, 10), "current page is a no-op")
	assert.True(t, view.CanSelect(4, 5, 10))
	assert.False(t, view.CanSelect(1, 1, 0))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, view.TotalPages(0, 20))
	assert.Equal(t, 1, view.TotalPages(1, 20))
	assert.Equal(t, 1, view.TotalPages(20, 20))
	assert.Equal(t, 2, view.TotalPages(21, 20))
	assert.Equal(t, 0, view.TotalPages(5, 0))
}

func TestNewPager(t *testing.T) {
	p := view.NewPager(1, 10)
	assert.False(t, p.PrevEnabled)
	assert.True(t, p.NextEnabled)
	assert.True(t, p.Visible())

	p = view.NewPager(10, 10)
	assert.True(t, p.PrevEnabled)
	assert.False(t, p.NextEnabled)

	assert.False(t, view.NewPager(1, 1).Visible())
}
