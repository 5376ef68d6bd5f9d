package view

import "strconv"

const maxVisiblePages = 5

// PageEntry is one slot of the pagination control: a page number or an
// ellipsis. Ellipses are not selectable.
type PageEntry struct {
	Number   int
	Ellipsis bool
}

func (e PageEntry) String() string {
	if e.Ellipsis {
		return "..."
	}
	return strconv.Itoa(e.Number)
}

func page(n int) PageEntry { return PageEntry{Number: n} }

var ellipsis = PageEntry{Ellipsis: true}

// Window returns the page labels to show for currentPage (1-based) out of
// totalPages.
func Window(currentPage, totalPages int) []PageEntry {
	if totalPages <= 0 {
		return nil
	}

	if totalPages <= maxVisiblePages {
		pages := make([]PageEntry, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			pages = append(pages, page(i))
		}
		return pages
	}

	switch {
	case currentPage <= 3:
		return []PageEntry{page(1), page(2), page(3), page(4), ellipsis, page(totalPages)}
	case currentPage >= totalPages-2:
		return []PageEntry{
			page(1), ellipsis,
			page(totalPages - 3), page(totalPages - 2), page(totalPages - 1), page(totalPages),
		}
	default:
		return []PageEntry{
			page(1), ellipsis,
			page(currentPage - 1), page(currentPage), page(currentPage + 1),
			ellipsis, page(totalPages),
		}
	}
}

// CanSelect reports whether moving from current to target should issue a
// request. Selecting the current page is a no-op.
func CanSelect(current, target, totalPages int) bool {
	if target < 1 || target > totalPages {
		return false
	}
	return target != current
}

// TotalPages is the ceiling of totalItems/pageSize.
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Pager is the full state of a pagination control, ready for rendering.
type Pager struct {
	Current     int
	Total       int
	Entries     []PageEntry
	PrevEnabled bool
	NextEnabled bool
}

func NewPager(currentPage, totalPages int) Pager {
	return Pager{
		Current:     currentPage,
		Total:       totalPages,
		Entries:     Window(currentPage, totalPages),
		PrevEnabled: currentPage > 1,
		NextEnabled: currentPage < totalPages,
	}
}

// Visible is false when there is at most one page.
func (p Pager) Visible() bool {
	return p.Total > 1
}
