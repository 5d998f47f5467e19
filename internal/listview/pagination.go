package listview

// pageWindow is how many page buttons are shown on each side of the current page
const pageWindow = 2

// PageButton is one numbered button in the pager
type PageButton struct {
	Number int  `json:"number"`
	Active bool `json:"active"`
}

// Pagination is the render-ready state of the pager
type Pagination struct {
	CurrentPage      int          `json:"current_page"`
	TotalPages       int          `json:"total_pages"`
	PageSize         int          `json:"page_size"`
	Pages            []PageButton `json:"pages"`
	FirstDisabled    bool         `json:"first_disabled"`
	PreviousDisabled bool         `json:"previous_disabled"`
	NextDisabled     bool         `json:"next_disabled"`
	LastDisabled     bool         `json:"last_disabled"`
}

// RecordRange describes the 1-based records shown on the current page.
// Start and End are zero when nothing matches.
type RecordRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Total int `json:"total"`
}

// TotalPages returns ceil(count / pageSize), never less than one
func TotalPages(count, pageSize int) int {
	if pageSize < 1 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// pageBounds returns the half-open slice bounds of page within count items
func pageBounds(page, pageSize, count int) (start, end int) {
	start = (page - 1) * pageSize
	if start > count {
		start = count
	}
	if start < 0 {
		start = 0
	}
	end = min(start+pageSize, count)
	return start, end
}

func buildPagination(current, total, pageSize int) Pagination {
	first := max(1, current-pageWindow)
	last := min(total, current+pageWindow)

	pages := make([]PageButton, 0, last-first+1)
	for i := first; i <= last; i++ {
		pages = append(pages, PageButton{Number: i, Active: i == current})
	}

	return Pagination{
		CurrentPage:      current,
		TotalPages:       total,
		PageSize:         pageSize,
		Pages:            pages,
		FirstDisabled:    current == 1,
		PreviousDisabled: current == 1,
		NextDisabled:     current == total,
		LastDisabled:     current == total,
	}
}

func buildRecordRange(start, end, total int) RecordRange {
	if total == 0 || start == end {
		return RecordRange{Total: total}
	}
	return RecordRange{Start: start + 1, End: end, Total: total}
}
