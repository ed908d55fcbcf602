package listview

// PageSizes are the page sizes the list views offer.
var PageSizes = []int{8, 10, 20, 30, 40, 50}

const DefaultPageSize = 10

// windowThreshold is the largest page count rendered without ellipses.
const windowThreshold = 7

// NormalizePageSize returns n when it is an offered size, else the default.
func NormalizePageSize(n int) int {
	for _, size := range PageSizes {
		if n == size {
			return n
		}
	}
	return DefaultPageSize
}

// TotalPages prefers the page count reported by the server, falls back to
// ceil(totalItems/pageSize) and finally to 1. An empty list has one page.
func TotalPages(serverPages *int, totalItems *int64, pageSize int) int {
	if serverPages != nil && *serverPages > 0 {
		return *serverPages
	}
	if totalItems != nil && pageSize > 0 {
		n := int((*totalItems + int64(pageSize) - 1) / int64(pageSize))
		if n < 1 {
			return 1
		}
		return n
	}
	return 1
}

// LastPageCount is the number of items on the final page of n items.
func LastPageCount(n int64, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	pages := TotalPages(nil, &n, pageSize)
	return int(n - int64(pageSize)*int64(pages-1))
}

// PageButton is one entry of the page-number strip.
type PageButton struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
	Current  bool `json:"current,omitempty"`
}

// PageButtons windows the page strip: every page up to seven pages; near the
// start 1-5 … last; near the end first … last five; otherwise
// first … current-1 current current+1 … last.
func PageButtons(current, total int) []PageButton {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	var pages []int
	switch {
	case total <= windowThreshold:
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
	case current <= 4:
		pages = []int{1, 2, 3, 4, 5, 0, total}
	case current >= total-3:
		pages = []int{1, 0, total - 4, total - 3, total - 2, total - 1, total}
	default:
		pages = []int{1, 0, current - 1, current, current + 1, 0, total}
	}

	buttons := make([]PageButton, 0, len(pages))
	for _, p := range pages {
		if p == 0 {
			buttons = append(buttons, PageButton{Ellipsis: true})
			continue
		}
		buttons = append(buttons, PageButton{Page: p, Current: p == current})
	}
	return buttons
}

// Pagination is the pagination block embedded in list responses.
type Pagination struct {
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	Total      *int64       `json:"total,omitempty"`
	TotalPages int          `json:"totalPages"`
	HasPrev    bool         `json:"hasPrev"`
	HasNext    bool         `json:"hasNext"`
	Buttons    []PageButton `json:"buttons"`
	PageSizes  []int        `json:"pageSizes"`
}

// NewPagination builds the pagination block for page of a list.
func NewPagination(page, pageSize int, total *int64, serverPages *int) Pagination {
	totalPages := TotalPages(serverPages, total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Buttons:    PageButtons(page, totalPages),
		PageSizes:  PageSizes,
	}
}
