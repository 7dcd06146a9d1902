package pipeline

// maxVisiblePages is the widest page-number bar rendered without ellipses.
const maxVisiblePages = 5

// PageItem is one entry of the page-number bar: a page number or a gap.
type PageItem struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

var gap = PageItem{Ellipsis: true}

// PageNumbers returns the page-number bar for the current page. Up to five
// pages are listed in full; beyond that the first and last pages stay
// visible and the pages around current are separated by ellipses.
func PageNumbers(current, total int) []PageItem {
	var items []PageItem
	pages := func(from, to int) {
		for i := from; i <= to; i++ {
			items = append(items, PageItem{Number: i})
		}
	}

	switch {
	case total <= maxVisiblePages:
		pages(1, total)
	case current <= 3:
		pages(1, 4)
		items = append(items, gap, PageItem{Number: total})
	case current >= total-2:
		items = append(items, PageItem{Number: 1}, gap)
		pages(total-3, total)
	default:
		items = append(items, PageItem{Number: 1}, gap)
		pages(current-1, current+1)
		items = append(items, gap, PageItem{Number: total})
	}
	return items
}

// Range is the 1-based span of items shown on a page, as in
// "Showing Start to End of Total".
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Total int `json:"total"`
}

// Summarize computes the displayed span of the current page.
func Summarize(current, total, perPage int) Range {
	perPage = pageSize(perPage)
	if total <= 0 || current < 1 {
		return Range{Total: max(total, 0)}
	}
	start := (current-1)*perPage + 1
	if start > total {
		return Range{Total: total}
	}
	return Range{
		Start: start,
		End:   min(current*perPage, total),
		Total: total,
	}
}

// Noun returns "company" or "companies" to label a match count.
func Noun(count int) string {
	if count == 1 {
		return "company"
	}
	return "companies"
}
