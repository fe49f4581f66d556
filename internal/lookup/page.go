package lookup

// Page is one page of a list.
type Page struct {
	Items      []string `json:"items"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
	HasPrev    bool     `json:"has_prev"`
	HasNext    bool     `json:"has_next"`
}

// Paginate slices items into the 1-based page. page is clamped to the valid
// range; an empty list has a single empty page.
func Paginate(items []string, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	page = max(1, min(page, totalPages))

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return Page{
		Items:      append([]string{}, items[start:end]...),
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}
