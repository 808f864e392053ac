package store

// OffsetPage is the envelope returned by paginated catalog queries.
// TotalCount is computed over the filtered set before LIMIT/OFFSET.
type OffsetPage struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int64       `json:"total_count"`
	TotalPages int         `json:"total_pages"`
	Data       interface{} `json:"data"`
}

func totalPages(total int64, limit int) int {
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}
