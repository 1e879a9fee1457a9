package filter

import "github.com/formdeck/formdeck/model"

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type PageResult struct {
	Items      []model.Submission `json:"items"`
	Pagination Pagination         `json:"pagination"`
}

// Paginate slices a list into one fixed-size page. An out-of-range
// page yields empty items with correct metadata; pages are not clamped,
// callers navigate explicitly.
func Paginate(submissions []model.Submission, page, pageSize int) PageResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(submissions)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]model.Submission, end-start)
	copy(items, submissions[start:end])

	return PageResult{
		Items: items,
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}
}
