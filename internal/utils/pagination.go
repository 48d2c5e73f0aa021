package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/constants"
)

// PaginationParams is a resolved page window for admin listings.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// NewPaginationParams resolves page and limit into a window. Out-of-range
// pages fall back to the first; limits are clamped to MaxPageSize and an
// unusable limit becomes DefaultPageSize.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	switch {
	case limit < constants.MinPageSize:
		limit = constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		limit = constants.MaxPageSize
	}
	return PaginationParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// TotalPages returns how many pages of p.Limit cover total items.
func (p PaginationParams) TotalPages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// GetPaginationParams reads ?page= and ?limit= (or ?pageSize=) from the request.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	rawLimit := c.Query("limit")
	if rawLimit == "" {
		rawLimit = c.DefaultQuery("pageSize", strconv.Itoa(constants.DefaultPageSize))
	}
	limit, _ := strconv.Atoi(rawLimit)
	return NewPaginationParams(page, limit)
}
