package utils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGenerateReceipt(t *testing.T) {
	a := GenerateReceipt()
	b := GenerateReceipt()

	assert.True(t, strings.HasPrefix(a, ReceiptPrefix))
	assert.Len(t, a, len(ReceiptPrefix)+32)
	assert.LessOrEqual(t, len(a), 40)
	assert.NotEqual(t, a, b)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query      string
		page       int
		limit      int
		wantOffset int
	}{
		{"", 1, 20, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=0&limit=500", 1, 100, 0},
		{"?page=2&pageSize=5", 2, 5, 5},
		{"?page=abc&limit=-1", 1, 20, 0},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/api/auth/users"+tc.query, nil)

		p := GetPaginationParams(c)
		assert.Equal(t, tc.page, p.Page, tc.query)
		assert.Equal(t, tc.limit, p.Limit, tc.query)
		assert.Equal(t, tc.wantOffset, p.Offset, tc.query)
	}
}

func TestPaginationTotalPages(t *testing.T) {
	p := NewPaginationParams(1, 10)
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))
	assert.Equal(t, 0, PaginationParams{}.TotalPages(5))
}
