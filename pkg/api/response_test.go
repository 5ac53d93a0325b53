package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]Pagination{
		"":                       {Page: 1, PageSize: DefaultPageSize},
		"?page=3&page_size=20":   {Page: 3, PageSize: 20},
		"?page=0&page_size=-1":   {Page: 1, PageSize: DefaultPageSize},
		"?page=x&page_size=1000": {Page: 1, PageSize: MaxPageSize},
	}
	for query, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+query, nil)
		got := ParsePagination(c)
		assert.Equal(t, want, got, query)
	}
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}

func TestNewPage(t *testing.T) {
	p := NewPage(Pagination{Page: 2, PageSize: 10}, 21, []int{1})
	assert.EqualValues(t, 3, p.TotalPages)
	assert.EqualValues(t, 0, NewPage(Pagination{Page: 1, PageSize: 10}, 0, nil).TotalPages)
}
