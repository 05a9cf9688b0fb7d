package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 12, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_NoParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	p := FromRequest(req)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 12, p.PerPage)
}

func TestFromRequest_ValidParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books?page=3&per_page=24", nil)
	p := FromRequest(req)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 24, p.PerPage)
	assert.Equal(t, 48, p.Offset)
}

func TestFromRequest_InvalidValuesFallBack(t *testing.T) {
	for _, url := range []string{
		"/books?page=abc&per_page=xyz",
		"/books?page=-1&per_page=0",
		"/books?page=0",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		p := FromRequest(req)
		assert.Equal(t, 1, p.Page, url)
		assert.Equal(t, 12, p.PerPage, url)
	}
}

func TestFromRequest_PerPageCap(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books?per_page=200", nil)
	p := FromRequest(req)
	assert.Equal(t, 12, p.PerPage)

	req = httptest.NewRequest(http.MethodGet, "/books?per_page=100", nil)
	p = FromRequest(req)
	assert.Equal(t, 100, p.PerPage)
}

func TestFromRequest_Offset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/books?page=5", nil)
	p := FromRequest(req)
	assert.Equal(t, 48, p.Offset)
}

func TestNewResult_ExactFit(t *testing.T) {
	params := Params{Page: 1, PerPage: 12}
	result := NewResult(make([]int, 12), 24, params)

	assert.Equal(t, 24, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
	assert.True(t, result.HasNext)
	assert.False(t, result.HasPrev)
}

func TestNewResult_PartialLastPage(t *testing.T) {
	params := Params{Page: 2, PerPage: 12}
	result := NewResult(make([]int, 1), 13, params)

	assert.Equal(t, 2, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestNewResult_Empty(t *testing.T) {
	params := Params{Page: 1, PerPage: 12}
	result := NewResult([]int{}, 0, params)

	assert.Equal(t, 0, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrev)
}
