package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/users", nil)

	p := FromRequest(req)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_ExplicitValues(t *testing.T) {
	req := httptest.NewRequest("GET", "/users?page=3&per_page=10", nil)

	p := FromRequest(req)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, 20, p.Offset)
}

func TestFromRequest_InvalidValuesIgnored(t *testing.T) {
	req := httptest.NewRequest("GET", "/users?page=-1&per_page=9999", nil)

	p := FromRequest(req)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
}

func TestNewResult_TotalPages(t *testing.T) {
	data := []string{"a", "b"}

	r := NewResult(data, 42, Params{Page: 2, PerPage: 20})

	assert.Equal(t, 42, r.TotalCount)
	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)
}

func TestNewResult_LastPage(t *testing.T) {
	r := NewResult([]string{"a"}, 41, Params{Page: 3, PerPage: 20})

	assert.Equal(t, 3, r.TotalPages)
	assert.False(t, r.HasNext)
	assert.True(t, r.HasPrev)
}
