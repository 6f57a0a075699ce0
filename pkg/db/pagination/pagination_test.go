package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsLimit(t *testing.T) {
	assert.Equal(t, Request{Page: 0, Limit: 20}, Request{}.Normalize())
	assert.Equal(t, Request{Page: 0, Limit: 10}, Request{Limit: 3}.Normalize())
	assert.Equal(t, Request{Page: 0, Limit: 100}, Request{Limit: 500}.Normalize())
	assert.Equal(t, Request{Page: 0, Limit: 20}, Request{Page: -2, Limit: 20}.Normalize())
}

func TestBuildPageLinks(t *testing.T) {
	page := buildPage(make([]int, 20), 45, Request{Page: 1, Limit: 20})

	assert.Equal(t, int64(45), page.TotalRecords)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasPreviousPage)
	assert.True(t, page.HasNextPage)
	if assert.NotNil(t, page.PreviousPage) {
		assert.Equal(t, 0, *page.PreviousPage)
	}
	if assert.NotNil(t, page.NextPage) {
		assert.Equal(t, 2, *page.NextPage)
	}
}

func TestBuildPageLastPage(t *testing.T) {
	page := buildPage(make([]int, 5), 45, Request{Page: 2, Limit: 20})

	assert.True(t, page.HasPreviousPage)
	assert.False(t, page.HasNextPage)
	assert.Nil(t, page.NextPage)
}
