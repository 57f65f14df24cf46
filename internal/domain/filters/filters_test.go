package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSort(t *testing.T) {
	f := Filters{Page: 1, PageSize: 20, Sort: "-year", SortSafelist: []string{"name", "year"}}
	assert.True(t, f.ValidSort())
	assert.Equal(t, "year", f.SortColumn())
	assert.Equal(t, DescSort, f.SortDirection())

	f.Sort = "name"
	assert.Equal(t, AscSort, f.SortDirection())

	f.Sort = "pub_date"
	assert.False(t, f.ValidSort())
	assert.Panics(t, func() { f.SortColumn() })
}

func TestOffset(t *testing.T) {
	f := Filters{Page: 3, PageSize: 20}
	assert.Equal(t, 40, f.Offset())
	assert.Equal(t, 20, f.Limit())
}
