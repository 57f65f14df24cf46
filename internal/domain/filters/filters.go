package filters

import (
	"errors"
	"strings"
)

const (
	AscSort  = "ASC"
	DescSort = "DESC"
)

type Filters struct {
	Page         int    `schema:"page" validate:"gte=1"`
	PageSize     int    `schema:"page_size" validate:"gte=1,lte=100"`
	Sort         string `schema:"sort"`
	SortSafelist []string `schema:"-" validate:"-"`
}

func (f *Filters) Limit() int {
	return f.PageSize
}

func (f *Filters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// ValidSort reports whether the requested sort key is on the safelist;
// callers reject the request before SortColumn gets a chance to panic.
func (f *Filters) ValidSort() bool {
	s := strings.TrimPrefix(f.Sort, "-")
	for _, safeValue := range f.SortSafelist {
		if strings.EqualFold(s, safeValue) {
			return true
		}
	}
	return false
}

func (f *Filters) SortColumn() string {
	s := strings.TrimPrefix(f.Sort, "-")
	for _, safeValue := range f.SortSafelist {
		if strings.EqualFold(s, safeValue) {
			return s
		}
	}
	panic(errors.New("Unknown sort column: " + f.Sort))
}

func (f *Filters) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return DescSort
	}
	return AscSort
}

// TitleFilters carries the query-string filters for title listings.
// genre and category match by slug and may be repeated, name matches
// case-insensitive substrings and year matches exactly.
type TitleFilters struct {
	Genres     []string `schema:"genre" validate:"dive,slug"`
	Categories []string `schema:"category" validate:"dive,slug"`
	Name       string   `schema:"name" validate:"omitempty,max=256"`
	Year       *int32   `schema:"year" validate:"omitempty,titleyear"`
	Filters
}

// NameSearch carries the query-string search for category/genre listings.
type NameSearch struct {
	Search string `schema:"search" validate:"omitempty,max=256"`
	Filters
}
