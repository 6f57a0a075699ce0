// Package pagination implements the offset pagination envelope shared by all
// list endpoints: zero-based pages with a bounded limit.
package pagination

import "gorm.io/gorm"

const (
	MinLimit     = 10
	MaxLimit     = 100
	DefaultLimit = 20
)

type Request struct {
	Page  int
	Limit int
}

// Normalize clamps the request into the supported window.
func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit < MinLimit {
		r.Limit = MinLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

type Page[T any] struct {
	TotalRecords    int64 `json:"totalRecords"`
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalPages      int   `json:"totalPages"`
	PreviousPage    *int  `json:"previousPage"`
	NextPage        *int  `json:"nextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	Records         []T   `json:"records"`
}

// Find counts the filtered statement, then fetches one page of records into a
// Page envelope. The statement must already carry every WHERE clause and sort
// order; Find only appends OFFSET/LIMIT.
func Find[T any](stmt *gorm.DB, req Request) (Page[T], error) {
	req = req.Normalize()

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	records := make([]T, 0, req.Limit)
	if err := stmt.Offset(req.Page * req.Limit).Limit(req.Limit).Find(&records).Error; err != nil {
		return Page[T]{}, err
	}

	return buildPage(records, total, req), nil
}

func buildPage[T any](records []T, total int64, req Request) Page[T] {
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	page := Page[T]{
		TotalRecords: total,
		Page:         req.Page,
		Limit:        req.Limit,
		TotalPages:   totalPages,
		Records:      records,
	}
	if req.Page > 0 {
		prev := req.Page - 1
		page.PreviousPage = &prev
		page.HasPreviousPage = true
	}
	if req.Page+1 < totalPages {
		next := req.Page + 1
		page.NextPage = &next
		page.HasNextPage = true
	}
	return page
}
