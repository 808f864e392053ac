package service

import (
	"context"
	"database/sql"

	"github.com/vitabu/textbook-store/internal/models"
	"github.com/vitabu/textbook-store/internal/store"
)

// Search is the public, read-only view over the catalog.
type Search struct {
	db *sql.DB
}

func NewSearch(db *sql.DB) *Search {
	return &Search{db: db}
}

type SearchCriteria struct {
	Publisher     string
	Level         string
	TitleContains string
	SortBy        string
	Direction     string
	Page          int
	Limit         int
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

// normalize fills in the documented defaults: sort (title, asc), page 1,
// limit 10. Unrecognized sort keys and directions fall back to the default
// rather than erroring, matching the public filter contract.
func (c SearchCriteria) normalize() store.BookFilter {
	filter := store.BookFilter{
		Publisher:     c.Publisher,
		Level:         c.Level,
		TitleContains: c.TitleContains,
		SortBy:        "title",
		Direction:     "asc",
		Page:          c.Page,
		Limit:         c.Limit,
	}
	if c.SortBy == "price" {
		filter.SortBy = "price"
	}
	if c.Direction == "desc" {
		filter.Direction = "desc"
	}
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	return filter
}

func (s *Search) FilterBooks(ctx context.Context, criteria SearchCriteria) (*store.OffsetPage, error) {
	return store.FilterBooks(ctx, s.db, criteria.normalize())
}

func (s *Search) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	return store.GetBook(ctx, s.db, id)
}
