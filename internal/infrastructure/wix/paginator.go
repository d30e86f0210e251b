package wix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Pagination strategy names. Different entity endpoints on the platform use
// different paging idioms, so the strategy is selected per entity type.
type Strategy string

const (
	// StrategyOffset pages with offset/limit and an optional total counter
	StrategyOffset Strategy = "offset"
	// StrategyCursor pages with an opaque next-cursor token
	StrategyCursor Strategy = "cursor"
	// StrategySingle issues one unpaged request, for endpoints without
	// large-scale paging support
	StrategySingle Strategy = "single"
)

// ErrPageLimitExceeded is returned when a paging loop fails to converge
// within the configured safety cap.
var ErrPageLimitExceeded = errors.New("wix: pagination exceeded maximum page count without converging")

// PageRequest is one page fetch request. Offset is used by the offset
// strategy, Cursor by the cursor strategy; a single-shot request carries
// neither.
type PageRequest struct {
	Offset int
	Limit  int
	Cursor string
}

// Page is one fetched page. Total is reported by offset endpoints when
// known; NextCursor is set by cursor endpoints when more data exists.
type Page struct {
	Items      []json.RawMessage
	Total      *int
	NextCursor string
}

// PageFunc fetches one page from an entity endpoint
type PageFunc func(ctx context.Context, req PageRequest) (Page, error)

// Paginator drives a paging loop to exhaustion, normalizing the platform's
// paging shapes into one ordered item sequence.
type Paginator struct {
	Strategy Strategy
	// Limit is the per-page item count requested
	Limit int
	// MaxPages aborts a non-converging loop (repeating cursor, stalled
	// offset) instead of looping forever
	MaxPages int
	// Fallback, when set, is tried if the primary strategy returns zero
	// items: a zero result may mean the paging request shape is unsupported
	// rather than that the source is empty.
	Fallback Strategy
}

// NewPaginator creates a paginator with sane bounds
func NewPaginator(strategy Strategy, limit, maxPages int) *Paginator {
	if limit <= 0 {
		limit = 100
	}
	if maxPages <= 0 {
		maxPages = 10000
	}
	return &Paginator{Strategy: strategy, Limit: limit, MaxPages: maxPages}
}

// WithFallback sets the alternate strategy tried on an empty primary result
func (p *Paginator) WithFallback(s Strategy) *Paginator {
	p.Fallback = s
	return p
}

// FetchAll exhausts the endpoint and returns the complete ordered item
// sequence for one source account.
func (p *Paginator) FetchAll(ctx context.Context, fetch PageFunc) ([]json.RawMessage, error) {
	items, err := p.run(ctx, p.Strategy, fetch)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 && p.Fallback != "" && p.Fallback != p.Strategy {
		return p.run(ctx, p.Fallback, fetch)
	}
	return items, nil
}

func (p *Paginator) run(ctx context.Context, strategy Strategy, fetch PageFunc) ([]json.RawMessage, error) {
	switch strategy {
	case StrategyOffset:
		return p.runOffset(ctx, fetch)
	case StrategyCursor:
		return p.runCursor(ctx, fetch)
	case StrategySingle:
		page, err := fetch(ctx, PageRequest{Limit: p.Limit})
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	default:
		return nil, fmt.Errorf("wix: unknown pagination strategy %q", strategy)
	}
}

func (p *Paginator) runOffset(ctx context.Context, fetch PageFunc) ([]json.RawMessage, error) {
	var items []json.RawMessage
	offset := 0

	for pageNum := 0; ; pageNum++ {
		if pageNum >= p.MaxPages {
			return nil, ErrPageLimitExceeded
		}

		page, err := fetch(ctx, PageRequest{Offset: offset, Limit: p.Limit})
		if err != nil {
			return nil, err
		}
		if len(page.Items) == 0 {
			return items, nil
		}

		items = append(items, page.Items...)
		offset += len(page.Items)

		if page.Total != nil && offset >= *page.Total {
			return items, nil
		}
	}
}

func (p *Paginator) runCursor(ctx context.Context, fetch PageFunc) ([]json.RawMessage, error) {
	var items []json.RawMessage
	cursor := ""

	for pageNum := 0; ; pageNum++ {
		if pageNum >= p.MaxPages {
			return nil, ErrPageLimitExceeded
		}

		page, err := fetch(ctx, PageRequest{Cursor: cursor, Limit: p.Limit})
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if page.NextCursor == "" || len(page.Items) < p.Limit {
			return items, nil
		}
		if page.NextCursor == cursor {
			// A repeating cursor would loop forever
			return nil, ErrPageLimitExceeded
		}
		cursor = page.NextCursor
	}
}
