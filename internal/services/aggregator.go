package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-swapi/internal/domain"
)

// ErrPageLimitExceeded is returned when a walk hits AggregateOptions.MaxPages
var ErrPageLimitExceeded = errors.New("upstream page limit exceeded")

// PageSource returns one page of an upstream collection per call
type PageSource[T any] interface {
	Resource() string
	FetchPage(ctx context.Context, page int) (domain.UpstreamPage[T], error)
}

// AggregateOptions bounds a walk. MaxPages 0 walks until the upstream ends.
type AggregateOptions struct {
	MaxPages int
}

// WalkStats describes a finished or aborted walk
type WalkStats struct {
	Pages    int
	Entities int
	Duration time.Duration
}

// Aggregate walks src from page 1 until a page carries no next cursor and
// returns every result in arrival order. Pages are fetched one at a time.
// Any failure, including cancellation, discards everything fetched so far.
func Aggregate[T any](ctx context.Context, src PageSource[T], opts AggregateOptions) ([]T, WalkStats, error) {
	start := time.Now()
	var stats WalkStats
	all := make([]T, 0)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return nil, stats, err
		}
		if opts.MaxPages > 0 && page > opts.MaxPages {
			stats.Duration = time.Since(start)
			return nil, stats, fmt.Errorf("%w: %s still has a next page after %d pages", ErrPageLimitExceeded, src.Resource(), opts.MaxPages)
		}

		p, err := src.FetchPage(ctx, page)
		if err != nil {
			stats.Duration = time.Since(start)
			return nil, stats, fmt.Errorf("fetch %s page %d: %w", src.Resource(), page, err)
		}

		stats.Pages++
		stats.Entities += len(p.Results)
		all = append(all, p.Results...)

		if !p.HasNext() {
			break
		}
	}

	stats.Duration = time.Since(start)
	return all, stats, nil
}
