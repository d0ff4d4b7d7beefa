package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"go-swapi/internal/domain"
)

// recordTimeout bounds how long a walk log write may take after the query finished
const recordTimeout = 5 * time.Second

// WalkRecorder persists a summary of each aggregation walk
type WalkRecorder interface {
	RecordWalk(ctx context.Context, log domain.WalkLog) error
}

// PipelineOptions configures a Pipeline
type PipelineOptions struct {
	MaxPages int
	Recorder WalkRecorder
	Logger   zerolog.Logger
}

// Pipeline runs aggregate, filter, sort and paginate for one category
type Pipeline[T domain.Entity] struct {
	category domain.Category
	source   PageSource[T]
	registry *Registry[T]
	maxPages int
	recorder WalkRecorder
	logger   zerolog.Logger
}

// NewPipeline creates a pipeline. A nil registry gets the default strategies.
func NewPipeline[T domain.Entity](category domain.Category, source PageSource[T], registry *Registry[T], opts PipelineOptions) *Pipeline[T] {
	if registry == nil {
		registry = NewRegistry[T]()
	}
	return &Pipeline[T]{
		category: category,
		source:   source,
		registry: registry,
		maxPages: opts.MaxPages,
		recorder: opts.Recorder,
		logger:   opts.Logger.With().Str("category", string(category)).Logger(),
	}
}

// Category returns the category this pipeline serves
func (p *Pipeline[T]) Category() domain.Category {
	return p.category
}

// Run executes one query against a freshly aggregated snapshot
func (p *Pipeline[T]) Run(ctx context.Context, params domain.QueryParams) (domain.PagedResponse[T], error) {
	var resp domain.PagedResponse[T]

	if err := params.Validate(); err != nil {
		return resp, err
	}
	cmp, err := p.registry.Comparator(params.Sort, params.Direction)
	if err != nil {
		return resp, err
	}

	items, err := p.aggregate(ctx)
	if err != nil {
		return resp, err
	}

	filtered := FilterByName(items, params.Search)
	sorted := SortStable(filtered, cmp)
	content, total, totalPages := Paginate(sorted, params.Page, params.Size)

	return domain.PagedResponse[T]{
		Content:       content,
		Page:          params.Page,
		Size:          params.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Sort:          string(params.Sort),
		Direction:     string(params.Direction),
		Search:        params.Search,
	}, nil
}

// Query runs the pipeline and returns the category-agnostic envelope
func (p *Pipeline[T]) Query(ctx context.Context, params domain.QueryParams) (domain.PagedResponse[domain.Entity], error) {
	resp, err := p.Run(ctx, params)
	if err != nil {
		return domain.PagedResponse[domain.Entity]{}, err
	}
	return domain.Erase(resp), nil
}

func (p *Pipeline[T]) aggregate(ctx context.Context) ([]T, error) {
	startedAt := time.Now().UTC()
	items, stats, err := Aggregate(ctx, p.source, AggregateOptions{MaxPages: p.maxPages})

	entry := domain.WalkLog{
		Category:   string(p.category),
		StartedAt:  startedAt,
		DurationMs: stats.Duration.Milliseconds(),
		Pages:      stats.Pages,
		Entities:   stats.Entities,
		Status:     domain.WalkStatusOK,
	}

	switch {
	case err == nil:
		p.logger.Debug().Int("pages", stats.Pages).Int("entities", stats.Entities).Dur("took", stats.Duration).Msg("walk finished")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		entry.Status = domain.WalkStatusCancelled
		msg := err.Error()
		entry.Error = &msg
		p.logger.Info().Err(err).Int("pages", stats.Pages).Msg("walk abandoned")
	default:
		entry.Status = domain.WalkStatusFailed
		msg := err.Error()
		entry.Error = &msg
		p.logger.Warn().Err(err).Int("pages", stats.Pages).Msg("walk failed")
	}

	p.record(ctx, entry)
	return items, err
}

func (p *Pipeline[T]) record(ctx context.Context, entry domain.WalkLog) {
	if p.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := p.recorder.RecordWalk(ctx, entry); err != nil {
		p.logger.Warn().Err(err).Msg("could not record walk")
	}
}

// FilterByName keeps entities whose name contains search, ignoring case.
// Surrounding whitespace in search is ignored; a blank search keeps everything.
func FilterByName[T domain.Entity](items []T, search string) []T {
	needle := strings.TrimSpace(search)
	if needle == "" {
		return items
	}

	caser := cases.Fold()
	needle = caser.String(needle)

	out := make([]T, 0, len(items))
	for _, item := range items {
		name := item.EntityName()
		if name != "" && strings.Contains(caser.String(name), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Paginate returns the page window of items plus the totals describing items.
// A page past the end is clamped to a window holding only the last element.
func Paginate[T any](items []T, page, size int) (content []T, total, totalPages int) {
	total = len(items)
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages = (total + size - 1) / size

	if total == 0 {
		return []T{}, 0, 0
	}

	// A page past the end starts at the last element.
	from := total - 1
	if page-1 < totalPages {
		from = (page - 1) * size
	}
	to := min(from+size, total)

	content = make([]T, to-from)
	copy(content, items[from:to])
	return content, total, totalPages
}
