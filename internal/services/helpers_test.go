package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-swapi/internal/domain"
)

// fakeSource serves pre-built pages; page i (1-based) links to i+1 unless it is last.
type fakeSource[T any] struct {
	mu       sync.Mutex
	resource string
	pages    [][]T
	failAt   int
	err      error
	calls    []int
	onFetch  func(page int)
}

func newFakeSource[T any](resource string, pages ...[]T) *fakeSource[T] {
	return &fakeSource[T]{resource: resource, pages: pages}
}

func (f *fakeSource[T]) Resource() string { return f.resource }

func (f *fakeSource[T]) FetchPage(ctx context.Context, page int) (domain.UpstreamPage[T], error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook(page)
	}
	if err := ctx.Err(); err != nil {
		return domain.UpstreamPage[T]{}, err
	}
	if f.failAt == page {
		return domain.UpstreamPage[T]{}, f.err
	}
	if page < 1 || page > len(f.pages) {
		return domain.UpstreamPage[T]{}, fmt.Errorf("no page %d", page)
	}

	out := domain.UpstreamPage[T]{Count: len(f.pages), Results: f.pages[page-1]}
	if page < len(f.pages) {
		next := fmt.Sprintf("https://swapi.test/api/%s/?page=%d", f.resource, page+1)
		out.Next = &next
	}
	return out, nil
}

func (f *fakeSource[T]) fetched() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

func person(name string) domain.Person {
	return domain.Person{Record: domain.Record{Name: name}}
}

func personAt(name string, created time.Time) domain.Person {
	return domain.Person{Record: domain.Record{Name: name, Created: &created}}
}

func planet(name string) domain.Planet {
	return domain.Planet{Record: domain.Record{Name: name}}
}

func names[T domain.Entity](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.EntityName()
	}
	return out
}

type recordedWalks struct {
	mu   sync.Mutex
	logs []domain.WalkLog
	err  error
}

func (r *recordedWalks) RecordWalk(_ context.Context, log domain.WalkLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return r.err
}

// walkLog serves a fixed walk history, newest first.
type walkLog struct {
	logs []domain.WalkLog
}

func (w walkLog) ListWalks(_ context.Context, limit int) ([]domain.WalkLog, error) {
	return w.logs[:min(limit, len(w.logs))], nil
}

func (w walkLog) LatestWalk(_ context.Context, category string) (*domain.WalkLog, error) {
	for _, l := range w.logs {
		if l.Category == category {
			return &l, nil
		}
	}
	return nil, nil
}
