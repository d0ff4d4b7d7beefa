package services

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"go-swapi/internal/domain"
)

// Comparator orders two entities, returning <0, 0 or >0
type Comparator[T any] func(a, b T) int

// SortStrategy builds a comparator for one key in the requested direction
type SortStrategy[T domain.Entity] func(dir domain.SortDirection) Comparator[T]

// Registry maps sort keys to strategies for one entity category.
// Register everything before sharing it; lookups are then safe for concurrent use.
type Registry[T domain.Entity] struct {
	strategies map[domain.SortKey]SortStrategy[T]
}

// NewRegistry returns a registry with the name and created strategies
func NewRegistry[T domain.Entity]() *Registry[T] {
	r := &Registry[T]{strategies: make(map[domain.SortKey]SortStrategy[T])}
	r.Register(domain.SortByName, NameStrategy[T]())
	r.Register(domain.SortByCreated, CreatedStrategy[T]())
	return r
}

// Register adds or replaces the strategy for key
func (r *Registry[T]) Register(key domain.SortKey, s SortStrategy[T]) {
	r.strategies[key] = s
}

// Keys returns the registered keys in lexical order
func (r *Registry[T]) Keys() []domain.SortKey {
	keys := make([]domain.SortKey, 0, len(r.strategies))
	for k := range r.strategies {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Comparator resolves the comparator for key and dir.
// There is no fallback key: an unknown key is a configuration error.
func (r *Registry[T]) Comparator(key domain.SortKey, dir domain.SortDirection) (Comparator[T], error) {
	s, ok := r.strategies[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", domain.ErrNoSortStrategy, key, r.Keys())
	}
	return s(dir), nil
}

// NameStrategy orders by case-folded name. Empty names are last in both directions.
func NameStrategy[T domain.Entity]() SortStrategy[T] {
	return func(dir domain.SortDirection) Comparator[T] {
		caser := cases.Fold()
		return func(a, b T) int {
			an, bn := a.EntityName(), b.EntityName()
			if c, done := absentLast(an == "", bn == ""); done {
				return c
			}
			return directed(strings.Compare(caser.String(an), caser.String(bn)), dir)
		}
	}
}

// CreatedStrategy orders chronologically. Missing timestamps are last in both directions.
func CreatedStrategy[T domain.Entity]() SortStrategy[T] {
	return func(dir domain.SortDirection) Comparator[T] {
		return func(a, b T) int {
			at, bt := a.CreatedAt(), b.CreatedAt()
			if c, done := absentLast(at == nil, bt == nil); done {
				return c
			}
			return directed(at.Compare(*bt), dir)
		}
	}
}

// SortStable returns a sorted copy; equal elements keep their input order.
func SortStable[T any](items []T, cmp Comparator[T]) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, cmp)
	return sorted
}

func absentLast(aAbsent, bAbsent bool) (int, bool) {
	switch {
	case aAbsent && bAbsent:
		return 0, true
	case aAbsent:
		return 1, true
	case bAbsent:
		return -1, true
	}
	return 0, false
}

func directed(c int, dir domain.SortDirection) int {
	if dir == domain.SortDesc {
		return -c
	}
	return c
}
