// Package services provides business logic
package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go-swapi/internal/clients"
	"go-swapi/internal/domain"
)

// CategoryQuery is a pipeline seen through the Entity capability set
type CategoryQuery interface {
	Category() domain.Category
	Query(ctx context.Context, params domain.QueryParams) (domain.PagedResponse[domain.Entity], error)
}

// QueryService dispatches queries to the pipeline of each category
type QueryService struct {
	people     *Pipeline[domain.Person]
	planets    *Pipeline[domain.Planet]
	byCategory map[domain.Category]CategoryQuery
}

// NewQueryService creates a query service over the given pipelines
func NewQueryService(people *Pipeline[domain.Person], planets *Pipeline[domain.Planet]) *QueryService {
	return &QueryService{
		people:  people,
		planets: planets,
		byCategory: map[domain.Category]CategoryQuery{
			people.Category():  people,
			planets.Category(): planets,
		},
	}
}

// NewSwapiQueryService wires one pipeline per category onto the upstream client
func NewSwapiQueryService(client *clients.SwapiClient, opts PipelineOptions) *QueryService {
	return NewQueryService(
		NewPipeline[domain.Person](domain.CategoryPerson, client.People, NewRegistry[domain.Person](), opts),
		NewPipeline[domain.Planet](domain.CategoryPlanet, client.Planets, NewRegistry[domain.Planet](), opts),
	)
}

// Query runs a query for any registered category
func (s *QueryService) Query(ctx context.Context, category domain.Category, params domain.QueryParams) (domain.PagedResponse[domain.Entity], error) {
	q, ok := s.byCategory[category]
	if !ok {
		return domain.PagedResponse[domain.Entity]{}, fmt.Errorf("%w: %q (supported: %s)", domain.ErrUnsupportedCategory, category, joinCategories(s.Categories()))
	}
	return q.Query(ctx, params)
}

// People queries the people collection
func (s *QueryService) People(ctx context.Context, params domain.QueryParams) (domain.PagedResponse[domain.Person], error) {
	return s.people.Run(ctx, params)
}

// Planets queries the planets collection
func (s *QueryService) Planets(ctx context.Context, params domain.QueryParams) (domain.PagedResponse[domain.Planet], error) {
	return s.planets.Run(ctx, params)
}

// Categories lists the registered categories in lexical order
func (s *QueryService) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(s.byCategory))
	for c := range s.byCategory {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

func joinCategories(cs []domain.Category) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// WalkReader reads recorded walks back
type WalkReader interface {
	ListWalks(ctx context.Context, limit int) ([]domain.WalkLog, error)
	LatestWalk(ctx context.Context, category string) (*domain.WalkLog, error)
}

// WalkService exposes the walk log
type WalkService struct {
	repo WalkReader
}

// NewWalkService creates a walk service. A nil repo lists nothing.
func NewWalkService(repo WalkReader) *WalkService {
	return &WalkService{repo: repo}
}

// List lists the most recent walks
func (s *WalkService) List(ctx context.Context, limit int) ([]domain.WalkLog, error) {
	if s.repo == nil {
		return []domain.WalkLog{}, nil
	}
	return s.repo.ListWalks(ctx, limit)
}

// Latest returns the newest walk of a category, or nil when none was recorded
func (s *WalkService) Latest(ctx context.Context, category domain.Category) (*domain.WalkLog, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.LatestWalk(ctx, string(category))
}
