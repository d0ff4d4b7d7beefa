package domain

import (
	"fmt"
	"strings"
)

// Category identifies one kind of catalog entity
type Category string

// Supported categories
const (
	CategoryPerson Category = "person"
	CategoryPlanet Category = "planet"
)

// Resource returns the upstream collection path for the category
func (c Category) Resource() string {
	switch c {
	case CategoryPerson:
		return "people"
	case CategoryPlanet:
		return "planets"
	}
	return ""
}

// DefaultDirection returns the direction used when a request omits one.
// People default to descending and planets to ascending; existing clients rely on both.
func (c Category) DefaultDirection() SortDirection {
	if c == CategoryPerson {
		return SortDesc
	}
	return SortAsc
}

// ParseCategory accepts both the singular category and the upstream resource name
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "person", "people":
		return CategoryPerson, nil
	case "planet", "planets":
		return CategoryPlanet, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCategory, s)
}

// SortKey names a field entities can be ordered by
type SortKey string

// Sort keys
const (
	SortByName    SortKey = "name"
	SortByCreated SortKey = "created"
)

// ParseSortKey parses a sort key case-insensitively
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByName, SortByCreated:
		return k, nil
	}
	return "", fmt.Errorf("%w: sort must be 'name' or 'created', got %q", ErrInvalidParams, s)
}

// SortDirection represents ordering direction for sortable fields
type SortDirection string

// Sort directions
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection parses a direction case-insensitively
func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case SortAsc, SortDesc:
		return d, nil
	}
	return "", fmt.Errorf("%w: direction must be 'asc' or 'desc', got %q", ErrInvalidParams, s)
}

// Query defaults
const (
	DefaultPage = 1
	DefaultSize = 15
)

// QueryParams holds one request against a category
type QueryParams struct {
	Page      int
	Size      int
	Search    string
	Sort      SortKey
	Direction SortDirection
}

// DefaultQueryParams returns the parameters applied when a request sets nothing
func DefaultQueryParams(c Category) QueryParams {
	return QueryParams{
		Page:      DefaultPage,
		Size:      DefaultSize,
		Sort:      SortByName,
		Direction: c.DefaultDirection(),
	}
}

// Validate checks bounds and enum membership
func (p QueryParams) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidParams, p.Page)
	}
	if p.Size < 1 {
		return fmt.Errorf("%w: size must be >= 1, got %d", ErrInvalidParams, p.Size)
	}
	if _, err := ParseSortKey(string(p.Sort)); err != nil {
		return err
	}
	if _, err := ParseSortDirection(string(p.Direction)); err != nil {
		return err
	}
	return nil
}

// PagedResponse is the envelope returned for every query
type PagedResponse[T any] struct {
	Content       []T    `json:"content"       yaml:"content"`
	Page          int    `json:"page"          yaml:"page"`
	Size          int    `json:"size"          yaml:"size"`
	TotalElements int    `json:"totalElements" yaml:"totalElements"`
	TotalPages    int    `json:"totalPages"    yaml:"totalPages"`
	Sort          string `json:"sort"          yaml:"sort"`
	Direction     string `json:"direction"     yaml:"direction"`
	Search        string `json:"search"        yaml:"search"`
}

// Erase converts a typed response into one carrying the Entity capability set
func Erase[T Entity](r PagedResponse[T]) PagedResponse[Entity] {
	content := make([]Entity, len(r.Content))
	for i, e := range r.Content {
		content[i] = e
	}
	return PagedResponse[Entity]{
		Content:       content,
		Page:          r.Page,
		Size:          r.Size,
		TotalElements: r.TotalElements,
		TotalPages:    r.TotalPages,
		Sort:          r.Sort,
		Direction:     r.Direction,
		Search:        r.Search,
	}
}
