// Package domain provides domain models for the application
package domain

import (
	"strings"
	"time"
)

// Entity is the capability set shared by every catalog category
type Entity interface {
	EntityName() string
	CreatedAt() *time.Time
}

// Record holds the fields every upstream resource carries.
// A null name decodes to "" and is treated the same as an empty one.
type Record struct {
	Name    string     `json:"name" yaml:"name"`
	Created *time.Time `json:"created" yaml:"created"`
	Edited  *time.Time `json:"edited,omitempty" yaml:"edited,omitempty"`
	URL     string     `json:"url" yaml:"url"`
}

// EntityName returns the display name
func (r Record) EntityName() string {
	return r.Name
}

// CreatedAt returns the upstream creation timestamp, nil when absent
func (r Record) CreatedAt() *time.Time {
	return r.Created
}

// Person represents a SWAPI people resource
type Person struct {
	Record `yaml:",inline"`
	Height    string `json:"height" yaml:"height"`
	Mass      string `json:"mass" yaml:"mass"`
	HairColor string `json:"hair_color" yaml:"hair_color"`
	SkinColor string `json:"skin_color" yaml:"skin_color"`
	EyeColor  string `json:"eye_color" yaml:"eye_color"`
	BirthYear string `json:"birth_year" yaml:"birth_year"`
	Gender    string `json:"gender" yaml:"gender"`
}

// Columns returns the export header for people
func (Person) Columns() []string {
	return []string{"name", "height", "mass", "hair_color", "skin_color", "eye_color", "birth_year", "gender", "created", "url"}
}

// Values returns the export row for a person
func (p Person) Values() []any {
	return []any{p.Name, p.Height, p.Mass, p.HairColor, p.SkinColor, p.EyeColor, p.BirthYear, p.Gender, formatTime(p.Created), p.URL}
}

// Planet represents a SWAPI planets resource
type Planet struct {
	Record `yaml:",inline"`
	Diameter       string `json:"diameter" yaml:"diameter"`
	Climate        string `json:"climate" yaml:"climate"`
	Gravity        string `json:"gravity" yaml:"gravity"`
	Terrain        string `json:"terrain" yaml:"terrain"`
	RotationPeriod string `json:"rotation_period,omitempty" yaml:"rotation_period,omitempty"`
	OrbitalPeriod  string `json:"orbital_period,omitempty" yaml:"orbital_period,omitempty"`
	Population     string `json:"population,omitempty" yaml:"population,omitempty"`
}

// Columns returns the export header for planets
func (Planet) Columns() []string {
	return []string{"name", "diameter", "climate", "gravity", "terrain", "population", "created", "url"}
}

// Values returns the export row for a planet
func (p Planet) Values() []any {
	return []any{p.Name, p.Diameter, p.Climate, p.Gravity, p.Terrain, p.Population, formatTime(p.Created), p.URL}
}

// Columns returns the export header of the category's entities
func (c Category) Columns() []string {
	switch c {
	case CategoryPerson:
		return Person{}.Columns()
	case CategoryPlanet:
		return Planet{}.Columns()
	}
	return nil
}

// UpstreamPage is one page of the upstream cursor sequence
type UpstreamPage[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether the cursor points at another page
func (p UpstreamPage[T]) HasNext() bool {
	return p.Next != nil && strings.TrimSpace(*p.Next) != ""
}

// WalkLog represents one recorded aggregation walk over the upstream pages
type WalkLog struct {
	ID         int64     `json:"id"`
	Category   string    `json:"category"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Pages      int       `json:"pages"`
	Entities   int       `json:"entities"`
	Status     string    `json:"status"`
	Error      *string   `json:"error"`
}

// Walk statuses
const (
	WalkStatusOK        = "ok"
	WalkStatusFailed    = "failed"
	WalkStatusCancelled = "cancelled"
)

// Health represents health check response
type Health struct {
	Status string    `json:"status"`
	Now    time.Time `json:"now"`
}

// ApiResponse wraps API responses
type ApiResponse struct {
	Ok    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ApiError   `json:"error,omitempty"`
}

// ApiError represents an error response
type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse creates a successful response
func SuccessResponse(data interface{}) ApiResponse {
	return ApiResponse{Ok: true, Data: data}
}

// ErrorResponse creates an error response
func ErrorResponse(code, message string) ApiResponse {
	return ApiResponse{Ok: false, Error: &ApiError{Code: code, Message: message}}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
