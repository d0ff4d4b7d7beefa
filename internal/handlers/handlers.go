// Package handlers provides HTTP request handlers
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"go-swapi/internal/domain"
	"go-swapi/internal/export"
	"go-swapi/internal/services"
)

// StatusClientClosedRequest is reported when the caller went away mid-walk
const StatusClientClosedRequest = 499

// Handler holds all service dependencies
type Handler struct {
	Query  *services.QueryService
	Walks  *services.WalkService
	Logger zerolog.Logger
}

// NewHandler creates a new handler with services
func NewHandler(query *services.QueryService, walks *services.WalkService, logger zerolog.Logger) *Handler {
	return &Handler{
		Query:  query,
		Walks:  walks,
		Logger: logger,
	}
}

// listQuery mirrors the accepted query string. Pointers tell absent from zero.
type listQuery struct {
	Page      *int    `form:"page"`
	Size      *int    `form:"size"`
	Search    string  `form:"search"`
	Sort      *string `form:"sort"`
	Direction *string `form:"direction"`
	Dir       *string `form:"dir"`
	Format    string  `form:"format" binding:"omitempty,oneof=json xlsx"`
}

// params overlays the request onto the category defaults
func (q listQuery) params(category domain.Category) domain.QueryParams {
	p := domain.DefaultQueryParams(category)
	if q.Page != nil {
		p.Page = *q.Page
	}
	if q.Size != nil {
		p.Size = *q.Size
	}
	p.Search = q.Search
	if q.Sort != nil {
		p.Sort = domain.SortKey(*q.Sort)
	}
	if q.Dir != nil {
		p.Direction = domain.SortDirection(*q.Dir)
	}
	if q.Direction != nil {
		p.Direction = domain.SortDirection(*q.Direction)
	}
	return p
}

// normalize lower-cases enum values so "NAME" and "Desc" are accepted
func normalize(p domain.QueryParams) (domain.QueryParams, error) {
	key, err := domain.ParseSortKey(string(p.Sort))
	if err != nil {
		return p, err
	}
	dir, err := domain.ParseSortDirection(string(p.Direction))
	if err != nil {
		return p, err
	}
	p.Sort, p.Direction = key, dir
	return p, p.Validate()
}

// Health handles health check requests
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Health{
		Status: "ok",
		Now:    time.Now().UTC(),
	})
}

// ListPeople handles GET /people
func (h *Handler) ListPeople(c *gin.Context) {
	q, params, ok := h.bind(c, domain.CategoryPerson)
	if !ok {
		return
	}
	resp, err := h.Query.People(c.Request.Context(), params)
	respond(h, c, domain.CategoryPerson, q, resp, err)
}

// ListPlanets handles GET /planets
func (h *Handler) ListPlanets(c *gin.Context) {
	q, params, ok := h.bind(c, domain.CategoryPlanet)
	if !ok {
		return
	}
	resp, err := h.Query.Planets(c.Request.Context(), params)
	respond(h, c, domain.CategoryPlanet, q, resp, err)
}

// ListCategory handles GET /entities/:category
func (h *Handler) ListCategory(c *gin.Context) {
	category, err := domain.ParseCategory(c.Param("category"))
	if err != nil {
		h.fail(c, fmt.Errorf("%w (supported: %v)", err, h.Query.Categories()))
		return
	}
	q, params, ok := h.bind(c, category)
	if !ok {
		return
	}
	resp, err := h.Query.Query(c.Request.Context(), category, params)
	respond(h, c, category, q, resp, err)
}

// bind reads the query string over the category defaults; on failure it has already answered
func (h *Handler) bind(c *gin.Context, category domain.Category) (listQuery, domain.QueryParams, bool) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", domain.ErrInvalidParams, err))
		return q, domain.QueryParams{}, false
	}
	params, err := normalize(q.params(category))
	if err != nil {
		h.fail(c, err)
		return q, params, false
	}
	return q, params, true
}

func respond[T domain.Entity](h *Handler, c *gin.Context, category domain.Category, q listQuery, resp domain.PagedResponse[T], err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	if q.Format == "xlsx" {
		h.writeXLSX(c, category, domain.Erase(resp))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) writeXLSX(c *gin.Context, category domain.Category, resp domain.PagedResponse[domain.Entity]) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, resp, category.Columns()); err != nil {
		h.Logger.Error().Err(err).Str("category", string(category)).Msg("xlsx export failed")
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse("EXPORT_ERROR", err.Error()))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-page-%d.xlsx"`, category.Resource(), resp.Page))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// ListWalks handles walk log list requests
func (h *Handler) ListWalks(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, _ := strconv.Atoi(limitStr)

	items, err := h.Walks.List(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error().Err(err).Msg("list walks")
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse("INTERNAL", err.Error()))
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(map[string]interface{}{
		"items": items,
	}))
}

// LatestWalk handles requests for the newest walk of a category
func (h *Handler) LatestWalk(c *gin.Context) {
	category, err := domain.ParseCategory(c.Query("category"))
	if err != nil {
		h.fail(c, fmt.Errorf("%w (supported: %v)", err, h.Query.Categories()))
		return
	}

	log, err := h.Walks.Latest(c.Request.Context(), category)
	if err != nil {
		h.Logger.Error().Err(err).Msg("latest walk")
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse("INTERNAL", err.Error()))
		return
	}

	if log == nil {
		c.JSON(http.StatusOK, domain.SuccessResponse(map[string]interface{}{
			"category": category,
			"message":  "no data",
		}))
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(log))
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, code := Classify(err)
	ev := h.Logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = h.Logger.Error()
	}
	ev.Err(err).Int("status", status).Str("code", code).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(status, domain.ErrorResponse(code, err.Error()))
}

// Classify maps a query error onto an HTTP status and error code
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidParams):
		return http.StatusBadRequest, "INVALID_PARAMS"
	case errors.Is(err, domain.ErrUnsupportedCategory):
		return http.StatusBadRequest, "UNSUPPORTED_CATEGORY"
	case errors.Is(err, domain.ErrNoSortStrategy):
		return http.StatusInternalServerError, "NO_SORT_STRATEGY"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "CANCELLED"
	}
	return http.StatusBadGateway, "UPSTREAM_ERROR"
}

// SetupRoutes configures all routes, both at the root and under /api
func SetupRoutes(r *gin.Engine, h *Handler) {
	register(r.Group(""), h)
	register(r.Group("/api"), h)
}

func register(g *gin.RouterGroup, h *Handler) {
	// Health check
	g.GET("/health", h.Health)

	// Collections
	g.GET("/people", h.ListPeople)
	g.GET("/planets", h.ListPlanets)
	g.GET("/entities/:category", h.ListCategory)

	// Walk log
	g.GET("/walks", h.ListWalks)
	g.GET("/walks/latest", h.LatestWalk)
}
