package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-swapi/internal/domain"
)

func TestResourceClient_FetchPage(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("page")
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"count": 2,
			"next": "https://swapi.dev/api/planets/?page=3",
			"previous": null,
			"results": [
				{"name": "Tatooine", "climate": "arid", "created": "2014-12-09T13:50:49.641000Z"},
				{"name": "Alderaan", "climate": "temperate"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewSwapiClient(srv.URL+"/api/", Options{Timeout: time.Second})
	page, err := c.Planets.FetchPage(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "/api/planets/", gotPath)
	assert.Equal(t, "2", gotQuery)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "go-swapi/1.0", gotAgent)

	require.Len(t, page.Results, 2)
	assert.Equal(t, "Tatooine", page.Results[0].Name)
	assert.Equal(t, "arid", page.Results[0].Climate)
	assert.NotNil(t, page.Results[0].Created)
	assert.Nil(t, page.Results[1].Created)
	assert.True(t, page.HasNext())
	assert.Equal(t, "planets", c.Planets.Resource())
}

func TestResourceClient_PageURL(t *testing.T) {
	c := NewResourceClient[domain.Person](NewHTTPClient(Options{}), "https://swapi.dev/api//", "/people/")
	assert.Equal(t, "https://swapi.dev/api/people/?page=7", c.PageURL(7))
}

func TestResourceClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"Not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewResourceClient[domain.Person](NewHTTPClient(Options{}), srv.URL, "people")
	_, err := c.FetchPage(context.Background(), 99)
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "Not found")
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestResourceClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c := NewResourceClient[domain.Planet](NewHTTPClient(Options{}), srv.URL, "planets")
	_, err := c.FetchPage(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode planets page 1")
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPClient(Options{RateLimit: 1, Burst: 1}).Get(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClient_RateLimitSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(Options{RateLimit: 20, Burst: 1})
	start := time.Now()
	for range 3 {
		_, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	// burst of one: the 2nd and 3rd calls each wait ~50ms
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestHTTPClient_InsecureSkipVerify(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"count":1,"next":null,"results":[{"name":"Hoth"}]}`))
	}))
	defer srv.Close()

	strict := NewResourceClient[domain.Planet](NewHTTPClient(Options{Timeout: 2 * time.Second}), srv.URL, "planets")
	_, err := strict.FetchPage(context.Background(), 1)
	require.Error(t, err)
	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr), "certificate failure is a transport error")

	trusting := NewResourceClient[domain.Planet](NewHTTPClient(Options{Timeout: 2 * time.Second, InsecureSkipVerify: true}), srv.URL, "planets")
	page, err := trusting.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Hoth", page.Results[0].Name)
}
