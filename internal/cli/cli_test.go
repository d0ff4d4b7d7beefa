package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"go-swapi/internal/config"
	"go-swapi/internal/domain"
)

// upstream serves two pages of people and one page of planets.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string][][]string{
		"people":  {{"Luke Skywalker", "Leia Organa"}, {"Han Solo"}},
		"planets": {{"Tatooine", "Alderaan", "Dantooine"}},
	}
	var srv *httptest.Server
	mux := http.NewServeMux()
	for resource, ps := range pages {
		mux.HandleFunc("/"+resource+"/", func(w http.ResponseWriter, r *http.Request) {
			n, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if n < 1 || n > len(ps) {
				http.NotFound(w, r)
				return
			}
			results := make([]map[string]any, 0)
			for _, name := range ps[n-1] {
				results = append(results, map[string]any{"name": name, "climate": "arid"})
			}
			body := map[string]any{"count": len(ps), "next": nil, "results": results}
			if n < len(ps) {
				body["next"] = fmt.Sprintf("%s/%s/?page=%d", srv.URL, resource, n+1)
			}
			_ = json.NewEncoder(w).Encode(body)
		})
	}
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SWAPI_LOG_LEVEL", "error")
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuery_JSON(t *testing.T) {
	srv := upstream(t)

	out, err := run(t, "query", "people", "--base-url", srv.URL, "--size", "2")
	require.NoError(t, err)

	var resp domain.PagedResponse[map[string]any]
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Content, 2)
	assert.Equal(t, "Luke Skywalker", resp.Content[0]["name"])
	assert.Equal(t, "Leia Organa", resp.Content[1]["name"])
	assert.Equal(t, 3, resp.TotalElements)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, "desc", resp.Direction)
}

func TestQuery_YAML(t *testing.T) {
	srv := upstream(t)

	out, err := run(t, "query", "planet", "--base-url", srv.URL, "--search", "TOO", "-o", "yaml")
	require.NoError(t, err)

	var resp struct {
		Content []struct {
			Name    string `yaml:"name"`
			Climate string `yaml:"climate"`
		} `yaml:"content"`
		TotalElements int    `yaml:"totalElements"`
		Direction     string `yaml:"direction"`
		Search        string `yaml:"search"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Content, 2)
	assert.Equal(t, "Dantooine", resp.Content[0].Name)
	assert.Equal(t, "arid", resp.Content[0].Climate)
	assert.Equal(t, "Tatooine", resp.Content[1].Name)
	assert.Equal(t, "asc", resp.Direction)
	assert.Equal(t, "TOO", resp.Search)
}

func TestQuery_XLSXFile(t *testing.T) {
	srv := upstream(t)
	path := filepath.Join(t.TempDir(), "planets.xlsx")

	_, err := run(t, "query", "planets", "--base-url", srv.URL, "--direction", "desc", "--output", "xlsx", "--file", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("results")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Tatooine", rows[1][0])
	assert.Equal(t, "Alderaan", rows[3][0])
}

func TestQuery_Errors(t *testing.T) {
	srv := upstream(t)

	_, err := run(t, "query", "starships", "--base-url", srv.URL)
	require.ErrorIs(t, err, domain.ErrUnsupportedCategory)

	_, err = run(t, "query", "people", "--base-url", srv.URL, "--page", "0")
	require.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = run(t, "query", "people", "--base-url", srv.URL, "--sort", "mass")
	require.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = run(t, "query", "people", "--base-url", srv.URL, "--output", "csv")
	require.ErrorIs(t, err, domain.ErrInvalidParams)

	_, err = run(t, "query", "people", "--base-url", srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch people page 1")
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := upstream(t)

	v := config.NewViper("")
	v.Set("upstream.base_url", srv.URL)
	v.Set("server.allowed_origins", []string{"http://localhost:5173"})
	cfg, err := config.LoadConfig(v)
	require.NoError(t, err)
	a := &app{v: v, cfg: cfg, logger: zerolog.Nop()}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	resp, err := http.Get(base + "/api/planets?size=1")
	require.NoError(t, err)
	var page domain.PagedResponse[map[string]any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, page.TotalElements)

	req, err := http.NewRequest(http.MethodGet, base+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
