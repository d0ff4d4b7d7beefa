package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go-swapi/internal/domain"
	"go-swapi/internal/export"
	"go-swapi/internal/logging"
)

// Output formats for the query command
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
	OutputXLSX = "xlsx"
)

type queryFlags struct {
	page      int
	size      int
	search    string
	sort      string
	direction string
	output    string
	file      string
}

func newQueryCmd(a *app) *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "query <people|planets>",
		Short: "Run one paginated query against the upstream catalog",
		Long: `Walks every upstream page of the category, filters by name, sorts and
prints the requested page. The direction defaults to desc for people and asc
for planets.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := domain.ParseCategory(args[0])
			if err != nil {
				return err
			}
			params, err := f.params(cmd, category)
			if err != nil {
				return err
			}
			format := strings.ToLower(f.output)
			switch format {
			case OutputJSON, OutputYAML, OutputXLSX:
			default:
				return fmt.Errorf("%w: output must be json, yaml or xlsx, got %q", domain.ErrInvalidParams, f.output)
			}

			resp, err := a.queryService(nil).Query(cmd.Context(), category, params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.file != "" {
				file, err := os.Create(f.file)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			if err := render(out, format, category, resp); err != nil {
				return err
			}
			a.logger.Debug().Int("total", resp.TotalElements).Int("returned", len(resp.Content)).Msg("query done")
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.page, "page", domain.DefaultPage, "1-based page number")
	fl.IntVar(&f.size, "size", domain.DefaultSize, "page size")
	fl.StringVar(&f.search, "search", "", "case-insensitive name substring")
	fl.StringVar(&f.sort, "sort", string(domain.SortByName), "sort key: name or created")
	fl.StringVar(&f.direction, "direction", "", "sort direction: asc or desc (category default when unset)")
	fl.StringVarP(&f.output, "output", "o", OutputJSON, "output format: json, yaml or xlsx")
	fl.StringVar(&f.file, "file", "", "write output to this file instead of stdout")

	return cmd
}

func (f queryFlags) params(cmd *cobra.Command, category domain.Category) (domain.QueryParams, error) {
	p := domain.DefaultQueryParams(category)
	p.Page, p.Size, p.Search = f.page, f.size, f.search

	key, err := domain.ParseSortKey(f.sort)
	if err != nil {
		return p, err
	}
	p.Sort = key
	if cmd.Flags().Changed("direction") {
		dir, err := domain.ParseSortDirection(f.direction)
		if err != nil {
			return p, err
		}
		p.Direction = dir
	}
	return p, p.Validate()
}

// render writes resp in the chosen format. JSON is indented on a terminal.
func render(w io.Writer, format string, category domain.Category, resp domain.PagedResponse[domain.Entity]) error {
	switch format {
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	case OutputXLSX:
		return export.WriteXLSX(w, resp, category.Columns())
	}

	enc := json.NewEncoder(w)
	if logging.IsTerminal(w) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
