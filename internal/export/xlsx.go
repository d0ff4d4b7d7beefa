// Package export renders paged query responses as spreadsheets.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"go-swapi/internal/domain"
)

// ContentType is the MIME type of the XLSX output
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	dataSheet = "results"
	metaSheet = "query"
)

// ErrNotTabular is returned for entities that do not describe their columns
var ErrNotTabular = errors.New("entity has no tabular form")

// Row is implemented by entities that can be laid out as one spreadsheet row
type Row interface {
	Columns() []string
	Values() []any
}

// WriteXLSX writes resp as a workbook with a results sheet and a query sheet
// describing the pagination envelope. columns is used as the header when
// the page is empty.
func WriteXLSX[T any](w io.Writer, resp domain.PagedResponse[T], columns []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return err
	}

	if len(resp.Content) > 0 {
		first, ok := any(resp.Content[0]).(Row)
		if !ok {
			return fmt.Errorf("%w: %T", ErrNotTabular, resp.Content[0])
		}
		columns = first.Columns()
	}
	if err := setRow(f, dataSheet, 1, toAny(columns)); err != nil {
		return err
	}

	for i, item := range resp.Content {
		row, ok := any(item).(Row)
		if !ok {
			return fmt.Errorf("%w: %T", ErrNotTabular, item)
		}
		if err := setRow(f, dataSheet, i+2, row.Values()); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(metaSheet); err != nil {
		return err
	}
	meta := [][]any{
		{"page", resp.Page},
		{"size", resp.Size},
		{"totalElements", resp.TotalElements},
		{"totalPages", resp.TotalPages},
		{"sort", resp.Sort},
		{"direction", resp.Direction},
		{"search", resp.Search},
	}
	for i, m := range meta {
		if err := setRow(f, metaSheet, i+1, m); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
