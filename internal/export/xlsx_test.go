package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-swapi/internal/domain"
)

func TestWriteXLSX_People(t *testing.T) {
	resp := domain.PagedResponse[domain.Person]{
		Content: []domain.Person{
			{Record: domain.Record{Name: "Luke Skywalker", URL: "https://swapi.dev/api/people/1/"}, Height: "172", Gender: "male"},
			{Record: domain.Record{Name: "Leia Organa"}, Height: "150", Gender: "female"},
		},
		Page: 1, Size: 2, TotalElements: 82, TotalPages: 41,
		Sort: "name", Direction: "desc", Search: "",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, resp, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.Person{}.Columns(), rows[0])
	assert.Equal(t, "Luke Skywalker", rows[1][0])
	assert.Equal(t, "172", rows[1][1])
	assert.Equal(t, "Leia Organa", rows[2][0])

	meta, err := f.GetRows(metaSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"totalElements", "82"}, meta[2])
	assert.Equal(t, []string{"direction", "desc"}, meta[5])
}

func TestWriteXLSX_EmptyPageKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	resp := domain.PagedResponse[domain.Planet]{Content: []domain.Planet{}, Page: 1, Size: 15, Sort: "name", Direction: "asc", Search: "kamino"}
	require.NoError(t, WriteXLSX(&buf, resp, domain.Planet{}.Columns()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "climate", rows[0][2])
}

func TestWriteXLSX_RejectsNonTabular(t *testing.T) {
	resp := domain.PagedResponse[string]{Content: []string{"x"}}
	err := WriteXLSX(&bytes.Buffer{}, resp, nil)
	require.ErrorIs(t, err, ErrNotTabular)
}
