package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

func TestName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme  Foods", "Acme Foods"},
		{"  Acme\tFoods\n", "Acme Foods"},
		{"Cafe\u0301  Roma", "Caf\u00e9 Roma"},
		{"Acme Foods", "Acme Foods"},
		{"", ""},
		{"   ", ""},
		{"Cher", "Cher"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Name(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Name(got), "idempotent")
		})
	}
}

func TestColumn(t *testing.T) {
	tbl := table.New("Name")
	require.NoError(t, tbl.AppendRow(table.Text(" Acme   Foods ")))
	require.NoError(t, tbl.AppendRow(table.Null()))
	require.NoError(t, tbl.AppendRow(table.Int(42)))
	require.NoError(t, tbl.AppendRow(table.Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))))

	require.NoError(t, Column(tbl, "Name"))

	got := make([]string, tbl.Len())
	for i := range got {
		v := tbl.Get(i, "Name")
		assert.Equal(t, table.KindText, v.Kind())
		got[i] = v.String()
	}
	assert.Equal(t, []string{"Acme Foods", "", "42", "2024-01-02"}, got)
}

func TestColumnMissing(t *testing.T) {
	tbl, err := table.ReadCSV(strings.NewReader("Id\n1\n"))
	require.NoError(t, err)
	err = Columns(tbl, "Id", "Name")
	assert.True(t, errors.IsInvalidInput(err))
}
