package reports

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

const donorsCSV = `Status,Donor name,Location name,Phone,Line1,Line2,City,State,Zip,Notes
Active,Acme Foods,Acme Foods - Downtown,4155551234,1 Main St,Suite 2,Oakland,CA,94607,x
Inactive,Old Co,Old Co,,,,,,,
Active,Acme Foods,Acme  Foods,,2 Main St,,Oakland,CA,02139,
`

func read(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func TestActiveAccounts(t *testing.T) {
	got, err := ActiveAccounts(read(t, donorsCSV), Donors)
	require.NoError(t, err)

	assert.Equal(t, AccountColumns, got.Columns())
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "Acme Foods", got.Get(0, AccountParentName).String())
	assert.Equal(t, "Acme Foods - Downtown", got.Get(0, AccountName).String())
	assert.Equal(t, "Suite 2", got.Get(0, AccountLine2).String())
	assert.Equal(t, "02139", got.Get(1, AccountPostalCode).String())
}

func TestActiveAccountsPartners(t *testing.T) {
	csv := "Status,Recipient name,Location name,Phone,Line1,Line2,City,State,Zip\nActive,Food Bank,Food Bank East,,1 A St,,Oakland,CA,94601\n"
	got, err := ActiveAccounts(read(t, csv), Partners)
	require.NoError(t, err)
	assert.Equal(t, "Food Bank", got.Get(0, AccountParentName).String())

	_, err = ActiveAccounts(read(t, csv), Donors)
	var mce *errors.MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "Donor name", mce.Column)
}

func TestVolunteerRows(t *testing.T) {
	got, err := VolunteerRows(read(t, "Name,Email,Phone,Line1,City,State,Zip\nJane Doe,j@x.org,,1 A St,Oakland,CA,94601\n"))
	require.NoError(t, err)
	assert.Equal(t, VolunteerColumns, got.Columns())
	assert.True(t, got.Get(0, "Line2").IsNull())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lastmile_rescue_comments.csv")
	require.NoError(t, os.WriteFile(path, []byte("Rescue ID,Note\n1,x\n"), 0o600))

	_, err := Load(path, Comments)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "lastmile_rescue_comments.csv")
	assert.Contains(t, err.Error(), `"Comments"`)

	_, err = Load(filepath.Join(dir, "missing.csv"), Comments)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestSpecs(t *testing.T) {
	for _, k := range []Kind{Donors, Partners, Volunteers, Rescues, Comments} {
		assert.NotEmpty(t, Specs(k), k)
	}
	assert.Nil(t, Specs("sponsors"))
	assert.Error(t, Validate(table.New(), "sponsors"))
}

func TestCoerce(t *testing.T) {
	rescues := read(t, "Rescue ID,Day of Pickup Start,Volunteer Name,Weight\n"+
		"500,2024-03-01,7,12.0\n"+
		"501,someday,,3\n")

	require.NoError(t, Coerce(rescues, Rescues))
	assert.Equal(t, table.KindInt, rescues.Get(0, ColRescueID).Kind())
	assert.Equal(t, table.KindDate, rescues.Get(0, ColPickupDay).Kind())
	assert.Equal(t, table.KindText, rescues.Get(1, ColPickupDay).Kind(), "unparsed dates are left as text")
	assert.Equal(t, "12.0", rescues.Get(0, ColWeight).String())
	assert.True(t, rescues.Get(1, ColVolunteerName).IsNull())

	vols := read(t, "Name,Phone,Zip\nJane Doe,4155551234.0,02139\nJohn Roe,,94110\n")
	require.NoError(t, Coerce(vols, Volunteers))
	assert.Equal(t, "4155551234", vols.Get(0, "Phone").String())
	assert.Equal(t, table.KindText, vols.Get(1, "Zip").Kind(), "one padded zip keeps the column as text")

	err := Coerce(vols, Kind("sponsors"))
	assert.True(t, errors.IsInvalidInput(err))
}

func TestCoerceAccountShape(t *testing.T) {
	got, err := ActiveAccounts(read(t, donorsCSV), Donors)
	require.NoError(t, err)
	require.NoError(t, CoerceFields(got, AccountFieldSpecs))
	assert.Equal(t, table.KindText, got.Get(0, AccountPostalCode).Kind(), "02139 keeps postal codes as text")
	assert.Equal(t, table.KindInt, got.Get(0, AccountPhone).Kind())
}
