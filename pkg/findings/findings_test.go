package findings

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

func mustRead(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func column(t *testing.T, tbl *table.Table, col string) []string {
	t.Helper()
	vals, err := tbl.Column(col)
	require.NoError(t, err)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

func TestDuplicates(t *testing.T) {
	t.Run("acme three times", func(t *testing.T) {
		tbl := mustRead(t, "Id,Name\n1,Acme\n2,Beta\n3,Acme\n4,Acme\n")
		dups, err := Duplicates(tbl, "Name")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "3", "4"}, column(t, dups, "Id"))
		assert.Equal(t, []string{"Acme", "Acme", "Acme"}, column(t, dups, "Name"))
	})

	t.Run("no repeated key", func(t *testing.T) {
		tbl := mustRead(t, "Id,Name\n1,Acme\n2,Beta\n")
		_, err := Duplicates(tbl, "Name")
		assert.ErrorIs(t, err, ErrNoDuplicates)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := Duplicates(table.New("Id", "Name"), "Name")
		assert.ErrorIs(t, err, ErrNoDuplicates)
	})

	t.Run("null keys do not group", func(t *testing.T) {
		tbl := mustRead(t, "Id,Name\n1,\n2,\n")
		_, err := Duplicates(tbl, "Name")
		assert.ErrorIs(t, err, ErrNoDuplicates)
	})

	t.Run("missing key column", func(t *testing.T) {
		_, err := Duplicates(table.New("Id"), "Name")
		var mce *errors.MissingColumnError
		assert.ErrorAs(t, err, &mce)
	})

	t.Run("groups in key order", func(t *testing.T) {
		tbl := mustRead(t, "Id,Name\n1,Zed\n2,Acme\n3,Zed\n4,Acme\n")
		dups, err := Duplicates(tbl, "Name")
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "4", "1", "3"}, column(t, dups, "Id"))
	})
}

func TestDuplicateAccountsAndVolunteers(t *testing.T) {
	accounts := mustRead(t, "Id,Name,RecordTypeId\n"+
		"1,Acme  Corp,D\n"+
		"2,Acme Corp,D\n"+
		"3,Acme Corp,P\n"+
		"4,,D\n"+
		"5,,D\n")
	dups, err := DuplicateAccounts(accounts, "D")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, column(t, dups, "Id"))

	_, err = DuplicateAccounts(accounts, "P")
	assert.ErrorIs(t, err, ErrNoDuplicates)

	contacts := mustRead(t, "Id,Name,AccountId\n1,Cher,V\n2,Cher,V\n3,Cher,X\n")
	dups, err = DuplicateVolunteers(contacts, "V")
	require.NoError(t, err)
	assert.Equal(t, 2, dups.Len())
}

func TestIncompleteRescues(t *testing.T) {
	rescues := mustRead(t, "Rescue ID,Day of Pickup Start,Rescue State,Rescue Detail URL,Food Type\n"+
		"1,2024-03-01,active,u1,produce\n"+
		"1,2024-03-01,active,u1,dairy\n"+
		"2,2024-03-01,completed,u2,produce\n"+
		"3,2024-03-01,canceled,u3,produce\n"+
		"4,2024-03-10,active,u4,produce\n"+
		"5,2024-03-09,assigned,u5,produce\n")
	today := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)

	out, err := IncompleteRescues(rescues, today)
	require.NoError(t, err)
	assert.Equal(t, IncompleteColumns, out.Columns())
	assert.Equal(t, []string{"1", "5"}, column(t, out, "Rescue ID"))
	assert.Equal(t, table.KindDate, out.Get(0, "Day of Pickup Start").Kind())
}

func TestIncompleteRescuesBadDate(t *testing.T) {
	rescues := mustRead(t, "Rescue ID,Day of Pickup Start,Rescue State,Rescue Detail URL\n"+
		"1,soon,completed,u1\n"+
		"2,whenever,active,u2\n")
	_, err := IncompleteRescues(rescues, time.Now())
	var pe *errors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Contains(t, pe.Message, "whenever")
}

func TestRescueDiscrepancies(t *testing.T) {
	crm := mustRead(t, "Rescue_Id__c,State__c\n10,completed\n11.0,completed\n12,completed\n12,completed\n13,canceled\n")
	admin := mustRead(t, "Rescue ID,Rescue State\n11,completed\n14,completed\n13,completed\n9,completed\n")

	crmOnly, err := RescueDiscrepancies(crm, admin, ModeCRMOnly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rescue ID"}, crmOnly.Columns())
	assert.Equal(t, []string{"10", "12"}, column(t, crmOnly, "Rescue ID"))

	adminOnly, err := RescueDiscrepancies(crm, admin, ModeAdminOnly)
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "13", "14"}, column(t, adminOnly, "Rescue ID"))

	_, err = RescueDiscrepancies(crm, admin, Mode(3))
	assert.True(t, errors.IsInvalidInput(err))
}

const adminHeader = "Rescue ID,Food Type,Day of Pickup Start,Donor Location Name,Recipient Location Name," +
	"Volunteer Name,Rescue State,Weight,Rescue Detail URL\n"

const crmHeader = "Rescue_Id__c,Food_Type__c,Day_of_Pickup__c,Food_Donor_Account_Name__r.Name,Agency_Name__r.Name," +
	"Volunteer_Name__r.Name,State__c,Weight__c,Rescue_Detail_URL__c\n"

func TestCompareEqualAfterNormalization(t *testing.T) {
	admin := mustRead(t, adminHeader+"1,produce,03/01/2024,Acme  Downtown,Food Bank,,completed,12,u1\n")
	crm := mustRead(t, crmHeader+"1.0,produce,2024-03-01,Acme Downtown,Food Bank,,completed,12.0,u1\n")

	out, err := Compare(admin, crm, CompareOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

func TestCompareInterleaved(t *testing.T) {
	admin := mustRead(t, adminHeader+
		"1,produce,2024-03-01,Acme,Food Bank,Mary,completed,12,u1\n"+
		"2,dairy,2024-03-02,Acme,Food Bank,,completed,5,u2\n"+
		"3,bread,2024-03-03,Acme,Food Bank,,completed,5,u3\n")
	crm := mustRead(t, crmHeader+
		"1,produce,2024-03-01,Acme,Food Bank,Mary,completed,12,u1\n"+
		"2,dairy,2024-03-02,Acme,Shelter,,completed,7,u2\n"+
		"3,bread,2024-03-03,Acme,Food Bank,Peter,completed,5,u3\n")

	out, err := Compare(admin, crm, CompareOptions{Join: JoinInner, Layout: LayoutInterleaved})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Rescue ID", "Food Type",
		"Partner (Admin)", "Partner (Salesforce)",
		"Volunteer (Admin)", "Volunteer (Salesforce)",
		"Weight (Admin)", "Weight (Salesforce)",
	}, out.Columns())
	require.Equal(t, 2, out.Len())

	assert.Equal(t, "2", out.Get(0, "Rescue ID").String())
	assert.Equal(t, "Food Bank", out.Get(0, "Partner (Admin)").String())
	assert.Equal(t, "Shelter", out.Get(0, "Partner (Salesforce)").String())
	assert.True(t, out.Get(0, "Volunteer (Salesforce)").IsNull(), "agreeing field left empty")

	assert.Equal(t, "3", out.Get(1, "Rescue ID").String())
	assert.Equal(t, "Peter", out.Get(1, "Volunteer (Salesforce)").String())
}

func TestCompareStackedOuter(t *testing.T) {
	admin := mustRead(t, adminHeader+"1,produce,2024-03-01,Acme,Food Bank,,completed,12,u1\n")
	crm := mustRead(t, crmHeader+"2,dairy,2024-03-02,Acme,Food Bank,,completed,5,u2\n")

	inner, err := Compare(admin, crm, CompareOptions{Join: JoinInner})
	require.NoError(t, err)
	assert.Equal(t, 0, inner.Len())

	out, err := Compare(admin, crm, CompareOptions{Join: JoinOuter, Layout: LayoutStacked})
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())
	assert.Equal(t, []string{"Admin", "Salesforce", "Admin", "Salesforce"}, column(t, out, "Source"))
	assert.Equal(t, "2024-03-01", out.Get(0, "Date").String())
	assert.True(t, out.Get(1, "Date").IsNull())
	assert.Equal(t, "5", out.Get(3, "Weight").String())
	assert.Contains(t, out.Columns(), "Detail URL")
}

func TestCompareRejectsBadOptions(t *testing.T) {
	admin := mustRead(t, adminHeader)
	crm := mustRead(t, crmHeader)
	_, err := Compare(admin, crm, CompareOptions{Join: JoinMode(9)})
	assert.True(t, errors.IsInvalidInput(err))
	_, err = Compare(admin, crm, CompareOptions{Layout: Layout(9)})
	assert.True(t, errors.IsInvalidInput(err))

	_, err = Compare(table.New("Rescue ID"), crm, CompareOptions{})
	var mce *errors.MissingColumnError
	assert.ErrorAs(t, err, &mce)
}
