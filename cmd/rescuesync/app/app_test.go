package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/internal/transport"
	"github.com/lastmilefood/rescuesync/pkg/bulk"
	"github.com/lastmilefood/rescuesync/pkg/bulk/bulktest"
	"github.com/lastmilefood/rescuesync/pkg/errors"
)

func newTestApp(t *testing.T) (*App, *bulktest.Server) {
	t.Helper()
	srv := bulktest.NewServer()
	t.Cleanup(srv.Close)

	tc := transport.New(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "session-token"}),
		transport.WithRateLimit(0),
		transport.WithRetries(1, time.Millisecond),
	)
	client := bulk.New(srv.URI(), tc, bulk.WithPollIntervals(time.Millisecond, time.Millisecond))
	logger := zerolog.Nop()

	app, err := New("1.2.3", "abc123", "2024-01-01", "test",
		WithLogger(&logger),
		WithStore(client),
		WithSettings(&config.Settings{
			URI:                 srv.URI(),
			DonorRecordTypeID:   "012D00000000001",
			PartnerRecordTypeID: "012D00000000002",
			VolunteersAccountID: "001VOLUNTEERS01",
		}),
	)
	require.NoError(t, err)
	return app, srv
}

// run executes the root command and returns its stdout.
func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNew(t *testing.T) {
	app, _ := newTestApp(t)
	assert.Equal(t, "1.2.3", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2024-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
}

func TestVersionCommand(t *testing.T) {
	app, _ := newTestApp(t)
	out, err := run(t, app, "version", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "rescuesync 1.2.3")
	assert.Contains(t, out, "commit:   abc123")
}

func TestRejectsUnknownFormat(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := run(t, app, "version", "--format", "xml")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestRejectsUnknownAuthScheme(t *testing.T) {
	app, srv := newTestApp(t)
	_, err := run(t, app, "upload", "--donors", "donors.csv", "--auth-scheme", "basic")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "auth-scheme")
	assert.Empty(t, srv.Queries())
}

func TestUploadDryRun(t *testing.T) {
	app, srv := newTestApp(t)
	dir := t.TempDir()
	donors := writeFile(t, dir, "donors.csv", "Status,Donor name,Location name,Phone,Line1,Line2,City,State,Zip\n"+
		"Active,Acme Corp,Acme Corp,,1 Main St,,SF,CA,94110\n")

	out, err := run(t, app, "upload", "--donors", donors, "--dry-run", "--format", "json", "--out-dir", dir)
	require.NoError(t, err)
	assert.Empty(t, srv.IngestJobs())
	assert.Contains(t, out, `"dry_run": true`)
	assert.Contains(t, out, `"stage": "donors"`)
}

func TestUploadWritesFailedRecords(t *testing.T) {
	app, srv := newTestApp(t)
	srv.RejectRows(func(object string, rec bulktest.Record) string {
		if object == "Account" && rec["Name"] == "Acme Corp" {
			return "DUPLICATE_VALUE"
		}
		return ""
	})
	dir := t.TempDir()
	donors := writeFile(t, dir, "donors.csv", "Status,Donor name,Location name,Phone,Line1,Line2,City,State,Zip\n"+
		"Active,Acme Corp,Acme Corp,,1 Main St,,SF,CA,94110\n")

	out, err := run(t, app, "upload", "--donors", donors, "--format", "table", "--out-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "0 written, 1 failed")

	matches, err := filepath.Glob(filepath.Join(dir, "failed_Account_*.tsv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	body, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "DUPLICATE_VALUE")
}

func TestUploadRequiresInput(t *testing.T) {
	app, srv := newTestApp(t)
	_, err := run(t, app, "upload")
	assert.True(t, errors.IsInvalidInput(err))
	assert.Empty(t, srv.Queries(), "no network call without input")
}

func TestUploadMissingColumnStopsBeforeNetwork(t *testing.T) {
	app, srv := newTestApp(t)
	dir := t.TempDir()
	rescues := writeFile(t, dir, "rescues.csv", "Rescue ID,Food Type\n1,bread\n")

	_, err := run(t, app, "upload", "--rescues", rescues)
	var mce *errors.MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Empty(t, srv.Queries())
}

func TestFindIncompleteWritesArtifact(t *testing.T) {
	app, srv := newTestApp(t)
	dir := t.TempDir()
	rescues := writeFile(t, dir, "rescues.csv",
		"Rescue ID,Day of Pickup Start,Rescue State,Description,Food Type,Weight,Rescue Detail URL,"+
			"Donor Name,Donor Location Name,Recipient Name,Recipient Location Name,Volunteer Name\n"+
			"1,2020-01-01,active,,bread,1,u1,,,,,\n"+
			"2,2020-01-01,completed,,bread,1,u2,,,,,\n")

	out, err := run(t, app, "find", "incomplete", "--rescues", rescues, "--format", "table", "--out-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "incomplete_rescues")
	assert.Empty(t, srv.Queries(), "incomplete needs no CRM access")

	body, err := os.ReadFile(filepath.Join(dir, "incomplete_rescues.tsv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "1\t2020-01-01\tactive"))
}

func TestFindDuplicatesSkipsEmptyFindings(t *testing.T) {
	app, srv := newTestApp(t)
	srv.Seed("Account",
		bulktest.Record{"Name": "Acme", "RecordTypeId": "012D00000000001"},
		bulktest.Record{"Name": "Acme", "RecordTypeId": "012D00000000001"},
		bulktest.Record{"Name": "Food Bank", "RecordTypeId": "012D00000000002"},
	)
	dir := t.TempDir()

	_, err := run(t, app, "find", "duplicates", "--format", "json", "--out-dir", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "duplicate_food_donors.tsv"))
	assert.NoFileExists(t, filepath.Join(dir, "duplicate_nonprofit_partners.tsv"))
	assert.NoFileExists(t, filepath.Join(dir, "duplicate_volunteers.tsv"))
}

func TestRunOptionsFollowFlags(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := run(t, app, "version", "--dry-run", "--strict-links")
	require.NoError(t, err)
	assert.True(t, app.Config().DryRun)
	assert.True(t, app.Config().StrictLinks)
	assert.Len(t, app.RunOptions(), 2)
}
