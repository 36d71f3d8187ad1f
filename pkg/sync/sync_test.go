package sync

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/internal/transport"
	"github.com/lastmilefood/rescuesync/pkg/bulk"
	"github.com/lastmilefood/rescuesync/pkg/bulk/bulktest"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/logging"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

const (
	donorRT   = "012D00000000001"
	partnerRT = "012D00000000002"
	volAcct   = "001VOLUNTEERS01"
)

func mustRead(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func setup(t *testing.T) (*bulk.Client, *bulktest.Server, *config.Settings) {
	t.Helper()
	srv := bulktest.NewServer()
	t.Cleanup(srv.Close)
	tc := transport.New(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "session-token"}),
		transport.WithRateLimit(0),
		transport.WithRetries(1, time.Millisecond),
	)
	client := bulk.New(srv.URI(), tc, bulk.WithPollIntervals(time.Millisecond, time.Millisecond))
	return client, srv, &config.Settings{
		URI:                 srv.URI(),
		DonorRecordTypeID:   donorRT,
		PartnerRecordTypeID: partnerRT,
		VolunteersAccountID: volAcct,
	}
}

func inputs(t *testing.T) Inputs {
	return Inputs{
		Donors: mustRead(t, "Status,Donor name,Location name,Phone,Line1,Line2,City,State,Zip\n"+
			"Active,Acme Corp,Acme Corp,4155551234,1 Main St,,SF,CA,94110\n"+
			"Active,Acme Corp,Acme Downtown,,2 Market St,,SF,CA,94105\n"+
			"Inactive,Old Co,Old Co,,,,,,\n"),
		Partners: mustRead(t, "Status,Recipient name,Location name,Phone,Line1,Line2,City,State,Zip\n"+
			"Active,Food Bank,Food Bank,,9 Pier,,SF,CA,94111\n"),
		Volunteers: mustRead(t, "Name,Email,Phone,Line1,City,State,Zip\n"+
			"Mary Jane Watson,mj@example.com,4155550000,20 Ingram St,NY,NY,11375\n"),
		Rescues: mustRead(t, "Rescue ID,Day of Pickup Start,Rescue State,Description,Food Type,Weight,Rescue Detail URL,"+
			"Donor Name,Donor Location Name,Recipient Name,Recipient Location Name,Volunteer Name\n"+
			"500,2024-03-01,completed,bread run,bread,12,u500,Acme Corp,Acme Downtown,Food Bank,Food Bank,Mary Jane Watson\n"+
			"501,2024-03-02,active,later,bread,3,u501,Acme Corp,Acme Downtown,Food Bank,Food Bank,\n"),
	}
}

func TestRunEndToEnd(t *testing.T) {
	client, srv, settings := setup(t)
	logger := logging.NewTestLogger(t)

	res, err := Run(context.Background(), client, settings, inputs(t), WithRunID("run-1"), WithLogger(*logger.Logger))
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, res.Stages, 4)
	assert.Equal(t, StageDonors, res.Stages[0].Stage)
	assert.Equal(t, StageRescues, res.Stages[3].Stage)
	assert.Len(t, srv.Records("Account"), 3)
	assert.Len(t, srv.Records("Contact"), 1)

	rescues := srv.Records("Food_Rescue__c")
	require.Len(t, rescues, 1)
	accounts := srv.Records("Account")
	assert.Equal(t, accounts[1]["Id"], rescues[0]["Food_Donor_Account_Name__c"], "donor is the location account")
	assert.Equal(t, accounts[1]["ParentId"], accounts[0]["Id"])
	assert.Equal(t, accounts[2]["Id"], rescues[0]["Agency_Name__c"])
	assert.Equal(t, srv.Records("Contact")[0]["Id"], rescues[0]["Volunteer_Name__c"])

	assert.Equal(t, 5, res.Written())
	assert.False(t, res.HasFailures())
	assert.Equal(t, "5 planned, 5 written, 0 failed across 4 stages", res.Summary())
	assert.Equal(t, "donors: 2 planned, 2 written, 0 failed", res.Stage(StageDonors).Summary())
	assert.Len(t, res.Jobs(), 5)
	assert.True(t, logger.Contains("run-1"))
}

func TestRunStopsOnFailedJob(t *testing.T) {
	client, srv, settings := setup(t)
	srv.FailJobs("Account", "Row limit exceeded")

	res, err := Run(context.Background(), client, settings, inputs(t))
	require.Error(t, err)

	var se *errors.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(StageDonors), se.Stage)
	assert.True(t, errors.IsJobFailed(err))
	assert.Contains(t, err.Error(), "Row limit exceeded")

	assert.Len(t, srv.IngestJobs(), 1)
	assert.Empty(t, srv.Records("Contact"))
	require.Len(t, res.Stages, 1)
}

func TestRunDryRun(t *testing.T) {
	client, srv, settings := setup(t)

	res, err := Run(context.Background(), client, settings, inputs(t), WithDryRun(true))
	require.NoError(t, err)
	assert.Empty(t, srv.IngestJobs())
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Stage(StageDonors).Outcome.Deferred)
	assert.Contains(t, res.Summary(), "(Dry run)")
}

func TestRunOnlyComments(t *testing.T) {
	client, srv, settings := setup(t)
	srv.Seed("Food_Rescue__c", bulktest.Record{"Rescue_Id__c": "7"})

	res, err := Run(context.Background(), client, settings, Inputs{
		Comments: mustRead(t, "Rescue ID,Comments\n7,dock 4\n"),
	})
	require.NoError(t, err)
	require.Len(t, res.Stages, 1)
	assert.Equal(t, "dock 4", srv.Records("Food_Rescue__c")[0]["Comments__c"])
	assert.NotContains(t, srv.Queries(), "SELECT Id, Name, RecordTypeId FROM Account")
}

func TestRunRejectsBadInput(t *testing.T) {
	client, _, settings := setup(t)

	_, err := Run(context.Background(), client, settings, Inputs{})
	assert.True(t, errors.IsInvalidInput(err))

	_, err = Run(context.Background(), client, settings, inputs(t), WithTimeout(-time.Second))
	assert.True(t, errors.IsInvalidInput(err))

	in := Inputs{Donors: mustRead(t, "Status,Donor name\nActive,Acme\n")}
	_, err = Run(context.Background(), client, settings, in)
	var se *errors.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, string(StageDonors), se.Stage)
	var mce *errors.MissingColumnError
	assert.ErrorAs(t, err, &mce)
}

func TestRunChecksSettingsBeforeWriting(t *testing.T) {
	client, srv, settings := setup(t)
	settings.VolunteersAccountID = ""

	in := inputs(t)
	in.Volunteers = nil
	res, err := Run(context.Background(), client, settings, in)
	require.Error(t, err)
	assert.Nil(t, res)

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "volunteers", cfgErr.Key)
	assert.Empty(t, srv.IngestJobs())
	assert.Empty(t, srv.Queries())
	assert.Empty(t, srv.Records("Account"))
}

func TestInputsConfigKeys(t *testing.T) {
	tbl := table.New("x")
	tests := []struct {
		name string
		in   Inputs
		want []string
	}{
		{"donors", Inputs{Donors: tbl}, []string{config.KeyURI, config.KeyDonorRecordType}},
		{"volunteers", Inputs{Volunteers: tbl}, []string{config.KeyURI, config.KeyVolunteersAccount}},
		{"rescues", Inputs{Rescues: tbl}, []string{config.KeyURI, config.KeyDonorRecordType, config.KeyPartnerRecordType, config.KeyVolunteersAccount}},
		{"comments", Inputs{Comments: tbl}, []string{config.KeyURI}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.ConfigKeys())
		})
	}
}

func TestDefaultsGenerateRunID(t *testing.T) {
	a, b := Defaults(), Defaults()
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
}
