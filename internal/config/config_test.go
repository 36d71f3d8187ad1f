package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rescuesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
GeneralConfiguration:
  uri: https://example.my.salesforce.com/services/data/v58.0/jobs
RecordTypes:
  donor: 0125e000000DonorAAA
  partner: 0125e000000PartnAAA
Accounts:
  volunteers: 0015e000000VolunAAA
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.my.salesforce.com/services/data/v58.0/jobs/", s.URI)
	assert.Equal(t, path, s.File)

	id, err := s.RecordTypeID(Donor)
	require.NoError(t, err)
	assert.Equal(t, "0125e000000DonorAAA", id)

	id, err = s.RecordTypeID(Partner)
	require.NoError(t, err)
	assert.Equal(t, "0125e000000PartnAAA", id)

	vol, err := s.VolunteersAccount()
	require.NoError(t, err)
	assert.Equal(t, "0015e000000VolunAAA", vol)
}

func TestLoadMissingURI(t *testing.T) {
	path := writeConfig(t, "RecordTypes:\n  donor: x\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfig)

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "GeneralConfiguration", cfgErr.Section)
	assert.Equal(t, "uri", cfgErr.Key)
	assert.Equal(t, path, cfgErr.File)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, "GeneralConfiguration:\n  uri: https://file.example/jobs/\n")
	t.Setenv("RESCUESYNC_GENERALCONFIGURATION_URI", "https://env.example/jobs/")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/jobs/", s.URI)
}

func TestMissingOptionalKeys(t *testing.T) {
	s := &Settings{URI: "https://example/jobs/", File: "rescuesync.yaml"}

	_, err := s.RecordTypeID(Partner)
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "RecordTypes", cfgErr.Section)
	assert.Equal(t, "partner", cfgErr.Key)
	assert.Equal(t, "configuration error: RecordTypes.partner in rescuesync.yaml: value is required", err.Error())

	_, err = s.VolunteersAccount()
	assert.ErrorIs(t, err, errors.ErrConfig)

	_, err = s.RecordTypeID("sponsor")
	assert.True(t, errors.IsInvalidInput(err))
}

func TestRequire(t *testing.T) {
	s := &Settings{URI: "https://example/jobs/", DonorRecordTypeID: "012D", File: "rescuesync.yaml"}

	require.NoError(t, s.Require(KeyURI, KeyDonorRecordType))

	err := s.Require(KeyDonorRecordType, KeyVolunteersAccount, KeyPartnerRecordType)
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Accounts", cfgErr.Section)
	assert.Equal(t, "volunteers", cfgErr.Key)

	assert.True(t, errors.IsInvalidInput(s.Require("recordtypes.sponsor")))
}
