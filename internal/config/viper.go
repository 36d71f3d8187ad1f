// Package config resolves the deployment settings rescuesync needs before it
// talks to the CRM: the Bulk API base URI, the account record-type ids and the
// shared volunteers account.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// Config keys, as section.key.
const (
	KeyURI               = "generalconfiguration.uri"
	KeyDonorRecordType   = "recordtypes.donor"
	KeyPartnerRecordType = "recordtypes.partner"
	KeyVolunteersAccount = "accounts.volunteers"
)

// EnvPrefix prefixes environment overrides, e.g.
// RESCUESYNC_GENERALCONFIGURATION_URI.
const EnvPrefix = "RESCUESYNC"

// DefaultName is the config file name searched for when none is given.
const DefaultName = "rescuesync"

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// New returns a viper instance wired for rescuesync settings: env overrides
// with EnvPrefix and the config file at path, or rescuesync.{yaml,toml,json}
// in the working directory and home directory when path is empty.
func New(path string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return v
	}
	v.SetConfigName(DefaultName)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	return v
}

// Load reads settings from the config file at path (see New) and validates
// that the Bulk API URI is present. A missing default file is not an error
// as long as the environment supplies the URI.
func Load(path string) (*Settings, error) {
	v := New(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, &errors.ConfigError{
				File:    path,
				Message: "cannot read config file",
				Err:     err,
			}
		}
	}
	return FromViper(v)
}

// FromViper builds Settings from an already configured viper instance.
func FromViper(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		URI:                 strings.TrimSpace(v.GetString(KeyURI)),
		DonorRecordTypeID:   strings.TrimSpace(v.GetString(KeyDonorRecordType)),
		PartnerRecordTypeID: strings.TrimSpace(v.GetString(KeyPartnerRecordType)),
		VolunteersAccountID: strings.TrimSpace(v.GetString(KeyVolunteersAccount)),
		File:                v.ConfigFileUsed(),
	}
	if s.URI == "" {
		return nil, s.missing(KeyURI)
	}
	if !strings.HasSuffix(s.URI, "/") {
		s.URI += "/"
	}
	return s, nil
}
