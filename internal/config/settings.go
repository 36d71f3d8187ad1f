package config

import (
	"strings"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// AccountKind selects the record type an account belongs to.
type AccountKind string

// Account kinds.
const (
	Donor   AccountKind = "donor"
	Partner AccountKind = "partner"
)

// Settings holds the resolved deployment settings.
type Settings struct {
	// URI is the Bulk API 2.0 jobs base, always ending in "/",
	// e.g. https://org.my.salesforce.com/services/data/v58.0/jobs/
	URI string

	DonorRecordTypeID   string
	PartnerRecordTypeID string
	VolunteersAccountID string

	// File is the config file the values came from, if any.
	File string
}

// RecordTypeID returns the record-type id configured for kind.
func (s *Settings) RecordTypeID(kind AccountKind) (string, error) {
	switch kind {
	case Donor:
		if s.DonorRecordTypeID == "" {
			return "", s.missing(KeyDonorRecordType)
		}
		return s.DonorRecordTypeID, nil
	case Partner:
		if s.PartnerRecordTypeID == "" {
			return "", s.missing(KeyPartnerRecordType)
		}
		return s.PartnerRecordTypeID, nil
	default:
		return "", &errors.ValidationError{Field: "kind", Value: kind, Message: "unknown account kind"}
	}
}

// VolunteersAccount returns the id of the account all volunteers belong to.
func (s *Settings) VolunteersAccount() (string, error) {
	if s.VolunteersAccountID == "" {
		return "", s.missing(KeyVolunteersAccount)
	}
	return s.VolunteersAccountID, nil
}

// Require checks that every key has a value and returns the ConfigError of
// the first one that does not. Keys are the Key* constants.
func (s *Settings) Require(keys ...string) error {
	for _, key := range keys {
		var v string
		switch key {
		case KeyURI:
			v = s.URI
		case KeyDonorRecordType:
			v = s.DonorRecordTypeID
		case KeyPartnerRecordType:
			v = s.PartnerRecordTypeID
		case KeyVolunteersAccount:
			v = s.VolunteersAccountID
		default:
			return &errors.ValidationError{Field: "key", Value: key, Message: "unknown configuration key"}
		}
		if v == "" {
			return s.missing(key)
		}
	}
	return nil
}

func (s *Settings) missing(key string) error {
	section, name, _ := strings.Cut(key, ".")
	return &errors.ConfigError{
		Section: sectionNames[section],
		Key:     name,
		File:    s.File,
		Message: "value is required",
	}
}

var sectionNames = map[string]string{
	"generalconfiguration": "GeneralConfiguration",
	"recordtypes":          "RecordTypes",
	"accounts":             "Accounts",
}
