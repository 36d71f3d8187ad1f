// Package reports describes the admin-tool CSV exports rescuesync consumes
// and shapes them for the reconcilers.
package reports

import (
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// Kind names an admin-tool export.
type Kind string

// Export kinds.
const (
	Donors     Kind = "donors"
	Partners   Kind = "partners"
	Volunteers Kind = "volunteers"
	Rescues    Kind = "rescues"
	Comments   Kind = "comments"
)

// FieldSpec describes one expected column of an export.
type FieldSpec struct {
	Name     string
	Type     table.Type
	Required bool
}

// DonorFieldSpecs defines the expected columns of the donor export.
var DonorFieldSpecs = []FieldSpec{
	{Name: ColStatus, Type: table.TypeText, Required: true},
	{Name: colDonorOrg, Type: table.TypeText, Required: true},
	{Name: colLocationName, Type: table.TypeText, Required: true},
	{Name: "Phone", Type: table.TypeOptionalInt, Required: true},
	{Name: colLine1, Type: table.TypeText, Required: true},
	{Name: colLine2, Type: table.TypeText, Required: true},
	{Name: "City", Type: table.TypeText, Required: true},
	{Name: "State", Type: table.TypeText, Required: true},
	{Name: "Zip", Type: table.TypeOptionalInt, Required: true},
}

// PartnerFieldSpecs defines the expected columns of the nonprofit partner export.
var PartnerFieldSpecs = []FieldSpec{
	{Name: ColStatus, Type: table.TypeText, Required: true},
	{Name: colRecipientOrg, Type: table.TypeText, Required: true},
	{Name: colLocationName, Type: table.TypeText, Required: true},
	{Name: "Phone", Type: table.TypeOptionalInt, Required: true},
	{Name: colLine1, Type: table.TypeText, Required: true},
	{Name: colLine2, Type: table.TypeText, Required: true},
	{Name: "City", Type: table.TypeText, Required: true},
	{Name: "State", Type: table.TypeText, Required: true},
	{Name: "Zip", Type: table.TypeOptionalInt, Required: true},
}

// VolunteerFieldSpecs defines the expected columns of the volunteer export.
var VolunteerFieldSpecs = []FieldSpec{
	{Name: "Name", Type: table.TypeText, Required: true},
	{Name: "Email", Type: table.TypeText, Required: true},
	{Name: "Phone", Type: table.TypeOptionalInt, Required: true},
	{Name: colLine1, Type: table.TypeText, Required: true},
	{Name: colLine2, Type: table.TypeText},
	{Name: "City", Type: table.TypeText, Required: true},
	{Name: "State", Type: table.TypeText, Required: true},
	{Name: "Zip", Type: table.TypeOptionalInt, Required: true},
}

// RescueFieldSpecs defines the expected columns of the food rescue export.
var RescueFieldSpecs = []FieldSpec{
	{Name: ColRescueID, Type: table.TypeOptionalInt, Required: true},
	{Name: ColPickupDay, Type: table.TypeDate, Required: true},
	{Name: ColRescueState, Type: table.TypeText, Required: true},
	{Name: ColDescription, Type: table.TypeText, Required: true},
	{Name: ColFoodType, Type: table.TypeText, Required: true},
	{Name: ColWeight, Type: table.TypeText, Required: true},
	{Name: ColDetailURL, Type: table.TypeText, Required: true},
	{Name: ColDonorName, Type: table.TypeText, Required: true},
	{Name: ColDonorLocation, Type: table.TypeText, Required: true},
	{Name: ColRecipientName, Type: table.TypeText, Required: true},
	{Name: ColRecipientLoc, Type: table.TypeText, Required: true},
	{Name: ColVolunteerName, Type: table.TypeText, Required: true},
}

// CommentFieldSpecs defines the expected columns of the rescue comments export.
var CommentFieldSpecs = []FieldSpec{
	{Name: ColRescueID, Type: table.TypeOptionalInt, Required: true},
	{Name: ColComments, Type: table.TypeText, Required: true},
}

// Specs returns the field specs for an export kind.
func Specs(kind Kind) []FieldSpec {
	switch kind {
	case Donors:
		return DonorFieldSpecs
	case Partners:
		return PartnerFieldSpecs
	case Volunteers:
		return VolunteerFieldSpecs
	case Rescues:
		return RescueFieldSpecs
	case Comments:
		return CommentFieldSpecs
	default:
		return nil
	}
}

// Validate checks that every required column of kind is present.
func Validate(t *table.Table, kind Kind) error {
	specs := Specs(kind)
	if specs == nil {
		return &errors.ValidationError{Field: "kind", Value: kind, Message: "unknown export kind"}
	}
	for _, f := range specs {
		if f.Required {
			if err := t.Require(f.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Load reads an export file and validates its columns.
func Load(path string, kind Kind) (*table.Table, error) {
	t, err := table.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(t, kind); err != nil {
		return nil, err
	}
	return t, nil
}
