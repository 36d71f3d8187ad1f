package reports

import (
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// AccountFieldSpecs types the admin account shape ActiveAccounts produces.
var AccountFieldSpecs = []FieldSpec{
	{Name: AccountParentName, Type: table.TypeText, Required: true},
	{Name: AccountName, Type: table.TypeText, Required: true},
	{Name: AccountPhone, Type: table.TypeOptionalInt, Required: true},
	{Name: AccountLine1, Type: table.TypeText, Required: true},
	{Name: AccountLine2, Type: table.TypeText, Required: true},
	{Name: AccountCity, Type: table.TypeText, Required: true},
	{Name: AccountState, Type: table.TypeText, Required: true},
	{Name: AccountPostalCode, Type: table.TypeOptionalInt, Required: true},
}

// Coerce converts the columns of t declared for kind to their types.
func Coerce(t *table.Table, kind Kind) error {
	specs := Specs(kind)
	if specs == nil {
		return &errors.ValidationError{Field: "kind", Value: kind, Message: "unknown export kind"}
	}
	return CoerceFields(t, specs)
}

// CoerceFields applies the coercion rule of each spec whose column t has.
// OptionalInt columns convert only when every cell is a whole number, so a
// single "02139" or "415-555-1234" keeps the column as text. Date cells
// that do not parse are left as they are; Text stringifies every non-null
// cell.
func CoerceFields(t *table.Table, specs []FieldSpec) error {
	for _, f := range specs {
		if !t.Has(f.Name) {
			continue
		}
		var err error
		if f.Type == table.TypeOptionalInt {
			_, err = t.CoerceNumeric(f.Name)
		} else {
			_, err = t.Coerce(f.Name, f.Type)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
