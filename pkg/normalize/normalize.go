// Package normalize canonicalizes the free-text names used as join keys
// between admin-tool exports and the CRM.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lastmilefood/rescuesync/pkg/table"
)

// Name composes s to NFC, so "Caf\u00e9" and "Cafe\u0301" compare equal, then
// collapses every run of Unicode whitespace to a single space and trims both
// ends. Name is idempotent.
func Name(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Value normalizes a single cell. Non-text cells are stringified first and
// Null becomes the empty string.
func Value(v table.Value) table.Value {
	return table.Text(Name(v.String()))
}

// Column replaces every cell of col with its normalized text form.
func Column(t *table.Table, col string) error {
	return t.Map(col, Value)
}

// Columns normalizes several columns, stopping at the first missing one.
func Columns(t *table.Table, cols ...string) error {
	for _, c := range cols {
		if err := Column(t, c); err != nil {
			return err
		}
	}
	return nil
}
