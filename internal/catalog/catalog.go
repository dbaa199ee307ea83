// Package catalog holds the option lists offered by the capture and
// preference forms.
package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field names a form field with a fixed option list
type Field string

const (
	FieldCategory Field = "category"
	FieldColor    Field = "color"
	FieldMaterial Field = "material"
	FieldOccasion Field = "occasion"
)

// Fields lists the option fields in form order
var Fields = []Field{FieldCategory, FieldColor, FieldMaterial, FieldOccasion}

var options = map[Field][]string{
	FieldCategory: {"Top", "Bottom", "Footwear", "Accessories", "Dress", "Jacket"},
	FieldColor:    {"Black", "White", "Red", "Blue", "Green", "Yellow", "Orange", "Purple", "Pink", "Brown"},
	FieldMaterial: {"Cotton", "Denim", "Linen", "Silk", "Wool", "Leather", "Synthetic"},
	FieldOccasion: {
		"Casual", "Formal", "Work", "Party Wear", "Business Casual", "Athleisure", "Boho",
		"Vintage", "Streetwear", "Preppy", "Minimalist", "Festive", "Travel",
	},
}

// Options returns a copy of the option list for field
func Options(field Field) []string {
	return append([]string(nil), options[field]...)
}

// Normalize maps a user-typed value onto its canonical option label.
// Matching ignores case and repeated whitespace. Blank input returns "".
func Normalize(field Field, value string) (string, error) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return "", nil
	}

	list, ok := options[field]
	if !ok {
		return "", fmt.Errorf("unknown field %q", field)
	}

	// casers carry state and are built per call
	fold := cases.Fold()
	folded := fold.String(value)
	for _, opt := range list {
		if fold.String(opt) == folded {
			return opt, nil
		}
	}
	return "", fmt.Errorf("%s %q is not one of: %s", field, cases.Title(language.English).String(value), strings.Join(list, ", "))
}
