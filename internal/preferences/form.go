package preferences

import (
	"strings"

	"github.com/pratik-mahalle/wardroberec/internal/catalog"
	"github.com/pratik-mahalle/wardroberec/internal/pkg/validator"
	"github.com/pratik-mahalle/wardroberec/internal/session"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// MaxKeywords is the number of style keywords a request may carry
const MaxKeywords = 3

// ParseKeywords splits comma separated input, trims each term, drops empty
// terms and keeps the first MaxKeywords in their original order. Duplicates
// are kept.
func ParseKeywords(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		kw := strings.TrimSpace(part)
		if kw == "" {
			continue
		}
		out = append(out, kw)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// countKeywords counts non-empty terms without truncating
func countKeywords(input string) int {
	n := 0
	for _, part := range strings.Split(input, ",") {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

// AcceptKeywordEdit applies an edit to the keyword field. Edits that would
// leave more than MaxKeywords terms are rejected and current is kept.
func AcceptKeywordEdit(current, next string) string {
	if countKeywords(next) > MaxKeywords {
		return current
	}
	return next
}

// Form is the preferences screen input
type Form struct {
	Category      string `json:"category"`
	Color         string `json:"color"`
	Material      string `json:"material"`
	Occasion      string `json:"occasion" validate:"notblank"`
	KeywordsInput string `json:"keywords"`
}

// SetKeywords routes an edit through AcceptKeywordEdit and reports whether
// it was accepted
func (f *Form) SetKeywords(next string) bool {
	f.KeywordsInput = AcceptKeywordEdit(f.KeywordsInput, next)
	return f.KeywordsInput == next
}

// Validate checks the form. Occasion is the only mandatory field.
func (f *Form) Validate() error {
	return validator.Check(f)
}

// Normalize maps every dropdown value onto its catalog label
func (f *Form) Normalize() error {
	fields := []struct {
		field catalog.Field
		value *string
	}{
		{catalog.FieldCategory, &f.Category},
		{catalog.FieldColor, &f.Color},
		{catalog.FieldMaterial, &f.Material},
		{catalog.FieldOccasion, &f.Occasion},
	}
	for _, fv := range fields {
		canonical, err := catalog.Normalize(fv.field, *fv.value)
		if err != nil {
			return err
		}
		*fv.value = canonical
	}
	return nil
}

// Preferences validates the form and returns the selections it describes
func (f *Form) Preferences() (session.Preferences, error) {
	if err := f.Validate(); err != nil {
		return session.Preferences{}, err
	}
	return session.Preferences{
		Category: strings.TrimSpace(f.Category),
		Color:    strings.TrimSpace(f.Color),
		Material: strings.TrimSpace(f.Material),
		Occasion: strings.TrimSpace(f.Occasion),
		Keywords: ParseKeywords(f.KeywordsInput),
	}, nil
}

// BuildRequest turns preferences into a recommendation request. Blank
// optional values are left empty so they are not sent.
func BuildRequest(p session.Preferences) client.RecommendationRequest {
	var keywords []string
	for _, kw := range p.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return client.RecommendationRequest{
		Occasion: strings.TrimSpace(p.Occasion),
		Category: strings.TrimSpace(p.Category),
		Color:    strings.TrimSpace(p.Color),
		Material: strings.TrimSpace(p.Material),
		Keywords: keywords,
	}
}
