package preferences

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/pratik-mahalle/wardroberec/internal/session"
)

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "only separators", input: " , ,, ", want: nil},
		{name: "single", input: "boho", want: []string{"boho"}},
		{name: "trims", input: "  boho ,  chic ", want: []string{"boho", "chic"}},
		{name: "drops empty segments", input: "boho,,chic,", want: []string{"boho", "chic"}},
		{name: "keeps duplicates", input: "boho, boho, chic", want: []string{"boho", "boho", "chic"}},
		{name: "truncates to three", input: "boho, boho, chic, extra", want: []string{"boho", "boho", "chic"}},
		{name: "truncates after empties", input: ",a,,b,c,d,e", want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseKeywords(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKeywords(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseKeywordsProperties(t *testing.T) {
	inputs := []string{
		"a,b,c,d,e,f",
		" , x ,, y ",
		"one",
		",,,,",
		"z, y, x, w",
		"  spaced   words , more  ",
	}

	for _, input := range inputs {
		got := ParseKeywords(input)
		if len(got) > MaxKeywords {
			t.Errorf("ParseKeywords(%q) returned %d keywords", input, len(got))
		}

		// order of first occurrence is preserved
		var all []string
		for _, part := range strings.Split(input, ",") {
			if p := strings.TrimSpace(part); p != "" {
				all = append(all, p)
			}
		}
		for i, kw := range got {
			if kw == "" {
				t.Errorf("ParseKeywords(%q) returned an empty keyword", input)
			}
			if all[i] != kw {
				t.Errorf("ParseKeywords(%q)[%d] = %q, want %q", input, i, kw, all[i])
			}
		}
	}
}

func TestAcceptKeywordEdit(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		want    string
	}{
		{name: "accepts growth to three", current: "a, b", next: "a, b, c", want: "a, b, c"},
		{name: "accepts trailing comma", current: "a, b, c", next: "a, b, c,", want: "a, b, c,"},
		{name: "rejects fourth keyword", current: "a, b, c,", next: "a, b, c, d", want: "a, b, c,"},
		{name: "accepts deletion", current: "a, b, c", next: "a, b", want: "a, b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AcceptKeywordEdit(tt.current, tt.next); got != tt.want {
				t.Errorf("AcceptKeywordEdit() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormSetKeywords(t *testing.T) {
	f := &Form{}
	if !f.SetKeywords("boho, chic") {
		t.Fatal("expected edit to be accepted")
	}
	if !f.SetKeywords("boho, chic, retro") {
		t.Fatal("expected third keyword to be accepted")
	}
	if f.SetKeywords("boho, chic, retro, punk") {
		t.Fatal("expected fourth keyword to be rejected")
	}
	if f.KeywordsInput != "boho, chic, retro" {
		t.Errorf("KeywordsInput = %q", f.KeywordsInput)
	}
}

func TestFormPreferences(t *testing.T) {
	tests := []struct {
		name    string
		form    Form
		want    session.Preferences
		wantErr bool
	}{
		{
			name:    "occasion required",
			form:    Form{Color: "Blue"},
			wantErr: true,
		},
		{
			name:    "blank occasion rejected",
			form:    Form{Occasion: "   "},
			wantErr: true,
		},
		{
			name: "optional fields may be empty",
			form: Form{Occasion: "Casual"},
			want: session.Preferences{Occasion: "Casual"},
		},
		{
			name: "keywords parsed",
			form: Form{Occasion: "Casual", Color: "Blue", KeywordsInput: "boho, chic"},
			want: session.Preferences{Occasion: "Casual", Color: "Blue", Keywords: []string{"boho", "chic"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.Preferences()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Preferences() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Preferences() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFormNormalize(t *testing.T) {
	f := &Form{Occasion: "party wear", Color: "blue"}
	if err := f.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if f.Occasion != "Party Wear" || f.Color != "Blue" {
		t.Errorf("Normalize() = %+v", f)
	}

	bad := &Form{Occasion: "Gala"}
	if err := bad.Normalize(); err == nil {
		t.Error("expected unknown occasion to fail")
	}
}

func TestBuildRequestOmitsBlankFields(t *testing.T) {
	form := Form{
		Occasion:      "Casual",
		Category:      "",
		Color:         "Blue",
		KeywordsInput: "boho, boho, chic, extra",
	}
	prefs, err := form.Preferences()
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}

	req := BuildRequest(prefs)
	if req.Occasion != "Casual" || req.Color != "Blue" || req.Category != "" {
		t.Errorf("unexpected request: %+v", req)
	}
	if !reflect.DeepEqual(req.Keywords, []string{"boho", "boho", "chic"}) {
		t.Errorf("Keywords = %#v", req.Keywords)
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]interface{}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatal(err)
	}
	for _, absent := range []string{"category", "material"} {
		if _, ok := wire[absent]; ok {
			t.Errorf("%s should be omitted, got %s", absent, data)
		}
	}
	if wire["occasion"] != "Casual" || wire["color"] != "Blue" {
		t.Errorf("unexpected wire payload %s", data)
	}
}

func TestBuildRequestNoKeywords(t *testing.T) {
	req := BuildRequest(session.Preferences{Occasion: "Work", Keywords: []string{" ", ""}})
	if req.Keywords != nil {
		t.Errorf("Keywords = %#v, want nil", req.Keywords)
	}
	data, _ := json.Marshal(req)
	if strings.Contains(string(data), "keywords") {
		t.Errorf("keywords should be omitted, got %s", data)
	}
}
