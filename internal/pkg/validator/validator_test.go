package validator

import (
	"strings"
	"testing"
)

type sample struct {
	Name     string   `json:"name" validate:"notblank"`
	Path     string   `json:"path" validate:"required"`
	Keywords []string `json:"keywords" validate:"max=2"`
	Code     string   `json:"code" validate:"len=2"`
}

func TestValidateMessages(t *testing.T) {
	v := New()
	errs := v.Validate(sample{Name: "  ", Keywords: []string{"a", "b", "c"}, Code: "xyz"})

	want := map[string]string{
		"name":     "name must not be blank",
		"path":     "path is required",
		"keywords": "keywords must have at most 2 entries",
		"code":     "code failed validation for tag: len",
	}
	if len(errs) != len(want) {
		t.Fatalf("Validate() returned %d errors, want %d: %+v", len(errs), len(want), errs)
	}
	for _, fe := range errs {
		if fe.Message != want[fe.Field] {
			t.Errorf("message for %s = %q, want %q", fe.Field, fe.Message, want[fe.Field])
		}
	}
}

func TestCheck(t *testing.T) {
	if err := Check(sample{Name: "shirt", Path: "/tmp/a.jpg", Code: "ab"}); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	err := Check(sample{Name: "shirt", Code: "ab"})
	if err == nil || !strings.Contains(err.Error(), "path is required") {
		t.Errorf("Check() error = %v, want path is required", err)
	}
}
