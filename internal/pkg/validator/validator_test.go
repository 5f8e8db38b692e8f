package validator

import (
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	valid := []string{"2025-01", "2099-12"}
	invalid := []string{"2025-13", "2025-1", "2025-01-01", "01-2025", ""}
	for _, s := range valid {
		if _, ok := IsValidMonth(s); !ok {
			t.Errorf("IsValidMonth(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidMonth(s); ok {
			t.Errorf("IsValidMonth(%q) = true, want false", s)
		}
	}

	first, _ := IsValidMonth("2025-02")
	if !first.Equal(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("IsValidMonth(2025-02) = %v, want first day of month", first)
	}
}

func TestValidationErrors_AddAndErr(t *testing.T) {
	var errs ValidationErrors
	if err := errs.Err(); err != nil {
		t.Fatalf("empty ValidationErrors.Err() = %v, want nil", err)
	}

	errs.Add("month", "is required")
	err := errs.Err()
	if err == nil {
		t.Fatal("ValidationErrors.Err() = nil after Add")
	}
	if err.Error() != "month: is required" {
		t.Errorf("ValidationErrors.Err().Error() = %q", err.Error())
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "hours", Message: "must be greater than 0"},
		{Field: "date", Message: "is required"},
	}
	got := errs.Error()
	want := "hours: must be greater than 0; date: is required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "amount", Message: "must be greater than 0"},
		{Field: "employee_id", Message: "is required"},
	}
	got := errs.ToMap()
	want := map[string]string{"amount": "must be greater than 0", "employee_id": "is required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestValidationErrors_ToMapKeepsFirstMessage(t *testing.T) {
	var errs ValidationErrors
	errs.Add("hours", "must be greater than 0")
	errs.Add("hours", "must be at most 24")

	if got := errs.ToMap()["hours"]; got != "must be greater than 0" {
		t.Errorf("ToMap()[hours] = %q, want first message", got)
	}
}
