package validator

import "testing"

func TestIsISODate(t *testing.T) {
	valid := []string{"2024-05-01", "2024-02-29", "1999-12-31"}
	for _, value := range valid {
		if !IsISODate(value) {
			t.Errorf("expected %q to be a valid date", value)
		}
	}

	invalid := []string{"", "2024-5-1", "2023-02-29", "2024-13-01", "01-05-2024", "2024-05-01T00:00:00Z"}
	for _, value := range invalid {
		if IsISODate(value) {
			t.Errorf("expected %q to be rejected", value)
		}
	}
}

func TestStructUsesISODateTag(t *testing.T) {
	type query struct {
		Date string `validate:"required,isodate"`
	}

	v := New()
	if err := v.Struct(query{Date: "2024-05-01"}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
	if err := v.Struct(query{Date: "tomorrow"}); err == nil {
		t.Fatal("expected isodate violation")
	}
}
