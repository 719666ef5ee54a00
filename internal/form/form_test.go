package form

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := Submission{Name: "Ann Lee", Phone: "555-123-4567", Frequency: "monthly"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid submission rejected: %v", err)
	}

	cases := []struct {
		name string
		sub  Submission
		want string
	}{
		{"missing name", Submission{Phone: "555-123-4567"}, "name"},
		{"missing phone", Submission{Name: "Ann"}, "phone"},
		{"bad frequency", Submission{Name: "Ann", Phone: "555-123-4567", Frequency: "daily"}, "contact_frequency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sub.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidate_EmptyFrequencyAllowed(t *testing.T) {
	s := Submission{Name: "Ann", Phone: "555-123-4567"}
	if err := s.Validate(); err != nil {
		t.Errorf("empty frequency should pass: %v", err)
	}
}

func TestEmailAdvisory(t *testing.T) {
	if msg := EmailAdvisory(""); msg != "" {
		t.Errorf("empty email flagged: %q", msg)
	}
	if msg := EmailAdvisory("ann@example.com"); msg != "" {
		t.Errorf("valid email flagged: %q", msg)
	}
	if msg := EmailAdvisory("not-an-email"); msg == "" {
		t.Error("malformed email not flagged")
	}
	if msg := EmailAdvisory("a b@example.com"); msg == "" {
		t.Error("email with whitespace not flagged")
	}
}

func TestPhoneAdvisory(t *testing.T) {
	for _, ok := range []string{
		"5551234567",
		"555-123-4567",
		"(555) 123-4567",
		"+1 555 123 4567",
		"555.123.4567",
		"",
	} {
		if msg := PhoneAdvisory(ok); msg != "" {
			t.Errorf("PhoneAdvisory(%q) = %q, want no advisory", ok, msg)
		}
	}
	for _, bad := range []string{"123", "call me", "555-12-34"} {
		if msg := PhoneAdvisory(bad); msg == "" {
			t.Errorf("PhoneAdvisory(%q) should flag", bad)
		}
	}
}

// An advisory never blocks the save: a submission with odd-looking fields
// still validates.
func TestAdvisoriesNonBlocking(t *testing.T) {
	s := Submission{Name: "Ann", Phone: "555-123-4567", Email: "nonsense"}
	if err := s.Validate(); err != nil {
		t.Fatalf("advisory-only issue blocked validation: %v", err)
	}
	if got := s.Advisories(); len(got) != 1 {
		t.Errorf("advisories = %v, want one email hint", got)
	}
}

func TestContactTrims(t *testing.T) {
	s := Submission{
		Name:  "  Ann Lee ",
		Email: " ann@example.com ",
		Phone: " 555-123-4567 ",
		Notes: "  keep my spacing  ",
	}
	c := s.Contact()
	if c.Name != "Ann Lee" || c.Email != "ann@example.com" || c.Phone != "555-123-4567" {
		t.Errorf("fields not trimmed: %+v", c)
	}
	if c.Notes != "  keep my spacing  " {
		t.Errorf("notes should pass through untrimmed: %q", c.Notes)
	}
}
