// Package form implements the contact edit form as a plain data-collection
// object: blocking submission validation plus advisory field checks,
// decoupled from any rendering surface.
package form

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mannaz/internal/contact"
)

var (
	// emailRe accepts the usual local@domain.tld shape.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// phoneRe accepts common phone formats: bare 10 digits, hyphenated,
	// parenthesised area code, space-separated, optional country code.
	phoneRe = regexp.MustCompile(`^(\+?\d{1,3}[-. ]?)?(\(\d{3}\)|\d{3})[-. ]?\d{3}[-. ]?\d{4}$`)
)

// Submission carries the fields collected from a contact form.
type Submission struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Company   string   `json:"company"`
	Title     string   `json:"title"`
	Notes     string   `json:"notes"`
	Tags      []string `json:"tags"`
	Frequency string   `json:"contact_frequency"`
}

// Validate enforces the blocking submission rules: name and phone are
// required, and contact_frequency must be a recognised value when set.
// A failure aborts the save; nothing is persisted.
func (s Submission) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Phone, validation.Required),
		validation.Field(&s.Frequency, validation.In(
			contact.FreqWeekly, contact.FreqMonthly, contact.FreqQuarterly, contact.FreqYearly)),
	)
}

// Advisories returns the non-blocking validation messages for the
// submission. These mirror the live field hints of an interactive form:
// an odd-looking email or phone number is flagged but never rejected.
func (s Submission) Advisories() []string {
	var out []string
	if msg := EmailAdvisory(s.Email); msg != "" {
		out = append(out, msg)
	}
	if msg := PhoneAdvisory(s.Phone); msg != "" {
		out = append(out, msg)
	}
	return out
}

// EmailAdvisory returns a hint when email is non-empty and does not look
// like local@domain.tld, or "" when the field passes.
func EmailAdvisory(email string) string {
	if email == "" || emailRe.MatchString(email) {
		return ""
	}
	return fmt.Sprintf("email %q does not look like a valid address", email)
}

// PhoneAdvisory returns a hint when phone is non-empty and does not match
// any accepted format, or "" when the field passes.
func PhoneAdvisory(phone string) string {
	if phone == "" || phoneRe.MatchString(strings.TrimSpace(phone)) {
		return ""
	}
	return fmt.Sprintf("phone %q does not match an expected format", phone)
}

// Contact converts the submission into a contact record. Timestamps and the
// derived next contact date are stamped by the service layer.
func (s Submission) Contact() contact.Contact {
	return contact.Contact{
		Name:      strings.TrimSpace(s.Name),
		Email:     strings.TrimSpace(s.Email),
		Phone:     strings.TrimSpace(s.Phone),
		Company:   strings.TrimSpace(s.Company),
		Title:     strings.TrimSpace(s.Title),
		Notes:     s.Notes,
		Tags:      s.Tags,
		Frequency: s.Frequency,
	}
}
