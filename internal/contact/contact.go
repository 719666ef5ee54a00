// Package contact defines the contact record and its on-disk document format.
//
// Each contact is a single Markdown file: a restricted frontmatter block
// (plain `key: value` lines between `---` fences, no YAML quoting or nesting),
// a level-1 heading with the contact's name, and free-text notes as the body.
package contact

import (
	"path"
	"strings"
)

// StampLayout is the timestamp format used throughout contact documents.
const StampLayout = "2006-01-02T15:04"

// Contact frequencies accepted in the contact_frequency field.
const (
	FreqWeekly    = "weekly"
	FreqMonthly   = "monthly"
	FreqQuarterly = "quarterly"
	FreqYearly    = "yearly"
)

// Frequencies lists every recognised contact frequency.
var Frequencies = []string{FreqWeekly, FreqMonthly, FreqQuarterly, FreqYearly}

// Contact represents one address-book entry. Timestamps are kept as the
// document's literal strings; parsing happens only where display or date
// arithmetic needs it.
type Contact struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Company       string   `json:"company,omitempty"`
	Title         string   `json:"title,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Created       string   `json:"created"`
	Modified      string   `json:"modified"`
	LastContacted string   `json:"last_contacted,omitempty"`
	NextContact   string   `json:"next_contact,omitempty"`
	Frequency     string   `json:"contact_frequency,omitempty"`
}

// ValidFrequency reports whether freq is one of the recognised values.
func ValidFrequency(freq string) bool {
	for _, f := range Frequencies {
		if f == freq {
			return true
		}
	}
	return false
}

// FileName derives the document file name from a contact name: every rune
// outside [A-Za-z0-9] becomes '-'. "Ann Lee" → "Ann-Lee.md".
func FileName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, name)
	return sanitized + ".md"
}

// DocumentPath returns the vault-relative path of the contact named name
// inside the given storage folder.
func DocumentPath(folder, name string) string {
	return path.Join(folder, FileName(name))
}
