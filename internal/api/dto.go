package api

import (
	"github.com/starford/mannaz/internal/contact"
	"github.com/starford/mannaz/internal/form"
	"github.com/starford/mannaz/internal/schedule"
)

// ContactRequest is the request body for creating or updating a contact
// (the wire form of a form submission).
type ContactRequest = form.Submission

// ContactResponse wraps a persisted contact together with any non-blocking
// validation advisories collected from the submission.
type ContactResponse struct {
	Contact  contact.Contact `json:"contact"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ContactListItem is one row of the list view, with dates pre-formatted for
// display the way the table renders them.
type ContactListItem struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LastContacted string `json:"last_contacted"`
	NextContact   string `json:"next_contact"`
	Frequency     string `json:"contact_frequency"`
}

// ContactListResponse wraps the list view payload. Reconciled counts how
// many contacts had a stale next_contact rewritten during this request.
type ContactListResponse struct {
	Contacts   []ContactListItem `json:"contacts"`
	Total      int               `json:"total"`
	Reconciled int               `json:"reconciled"`
}

// Settings is the plugin-style settings blob exposed to clients.
type Settings struct {
	ContactsFolder string `json:"contacts_folder"`
	DefaultView    string `json:"default_view"`
	ShowInRibbon   bool   `json:"show_in_ribbon"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

// DueItem is one entry in the due-contacts response.
type DueItem struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	NextContact string `json:"next_contact"`
	Frequency   string `json:"contact_frequency"`
}

// listItem renders a contact as the list view displays it: dates formatted,
// absent values replaced with the table's placeholder strings.
func listItem(c contact.Contact) ContactListItem {
	item := ContactListItem{
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		LastContacted: "Never",
		NextContact:   "Not scheduled",
		Frequency:     "Not set",
	}
	if c.LastContacted != "" {
		item.LastContacted = schedule.FormatDisplay(c.LastContacted)
	}
	if c.NextContact != "" {
		item.NextContact = schedule.FormatDisplay(c.NextContact)
	}
	if c.Frequency != "" {
		item.Frequency = c.Frequency
	}
	return item
}
