package contact

import (
	"regexp"
	"strings"
)

// frontmatterRe matches a frontmatter block at the very start of a document:
// a `---` line, arbitrary lines, a closing `---` line. Single-shot match, not
// anchored per line.
var frontmatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---`)

// Decode converts raw document bytes into a Contact. The second return value
// is false when the document is not a contact (no frontmatter block, or no
// name key) — a normal skip condition, not an error.
//
// Each frontmatter line is split on ':': the first segment (trimmed) is the
// key, the remaining segments rejoined with ':' (trimmed) are the value.
// Lines without a colon and lines with an empty key are dropped. No quoting,
// escaping, or nesting is supported.
func Decode(data []byte) (*Contact, bool) {
	text := string(data)
	m := frontmatterRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(m[1], "\n") {
		parts := strings.Split(line, ":")
		if len(parts) < 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		fields[key] = strings.TrimSpace(strings.Join(parts[1:], ":"))
	}

	name, ok := fields["name"]
	if !ok || name == "" {
		return nil, false
	}

	c := &Contact{
		Name:          name,
		Email:         fields["email"],
		Phone:         fields["phone"],
		Company:       fields["company"],
		Title:         fields["title"],
		Created:       fields["created"],
		Modified:      fields["modified"],
		LastContacted: fields["last_contacted"],
		NextContact:   fields["next_contact"],
		Frequency:     fields["contact_frequency"],
	}
	if raw := fields["tags"]; raw != "" {
		for _, t := range strings.Split(raw, ",") {
			c.Tags = append(c.Tags, strings.TrimSpace(t))
		}
	}
	c.Notes = decodeNotes(text[len(m[0]):])
	return c, true
}

// decodeNotes recovers the free-text notes from the document body: leading
// blank lines and the `# Name` heading emitted by Encode are stripped.
func decodeNotes(body string) string {
	body = strings.TrimLeft(body, "\r\n")
	if strings.HasPrefix(body, "# ") {
		if i := strings.IndexByte(body, '\n'); i >= 0 {
			body = body[i+1:]
		} else {
			body = ""
		}
	}
	return strings.TrimSpace(body)
}

// Encode serialises a Contact into document bytes. Field order is fixed:
// name, email, phone always (even when empty); company, title, tags,
// last_contacted, next_contact, contact_frequency only when non-empty;
// created, modified always. The body is a level-1 heading with the name
// followed by the notes text.
//
// Encode and Decode are inverses only modulo empty-vs-absent: optional
// fields omitted here decode as absent, not as empty strings.
func Encode(c *Contact) []byte {
	var b strings.Builder
	b.WriteString("---\n")
	writeField(&b, "name", c.Name)
	writeField(&b, "email", c.Email)
	writeField(&b, "phone", c.Phone)
	if c.Company != "" {
		writeField(&b, "company", c.Company)
	}
	if c.Title != "" {
		writeField(&b, "title", c.Title)
	}
	if len(c.Tags) > 0 {
		writeField(&b, "tags", strings.Join(c.Tags, ", "))
	}
	if c.LastContacted != "" {
		writeField(&b, "last_contacted", c.LastContacted)
	}
	if c.NextContact != "" {
		writeField(&b, "next_contact", c.NextContact)
	}
	if c.Frequency != "" {
		writeField(&b, "contact_frequency", c.Frequency)
	}
	writeField(&b, "created", c.Created)
	writeField(&b, "modified", c.Modified)
	b.WriteString("---\n\n# ")
	b.WriteString(c.Name)
	b.WriteString("\n\n")
	b.WriteString(c.Notes)
	b.WriteString("\n")
	return []byte(b.String())
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
