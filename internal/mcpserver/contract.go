package mcpserver

// ContactFormatContract describes the canonical contact document format
// that LLM consumers should follow when creating or updating contacts.
const ContactFormatContract = `# Mannaz Contact Format Contract

Every contact stored in Mannaz is one Markdown document with this structure.

## Structure

` + "```" + `markdown
---
name: Ann Lee                      # REQUIRED - also derives the file name
email: ann@example.com             # always present, may be empty
phone: 555-123-4567                # always present; required by the form
company: Acme                      # OPTIONAL - omitted when empty
title: CTO                         # OPTIONAL
tags: friend, work                 # OPTIONAL - comma-separated list
last_contacted: 2025-06-01T14:30   # OPTIONAL - local time, minutes precision
next_contact: 2025-07-01T14:30     # OPTIONAL - derived, do not invent
contact_frequency: monthly         # OPTIONAL - weekly|monthly|quarterly|yearly
created: 2025-01-15T09:00          # set on creation
modified: 2025-06-01T14:30         # set on every save
---

# Ann Lee

Free-text notes about the contact.
` + "```" + `

## Rules

1. **The frontmatter block is mandatory** and must start at the very first
   byte of the file: ` + "`---`" + `, plain ` + "`key: value`" + ` lines, ` + "`---`" + `.
2. **No YAML features.** Values are taken verbatim after the first colon:
   no quoting, no escaping, no multi-line values, no nesting. A value may
   itself contain colons.
3. **` + "`name`" + ` is required.** A document without it is not a contact and is
   ignored by listings.
4. **File names are derived**, never chosen: every character of the name
   outside A-Z, a-z, 0-9 becomes ` + "`-`" + `, plus the ` + "`.md`" + ` extension
   (` + "`Ann Lee`" + ` → ` + "`Ann-Lee.md`" + `). Renaming a contact moves its file.
5. **Timestamps** use ` + "`YYYY-MM-DDTHH:mm`" + ` in local time.
6. **` + "`next_contact`" + ` is derived** from last_contacted + contact_frequency.
   Use the mark_contacted tool rather than writing it by hand.
7. **Tags** are a single comma-separated line; whitespace around entries is
   ignored.
8. The body is a level-1 heading equal to the name, then the notes text.

## Attachments

- Upload business cards or photos via the ` + "`upload_attachment`" + ` tool.
- Files live in the vault's ` + "`attachments/`" + ` directory (flat).
- Reference them from notes as ` + "`![card](/attachments/filename.png)`" + `.
`
