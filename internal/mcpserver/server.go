// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the contact book to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mannaz/internal/contact"
	"github.com/starford/mannaz/internal/contactbook"
	"github.com/starford/mannaz/internal/form"
	"github.com/starford/mannaz/internal/index"
	"github.com/starford/mannaz/internal/storage"
)

// Server wraps the MCP server with contact tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *contactbook.Service
	store storage.Provider
	db    *index.DB
}

// New creates a new MCP server with all contact tools registered.
func New(svc *contactbook.Service, store storage.Provider, db *index.DB) *Server {
	s := &Server{svc: svc, store: store, db: db}

	s.mcp = server.NewMCPServer(
		"Mannaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List every contact with last/next contact dates."),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("read_contact",
		mcp.WithDescription("Read the raw Markdown document of a contact."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Contact name, e.g. Ann Lee")),
	), s.readContact)

	s.mcp.AddTool(mcp.NewTool("create_contact",
		mcp.WithDescription("Create a new contact. Name and phone are required. "+
			"Documents follow the canonical contact format; read it via the "+
			"get_contact_contract tool or the mannaz://contact-format resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name")),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number")),
		mcp.WithString("email", mcp.Description("Email address")),
		mcp.WithString("company", mcp.Description("Company")),
		mcp.WithString("title", mcp.Description("Job title")),
		mcp.WithString("notes", mcp.Description("Free-text notes")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("contact_frequency", mcp.Description("weekly, monthly, quarterly, or yearly")),
	), s.createContact)

	s.mcp.AddTool(mcp.NewTool("update_contact",
		mcp.WithDescription("Update an existing contact. Pass the current name as "+
			"'original_name'; a different 'name' renames the backing document."),
		mcp.WithString("original_name", mcp.Required(), mcp.Description("Name of the contact to update")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New (or unchanged) full name")),
		mcp.WithString("phone", mcp.Required(), mcp.Description("Phone number")),
		mcp.WithString("email", mcp.Description("Email address")),
		mcp.WithString("company", mcp.Description("Company")),
		mcp.WithString("title", mcp.Description("Job title")),
		mcp.WithString("notes", mcp.Description("Free-text notes")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("contact_frequency", mcp.Description("weekly, monthly, quarterly, or yearly")),
	), s.updateContact)

	s.mcp.AddTool(mcp.NewTool("mark_contacted",
		mcp.WithDescription("Mark a contact as contacted now; reschedules the next contact date."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Contact name")),
	), s.markContacted)

	s.mcp.AddTool(mcp.NewTool("search_contacts",
		mcp.WithDescription("Full-text search across contact names, companies, tags, and notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchContacts)

	s.mcp.AddTool(mcp.NewTool("due_contacts",
		mcp.WithDescription("List contacts whose next contact date has passed, soonest first."),
	), s.dueContacts)

	s.mcp.AddTool(mcp.NewTool("get_contact_contract",
		mcp.WithDescription("Returns the canonical contact document format contract."),
	), s.getContactContract)

	s.mcp.AddTool(mcp.NewTool("upload_attachment",
		mcp.WithDescription("Save a file (business card scan, photo) into the vault's "+
			"attachments directory from an http(s) URL or base64 data URI."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data URI of the file")),
		mcp.WithString("filename", mcp.Description("Optional target filename")),
	), s.uploadAttachment)

	// Resource: contact format contract.
	s.mcp.AddResource(
		mcp.NewResource("mannaz://contact-format", "Contact Format Contract",
			mcp.WithResourceDescription("Canonical Markdown contact document format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContactFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contacts, err := s.svc.ListAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(contacts, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readContact(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(contact.DocumentPath(s.svc.Folder(), name))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// submissionFromRequest collects contact fields shared by the create and
// update tools.
func submissionFromRequest(req mcp.CallToolRequest) form.Submission {
	str := func(key string) string {
		if v, err := req.RequireString(key); err == nil {
			return v
		}
		return ""
	}
	sub := form.Submission{
		Name:      str("name"),
		Phone:     str("phone"),
		Email:     str("email"),
		Company:   str("company"),
		Title:     str("title"),
		Notes:     str("notes"),
		Frequency: str("contact_frequency"),
	}
	if raw := str("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				sub.Tags = append(sub.Tags, t)
			}
		}
	}
	return sub
}

func (s *Server) createContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sub := submissionFromRequest(req)
	if err := sub.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	created, err := s.svc.Create(ctx, sub.Contact())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(created, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) updateContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	originalName, err := req.RequireString("original_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sub := submissionFromRequest(req)
	if err := sub.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	existing, err := s.svc.Get(ctx, originalName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", originalName)), nil
	}
	c := sub.Contact()
	c.Created = existing.Created
	c.LastContacted = existing.LastContacted
	c.NextContact = existing.NextContact
	updated, err := s.svc.Update(ctx, c, originalName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(updated, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) markContacted(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.Touch(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(c, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchContacts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) dueContacts(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := time.Now().Format(contact.StampLayout)
	rows, err := s.db.ListDue(now, 50)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no contacts due"), nil
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s\t%s\t(due %s)\n", r.Name, r.Phone, r.NextContact)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getContactContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContactFormatContract), nil
}

func (s *Server) readContactFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "mannaz://contact-format",
			MIMEType: "text/markdown",
			Text:     ContactFormatContract,
		},
	}, nil
}
