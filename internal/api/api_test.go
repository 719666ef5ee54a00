package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/starford/mannaz/internal/api"
	"github.com/starford/mannaz/internal/contactbook"
	"github.com/starford/mannaz/internal/index"
	"github.com/starford/mannaz/internal/testutil"
)

type testEnv struct {
	server *httptest.Server
	db     *index.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvAuth(t, false, "")
}

func newTestEnvAuth(t *testing.T, authEnabled bool, token string) *testEnv {
	t.Helper()
	vaultDir, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := contactbook.NewService(store, db, "Contacts", logger)
	svc.EnsureStorageReady()

	settings := api.Settings{ContactsFolder: "Contacts", DefaultView: "table", ShowInRibbon: true}
	router := api.NewRouter(svc, db, settings, authEnabled, token, nil, vaultDir)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createContact(t *testing.T, e *testEnv, name string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/contacts", map[string]any{
		"name":  name,
		"phone": "555-123-4567",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create %q: status %d", name, resp.StatusCode)
	}
}

func TestCreateContact(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodPost, "/contacts", map[string]any{
		"name":              "Ann Lee",
		"email":             "ann@example.com",
		"phone":             "555-123-4567",
		"contact_frequency": "monthly",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body api.ContactResponse
	decode(t, resp, &body)
	if body.Contact.Name != "Ann Lee" {
		t.Errorf("name = %q", body.Contact.Name)
	}
	if body.Contact.Created == "" || body.Contact.LastContacted == "" {
		t.Errorf("create stamps missing: %+v", body.Contact)
	}
	if body.Contact.NextContact == "" {
		t.Error("next_contact not derived despite frequency")
	}
	if len(body.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", body.Warnings)
	}
}

func TestCreateContact_Advisories(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodPost, "/contacts", map[string]any{
		"name":  "Ann",
		"phone": "555-123-4567",
		"email": "not-an-email",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, advisory must not block the save", resp.StatusCode)
	}
	var body api.ContactResponse
	decode(t, resp, &body)
	if len(body.Warnings) != 1 || !strings.Contains(body.Warnings[0], "email") {
		t.Errorf("warnings = %v", body.Warnings)
	}
}

func TestCreateContact_ValidationFailure(t *testing.T) {
	e := newTestEnv(t)
	for _, body := range []map[string]any{
		{"phone": "555-123-4567"},                          // no name
		{"name": "Ann"},                                    // no phone
		{"name": "Ann", "phone": "5", "contact_frequency": "daily"}, // bad frequency
	} {
		resp := e.do(t, http.MethodPost, "/contacts", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, resp.StatusCode)
		}
	}

	// Nothing was persisted.
	resp := e.do(t, http.MethodGet, "/contacts/Ann", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("rejected submission was persisted: status %d", resp.StatusCode)
	}
}

func TestCreateContact_Conflict(t *testing.T) {
	e := newTestEnv(t)
	createContact(t, e, "Ann Lee")
	resp := e.do(t, http.MethodPost, "/contacts", map[string]any{"name": "Ann Lee", "phone": "555-123-4567"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestGetContact(t *testing.T) {
	e := newTestEnv(t)
	createContact(t, e, "Ann Lee")

	resp := e.do(t, http.MethodGet, "/contacts/"+url.PathEscape("Ann Lee"), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var c struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	decode(t, resp, &c)
	if c.Name != "Ann Lee" || c.Phone != "555-123-4567" {
		t.Errorf("got %+v", c)
	}

	resp = e.do(t, http.MethodGet, "/contacts/Ghost", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing contact: status = %d", resp.StatusCode)
	}
}

func TestListContacts(t *testing.T) {
	e := newTestEnv(t)
	createContact(t, e, "Ann Lee")
	createContact(t, e, "Bob")

	resp := e.do(t, http.MethodGet, "/contacts", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body api.ContactListResponse
	decode(t, resp, &body)
	if body.Total != 2 || len(body.Contacts) != 2 {
		t.Fatalf("total = %d, contacts = %+v", body.Total, body.Contacts)
	}
	for _, item := range body.Contacts {
		// Created via the API without a frequency: last_contacted is
		// stamped, the schedule columns show placeholders.
		if item.LastContacted == "" || item.LastContacted == "Never" {
			t.Errorf("%s: last_contacted = %q", item.Name, item.LastContacted)
		}
		if item.NextContact != "Not scheduled" {
			t.Errorf("%s: next_contact = %q", item.Name, item.NextContact)
		}
		if item.Frequency != "Not set" {
			t.Errorf("%s: frequency = %q", item.Name, item.Frequency)
		}
	}
}

func TestUpdateContact_Rename(t *testing.T) {
	e := newTestEnv(t)
	createContact(t, e, "Bob Old")

	resp := e.do(t, http.MethodPut, "/contacts/"+url.PathEscape("Bob Old"), map[string]any{
		"name":  "Bob New",
		"phone": "555-123-4567",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body api.ContactResponse
	decode(t, resp, &body)
	if body.Contact.Name != "Bob New" {
		t.Errorf("name = %q", body.Contact.Name)
	}
	if body.Contact.Created == "" {
		t.Error("created stamp not carried over on update")
	}

	resp = e.do(t, http.MethodGet, "/contacts/"+url.PathEscape("Bob Old"), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("old name still resolves: %d", resp.StatusCode)
	}
	resp = e.do(t, http.MethodGet, "/contacts/"+url.PathEscape("Bob New"), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("new name does not resolve: %d", resp.StatusCode)
	}
}

func TestUpdateContact_Missing(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodPut, "/contacts/Ghost", map[string]any{
		"name":  "Ghost",
		"phone": "555-123-4567",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	// The failed update must not have created the document.
	resp = e.do(t, http.MethodGet, "/contacts/Ghost", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Error("update of a missing contact created it")
	}
}

func TestTouchContact(t *testing.T) {
	e := newTestEnv(t)
	createContact(t, e, "Ann")

	resp := e.do(t, http.MethodPost, "/contacts/Ann/touch", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body api.ContactResponse
	decode(t, resp, &body)
	if body.Contact.LastContacted == "" {
		t.Error("touch did not stamp last_contacted")
	}

	resp = e.do(t, http.MethodPost, "/contacts/Ghost/touch", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("touch missing: status = %d", resp.StatusCode)
	}
}

func TestDeleteContact(t *testing.T) {
	e := newTestEnv(t)
	createContact(t, e, "Ann")

	resp := e.do(t, http.MethodDelete, "/contacts/Ann", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp = e.do(t, http.MethodDelete, "/contacts/Ann", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete: status = %d", resp.StatusCode)
	}
}

func TestSearch(t *testing.T) {
	e := newTestEnv(t)
	createContact(t, e, "Ann Lee")

	resp := e.do(t, http.MethodGet, "/search", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", resp.StatusCode)
	}

	resp = e.do(t, http.MethodGet, "/search?q=Ann", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Results []api.SearchResult `json:"results"`
	}
	decode(t, resp, &body)
	if len(body.Results) != 1 || body.Results[0].Name != "Ann Lee" {
		t.Errorf("results = %+v", body.Results)
	}
}

func TestDue(t *testing.T) {
	e := newTestEnv(t)
	// Seed the index directly with one overdue and one far-future row.
	seed := func(name, next string) {
		t.Helper()
		err := e.db.UpsertContact(index.ContactRow{
			Path:        "Contacts/" + name + ".md",
			Name:        name,
			Phone:       "555",
			NextContact: next,
			Checksum:    name,
		}, "")
		if err != nil {
			t.Fatal(err)
		}
	}
	seed("Overdue", "2020-01-01T09:00")
	seed("Future", "2999-01-01T09:00")

	resp := e.do(t, http.MethodGet, "/due", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Due []api.DueItem `json:"due"`
	}
	decode(t, resp, &body)
	if len(body.Due) != 1 || body.Due[0].Name != "Overdue" {
		t.Errorf("due = %+v", body.Due)
	}
}

func TestGetSettings(t *testing.T) {
	e := newTestEnv(t)
	resp := e.do(t, http.MethodGet, "/settings", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var s api.Settings
	decode(t, resp, &s)
	if s.ContactsFolder != "Contacts" || s.DefaultView != "table" || !s.ShowInRibbon {
		t.Errorf("settings = %+v", s)
	}
}

func TestAuthMiddleware(t *testing.T) {
	e := newTestEnvAuth(t, true, "secret-token")

	resp := e.do(t, http.MethodGet, "/contacts", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, e.server.URL+"/contacts", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token: status = %d", resp.StatusCode)
	}
}
