package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bizdash/internal/core"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, "application/json", `{"title":" Haircut ","price":150,"available":true}`)

	if !p.IsJSON() {
		t.Fatal("IsJSON() = false, want true")
	}
	if got := p.Get("title"); got != "Haircut" {
		t.Errorf("Get(title) = %q, want %q", got, "Haircut")
	}
	if got := p.Get("price"); got != "150" {
		t.Errorf("Get(price) = %q, want %q", got, "150")
	}
	if !p.Bool("available") {
		t.Error("Bool(available) = false, want true")
	}
	if p.Has("details") {
		t.Error("Has(details) = true, want false")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "title=Massage&details=60+min%01&available=on")

	if p.IsJSON() {
		t.Fatal("IsJSON() = true, want false")
	}
	if got := p.Get("details"); got != "60 min" {
		t.Errorf("Get(details) = %q, want control characters stripped", got)
	}
	if !p.Bool("available") {
		t.Error("Bool(available) = false, want true")
	}
	if p.Bool("missing") {
		t.Error("Bool(missing) = true, want false")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	p := newParser(t, "", "")
	if got := p.Get("title"); got != "" {
		t.Errorf("Get(title) = %q, want empty", got)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`{"title":`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Fatal("Parse() error = nil, want error")
	}
}

func TestParseServiceForm(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: "title=A&details=B&price=12.50&available=on"},
		{name: "comma decimal", body: "title=A&details=B&price=12,5"},
		{name: "missing title", body: "details=B&price=1", wantErr: errMissingFields},
		{name: "blank details", body: "title=A&details=+++&price=1", wantErr: errMissingFields},
		{name: "missing price", body: "title=A&details=B", wantErr: errMissingFields},
		{name: "bad price", body: "title=A&details=B&price=abc", wantErr: core.ErrInvalidPrice},
		{name: "negative price", body: "title=A&details=B&price=-1", wantErr: core.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := ParseServiceForm(newParser(t, "application/x-www-form-urlencoded", tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc.Title != "A" || svc.Details != "B" || svc.Price.IsZero() {
				t.Errorf("unexpected service %+v", svc)
			}
		})
	}
}

func TestParseGranularityParam(t *testing.T) {
	tests := map[string]core.Granularity{
		"":        core.Daily,
		"daily":   core.Daily,
		"Weekly":  core.Weekly,
		"monthly": core.Monthly,
		"yearly":  core.Daily,
	}
	for in, want := range tests {
		if got := ParseGranularityParam(url.Values{"range": {in}}); got != want {
			t.Errorf("ParseGranularityParam(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/services", nil)
	if resp := RequireMethod(req, http.MethodGet, http.MethodPost); resp != nil {
		t.Error("RequireMethod() rejected an allowed method")
	}

	resp := RequireMethod(req, http.MethodDelete, http.MethodPost)
	if resp == nil {
		t.Fatal("RequireMethod() = nil, want 405 response")
	}
	w := httptest.NewRecorder()
	resp.Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "DELETE, POST" {
		t.Errorf("got status %d allow %q", w.Code, w.Header().Get("Allow"))
	}
}

func TestFormatPeso(t *testing.T) {
	tests := map[string]string{
		"0":         "₱0",
		"180":       "₱180",
		"1000":      "₱1,000",
		"1234567.5": "₱1,234,567.5",
		"99.999":    "₱100",
		"-820":      "-₱820",
		"12.30":     "₱12.3",
	}
	for in, want := range tests {
		if got := formatPeso(decimalFrom(t, in)); got != want {
			t.Errorf("formatPeso(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestRoleFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if canDelete(req) {
		t.Error("canDelete without cookie = true")
	}
	req.AddCookie(&http.Cookie{Name: RoleCookie, Value: "Admin"})
	if canDelete(req) {
		t.Error("role match must be exact")
	}

	for _, header := range []string{`userRole=" admin "`, `userRole="admin "`, "userRole=ADMIN"} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Cookie", header)
		if canDelete(req) {
			t.Errorf("canDelete(%s) = true, want false", header)
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: RoleCookie, Value: "admin"})
	if !canDelete(req) {
		t.Error("canDelete(admin) = false")
	}
}
