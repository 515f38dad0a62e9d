package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func bufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Output: buf})
}

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)
	l.Info("hello")

	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("expected component attr, got %q", buf.String())
	}
}

func TestWithComponentReplaces(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf).WithComponent(ComponentCatalog)
	l.Info("x")

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=catalog") {
		t.Fatalf("unexpected output %q", out)
	}
	if l.Component() != ComponentCatalog {
		t.Fatalf("Component() = %q", l.Component())
	}
}

func TestMiddlewareAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger(&buf)

	var got *Logger
	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.InfoContext(r.Context(), "inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request id not propagated: %q", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected fallback logger")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext(context.Background(), bufferLogger(&buf))
	r := httptest.NewRequest(http.MethodPost, "/services?x=1", nil)

	LogHTTPEnd(ctx, r, 200, 3, "1.2.3.4")
	LogHTTPEnd(ctx, r, 422, 3, "1.2.3.4")
	LogHTTPEnd(ctx, r, 500, 3, "1.2.3.4")

	out := buf.String()
	for _, want := range []string{"level=INFO", "level=WARN", "level=ERROR", "status_code=422", `query="x=1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext(context.Background(), bufferLogger(&buf))

	LogError(ctx, "boom", errors.New("bad thing"), ComponentDashboard, OpFetch)

	out := buf.String()
	if !strings.Contains(out, `error="bad thing"`) || !strings.Contains(out, "operation=fetch") {
		t.Fatalf("unexpected output %q", out)
	}
}
