// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bizdash/internal/core"
)

// MsgFillAllFields is shown when the service form misses a required field.
const MsgFillAllFields = "Please fill all fields"

// maxBodyBytes caps request bodies read by RequestBodyParser.
const maxBodyBytes = 1 << 20

var errMissingFields = errors.New("missing required fields")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and keeps it for later parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was sent at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Bool interprets checkbox and JSON booleans. An unchecked checkbox is
// simply absent from a form body.
func (p *RequestBodyParser) Bool(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseServiceForm reads title, details, price and available. Missing
// fields yield errMissingFields; a present but unusable price yields
// core.ErrInvalidPrice.
func ParseServiceForm(p *RequestBodyParser) (core.Service, error) {
	svc := core.Service{
		Title:     p.Get("title"),
		Details:   p.Get("details"),
		Available: p.Bool("available"),
	}
	price := p.Get("price")
	if svc.Title == "" || svc.Details == "" || price == "" {
		return svc, errMissingFields
	}
	d, err := core.ParsePrice(price)
	if err != nil {
		return svc, err
	}
	svc.Price = d
	return svc, svc.Validate()
}

// ParseGranularityParam reads ?range=, falling back to daily.
func ParseGranularityParam(query url.Values) core.Granularity {
	g, err := core.ParseGranularity(query.Get("range"))
	if err != nil {
		return core.Daily
	}
	return g
}

// RequireMethod returns a 405 response when r.Method is not allowed.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// formPrice renders a price for an edit form input.
func formPrice(d decimal.Decimal) string {
	return d.String()
}
