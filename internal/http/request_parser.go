package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"financeiro/internal/core"
)

// maxBodyBytes bounds the size of a transaction submission.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
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

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
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

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
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

// ParseTransaction builds a candidate transaction from the submitted fields.
// A missing date defaults to today. Field problems are reported as
// *core.ValidationError so handlers can answer 422 uniformly.
func ParseTransaction(p *RequestBodyParser, now time.Time) (core.Transaction, error) {
	var t core.Transaction

	if raw := p.Get("date"); raw == "" {
		t.Date = core.NewDate(now.Year(), int(now.Month()), now.Day())
	} else {
		d, err := core.ParseDate(raw)
		if err != nil {
			return t, &core.ValidationError{Field: "date", Err: err}
		}
		t.Date = d
	}

	t.Description = p.Get("description")

	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		return t, &core.ValidationError{Field: "amount", Err: err}
	}
	t.Amount = core.Money{Cents: cents}

	if t.Category, err = core.ParseCategory(p.Get("category")); err != nil {
		return t, &core.ValidationError{Field: "category", Err: err}
	}
	if t.Kind, err = core.ParseKind(p.Get("kind")); err != nil {
		return t, &core.ValidationError{Field: "kind", Err: err}
	}
	return t, nil
}

// wantsJSON reports whether the client asked for a JSON answer.
func wantsJSON(r *http.Request, p *RequestBodyParser) bool {
	if p != nil && p.IsJSON() {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
