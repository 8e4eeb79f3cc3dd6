package emporia

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Problem is the error envelope returned by the Emporia API (RFC 7807
// "Problem Details"). Transport-level failures are normalized into the same
// shape with Status 0 so callers only ever deal with one error type.
type Problem struct {
	Status   int                 `json:"status"`
	Title    string              `json:"title"`
	Errors   map[string][]string `json:"errors,omitempty"`
	Type     string              `json:"type,omitempty"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
}

func (p *Problem) Error() string {
	if p.Status == 0 {
		return fmt.Sprintf("emporia: %s", p.Title)
	}
	return fmt.Sprintf("emporia: %s (status %d)", p.Title, p.Status)
}

// IsUnauthorized reports whether the problem is a 401 response.
func (p *Problem) IsUnauthorized() bool {
	return p.Status == http.StatusUnauthorized
}

// FieldErrors flattens the per-field validation errors, lower-camelizing the
// server's PascalCase field identifiers so they line up with form field names.
// Returns nil when the problem carries no field data.
func (p *Problem) FieldErrors() map[string]string {
	if len(p.Errors) == 0 {
		return nil
	}
	fields := make(map[string]string, len(p.Errors))
	for field, messages := range p.Errors {
		fields[lowerCamel(field)] = strings.Join(messages, "\n")
	}
	return fields
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// transportProblem wraps a transport-level error (DNS, timeout, parse) into
// the shared failure shape. These must never escape as raw errors.
func transportProblem(err error) *Problem {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &Problem{
		Status: 0,
		Title:  "Unexpected error. Please try again.",
		Detail: detail,
	}
}

func parseProblem(resp *http.Response) *Problem {
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") || strings.Contains(contentType, "application/problem+json") {
		var p Problem
		if err := json.NewDecoder(resp.Body).Decode(&p); err == nil {
			p.Status = resp.StatusCode
			if p.Title == "" {
				p.Title = "Request failed"
			}
			return &p
		}
	}

	// Fallback for non-JSON error bodies.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	title := strings.TrimSpace(string(body))
	if title == "" {
		title = resp.Status
	}
	if title == "" {
		title = "Request failed"
	}
	return &Problem{Status: resp.StatusCode, Title: title}
}
