package upstream

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is returned when an upstream API answers with a non-2xx status.
type Error struct {
	Service    string
	StatusCode int
	Status     string
	Body       string
}

func (e *Error) Error() string {
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s error: %s", e.Service, status)
}

// HTTPStatusCode returns the upstream status code.
func (e *Error) HTTPStatusCode() int {
	return e.StatusCode
}

// FromResponse builds an Error from a failed response. The body excerpt is
// capped so a large HTML error page does not end up in logs.
func FromResponse(service string, resp *http.Response, body []byte) *Error {
	const maxBody = 512
	text := strings.TrimSpace(string(body))
	if len(text) > maxBody {
		text = text[:maxBody]
	}
	// net/http keeps the code in Status ("404 Not Found"); callers only want the text.
	status := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	return &Error{
		Service:    service,
		StatusCode: resp.StatusCode,
		Status:     status,
		Body:       text,
	}
}

// OK reports whether code is a 2xx status.
func OK(code int) bool {
	return code >= 200 && code < 300
}

// MalformedRecordError describes a single upstream record that was dropped
// because it lacked a field the merge depends on.
type MalformedRecordError struct {
	Service string
	ID      string
	Reason  string
}

func (e *MalformedRecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: malformed record: %s", e.Service, e.Reason)
	}
	return fmt.Sprintf("%s: malformed record %s: %s", e.Service, e.ID, e.Reason)
}
