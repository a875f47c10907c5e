package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestFromResponseStatusText(t *testing.T) {
	resp := &http.Response{StatusCode: 401, Status: "401 Unauthorized"}
	err := FromResponse("twilio", resp, []byte(`{"code":20003}`))

	if err.Status != "Unauthorized" {
		t.Errorf("Status = %q, want Unauthorized", err.Status)
	}
	if got := err.Error(); got != "twilio error: Unauthorized" {
		t.Errorf("Error() = %q", got)
	}
	if err.HTTPStatusCode() != 401 {
		t.Errorf("HTTPStatusCode() = %d, want 401", err.HTTPStatusCode())
	}
}

func TestFromResponseFallsBackToStatusCodeText(t *testing.T) {
	resp := &http.Response{StatusCode: 503}
	err := FromResponse("airtable", resp, nil)
	if got := err.Error(); got != "airtable error: Service Unavailable" {
		t.Errorf("Error() = %q", got)
	}
}

func TestFromResponseTruncatesBody(t *testing.T) {
	resp := &http.Response{StatusCode: 500, Status: "500 Internal Server Error"}
	err := FromResponse("twilio", resp, []byte(strings.Repeat("x", 2000)))
	if len(err.Body) != 512 {
		t.Errorf("len(Body) = %d, want 512", len(err.Body))
	}
}

func TestErrorsAsThroughWrap(t *testing.T) {
	wrapped := fmt.Errorf("fetch page 3: %w", &Error{Service: "twilio", StatusCode: 500})
	var upErr *Error
	if !errors.As(wrapped, &upErr) {
		t.Fatal("errors.As did not find *Error")
	}
	if upErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", upErr.StatusCode)
	}
}

func TestOK(t *testing.T) {
	for code, want := range map[int]bool{200: true, 201: true, 299: true, 199: false, 300: false, 404: false} {
		if got := OK(code); got != want {
			t.Errorf("OK(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestMalformedRecordError(t *testing.T) {
	err := &MalformedRecordError{Service: "twilio", ID: "SM1", Reason: "missing date_created"}
	if got := err.Error(); got != "twilio: malformed record SM1: missing date_created" {
		t.Errorf("Error() = %q", got)
	}
	err.ID = ""
	if got := err.Error(); got != "twilio: malformed record: missing date_created" {
		t.Errorf("Error() = %q", got)
	}
}
