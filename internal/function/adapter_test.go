package function

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

func makeEvent(method, path, query, body string) events.APIGatewayV2HTTPRequest {
	evt := events.APIGatewayV2HTTPRequest{
		RawPath:        path,
		RawQueryString: query,
		Headers:        map[string]string{"content-type": "application/json"},
		Body:           body,
	}
	evt.RequestContext.HTTP.Method = method
	evt.RequestContext.HTTP.SourceIP = "203.0.113.7"
	evt.RequestContext.RequestID = "req-42"
	evt.RequestContext.DomainName = "abc.execute-api.us-east-1.amazonaws.com"
	return evt
}

func TestNewAdapter_NilHandler(t *testing.T) {
	_, err := NewAdapter(nil)
	require.ErrorContains(t, err, "must not be nil")
}

func TestHandle_RequestTranslation(t *testing.T) {
	var got *http.Request
	var gotBody string
	a, err := NewAdapter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	require.NoError(t, err)

	resp, err := a.Handle(context.Background(), makeEvent(http.MethodPost, "/api/send_sms", "x=1", `{"to":"+1"}`))
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, got.Method)
	require.Equal(t, "/api/send_sms", got.URL.Path)
	require.Equal(t, "1", got.URL.Query().Get("x"))
	require.Equal(t, "application/json", got.Header.Get("Content-Type"))
	require.Equal(t, "req-42", got.Header.Get("X-Request-ID"))
	require.Equal(t, "203.0.113.7", got.RemoteAddr)
	require.Equal(t, `{"to":"+1"}`, gotBody)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, `{"ok":true}`, resp.Body)
	require.False(t, resp.IsBase64Encoded)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestHandle_Base64Body(t *testing.T) {
	var gotBody string
	a, err := NewAdapter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
	}))
	require.NoError(t, err)

	evt := makeEvent(http.MethodPost, "/api/voice", "", base64.StdEncoding.EncodeToString([]byte("To=%2B1555")))
	evt.IsBase64Encoded = true
	resp, err := a.Handle(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "To=%2B1555", gotBody)
}

func TestHandle_InvalidBase64(t *testing.T) {
	a, err := NewAdapter(http.NotFoundHandler())
	require.NoError(t, err)

	evt := makeEvent(http.MethodPost, "/x", "", "!!!not base64")
	evt.IsBase64Encoded = true
	resp, err := a.Handle(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandle_BinaryResponseIsEncoded(t *testing.T) {
	a, err := NewAdapter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	require.NoError(t, err)

	resp, err := a.Handle(context.Background(), makeEvent(http.MethodGet, "/logo.png", "", ""))
	require.NoError(t, err)
	require.True(t, resp.IsBase64Encoded)
	raw, err := base64.StdEncoding.DecodeString(resp.Body)
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw)
}

func TestHandle_CookiesAndDefaults(t *testing.T) {
	var cookie string
	a, err := NewAdapter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie = r.Header.Get("Cookie")
		http.SetCookie(w, &http.Cookie{Name: "a", Value: "1"})
		http.SetCookie(w, &http.Cookie{Name: "b", Value: "2"})
	}))
	require.NoError(t, err)

	evt := makeEvent("", "", "", "")
	evt.Cookies = []string{"x=1", "y=2"}
	resp, err := a.Handle(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, "x=1; y=2", cookie)
	require.Equal(t, []string{"a=1", "b=2"}, resp.Cookies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
