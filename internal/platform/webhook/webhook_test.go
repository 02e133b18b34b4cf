package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/frontdesk/gatepass/internal/platform/webhook"
)

type jsonPayload struct {
	VisitorName string `json:"visitorName"`
	Action      string `json:"action"`
}

type formPayload struct {
	VisitorEmail string `url:"visitorEmail"`
	Action       string `url:"action"`
}

func TestPostJSON(t *testing.T) {
	var gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := webhook.NewClient(5 * time.Second)
	err := client.PostJSON(context.Background(), server.URL, jsonPayload{
		VisitorName: "Jane Doe",
		Action:      "visitor_checked_in",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %s", gotContentType)
	}
	var decoded jsonPayload
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if decoded.Action != "visitor_checked_in" || decoded.VisitorName != "Jane Doe" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestPostForm(t *testing.T) {
	var gotContentType string
	var gotValues url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotValues, _ = url.ParseQuery(string(body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := webhook.NewClient(5 * time.Second)
	err := client.PostForm(context.Background(), server.URL, formPayload{
		VisitorEmail: "jane@acme.com",
		Action:       "visitor_invited",
	})
	if err != nil {
		t.Fatalf("expected success on 202, got %v", err)
	}

	if gotContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("expected form content type, got %s", gotContentType)
	}
	if gotValues.Get("visitorEmail") != "jane@acme.com" || gotValues.Get("action") != "visitor_invited" {
		t.Fatalf("unexpected form values: %v", gotValues)
	}
}

func TestPost_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	client := webhook.NewClient(5 * time.Second)
	err := client.PostJSON(context.Background(), server.URL, jsonPayload{})
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "410") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestPost_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel the request context; otherwise this
		// handler never unblocks and the deferred Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := webhook.NewClient(5 * time.Second)
	err := client.PostJSON(ctx, server.URL, jsonPayload{})
	if err == nil {
		t.Fatal("expected error when the context is cancelled")
	}
}
