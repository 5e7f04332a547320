package jsonutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	var body struct {
		Username string `json:"username"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice","extra":1}`))
	if err := Decode(req, &body); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if body.Username != "alice" {
		t.Errorf("username: got %q, want %q", body.Username, "alice")
	}
}

func TestDecode_Empty(t *testing.T) {
	var body map[string]any
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := Decode(req, &body); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestDecode_Malformed(t *testing.T) {
	var body map[string]any
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))
	if err := Decode(req, &body); err == nil || errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected a syntax error, got %v", err)
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, http.StatusCreated, map[string]string{"message": "ok"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"ok"}` {
		t.Errorf("body: got %s", got)
	}
}
