package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondJSONStatus(t *testing.T) {
	w := httptest.NewRecorder()

	resp := NewJSONResponseWithStatus(map[string]string{"k": "v"}, http.StatusCreated)
	if err := Respond(context.Background(), w, resp); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.String() != `{"k":"v"}` {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRespondDefaultStatus(t *testing.T) {
	w := httptest.NewRecorder()

	if err := Respond(context.Background(), w, NewJSONResponse([]int{})); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRespondEmpty(t *testing.T) {
	w := httptest.NewRecorder()

	if err := Respond(context.Background(), w, NewEmptyResponse(http.StatusNoContent)); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("204 response has a body: %q", w.Body.String())
	}
}

func TestRespondNoResponse(t *testing.T) {
	w := httptest.NewRecorder()

	if err := Respond(context.Background(), w, NewNoResponse()); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	// Nothing written; the recorder keeps its zero value status.
	if w.Body.Len() != 0 {
		t.Errorf("NoResponse wrote a body: %q", w.Body.String())
	}
}

func TestRespondCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	if err := Respond(ctx, w, NewJSONResponse("data")); err == nil {
		t.Error("expected error for canceled context")
	}
	if w.Body.Len() != 0 {
		t.Errorf("wrote body after cancel: %q", w.Body.String())
	}
}
