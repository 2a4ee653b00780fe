package cmlapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

// recordingHandler captures every request so tests can assert on the
// exact fallback order.
type recordingHandler struct {
	requests []string
	respond  func(i int, w http.ResponseWriter, r *http.Request)
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	i := len(h.requests)
	h.requests = append(h.requests, r.Method+" "+r.URL.RequestURI())
	h.respond(i, w, r)
}

func TestUpdatePassword_Success(t *testing.T) {
	h := &recordingHandler{respond: func(i int, w http.ResponseWriter, r *http.Request) {
		var body map[string]map[string]string
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		if body["password"]["old_password"] != "" || body["password"]["new_password"] != "hunter2" {
			t.Errorf("unexpected payload: %v", body)
		}
		w.WriteHeader(http.StatusOK)
	}}
	c := newTestClient(t, h)

	status := c.UpdatePassword(context.Background(), "tok", "42", "hunter2")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if len(h.requests) != 1 {
		t.Fatalf("expected a single call, got %v", h.requests)
	}
	if h.requests[0] != "PATCH /users/42" {
		t.Errorf("unexpected request: %s", h.requests[0])
	}
}

func TestUpdatePassword_RetriesWithTrailingSlashOn404(t *testing.T) {
	h := &recordingHandler{respond: func(i int, w http.ResponseWriter, r *http.Request) {
		if i == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}}
	c := newTestClient(t, h)

	status := c.UpdatePassword(context.Background(), "tok", "42", "hunter2")
	if status != http.StatusOK {
		t.Errorf("expected second call's status 200, got %d", status)
	}
	want := []string{"PATCH /users/42", "PATCH /users/42/"}
	if len(h.requests) != 2 || h.requests[0] != want[0] || h.requests[1] != want[1] {
		t.Errorf("expected exactly %v, got %v", want, h.requests)
	}
}

func TestUpdatePassword_NoRetryOnOtherFailures(t *testing.T) {
	h := &recordingHandler{respond: func(i int, w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}}
	c := newTestClient(t, h)

	status := c.UpdatePassword(context.Background(), "tok", "42", "hunter2")
	if status != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", status)
	}
	if len(h.requests) != 1 {
		t.Errorf("expected a single call on non-404 failure, got %v", h.requests)
	}
}

func TestUpdatePassword_ReturnsLastStatusWhenRetryFails(t *testing.T) {
	h := &recordingHandler{respond: func(i int, w http.ResponseWriter, r *http.Request) {
		if i == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}}
	c := newTestClient(t, h)

	status := c.UpdatePassword(context.Background(), "tok", "42", "hunter2")
	if status != http.StatusBadRequest {
		t.Errorf("expected last observed status 400, got %d", status)
	}
	if len(h.requests) != 2 {
		t.Errorf("expected exactly two calls, got %v", h.requests)
	}
}

func TestForceLogout_FirstVariantSucceeds(t *testing.T) {
	h := &recordingHandler{respond: func(i int, w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}}
	c := newTestClient(t, h)

	status := c.ForceLogout(context.Background(), "tok")
	if status != http.StatusOK {
		t.Errorf("expected success normalized to 200, got %d", status)
	}
	if len(h.requests) != 1 || h.requests[0] != "DELETE /logout?clear_all_sessions=true" {
		t.Errorf("expected only the DELETE variant, got %v", h.requests)
	}
}

func TestForceLogout_StopsAtFirstAcceptedVariant(t *testing.T) {
	h := &recordingHandler{respond: func(i int, w http.ResponseWriter, r *http.Request) {
		if i < 2 {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}}
	c := newTestClient(t, h)

	status := c.ForceLogout(context.Background(), "tok")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	want := []string{
		"DELETE /logout?clear_all_sessions=true",
		"POST /logout",
		"POST /logout",
	}
	if len(h.requests) != 3 {
		t.Fatalf("expected chain to stop after the third variant, got %v", h.requests)
	}
	for i := range want {
		if h.requests[i] != want[i] {
			t.Errorf("request %d: expected %s, got %s", i, want[i], h.requests[i])
		}
	}
}

func TestForceLogout_AllVariantsFail(t *testing.T) {
	h := &recordingHandler{respond: func(i int, w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}}
	c := newTestClient(t, h)

	status := c.ForceLogout(context.Background(), "tok")
	if status != http.StatusUnauthorized {
		t.Errorf("expected final fallback's raw status 401, got %d", status)
	}
	if len(h.requests) != 4 {
		t.Errorf("expected all four variants attempted, got %v", h.requests)
	}
	if h.requests[3] != "POST /users/logout" {
		t.Errorf("expected the final variant to be POST /users/logout, got %s", h.requests[3])
	}
}

func TestRunChain_TransportFailureFallsThrough(t *testing.T) {
	// A dead server yields status 0 for the first variant; the chain must
	// keep going rather than give up.
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	dead := New(srv.URL, zerolog.Nop())

	status := dead.ForceLogout(context.Background(), "tok")
	if status != 0 {
		t.Errorf("expected status 0 when every attempt fails at transport level, got %d", status)
	}
}
