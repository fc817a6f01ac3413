package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/efreitasn/tradecore/internal/domain"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets content type and status code", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

		if got := w.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
		if w.Code != http.StatusOK {
			t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
		}

		var result map[string]string
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if result["status"] != "ok" {
			t.Errorf("body status = %q, want %q", result["status"], "ok")
		}
	})

	t.Run("renders status by name", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, controlResponse{Action: "pause", Status: domain.StatusPaused})

		var raw map[string]any
		if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if raw["status"] != "PAUSED" {
			t.Errorf("status = %v, want %q", raw["status"], "PAUSED")
		}
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusConflict, "order_rejected", "order o1 was not accepted")

	if w.Code != http.StatusConflict {
		t.Errorf("status code = %d, want %d", w.Code, http.StatusConflict)
	}

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Error != "order_rejected" {
		t.Errorf("error = %q, want %q", resp.Error, "order_rejected")
	}
	if resp.Message != "order o1 was not accepted" {
		t.Errorf("message = %q, want %q", resp.Message, "order o1 was not accepted")
	}
}

func TestWriteNotRunning(t *testing.T) {
	w := httptest.NewRecorder()

	writeNotRunning(w, domain.StatusPaused)

	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if w.Code != http.StatusConflict || resp.Error != "trading_not_running" || resp.Message != "trading is PAUSED" {
		t.Errorf("unexpected response %d %+v", w.Code, resp)
	}
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	t.Run("decodes valid JSON", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"test","value":42}`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		var result payload
		if err := ParseJSON(httptest.NewRecorder(), r, &result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Name != "test" || result.Value != 42 {
			t.Errorf("result = %+v, want {test 42}", result)
		}
	})

	rejects := []struct {
		name        string
		contentType string
		body        string
	}{
		{"missing content type", "", `{"name":"test"}`},
		{"wrong content type", "text/plain", `{"name":"test"}`},
		{"malformed JSON", "application/json", `{invalid json}`},
		{"unknown fields", "application/json", `{"name":"test","unknown_field":"value"}`},
		{"empty body", "application/json", ``},
		{"oversized body", "application/json", `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`},
	}
	for _, tt := range rejects {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}

			var result payload
			err := ParseJSON(httptest.NewRecorder(), r, &result)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
		})
	}
}
