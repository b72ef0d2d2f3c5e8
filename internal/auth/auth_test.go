package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPValidator_ValidToken(t *testing.T) {
	// Mock account service
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Token == "valid-token" {
			json.NewEncoder(w).Encode(validateResponse{
				Valid:    true,
				UserID:   "user-123",
				Nickname: "alice",
				Email:    "alice@example.com",
			})
		} else {
			json.NewEncoder(w).Encode(validateResponse{Valid: false})
		}
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "")

	identity, err := validator.Validate(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if identity.UserID != "user-123" {
		t.Errorf("expected user-123, got %s", identity.UserID)
	}
	if identity.Nickname != "alice" {
		t.Errorf("expected alice, got %s", identity.Nickname)
	}
	if identity.Email != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %s", identity.Email)
	}
}

func TestHTTPValidator_InvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(validateResponse{Valid: false})
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "")
	_, err := validator.Validate(context.Background(), "invalid-token")

	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHTTPValidator_EmptyToken(t *testing.T) {
	validator := NewHTTPValidator("http://localhost:9999", "")
	_, err := validator.Validate(context.Background(), "")

	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestHTTPValidator_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrInvalidToken},
		{"forbidden", http.StatusForbidden, ErrInvalidToken},
		{"rate limited", http.StatusTooManyRequests, ErrUnavailable},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway", http.StatusBadGateway, ErrUnavailable},
		{"service unavailable", http.StatusServiceUnavailable, ErrUnavailable},
		{"unexpected", http.StatusTeapot, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			validator := NewHTTPValidator(server.URL, "")
			_, err := validator.Validate(context.Background(), "token")

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHTTPValidator_Timeout(t *testing.T) {
	// Slow server that takes 2 seconds
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		json.NewEncoder(w).Encode(validateResponse{Valid: true})
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "")
	_, err := validator.Validate(context.Background(), "token")

	// Should timeout (500ms) and return ErrUnavailable
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable on timeout, got %v", err)
	}
}

func TestHTTPValidator_AdminSecret(t *testing.T) {
	var receivedSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedSecret = r.Header.Get("X-Admin-Secret")
		json.NewEncoder(w).Encode(validateResponse{Valid: true, UserID: "test"})
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "my-secret")
	validator.Validate(context.Background(), "token")

	if receivedSecret != "my-secret" {
		t.Errorf("expected admin secret 'my-secret', got '%s'", receivedSecret)
	}
}

func TestHTTPValidator_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	validator := NewHTTPValidator(server.URL, "")
	_, err := validator.Validate(context.Background(), "token")

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for malformed JSON, got %v", err)
	}
}

func TestHTTPValidator_NetworkError(t *testing.T) {
	// Point to non-existent server
	validator := NewHTTPValidator("http://localhost:1", "")
	_, err := validator.Validate(context.Background(), "token")

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for network error, got %v", err)
	}
}

func TestGuestValidator_MintsIdentity(t *testing.T) {
	validator := NewGuestValidator()

	identity, err := validator.Validate(context.Background(), "  alice  ")
	if err != nil {
		t.Fatalf("guest validator should never error: %v", err)
	}
	if identity.Nickname != "alice" {
		t.Errorf("expected trimmed nickname alice, got %q", identity.Nickname)
	}
	if !strings.HasPrefix(identity.UserID, "guest-") {
		t.Errorf("expected guest user id, got %q", identity.UserID)
	}

	// Same token reclaims the same identity; a different token does not.
	same, _ := validator.Validate(context.Background(), "  alice  ")
	if same.UserID != identity.UserID {
		t.Error("same token should map to the same user id")
	}
	other, _ := validator.Validate(context.Background(), "bob")
	if other.UserID == identity.UserID {
		t.Error("different tokens should map to different user ids")
	}
}

func TestGuestValidator_EmptyTokenDefaultsNickname(t *testing.T) {
	validator := NewGuestValidator()

	identity, err := validator.Validate(context.Background(), "")
	if err != nil {
		t.Fatalf("guest validator should never error, even with empty token: %v", err)
	}
	if identity.Nickname != "Guest" {
		t.Errorf("expected default nickname Guest, got %q", identity.Nickname)
	}
}

func TestGuestValidator_LongNicknameTruncated(t *testing.T) {
	validator := NewGuestValidator()

	identity, _ := validator.Validate(context.Background(), strings.Repeat("x", 60))
	if len(identity.Nickname) != 24 {
		t.Errorf("expected nickname capped at 24 chars, got %d", len(identity.Nickname))
	}
}
