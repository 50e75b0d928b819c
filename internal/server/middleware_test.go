package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gemgate/internal/config"
)

func authServer(token string) *Server {
	return New(&fakeService{response: []byte(`{}`)}, config.Server{
		AuthToken: token,
		CORS:      config.CORS{AllowedOrigins: []string{"http://localhost:3000"}},
	})
}

func doPost(s *Server, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generateQuestions",
		strings.NewReader(`{"inputs":{"context":"x"},"user":"u"}`))
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestAuth_DisabledWhenUnset(t *testing.T) {
	if rec := doPost(authServer(""), ""); rec.Code != http.StatusOK {
		t.Errorf("Unset token must skip auth, got %d", rec.Code)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	if rec := doPost(authServer("secret"), ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Missing header = %d, want 401", rec.Code)
	}
}

func TestAuth_MalformedHeader(t *testing.T) {
	if rec := doPost(authServer("secret"), "Token secret"); rec.Code != http.StatusUnauthorized {
		t.Errorf("Malformed header = %d, want 401", rec.Code)
	}
}

func TestAuth_WrongToken(t *testing.T) {
	if rec := doPost(authServer("secret"), "Bearer wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("Wrong token = %d, want 403", rec.Code)
	}
}

func TestAuth_CorrectToken(t *testing.T) {
	if rec := doPost(authServer("secret"), "Bearer secret"); rec.Code != http.StatusOK {
		t.Errorf("Correct token = %d, want 200", rec.Code)
	}
}

func TestAuth_HealthAlwaysOpen(t *testing.T) {
	s := authServer("secret")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Health must not require auth, got %d", rec.Code)
	}
}
