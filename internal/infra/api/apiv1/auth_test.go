//go:build !integration

package apiv1

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"telegram-upi-lookup/internal/domain"
)

func signed(t *testing.T, secret, role string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseFromRequest(t *testing.T) {
	a := NewAuthManager("secret", time.Hour)
	later := time.Now().Add(time.Hour)

	t.Run("should accept a valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, "secret", "admin", later))
		claims, err := a.ParseFromRequest(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.Role != "admin" {
			t.Errorf("role = %q", claims.Role)
		}
	})

	rejected := map[string]func(*http.Request){
		"missing token": func(*http.Request) {},
		"garbage token": func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.jwt")
		},
		"wrong secret": func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signed(t, "other", "admin", later))
		},
		"wrong role": func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signed(t, "secret", "viewer", later))
		},
		"expired cookie": func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "admin_session", Value: signed(t, "secret", "admin", time.Now().Add(-time.Minute))})
		},
	}
	for name, setup := range rejected {
		t.Run("should reject "+name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			setup(req)
			_, err := a.ParseFromRequest(req)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}
