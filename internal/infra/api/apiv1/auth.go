package apiv1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"telegram-upi-lookup/internal/domain"
)

// ===== JWT primitives =====

type AuthConfig struct {
	HMACSecret []byte
	CookieName string
	TTL        time.Duration
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{cfg: AuthConfig{
		HMACSecret: []byte(secret),
		CookieName: "admin_session",
		TTL:        ttl,
	}}
}

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint issues a signed admin token and also sets it as an HttpOnly cookie.
func (a *AuthManager) Mint(w http.ResponseWriter) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(a.cfg.TTL)
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Subject:   "admin",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    signed,
		Path:     "/api/",
		MaxAge:   int(a.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	return signed, exp, nil
}

// ParseFromRequest reads the admin token from the Authorization header or the
// session cookie. Every rejection wraps domain.ErrUnauthorized.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*AdminClaims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	// Cookie
	if c, err := r.Cookie(a.cfg.CookieName); err == nil {
		return a.parse(c.Value)
	}
	return nil, fmt.Errorf("missing token: %w", domain.ErrUnauthorized)
}

func (a *AuthManager) parse(tok string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w: %w", domain.ErrUnauthorized, err)
	}
	if !tkn.Valid {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	if claims.Role != "admin" {
		return nil, fmt.Errorf("role %q: %w", claims.Role, domain.ErrUnauthorized)
	}
	return claims, nil
}
