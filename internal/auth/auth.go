// Package auth keeps the collaborator token that identifies who is using
// the base. The token's role decides which mutations are allowed.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const credFileName = "credentials.json"

// EnvToken overrides the credentials file.
const EnvToken = "TADA_TOKEN"

type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`         // "env" | "file"
	Role      string     `json:"role,omitempty"` // explicit role; falls back to the JWT "role" claim
	CreatedAt time.Time  `json:"created_at"`     // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"`     // optional (JWT or server-provided)
}

func credsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

func credFilePath() (string, error) {
	dir, err := credsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// GetToken returns nil, nil when nobody is logged in.
func GetToken() (*TokenInfo, error) {
	// 1) env override
	env := strings.TrimSpace(os.Getenv(EnvToken))
	if env != "" {
		return &TokenInfo{Token: stripBearer(env), Source: "env"}, nil
	}

	// 2) file
	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// SetToken stores token with an optional explicit role.
func SetToken(token, role string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	dir, err := credsDir()
	if err != nil {
		return err
	}
	// ensure ~/.tada exists with 0700
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if expires == nil {
		if claims, err := Claims(token); err == nil {
			expires = claims.ExpiresAt()
		}
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		Role:      strings.TrimSpace(role),
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	p, _ := credFilePath()
	// write with 0600 (owner-only)
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func DeleteToken() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// EffectiveRole is the stored role, else the JWT "role" claim, else "".
func (ti *TokenInfo) EffectiveRole() string {
	if ti == nil {
		return ""
	}
	if ti.Role != "" {
		return ti.Role
	}
	if claims, err := Claims(ti.Token); err == nil {
		if r, ok := claims["role"].(string); ok {
			return r
		}
	}
	return ""
}

// Expired is false for tokens without a known expiry.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti != nil && ti.ExpiresAt != nil && now.After(*ti.ExpiresAt)
}

// JWTClaims is the decoded (unverified) payload of a JWT.
type JWTClaims map[string]any

func (c JWTClaims) ExpiresAt() *time.Time {
	exp, ok := c["exp"].(float64)
	if !ok {
		return nil
	}
	t := time.Unix(int64(exp), 0).UTC()
	return &t
}

// Claims decodes a JWT payload locally without checking the signature.
// Opaque tokens return an error.
func Claims(token string) (JWTClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("not a JWT")
	}
	payload, err := decodeB64URL(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	var claims JWTClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return claims, nil
}

func decodeB64URL(s string) ([]byte, error) {
	dec, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		dec2, err2 := base64.URLEncoding.DecodeString(s)
		if err2 != nil {
			return nil, err
		}
		return dec2, nil
	}
	return dec, nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
