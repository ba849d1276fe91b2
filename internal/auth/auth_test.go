package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func jwt(payload string) string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"none"}`)) + "." + enc([]byte(payload)) + ".sig"
}

func TestTokenRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvToken, "")

	ti, err := GetToken()
	require.NoError(t, err)
	require.Nil(t, ti, "no credentials yet")

	require.NoError(t, SetToken("Bearer abc123", "edit", nil))
	info, err := os.Stat(filepath.Join(home, ".tada", credFileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	ti, err = GetToken()
	require.NoError(t, err)
	require.Equal(t, "abc123", ti.Token)
	require.Equal(t, "file", ti.Source)
	require.Equal(t, "edit", ti.EffectiveRole())

	require.NoError(t, DeleteToken())
	require.NoError(t, DeleteToken(), "deleting twice is fine")
	ti, err = GetToken()
	require.NoError(t, err)
	require.Nil(t, ti)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvToken, "bearer "+jwt(`{"role":"read"}`))

	ti, err := GetToken()
	require.NoError(t, err)
	require.Equal(t, "env", ti.Source)
	require.Equal(t, "read", ti.EffectiveRole())
}

func TestClaims(t *testing.T) {
	claims, err := Claims(jwt(`{"sub":"ada","exp":1700000000}`))
	require.NoError(t, err)
	require.Equal(t, "ada", claims["sub"])
	require.Equal(t, time.Unix(1700000000, 0).UTC(), *claims.ExpiresAt())

	_, err = Claims("opaque-token")
	require.Error(t, err)
}

func TestSetTokenTakesExpiryFromJWT(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvToken, "")

	require.NoError(t, SetToken(jwt(`{"exp":1000}`), "", nil))
	ti, err := GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti.ExpiresAt)
	require.True(t, ti.Expired(time.Unix(2000, 0)))
	require.False(t, ti.Expired(time.Unix(500, 0)))
	require.Empty(t, ti.EffectiveRole())
}

func TestSetTokenRejectsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.Error(t, SetToken("   ", "", nil))
}
