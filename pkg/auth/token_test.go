package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvub/coffeeshop-backend/pkg/config"
)

func testJWTConfig() config.JWT {
	return config.JWT{
		Secret:   "unit-test-secret",
		Issuer:   "coffeeshop",
		Audience: "coffeeshop-admin",
		TTL:      time.Hour,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := testJWTConfig()

	signed, err := MintAdminToken(cfg, time.Now(), "ops@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := ParseAdminToken(cfg, signed)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "coffeeshop", claims.Issuer)
}

func TestMintAdminTokenRequiresSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = ""

	_, err := MintAdminToken(cfg, time.Now(), "ops@example.com")
	assert.Error(t, err)
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAdminToken(cfg, time.Now(), "ops@example.com")
	require.NoError(t, err)

	other := cfg
	other.Secret = "different-secret"
	_, err = ParseAdminToken(other, signed)
	assert.Error(t, err)
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAdminToken(cfg, time.Now().Add(-2*time.Hour), "ops@example.com")
	require.NoError(t, err)

	_, err = ParseAdminToken(cfg, signed)
	assert.Error(t, err)
}
