package auth

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSha256b64(t *testing.T) {
	a := sha256b64("token-one")
	b := sha256b64("token-one")
	c := sha256b64("token-two")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotContains(t, a, "token", "stored value must not reveal the token")
}

func TestTTLFromEnv(t *testing.T) {
	assert.Equal(t, 15, ttlFromEnv("ACCESS_TOKEN_TTL_MIN", 15))

	t.Setenv("ACCESS_TOKEN_TTL_MIN", "30")
	assert.Equal(t, 30, ttlFromEnv("ACCESS_TOKEN_TTL_MIN", 15))

	t.Setenv("ACCESS_TOKEN_TTL_MIN", "not-a-number")
	assert.Equal(t, 15, ttlFromEnv("ACCESS_TOKEN_TTL_MIN", 15))

	t.Setenv("ACCESS_TOKEN_TTL_MIN", "-5")
	assert.Equal(t, 15, ttlFromEnv("ACCESS_TOKEN_TTL_MIN", 15))
}

func TestIssueTokensWritesThroughPoolOrTx(t *testing.T) {
	// issueTokens must accept both so Refresh can rotate sessions inside one
	// transaction while Login keeps writing through the pool.
	var _ execer = (*pgxpool.Pool)(nil)
	var tx pgx.Tx
	var _ execer = tx
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("volunteer-password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("volunteer-password")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong-password")))
}
