package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   "dsamate",
		Audience: "dsamate-clients",
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(Config{})
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestIssueCarriesEmailAndRoles(t *testing.T) {
	mgr, err := NewManager(testConfig())
	require.NoError(t, err)

	userID := uuid.New()
	token, err := mgr.Issue(userID, "admin@example.com", []string{"Admin", "User"})
	require.NoError(t, err)

	claims, err := mgr.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.ElementsMatch(t, []string{"Admin", "User"}, claims.Roles)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "dsamate", claims.Issuer)

	expectedExpiry := time.Now().Add(24 * time.Hour)
	assert.WithinDuration(t, expectedExpiry, claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	mgr, err := NewManager(testConfig())
	require.NoError(t, err)

	other, err := NewManager(Config{
		Secret:   []byte("another-secret-key-32-bytes-long"),
		Issuer:   "dsamate",
		Audience: "dsamate-clients",
	})
	require.NoError(t, err)

	token, err := other.Issue(uuid.New(), "user@example.com", nil)
	require.NoError(t, err)

	_, err = mgr.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongAudience(t *testing.T) {
	cfg := testConfig()
	cfg.Audience = "someone-else"
	issuer, err := NewManager(cfg)
	require.NoError(t, err)

	mgr, err := NewManager(testConfig())
	require.NoError(t, err)

	token, err := issuer.Issue(uuid.New(), "user@example.com", nil)
	require.NoError(t, err)

	_, err = mgr.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	mgr, err := NewManager(testConfig())
	require.NoError(t, err)

	mgr.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	token, err := mgr.Issue(uuid.New(), "user@example.com", nil)
	require.NoError(t, err)

	mgr.now = time.Now
	_, err = mgr.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
