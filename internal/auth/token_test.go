package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findtrainer/auth-api/internal/models"
)

func TestIssuer_Issue(t *testing.T) {
	issuer := NewIssuer(testJWTConfig())
	user := &models.User{
		UserID:   "user-123",
		Username: "grace",
	}

	before := time.Now().UTC()
	token, expiresAt, err := issuer.Issue(user, []string{models.RoleUser})
	require.NoError(t, err)

	// Compact three-segment wire format
	assert.Len(t, strings.Split(token, "."), 3)

	// Expiry is issuance + TTL
	assert.WithinDuration(t, before.Add(24*time.Hour), expiresAt, 5*time.Second)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims["sub"])
	assert.Equal(t, "grace", claims["username"])
	assert.Equal(t, "findtrainer-auth", claims["iss"])
	assert.Equal(t, "findtrainer-api", claims["aud"])
	assert.Equal(t, []interface{}{models.RoleUser}, claims["roles"])
	assert.InDelta(t, float64(expiresAt.Unix()), claims["exp"], 1)
}

func TestIssuer_Issue_RejectedWithWrongKey(t *testing.T) {
	issuer := NewIssuer(testJWTConfig())

	token, _, err := issuer.Issue(&models.User{UserID: "user-123", Username: "heidi"}, nil)
	require.NoError(t, err)

	_, err = jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte("some-other-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.Error(t, err)
}
