package auth

import (
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestHash(t *testing.T) {
	_, err := Hash("short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	h, err := Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", h)

	assert.NoError(t, Verify(h, "correct horse"))
	assert.ErrorIs(t, Verify(h, "wrong horse!"), ErrInvalidCredentials)
	assert.ErrorIs(t, Verify("not a hash", "correct horse"), ErrInvalidCredentials)
}

func TestIssuer(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	assert.Error(t, err)

	iss, err := NewIssuer("secret", 0)
	require.NoError(t, err)

	token, ttl, err := iss.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, ttl)

	sub, err := iss.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)

	other, err := NewIssuer("other secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Validate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerExpired(t *testing.T) {
	iss, err := NewIssuer("secret", time.Minute)
	require.NoError(t, err)
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := iss.Issue("user-1")
	require.NoError(t, err)
	_, err = iss.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsOtherAlgorithms(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
