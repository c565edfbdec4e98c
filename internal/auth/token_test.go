package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager("secret")

	token, err := m.Issue("user-1", time.Hour)
	require.NoError(t, err)

	subject, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("secret")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue("user-1", time.Hour)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret").Issue("user-1", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenManager("other").Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_Malformed(t *testing.T) {
	_, err := NewTokenManager("secret").Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RequiresSubject(t *testing.T) {
	_, err := NewTokenManager("secret").Issue("", time.Hour)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	digest, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter22", digest)
	assert.True(t, ComparePassword("hunter22", digest))
	assert.False(t, ComparePassword("hunter23", digest))
}

func TestHashPassword_TooLongIsValidation(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = HashPassword(strings.Repeat("x", 72))
	assert.NoError(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "bearer abc"} {
		_, ok := BearerToken(h)
		assert.False(t, ok, h)
	}
}
