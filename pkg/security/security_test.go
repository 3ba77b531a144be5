package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast
func testArgon() *ArgonHash {
	return New(1024, 1, 1)
}

func TestArgon_HashAndVerify(t *testing.T) {
	a := testArgon()

	enc, err := a.HashPassword("longenough1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotContains(t, enc, "longenough1")

	ok, err := a.VerifyPassword("longenough1", enc)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPassword("longenough2", enc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon_SaltedHashesDiffer(t *testing.T) {
	a := testArgon()

	h1, err := a.HashPassword("same-password")
	require.NoError(t, err)
	h2, err := a.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgon_VerifyUsesEncodedParams(t *testing.T) {
	enc, err := New(2048, 2, 1).HashPassword("pw-123456")
	require.NoError(t, err)

	ok, err := testArgon().VerifyPassword("pw-123456", enc)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon_InvalidHash(t *testing.T) {
	a := testArgon()

	for _, e := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$aGFzaA",
	} {
		_, err := a.VerifyPassword("pw", e)
		assert.ErrorIs(t, err, ErrInvalidHash, e)
	}
}

func TestToken_IssueAndVerify(t *testing.T) {
	ti := NewTokenIssuer("super-secret", 8*time.Hour)

	tok, err := ti.Issue(Identity{ID: 7, Email: "a@b.com"})
	require.NoError(t, err)

	id, err := ti.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: 7, Email: "a@b.com"}, id)
}

func TestToken_ExpiresAfterTTL(t *testing.T) {
	ti := NewTokenIssuer("super-secret", 8*time.Hour)
	ti.now = func() time.Time { return time.Now().Add(-8*time.Hour - time.Minute) }

	tok, err := ti.Issue(Identity{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	ti.now = time.Now
	_, err = ti.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestToken_StillValidInsideWindow(t *testing.T) {
	ti := NewTokenIssuer("super-secret", 8*time.Hour)
	ti.now = func() time.Time { return time.Now().Add(-7 * time.Hour) }

	tok, err := ti.Issue(Identity{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	ti.now = time.Now
	_, err = ti.Verify(tok)
	assert.NoError(t, err)
}

func TestToken_WrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer("right", time.Hour).Issue(Identity{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("wrong", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_Tampered(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour)

	tok, err := ti.Issue(Identity{ID: 1, Email: "a@b.com"})
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	// Swap the payload for one claiming another account
	forged, err := NewTokenIssuer("other", time.Hour).Issue(Identity{ID: 2, Email: "evil@b.com"})
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = ti.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_RejectsOtherAlgorithms(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 1,
		Email:  "a@b.com",
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_Malformed(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
