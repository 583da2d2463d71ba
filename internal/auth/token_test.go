package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

func newTestSigner(t *testing.T, ttl time.Duration, now func() time.Time) *Signer {
	t.Helper()
	s, err := NewSigner(SignerConfig{Secret: testSecret, TTL: ttl, Now: now})
	require.NoError(t, err)
	return s
}

func TestNewSigner_GeneratesKeyWhenSecretEmpty(t *testing.T) {
	a, err := NewSigner(SignerConfig{})
	require.NoError(t, err)
	b, err := NewSigner(SignerConfig{})
	require.NoError(t, err)

	assert.Len(t, a.secret, generatedSecretLength)
	assert.NotEqual(t, a.secret, b.secret)
	assert.Equal(t, DefaultIssuer, a.Issuer())

	token, _, err := a.Issue("alice", "sid", time.Now())
	require.NoError(t, err)
	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "a token from another process key must not verify")
}

func TestNewSigner_RejectsWeakSecret(t *testing.T) {
	_, err := NewSigner(SignerConfig{Secret: "short"})
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestSigner_IssueAndVerify(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	s := newTestSigner(t, time.Hour, func() time.Time { return now })

	token, exp, err := s.Issue("alice", "session-1", now)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.True(t, claims.IssuedAt.Equal(now))
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestSigner_NoTTLOmitsExpiry(t *testing.T) {
	s := newTestSigner(t, 0, nil)

	token, exp, err := s.Issue("bob", "sid", time.Now())
	require.NoError(t, err)
	assert.True(t, exp.IsZero())

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.IsZero())
}

func TestSigner_RejectsExpiredToken(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	s := newTestSigner(t, time.Hour, nil)

	token, _, err := s.Issue("alice", "sid", issued)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsWrongIssuer(t *testing.T) {
	s := newTestSigner(t, 0, nil)

	claims := jwt.RegisteredClaims{
		Issuer:   "someone-else",
		Subject:  "alice",
		ID:       "sid",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = s.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsOtherAlgorithms(t *testing.T) {
	s := newTestSigner(t, 0, nil)
	claims := jwt.RegisteredClaims{
		Issuer:   DefaultIssuer,
		Subject:  "alice",
		ID:       "sid",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.Verify(hs256)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsMissingSessionClaims(t *testing.T) {
	s := newTestSigner(t, 0, nil)
	claims := jwt.RegisteredClaims{
		Issuer:   DefaultIssuer,
		Subject:  "alice",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_MalformedInputNeverPanics(t *testing.T) {
	s := newTestSigner(t, time.Hour, nil)
	inputs := []string{
		"",
		".",
		"..",
		"not-a-token",
		"a.b.c",
		"eyJhbGciOiJIUzUxMiJ9..",
		"eyJhbGciOiJIUzUxMiJ9.eyJzdWIiOjF9.sig",
		strings.Repeat("A", 10000),
		"\x00\xff.\x00.\x00",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, err := s.Verify(in)
			assert.ErrorIs(t, err, ErrInvalidToken, "input %q", in)
		})
	}
}

// tamperSignature changes one character in the middle of the signature segment. Middle
// characters map to whole decoded bits, so the signature bytes are guaranteed to change.
func tamperSignature(token string) string {
	dot := strings.LastIndex(token, ".")
	i := dot + (len(token)-dot)/2
	replacement := byte('A')
	if token[i] == 'A' {
		replacement = 'B'
	}
	return token[:i] + string(replacement) + token[i+1:]
}

func TestSigner_RejectsTamperedToken(t *testing.T) {
	s := newTestSigner(t, time.Hour, nil)
	token, _, err := s.Issue("alice", "sid", time.Now())
	require.NoError(t, err)

	_, err = s.Verify(tamperSignature(token))
	assert.ErrorIs(t, err, ErrInvalidToken)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	payload[len(payload)/2] ^= 0x01
	_, err = s.Verify(parts[0] + "." + string(payload) + "." + parts[2])
	assert.ErrorIs(t, err, ErrInvalidToken)
}
