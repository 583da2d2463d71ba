package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer tags every token minted by this service.
const DefaultIssuer = "BookmarkApplication"

const (
	minSecretLength       = 32
	generatedSecretLength = 64
)

var (
	// ErrInvalidToken is returned by Verify for every rejected token, whatever the reason.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakSecret is returned when a configured signing secret is too short.
	ErrWeakSecret = fmt.Errorf("signing secret must be at least %d bytes", minSecretLength)
)

// SignerConfig configures token signing.
type SignerConfig struct {
	// Secret is the HMAC key. Empty means a random key is generated.
	Secret string
	Issuer string
	// TTL bounds token lifetime; zero issues tokens without an expiry claim.
	TTL time.Duration
	// Now overrides the clock used when validating time based claims.
	Now func() time.Time
}

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	Subject   string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer issues and verifies HS512 session tokens. The key is read-only after construction.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner builds a signer. An error here is fatal: the process must not serve traffic.
func NewSigner(cfg SignerConfig) (*Signer, error) {
	var secret []byte
	if cfg.Secret == "" {
		secret = make([]byte, generatedSecretLength)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
	} else {
		if len(cfg.Secret) < minSecretLength {
			return nil, ErrWeakSecret
		}
		secret = []byte(cfg.Secret)
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if cfg.TTL < 0 {
		return nil, errors.New("token ttl must not be negative")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Signer{secret: secret, issuer: issuer, ttl: cfg.TTL, now: now}, nil
}

// Issue signs a token for subject bound to sessionID. The returned expiry is zero when the
// signer has no TTL.
func (s *Signer) Issue(subject, sessionID string, issuedAt time.Time) (string, time.Time, error) {
	claims := jwt.RegisteredClaims{
		Issuer:   s.issuer,
		Subject:  subject,
		ID:       sessionID,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	}
	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = issuedAt.Add(s.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks algorithm, signature, issuer and time claims. Any failure, including a panic
// inside the parser, yields ErrInvalidToken.
func (s *Signer) Verify(tokenStr string) (claims *TokenClaims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, ErrInvalidToken
		}
	}()

	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	}
	if s.ttl > 0 {
		options = append(options, jwt.WithExpirationRequired())
	}

	registered := &jwt.RegisteredClaims{}
	parsed, err := jwt.NewParser(options...).ParseWithClaims(tokenStr, registered, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS512 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if registered.Subject == "" || registered.ID == "" || registered.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	out := &TokenClaims{
		Subject:   registered.Subject,
		SessionID: registered.ID,
		IssuedAt:  registered.IssuedAt.Time,
	}
	if registered.ExpiresAt != nil {
		out.ExpiresAt = registered.ExpiresAt.Time
	}
	return out, nil
}

// Issuer returns the issuer tag embedded in every token.
func (s *Signer) Issuer() string {
	return s.issuer
}
