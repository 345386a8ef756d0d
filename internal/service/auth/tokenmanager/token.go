package tokenmanager

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/models"
)

const (
	defaultTokenTTL      = time.Hour
	defaultSigningMethod = "HS256"

	// HMAC key shorter than the hash output weakens the signature
	MinSecretKeyLength = 32
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"id"`
	Email  string `json:"email"`
}

// Token manager with sensible default
type Config struct {
	// Secret key to sign access token
	// Required to be set, at least MinSecretKeyLength bytes
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access token lifetime
	// If not set than default is used
	TTL time.Duration
}

// Issue and verify self contained access tokens
// Nothing is stored: token is valid until it expires
type TokenManager struct {
	key []byte
	alg jwt.SigningMethod
	ttl time.Duration

	// Clock, replaced in tests
	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if len(cfg.SecretKey) < MinSecretKeyLength {
		return nil, fmt.Errorf("%w: secret key must be at least %d bytes", apperrors.ErrConfiguration, MinSecretKeyLength)
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if _, ok := alg.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: unsupported signing method %q", apperrors.ErrConfiguration, cfg.Alg)
	}

	if cfg.TTL == 0 {
		cfg.TTL = defaultTokenTTL
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive", apperrors.ErrConfiguration)
	}

	return &TokenManager{
		key: []byte(cfg.SecretKey),
		alg: alg,
		ttl: cfg.TTL,
		now: time.Now,
	}, nil
}

// Issue access token for the user
func (m *TokenManager) Issue(user models.User) (models.IssuedToken, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: user.ID,
			Email:  user.Email,
		},
	)

	value, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Parse and validate access token
// Any failure (bad signature, expired, malformed, wrong alg) reported as apperrors.ErrTokenInvalid
func (m *TokenManager) Verify(access string) (models.Principal, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || claims.UserID == 0 || claims.IssuedAt == nil {
		return models.Principal{}, apperrors.ErrTokenInvalid
	}

	return models.Principal{
		ID:        claims.UserID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
