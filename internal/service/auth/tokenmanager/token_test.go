package tokenmanager

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/models"
)

const testSecret = "test-secret-key-which-is-long-enough"

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:        42,
		CreatedAt: mustParseTime("2024-01-01 19:00:01Z"),
		Email:     "frodo@shire.me",
		Username:  "frodo",
	}

	// Token manager with controlled clock
	newManager := func(t *testing.T, ttl time.Duration, clock *time.Time) *TokenManager {
		m, err := New(Config{SecretKey: testSecret, TTL: ttl})
		require.NoError(t, err, "token manager should be created without errors")
		m.now = func() time.Time { return *clock }
		return m
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{SecretKey: testSecret})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, []byte(testSecret), m.key, "secret key should be set")
		require.Equal(t, defaultTokenTTL, m.ttl, "default token TTL should be set")
		require.Equal(t, defaultSigningMethod, m.alg.Alg(), "default signing method should be set")
	})

	t.Run("new fail", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  Config
		}{
			{"empty secret", Config{}},
			{"short secret", Config{SecretKey: "short"}},
			{"asymmetric alg", Config{SecretKey: testSecret, Alg: "RS256"}},
			{"unknown alg", Config{SecretKey: testSecret, Alg: "none-such"}},
			{"negative ttl", Config{SecretKey: testSecret, TTL: -time.Minute}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(tt.cfg)

				require.ErrorIs(t, err, apperrors.ErrConfiguration)
			})
		}
	})

	t.Run("issue", func(t *testing.T) {
		now := mustParseTime("2025-03-14 10:00:00Z")
		m := newManager(t, 15*time.Minute, &now)

		issued, err := m.Issue(testUser)
		require.NoError(t, err)
		assert.NotEmpty(t, issued.Value, "access token should not be empty")
		assert.Equal(t, now.Add(15*time.Minute), issued.ExpiresAt)

		// Parse and check claims with plain jwt library
		token, err := jwt.ParseWithClaims(issued.Value, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}, jwt.WithTimeFunc(func() time.Time { return now }))
		require.NoError(t, err)

		claims, ok := token.Claims.(*AccessTokenClaims)
		require.True(t, ok, "claims should be of type AccessTokenClaims")
		assert.Equal(t, int64(42), claims.UserID, "user ID in token should match")
		assert.Equal(t, "frodo@shire.me", claims.Email)
		assert.NotEmpty(t, claims.ID, "token has to has jti")
		assert.Equal(t, now, claims.IssuedAt.Time.UTC())
		assert.Equal(t, issued.ExpiresAt, claims.ExpiresAt.Time.UTC())
	})

	t.Run("issue different tokens", func(t *testing.T) {
		now := mustParseTime("2025-03-14 10:00:00Z")
		m := newManager(t, time.Hour, &now)

		first, err := m.Issue(testUser)
		require.NoError(t, err)
		second, err := m.Issue(testUser)
		require.NoError(t, err)

		assert.NotEqual(t, first.Value, second.Value, "jti must make tokens unique")
	})

	t.Run("verify roundtrip", func(t *testing.T) {
		now := mustParseTime("2025-03-14 10:00:00Z")
		m := newManager(t, time.Hour, &now)
		issued, err := m.Issue(testUser)
		require.NoError(t, err)

		principal, err := m.Verify(issued.Value)

		require.NoError(t, err)
		assert.Equal(t, int64(42), principal.ID)
		assert.Equal(t, "frodo@shire.me", principal.Email)
		assert.True(t, now.Equal(principal.IssuedAt))
		assert.True(t, issued.ExpiresAt.Equal(principal.ExpiresAt))
	})

	t.Run("verify expired", func(t *testing.T) {
		now := mustParseTime("2025-03-14 10:00:00Z")
		m := newManager(t, time.Minute, &now)
		issued, err := m.Issue(testUser)
		require.NoError(t, err)

		now = now.Add(59 * time.Second)
		_, err = m.Verify(issued.Value)
		require.NoError(t, err, "token still valid before expiry")

		now = now.Add(time.Second)
		_, err = m.Verify(issued.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "token must be invalid at expiry instant")
	})

	t.Run("verify fail", func(t *testing.T) {
		now := mustParseTime("2025-03-14 10:00:00Z")
		m := newManager(t, time.Hour, &now)
		issued, err := m.Issue(testUser)
		require.NoError(t, err)

		other, err := New(Config{SecretKey: strings.Repeat("x", MinSecretKeyLength)})
		require.NoError(t, err)
		other.now = m.now
		foreign, err := other.Issue(testUser)
		require.NoError(t, err)

		parts := strings.Split(issued.Value, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

		noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			UserID: 42,
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		tests := []struct {
			name  string
			token string
		}{
			{"empty", ""},
			{"garbage", "not-a-token"},
			{"tampered signature", tampered},
			{"signed by other key", foreign.Value},
			{"alg none", noneToken},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := m.Verify(tt.token)

				require.Error(t, err)
				require.Equal(t, apperrors.ErrTokenInvalid, err, "failure cause must not be exposed")
			})
		}
	})
}
