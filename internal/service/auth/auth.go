package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nkiryanov/booklend/internal/apperrors"
	"github.com/nkiryanov/booklend/internal/models"
	"github.com/nkiryanov/booklend/internal/repository"
	"github.com/nkiryanov/booklend/internal/service/auth/tokenmanager"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Issue and verify access tokens
type TokenManager interface {
	Issue(user models.User) (models.IssuedToken, error)
	Verify(token string) (models.Principal, error)
}

var _ TokenManager = (*tokenmanager.TokenManager)(nil)

type Config struct {
	// Header to read access token from and write it to
	// 'Authorization' if not set
	AccessHeaderName string

	// Auth scheme expected before the token
	// 'Bearer' if not set
	AccessAuthScheme string

	// Hasher to user during user registration or login process
	// BcryptHasher if not set
	Hasher PasswordHasher
}

type RegisterParams struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Auth service
type AuthService struct {
	accessHeaderName string
	accessAuthScheme string

	hasher   PasswordHasher
	tokens   TokenManager
	userRepo repository.UserRepo
}

func NewService(cfg Config, tokens TokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	setDefault := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefault(&cfg.AccessHeaderName, defaultAccessHeaderName)
	setDefault(&cfg.AccessAuthScheme, defaultAccessAuthScheme)

	if cfg.Hasher == nil {
		cfg.Hasher = BcryptHasher{}
	}

	return &AuthService{
		accessHeaderName: cfg.AccessHeaderName,
		accessAuthScheme: cfg.AccessAuthScheme,
		hasher:           cfg.Hasher,
		tokens:           tokens,
		userRepo:         userRepo,
	}, nil
}

// Register new user and issue access token for it
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (models.User, models.IssuedToken, error) {
	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return models.User{}, models.IssuedToken{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Email:          p.Email,
		Username:       p.Username,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		HashedPassword: hash,
	})
	if err != nil {
		return models.User{}, models.IssuedToken{}, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return user, models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, token, nil
}

// Login by email and password
// Unknown email and wrong password are both reported as apperrors.ErrUserNotFound
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.IssuedToken, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, models.IssuedToken{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, models.IssuedToken{}, apperrors.ErrUserNotFound
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.User{}, models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return user, token, nil
}

// Restore request sender identity from request headers
// Return apperrors.ErrAuthMissing if there is no well formed credential at all,
// apperrors.ErrTokenInvalid if credential present but not verified
func (s *AuthService) Authenticate(headers http.Header) (models.Principal, error) {
	value := headers.Get(s.accessHeaderName)
	if value == "" {
		return models.Principal{}, apperrors.ErrAuthMissing
	}

	scheme, token, found := strings.Cut(value, " ")
	if !found || scheme != s.accessAuthScheme || token == "" || strings.ContainsAny(token, " \t") {
		return models.Principal{}, apperrors.ErrAuthMissing
	}

	principal, err := s.tokens.Verify(token)
	if err != nil {
		return models.Principal{}, apperrors.ErrTokenInvalid
	}

	return principal, nil
}

// Write access token to response header the same way it expected in requests
func (s *AuthService) SetToken(w http.ResponseWriter, token models.IssuedToken) {
	w.Header().Set(s.accessHeaderName, s.accessAuthScheme+" "+token.Value)
}

// Errors that mean 'request not authenticated'
func IsAuthError(err error) bool {
	return errors.Is(err, apperrors.ErrAuthMissing) || errors.Is(err, apperrors.ErrTokenInvalid)
}
