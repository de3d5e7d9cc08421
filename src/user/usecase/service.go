package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/blockhaven/backend/src/logger"
	"github.com/blockhaven/backend/src/user/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload issued on login.
type Claims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

type Service struct {
	repo      domain.Repository
	logger    *logger.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewService(repo domain.Repository, logg *logger.Logger, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		logger:    logg,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string, isAdmin bool) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin seeds the bootstrap admin account. Idempotent: an existing
// account with that email is left untouched, password included, so a restart
// never resets credentials an operator has since changed.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	u, err := s.Register(ctx, email, password, true)
	if err != nil {
		return err
	}
	s.logger.Infof("seeded admin account %s (id=%s)", email, u.ID)
	return nil
}

// Authenticate verifies credentials and issues a signed HS256 token. Unknown
// emails, wrong passwords and deactivated accounts all fail the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !u.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, u, nil
}

// VerifyToken parses and validates a bearer token, returning its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}
