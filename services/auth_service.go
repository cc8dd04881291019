package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"libretrack/config"
	"libretrack/models"
	"libretrack/repository"
)

// blacklistPrefix namespaces revoked-token keys in Redis.
const blacklistPrefix = "auth:blacklist:"

// AuthService handles registration, login and token revocation. It is
// the single place that decides a caller's identity and role; everything
// downstream trusts the claims it mints.
type AuthService struct {
	store repository.Store
	jwt   *config.JWTService
	redis *redis.Client
	log   *zap.Logger
}

// NewAuthService creates an auth service. redisClient may be nil, in
// which case logout revocation is a no-op.
func NewAuthService(store repository.Store, jwtService *config.JWTService, redisClient *redis.Client, log *zap.Logger) *AuthService {
	return &AuthService{
		store: store,
		jwt:   jwtService,
		redis: redisClient,
		log:   log,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Login verifies the credentials and issues a bearer token carrying the
// user's id and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID))
	return user, token, nil
}

// Logout revokes the bearer token by blacklisting it in Redis until its
// natural expiry. Without Redis the token simply ages out.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		// Already invalid; nothing to revoke.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, blacklistPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// TokenRevoked reports whether the token was blacklisted by Logout.
func (s *AuthService) TokenRevoked(ctx context.Context, token string) bool {
	if s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		// Fail open: an unreachable Redis must not lock everyone out.
		s.log.Warn("blacklist check failed", zap.Error(err))
		return false
	}
	return n > 0
}

// GetUser fetches one account.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Users().List(ctx)
}
