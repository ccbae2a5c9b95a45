package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"flowstate-server/models"
	"flowstate-server/utils/errors"
)

// Sessions is the server-side session table. Only the opaque session token
// crosses the wire; everything else the client knows about the user comes
// from the API itself.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

func (s *RedisSessions) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	if err := s.client.Set(ctx, "session:"+token, userID, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "STORE_UNAVAILABLE", "Session store unavailable", errors.ErrStoreUnavailable.Status)
	}
	return token, nil
}

func (s *RedisSessions) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, "session:"+token).Result()
	if err == redis.Nil {
		return "", errors.ErrUnauthorized
	}
	if err != nil {
		return "", errors.Wrap(err, "STORE_UNAVAILABLE", "Session store unavailable", errors.ErrStoreUnavailable.Status)
	}
	return userID, nil
}

func (s *RedisSessions) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, "session:"+token).Err(); err != nil {
		return errors.Wrap(err, "STORE_UNAVAILABLE", "Session store unavailable", errors.ErrStoreUnavailable.Status)
	}
	return nil
}

// AuthService exchanges a provider-signed identity token for a server
// session, creating the user document on first login.
type AuthService struct {
	users     UserStore
	sessions  Sessions
	idpSecret string
	logger    *zap.Logger
}

func NewAuthService(users UserStore, sessions Sessions, idpSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		idpSecret: idpSecret,
		logger:    logger,
	}
}

// Login verifies the identity token, upserts the user by provider subject,
// and mints a session. The stored profile wins over token claims after
// first login so owner edits are never clobbered.
func (s *AuthService) Login(ctx context.Context, identityToken string) (models.User, string, error) {
	claims, err := s.verifyIdentityToken(identityToken)
	if err != nil {
		return models.User{}, "", err
	}

	user, err := s.users.GetUserByProvider(ctx, claims.Subject)
	if err == errors.ErrNotFound {
		user = models.User{
			ID:              uuid.New().String(),
			ProviderID:      claims.Subject,
			Name:            claims.Name,
			Email:           claims.Email,
			ShowEmail:       true,
			Picture:         claims.Picture,
			BookmarkedSpots: []string{},
			Following:       []string{},
			Followers:       []string{},
			Tasks:           []models.Task{},
		}
		if err := s.users.InsertUser(ctx, user); err != nil {
			return models.User{}, "", err
		}
		s.logger.Info("user created on first login", zap.String("user_id", user.ID))
	} else if err != nil {
		return models.User{}, "", err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

type identityClaims struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

func (s *AuthService) verifyIdentityToken(identityToken string) (identityClaims, error) {
	token, err := jwt.Parse(identityToken, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", errors.ErrUnauthorized.Status)
		}
		return []byte(s.idpSecret), nil
	})
	if err != nil || !token.Valid {
		return identityClaims{}, errors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identityClaims{}, errors.ErrUnauthorized
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return identityClaims{}, errors.ErrUnauthorized
	}

	parsed := identityClaims{Subject: sub}
	if name, ok := claims["name"].(string); ok {
		parsed.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		parsed.Email = email
	}
	if picture, ok := claims["picture"].(string); ok {
		parsed.Picture = picture
	}
	return parsed, nil
}
