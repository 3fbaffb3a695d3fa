package service

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/jwt"
	"github.com/pharmatrust/docvault/internal/pkg/password"
	"github.com/pharmatrust/docvault/internal/repo"
)

const actorCacheSize = 1024

// AuthService resolves actor identity: login issues tokens, Actor maps a
// token subject to {id, role, name}. Lookups are cached with a short TTL so
// every request does not hit the users table; role changes invalidate.
type AuthService struct {
	users  *repo.UserRepo
	secret []byte
	ttl    time.Duration
	actors *lru.LRU[string, model.Actor]
}

func NewAuthService(users *repo.UserRepo, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		secret: secret,
		ttl:    ttl,
		actors: lru.NewLRU[string, model.Actor](actorCacheSize, nil, 30*time.Second),
	}
}

type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, email, plain string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrUnauthorized
		}
		return nil, err
	}
	if user.State != model.UserStateActive {
		return nil, appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plain); err != nil {
		return nil, appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.ID, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: *user}, nil
}

// Actor resolves the current actor for a request. Disabled users resolve to
// ErrUnauthorized even with a valid token.
func (s *AuthService) Actor(ctx context.Context, userID string) (model.Actor, error) {
	if actor, ok := s.actors.Get(userID); ok {
		return actor, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return model.Actor{}, appErr.ErrUnauthorized
		}
		return model.Actor{}, err
	}
	if user.State != model.UserStateActive {
		return model.Actor{}, appErr.ErrUnauthorized
	}
	actor := model.Actor{ID: user.ID, Name: user.Name, Role: user.Role}
	s.actors.Add(userID, actor)
	return actor, nil
}

// Invalidate drops a cached actor after role or state changes.
func (s *AuthService) Invalidate(userID string) {
	s.actors.Remove(userID)
}
