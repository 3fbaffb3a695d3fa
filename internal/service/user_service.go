package service

import (
	"context"
	"strings"

	"github.com/pharmatrust/docvault/internal/model"
	appErr "github.com/pharmatrust/docvault/internal/pkg/errors"
	"github.com/pharmatrust/docvault/internal/pkg/password"
	"github.com/pharmatrust/docvault/internal/pkg/timeutil"
	"github.com/pharmatrust/docvault/internal/policy"
	"github.com/pharmatrust/docvault/internal/repo"
)

// UserService covers user administration. Every mutation is admin-only.
type UserService struct {
	users *repo.UserRepo
	auth  *AuthService
	audit *AuditService
}

func NewUserService(users *repo.UserRepo, auth *AuthService, audit *AuditService) *UserService {
	return &UserService{users: users, auth: auth, audit: audit}
}

type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

func (s *UserService) Create(ctx context.Context, actor model.Actor, input UserCreateInput, prov model.Provenance) (*model.User, error) {
	if !policy.CanAdminister(actor) {
		return nil, appErr.ErrForbidden
	}
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, appErr.ErrInvalid
	}
	if !model.ValidRole(input.Role) {
		return nil, appErr.ErrInvalid
	}
	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		State:        model.UserStateActive,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.AuditUserCreated, AuditRefs{}, "user "+user.Email, prov)
	return user, nil
}

func (s *UserService) List(ctx context.Context, actor model.Actor, limit, offset uint) ([]model.User, error) {
	if !policy.CanAdminister(actor) {
		return nil, appErr.ErrForbidden
	}
	return s.users.List(ctx, limit, offset)
}

func (s *UserService) UpdateRole(ctx context.Context, actor model.Actor, userID string, role model.Role, prov model.Provenance) error {
	if !policy.CanAdminister(actor) {
		return appErr.ErrForbidden
	}
	if !model.ValidRole(role) {
		return appErr.ErrInvalid
	}
	if err := s.users.UpdateRole(ctx, userID, role, timeutil.NowUnix()); err != nil {
		return err
	}
	s.auth.Invalidate(userID)
	s.audit.Record(ctx, actor, model.AuditUserRoleChanged, AuditRefs{}, "user "+userID+" role "+string(role), prov)
	return nil
}

func (s *UserService) Disable(ctx context.Context, actor model.Actor, userID string, prov model.Provenance) error {
	if !policy.CanAdminister(actor) {
		return appErr.ErrForbidden
	}
	if actor.ID == userID {
		return appErr.ErrConflict
	}
	if err := s.users.UpdateState(ctx, userID, model.UserStateDisabled, timeutil.NowUnix()); err != nil {
		return err
	}
	s.auth.Invalidate(userID)
	s.audit.Record(ctx, actor, model.AuditUserDisabled, AuditRefs{}, "user "+userID, prov)
	return nil
}

// Bootstrap seeds the first admin account on an empty users table.
func (s *UserService) Bootstrap(ctx context.Context, name, email, plain string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 || email == "" || plain == "" {
		return nil
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}
	now := timeutil.NowUnix()
	if name == "" {
		name = "admin"
	}
	return s.users.Create(ctx, &model.User{
		ID:           newID(),
		Name:         name,
		Email:        strings.TrimSpace(strings.ToLower(email)),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		State:        model.UserStateActive,
		Ctime:        now,
		Mtime:        now,
	})
}
