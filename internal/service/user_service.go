package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/brehash/kscinventory-sub002/internal/dto"
	"github.com/brehash/kscinventory-sub002/internal/model"
	"github.com/brehash/kscinventory-sub002/internal/repository"

	"firebase.google.com/go/v4/auth"
)

// ClaimsClient is the part of the Firebase Auth admin client used to manage roles.
type ClaimsClient interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

var _ ClaimsClient = (*auth.Client)(nil)

// UserService mirrors Firebase Auth accounts into the users collection and
// manages the role custom claim.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	SetRole(ctx context.Context, actor model.Actor, uid, role string) (*dto.UserResponse, error)
	// Me returns the caller's profile, creating the users document on first use.
	Me(ctx context.Context, actor model.Actor) (*dto.UserResponse, error)
}

type userService struct {
	repo     repository.UserRepository
	auth     ClaimsClient
	activity ActivityService
}

func NewUserService(repo repository.UserRepository, authClient ClaimsClient, activity ActivityService) UserService {
	return &userService{repo: repo, auth: authClient, activity: activity}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userToResponse(&users[i]))
	}
	return out, nil
}

// SetRole writes the claim first: the claim is what authorisation reads, the
// users document is only a mirror for listing. New tokens carry the role;
// already issued ones keep the old claim until they are refreshed.
func (s *userService) SetRole(ctx context.Context, actor model.Actor, uid, role string) (*dto.UserResponse, error) {
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidInput)
	}
	if uid == actor.UID && role != model.RoleAdmin {
		return nil, fmt.Errorf("admins cannot demote themselves: %w", ErrConflict)
	}

	u, err := SetUserRole(ctx, s.auth, s.repo, uid, role)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, model.ActionRoleChange, model.EntityUser, uid, u.Email, "role "+role)
	resp := userToResponse(u)
	return &resp, nil
}

func (s *userService) Me(ctx context.Context, actor model.Actor) (*dto.UserResponse, error) {
	u, err := s.repo.FindByUID(ctx, actor.UID)
	if errors.Is(err, repository.ErrNotFound) {
		u = &model.User{
			UID:         actor.UID,
			Email:       actor.Email,
			DisplayName: actor.Name,
			Role:        actor.Role,
			Active:      true,
		}
		if err := s.repo.Upsert(ctx, u); err != nil {
			return nil, fmt.Errorf("create user profile: %w", err)
		}
	} else if err != nil {
		return nil, err
	}
	// The token is authoritative for the role.
	u.Role = actor.Role
	resp := userToResponse(u)
	return &resp, nil
}

// SetUserRole sets the role claim, keeping any other custom claims, and
// mirrors the account into the users collection. Shared with cmd/setrole.
func SetUserRole(ctx context.Context, client ClaimsClient, repo repository.UserRepository, uid, role string) (*model.User, error) {
	rec, err := client.GetUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return nil, fmt.Errorf("user %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get firebase user: %w", err)
	}

	claims := make(map[string]interface{}, len(rec.CustomClaims)+1)
	for k, v := range rec.CustomClaims {
		claims[k] = v
	}
	claims["role"] = role
	if err := client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return nil, fmt.Errorf("set custom claims: %w", err)
	}

	u := &model.User{UID: uid, Role: role, Active: !rec.Disabled}
	if existing, err := repo.FindByUID(ctx, uid); err == nil {
		u.CreatedAt = existing.CreatedAt
	}
	if rec.UserInfo != nil {
		u.Email = rec.Email
		u.DisplayName = rec.DisplayName
	}
	if err := repo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("mirror user: %w", err)
	}
	return u, nil
}

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Active:      u.Active,
	}
}
