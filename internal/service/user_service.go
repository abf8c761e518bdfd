package service

import (
	"context"
	"errors"

	"storeauth/internal/entity"
	"storeauth/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type ListUsersInput struct {
	Name    string
	Email   string
	Page    int
	Limit   int
	OrderBy string
}

type UpdateUserInput struct {
	Name   *string
	Images []string
}

// UserService serves profile reads and edits plus the caller's own sessions.
type UserService struct {
	users    repository.UserRepository
	sessions *SessionTracker
}

func NewUserService(users repository.UserRepository, sessions *SessionTracker) *UserService {
	return &UserService{users: users, sessions: sessions}
}

func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) ([]entity.User, error) {
	filter := repository.UserFilter{
		Name:      input.Name,
		Email:     input.Email,
		Page:      input.Page,
		Limit:     input.Limit,
		OrderDesc: input.OrderBy == "desc",
	}
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(err)
	}
	if len(users) == 0 {
		return nil, newError(ErrNotFound, "Users not found")
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, msgUserNotFound)
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*entity.User, error) {
	err := s.users.UpdateProfile(ctx, id, repository.UserProfileUpdate{
		Name:   input.Name,
		Images: input.Images,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, msgUserNotFound)
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes the account and every session it owns.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, msgUserNotFound)
	}
	if err != nil {
		return storeFailure(err)
	}
	return s.sessions.DeleteAll(ctx, id)
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.GetUser(ctx, userID)
}

func (s *UserService) MySessions(ctx context.Context, userID uuid.UUID) ([]entity.Session, error) {
	return s.sessions.List(ctx, userID)
}

// Logout forgets the session for the caller's origin. Issued tokens stay
// valid until they expire.
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID, origin string) error {
	return s.sessions.DeleteAllForOrigin(ctx, userID, origin)
}

func (s *UserService) DeleteSession(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error {
	return s.sessions.DeleteOne(ctx, userID, sessionID)
}
