package users

import (
	"context"
	"errors"
	"log/slog"

	"reviewhub/proj/internal/domain/fields"
	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
)

type UserStorage interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	List(ctx context.Context, search string, filters filters.Filters) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, username string) error
}

type UserService struct {
	log     *slog.Logger
	storage UserStorage
}

func New(log *slog.Logger, storage UserStorage) *UserService {
	return &UserService{
		log:     log,
		storage: storage,
	}
}

// UserInput is the admin-facing write shape; nil pointers mean the field
// was not supplied.
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *fields.Role
}

// ProfileInput is the self-service write shape. It deliberately has no
// role or username: both are immutable through /me.
type ProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	const op = "users.UserService.Get"
	log := s.log.With("op", op, "username", username)
	user, err := s.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, search string, filters filters.Filters) ([]models.User, int, error) {
	const op = "users.UserService.List"
	users, total, err := s.storage.List(ctx, search, filters)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) Create(ctx context.Context, input UserInput) (*models.User, error) {
	const op = "users.UserService.Create"
	log := s.log.With("op", op, "username", input.Username)
	user := &models.User{
		Username: *input.Username,
		Email:    *input.Email,
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	created, err := s.storage.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("user already exists")
			return nil, ErrUserAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return created, nil
}

func (s *UserService) Update(ctx context.Context, username string, input UserInput) (*models.User, error) {
	const op = "users.UserService.Update"
	log := s.log.With("op", op, "username", username)
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("username or email already taken")
			return nil, ErrUserAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

// UpdateProfile applies a self-service patch. Role and username never
// change here, whatever the request carried (privilege self-escalation
// guard).
func (s *UserService) UpdateProfile(ctx context.Context, requester *models.User, input ProfileInput) (*models.User, error) {
	const op = "users.UserService.UpdateProfile"
	log := s.log.With("op", op, "username", requester.Username)
	user, err := s.Get(ctx, requester.Username)
	if err != nil {
		return nil, err
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("email already taken")
			return nil, ErrUserAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	const op = "users.UserService.Delete"
	log := s.log.With("op", op, "username", username)
	if err := s.storage.Delete(ctx, username); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return ErrUserNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
