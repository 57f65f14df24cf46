package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"reviewhub/proj/internal/domain/fields"
	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStorage struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{users: make(map[string]*models.User)}
}

func (s *fakeUserStorage) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *fakeUserStorage) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, storage.ErrConflict
		}
	}
	s.nextID++
	user.ID = s.nextID
	s.users[user.Username] = user
	return user, nil
}

func (s *fakeUserStorage) List(ctx context.Context, search string, filters filters.Filters) ([]models.User, int, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (s *fakeUserStorage) Update(ctx context.Context, user *models.User) (*models.User, error) {
	for username, u := range s.users {
		if u.ID == user.ID {
			delete(s.users, username)
			s.users[user.Username] = user
			return user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeUserStorage) Delete(ctx context.Context, username string) error {
	if _, ok := s.users[username]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, username)
	return nil
}

func newTestService(t *testing.T) (*UserService, *fakeUserStorage) {
	t.Helper()
	fake := newFakeUserStorage()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, fake), fake
}

func ptr[T any](v T) *T { return &v }

func TestCreate(t *testing.T) {
	ctx := context.Background()
	t.Run("DefaultsToUserRole", func(t *testing.T) {
		service, _ := newTestService(t)
		user, err := service.Create(ctx, UserInput{
			Username: ptr("alice"),
			Email:    ptr("alice@example.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, fields.RoleUser, user.Role)
	})
	t.Run("WithRole", func(t *testing.T) {
		service, _ := newTestService(t)
		role := fields.RoleModerator
		user, err := service.Create(ctx, UserInput{
			Username: ptr("mod"),
			Email:    ptr("mod@example.com"),
			Role:     &role,
		})
		require.NoError(t, err)
		assert.Equal(t, fields.RoleModerator, user.Role)
	})
	t.Run("DuplicateUsername", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.Create(ctx, UserInput{Username: ptr("alice"), Email: ptr("alice@example.com")})
		require.NoError(t, err)
		_, err = service.Create(ctx, UserInput{Username: ptr("alice"), Email: ptr("other@example.com")})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	t.Run("AdminCanChangeRole", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.Create(ctx, UserInput{Username: ptr("alice"), Email: ptr("alice@example.com")})
		require.NoError(t, err)
		role := fields.RoleModerator
		updated, err := service.Update(ctx, "alice", UserInput{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, fields.RoleModerator, updated.Role)
	})
	t.Run("UnknownUser", func(t *testing.T) {
		service, _ := newTestService(t)
		_, err := service.Update(ctx, "nobody", UserInput{Bio: ptr("hi")})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	service, fake := newTestService(t)
	created, err := service.Create(ctx, UserInput{Username: ptr("alice"), Email: ptr("alice@example.com")})
	require.NoError(t, err)

	updated, err := service.UpdateProfile(ctx, created, ProfileInput{
		Bio:       ptr("hello"),
		FirstName: ptr("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "Alice", updated.FirstName)

	// role and username stay whatever the row already had
	assert.Equal(t, fields.RoleUser, updated.Role)
	assert.Equal(t, "alice", updated.Username)
	stored, err := fake.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, fields.RoleUser, stored.Role)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)
	_, err := service.Create(ctx, UserInput{Username: ptr("alice"), Email: ptr("alice@example.com")})
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, "alice"))
	assert.ErrorIs(t, service.Delete(ctx, "alice"), ErrUserNotFound)
}
