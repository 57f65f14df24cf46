package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"reviewhub/proj/internal/domain/fields"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeUserStorage struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{users: make(map[string]*models.User)}
}

func (s *fakeUserStorage) GetOrCreate(ctx context.Context, username, email string, confirmationCode int) (*models.User, bool, error) {
	if existing, ok := s.users[username]; ok {
		if existing.Email != email {
			return nil, false, storage.ErrConflict
		}
		return existing, false, nil
	}
	for _, u := range s.users {
		if u.Email == email {
			return nil, false, storage.ErrConflict
		}
	}
	s.nextID++
	code := confirmationCode
	user := &models.User{
		ID:               s.nextID,
		Username:         username,
		Email:            email,
		Role:             fields.RoleUser,
		ConfirmationCode: &code,
	}
	s.users[username] = user
	return user, true, nil
}

func (s *fakeUserStorage) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStorage) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

type fakeMailer struct {
	sent    []sentMail
	failing bool
}

type sentMail struct {
	recipient string
	tmplName  string
	tmplData  any
}

func (m *fakeMailer) Send(recipient string, tmplName string, tmplData any) error {
	if m.failing {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{recipient, tmplName, tmplData})
	return nil
}

func newTestService(t *testing.T) (*AuthService, *fakeUserStorage, *fakeMailer) {
	t.Helper()
	storage := newFakeUserStorage()
	mailer := &fakeMailer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, mailer, storage, testSecret, time.Hour), storage, mailer
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	t.Run("NewUser", func(t *testing.T) {
		service, _, mailer := newTestService(t)
		user, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, user.ConfirmationCode)
		assert.GreaterOrEqual(t, *user.ConfirmationCode, 10000)
		assert.LessOrEqual(t, *user.ConfirmationCode, 99999)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "alice@example.com", mailer.sent[0].recipient)
		assert.Equal(t, "confirmation_code.html", mailer.sent[0].tmplName)
	})
	t.Run("ReservedUsername", func(t *testing.T) {
		service, _, mailer := newTestService(t)
		_, err := service.Signup(ctx, "me", "me@example.com")
		var invalidErr *InvalidDataError
		require.ErrorAs(t, err, &invalidErr)
		assert.Empty(t, mailer.sent)
	})
	t.Run("ResignupKeepsStoredCode", func(t *testing.T) {
		service, _, mailer := newTestService(t)
		first, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		second, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, *first.ConfirmationCode, *second.ConfirmationCode)
		assert.Len(t, mailer.sent, 2)
	})
	t.Run("UsernameTakenWithOtherEmail", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		_, err = service.Signup(ctx, "alice", "other@example.com")
		var invalidErr *InvalidDataError
		require.ErrorAs(t, err, &invalidErr)
	})
	t.Run("MailFailureFailsSignup", func(t *testing.T) {
		service, _, mailer := newTestService(t)
		mailer.failing = true
		_, err := service.Signup(ctx, "alice", "alice@example.com")
		assert.Error(t, err)
	})
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	t.Run("ValidCode", func(t *testing.T) {
		service, _, _ := newTestService(t)
		user, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		token, err := service.IssueToken(ctx, "alice", *user.ConfirmationCode)
		require.NoError(t, err)
		parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, float64(user.ID), claims["uid"])
		assert.Equal(t, "alice", claims["username"])
		assert.Equal(t, "user", claims["role"])
	})
	t.Run("WrongCode", func(t *testing.T) {
		service, _, _ := newTestService(t)
		user, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		wrong := *user.ConfirmationCode + 1
		if wrong > 99999 {
			wrong = 10000
		}
		_, err = service.IssueToken(ctx, "alice", wrong)
		var invalidErr *InvalidDataError
		require.ErrorAs(t, err, &invalidErr)
	})
	t.Run("UnknownUsername", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.IssueToken(ctx, "nobody", 12345)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
	t.Run("CodeStaysValidAfterExchange", func(t *testing.T) {
		service, _, _ := newTestService(t)
		user, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		_, err = service.IssueToken(ctx, "alice", *user.ConfirmationCode)
		require.NoError(t, err)
		_, err = service.IssueToken(ctx, "alice", *user.ConfirmationCode)
		assert.NoError(t, err)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	t.Run("RoundTrip", func(t *testing.T) {
		service, _, _ := newTestService(t)
		user, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		token, err := service.IssueToken(ctx, "alice", *user.ConfirmationCode)
		require.NoError(t, err)
		authed, err := service.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, authed.ID)
		assert.Equal(t, "alice", authed.Username)
	})
	t.Run("GarbageToken", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.Authenticate(ctx, "not-a-token")
		var invalidErr *InvalidDataError
		assert.ErrorAs(t, err, &invalidErr)
	})
	t.Run("WrongSecret", func(t *testing.T) {
		service, _, _ := newTestService(t)
		user, err := service.Signup(ctx, "alice", "alice@example.com")
		require.NoError(t, err)
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"uid": user.ID,
			"exp": jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := forged.SignedString([]byte("other-secret"))
		require.NoError(t, err)
		_, err = service.Authenticate(ctx, signed)
		var invalidErr *InvalidDataError
		assert.ErrorAs(t, err, &invalidErr)
	})
}
