package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

// Confirmation codes are always five digits.
const (
	confirmationCodeMin = 10000
	confirmationCodeMax = 99999
)

// ReservedUsername may never be registered: it is the self-profile path.
const ReservedUsername = "me"

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type UserStorage interface {
	GetOrCreate(ctx context.Context, username, email string, confirmationCode int) (*models.User, bool, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type AuthService struct {
	log      *slog.Logger
	Mailer   MailProvider
	storage  UserStorage
	secret   []byte
	tokenTTL time.Duration
}

func New(log *slog.Logger, mailer MailProvider, storage UserStorage, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:      log,
		Mailer:   mailer,
		storage:  storage,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Signup registers (or re-registers) a user and mails the confirmation
// code. The mail goes out inline with the request: a delivery failure
// fails the signup. Re-signup with an already stored (username, email)
// pair keeps the stored code instead of rotating it.
func (a *AuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	const op = "auth.AuthService.Signup"
	log := a.log.With("op", op, "username", username, "email", email)
	if username == ReservedUsername {
		return nil, NewInvalidDataError(fmt.Sprintf("%q is a reserved username", ReservedUsername))
	}
	code := rand.Intn(confirmationCodeMax-confirmationCodeMin+1) + confirmationCodeMin
	user, created, err := a.storage.GetOrCreate(ctx, username, email, code)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("username or email already taken")
			return nil, NewInvalidDataError("user with this username or email already exists")
		}
		log.Error(err.Error())
		return nil, err
	}
	if !created {
		log.Info("user already registered, re-sending stored confirmation code")
	}
	if user.ConfirmationCode == nil {
		// already confirmed rows keep no code; nothing to deliver
		return user, nil
	}
	err = a.Mailer.Send(user.Email, "confirmation_code.html", map[string]any{
		"username":         user.Username,
		"confirmationCode": *user.ConfirmationCode,
	})
	if err != nil {
		log.Error("Error sending confirmation code email", "errMsg", err.Error())
		return nil, err
	}
	return user, nil
}

// IssueToken exchanges a username + confirmation code for a signed access
// token. A wrong code yields one generic validation failure so callers
// cannot probe which part was wrong; an unknown username is a plain
// not-found. The stored code stays valid after the exchange.
func (a *AuthService) IssueToken(ctx context.Context, username string, confirmationCode int) (string, error) {
	const op = "auth.AuthService.IssueToken"
	log := a.log.With("op", op, "username", username)
	user, err := a.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return "", ErrUserNotFound
		}
		log.Error(err.Error())
		return "", err
	}
	if user.ConfirmationCode == nil || *user.ConfirmationCode != confirmationCode {
		log.Warn("confirmation code mismatch")
		return "", NewInvalidDataError("unable to verify confirmation code")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":      user.ID,
		"username": user.Username,
		"role":     user.Role.String(),
		"iat":      jwt.NewNumericDate(now),
		"exp":      jwt.NewNumericDate(now.Add(a.tokenTTL)),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		log.Error(err.Error())
		return "", err
	}
	return signed, nil
}

// Authenticate resolves a bearer token into the user it encodes.
func (a *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	const op = "auth.AuthService.Authenticate"
	log := a.log.With("op", op)
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		log.Warn("invalid token", "errMsg", err.Error())
		return nil, NewInvalidDataError("invalid or expired token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, NewInvalidDataError("invalid or expired token")
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return nil, NewInvalidDataError("invalid or expired token")
	}
	user, err := a.storage.GetByID(ctx, int64(uid))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("user from token not found", "uid", int64(uid))
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return user, nil
}
