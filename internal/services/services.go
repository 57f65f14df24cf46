package services

import (
	"log/slog"

	"reviewhub/proj/internal/config"
	"reviewhub/proj/internal/mails"
	"reviewhub/proj/internal/services/auth"
	"reviewhub/proj/internal/services/catalog"
	"reviewhub/proj/internal/services/feedback"
	"reviewhub/proj/internal/services/users"
	"reviewhub/proj/internal/storage/postgres/models"
)

type Services struct {
	Auth     *auth.AuthService
	Catalog  *catalog.CatalogService
	Feedback *feedback.FeedbackService
	Users    *users.UserService
}

func New(log *slog.Logger, cfg *config.Config, models *models.Models) *Services {
	mailer := mails.New(
		cfg.SMTPServer.Host,
		cfg.SMTPServer.Port,
		cfg.SMTPServer.Timeout,
		cfg.SMTPServer.Username,
		cfg.SMTPServer.Password,
		cfg.SMTPServer.Sender,
		cfg.SMTPServer.RetriesCount,
	)
	return &Services{
		Auth:     auth.New(log, mailer, models.User, cfg.Auth.Secret, cfg.Auth.TokenTTL),
		Catalog:  catalog.New(log, models.Category, models.Genre, models.Title, models.Review),
		Feedback: feedback.New(log, models.Title, models.Review, models.Comment),
		Users:    users.New(log, models.User),
	}
}
