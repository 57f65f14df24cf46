package main

import (
	"log/slog"

	"reviewhub/proj/internal/config"
	libvalidator "reviewhub/proj/internal/lib/validator"
	"reviewhub/proj/internal/services"
	"reviewhub/proj/internal/storage/postgres"
	"reviewhub/proj/internal/storage/postgres/models"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

type Application struct {
	cfg          *config.Config
	log          *slog.Logger
	Http         *Http
	Services     *services.Services
	validator    *govalidator.Validate
	queryDecoder *schema.Decoder
}

func NewApplication(cfg *config.Config, log *slog.Logger, storage *postgres.Storage) *Application {
	validator := govalidator.New(govalidator.WithRequiredStructEnabled())
	for tag, fn := range map[string]govalidator.Func{
		"slug":             libvalidator.ValidateSlug,
		"username":         libvalidator.ValidateUsername,
		"titleyear":        libvalidator.ValidateTitleYear,
		"sortbytitlefield": libvalidator.ValidateSortByTitleField,
	} {
		if err := validator.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	queryDecoder := schema.NewDecoder()
	queryDecoder.IgnoreUnknownKeys(true)
	app := &Application{
		cfg:          cfg,
		log:          log,
		validator:    validator,
		queryDecoder: queryDecoder,
		Services:     services.New(log, cfg, models.New(storage)),
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
	return app
}
