package main

import (
	"io"
	"log/slog"
	"testing"

	"reviewhub/proj/internal/config"
	libvalidator "reviewhub/proj/internal/lib/validator"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// NewTestApplication builds an Application without a database, enough for
// exercising middlewares and request plumbing.
func NewTestApplication(cfg *config.Config, t *testing.T) *Application {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{Debug: true}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	validator := govalidator.New(govalidator.WithRequiredStructEnabled())
	for tag, fn := range map[string]govalidator.Func{
		"slug":             libvalidator.ValidateSlug,
		"username":         libvalidator.ValidateUsername,
		"titleyear":        libvalidator.ValidateTitleYear,
		"sortbytitlefield": libvalidator.ValidateSortByTitleField,
	} {
		if err := validator.RegisterValidation(tag, fn); err != nil {
			t.Fatal(err)
		}
	}
	queryDecoder := schema.NewDecoder()
	queryDecoder.IgnoreUnknownKeys(true)
	return &Application{
		cfg:          cfg,
		log:          log,
		validator:    validator,
		queryDecoder: queryDecoder,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
