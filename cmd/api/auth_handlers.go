package main

import (
	"errors"
	"net/http"

	libvalidator "reviewhub/proj/internal/lib/validator"
	"reviewhub/proj/internal/services/auth"
)

type signupInput struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,email"`
}

type obtainTokenInput struct {
	Username         string `json:"username" validate:"required,max=150"`
	ConfirmationCode *int   `json:"confirmation_code" validate:"required"`
}

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var input signupInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	user, err := app.Services.Auth.Signup(r.Context(), input.Username, input.Email)
	if err != nil {
		var invalidData *auth.InvalidDataError
		if errors.As(err, &invalidData) {
			app.Http.UnprocessableEntity(w, r, map[string]string{"non_field_errors": invalidData.Error()})
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"username": user.Username, "email": user.Email}, "Confirmation code has been sent to your email")
}

// obtainToken never reveals whether the code or its pairing was wrong,
// only that verification failed; an unknown username is a plain 404.
func (app *Application) obtainToken(w http.ResponseWriter, r *http.Request) {
	var input obtainTokenInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	token, err := app.Services.Auth.IssueToken(r.Context(), input.Username, *input.ConfirmationCode)
	if err != nil {
		var invalidData *auth.InvalidDataError
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			app.Http.NotFound(w, r, err.Error())
		case errors.As(err, &invalidData):
			app.Http.UnprocessableEntity(w, r, map[string]string{"non_field_errors": invalidData.Error()})
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"access_token": token}, "")
}
