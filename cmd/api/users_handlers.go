package main

import (
	"errors"
	"net/http"

	"reviewhub/proj/internal/authz"
	"reviewhub/proj/internal/domain/fields"
	"reviewhub/proj/internal/domain/filters"
	libvalidator "reviewhub/proj/internal/lib/validator"
	"reviewhub/proj/internal/services/users"

	"github.com/go-chi/chi/v5"
)

type createUserInput struct {
	Username  *string      `json:"username" validate:"required,max=150,username"`
	Email     *string      `json:"email" validate:"required,email"`
	FirstName *string      `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string      `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *fields.Role `json:"role"`
}

type updateUserInput struct {
	Username  *string      `json:"username" validate:"omitempty,max=150,username"`
	Email     *string      `json:"email" validate:"omitempty,email"`
	FirstName *string      `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string      `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *fields.Role `json:"role"`
}

// updateMeInput accepts role and username so a patch carrying them is not
// rejected, but both are read-only on this path and never applied.
type updateMeInput struct {
	Username  *string      `json:"username"`
	Role      *fields.Role `json:"role"`
	Email     *string      `json:"email" validate:"omitempty,email"`
	FirstName *string      `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string      `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
}

func (app *Application) listUsers(w http.ResponseWriter, r *http.Request) {
	f := filters.NameSearch{Filters: defaultFilters([]string{"username", "created_at"}, "-created_at")}
	if !app.decodeQuery(w, r, &f) {
		return
	}
	usersList, total, err := app.Services.Users.List(r.Context(), f.Search, f.Filters)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"users": usersList, "total_records": total}, "")
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user, err := app.Services.Users.Get(r.Context(), username)
	if err != nil {
		app.handleUsersErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) createUser(w http.ResponseWriter, r *http.Request) {
	var input createUserInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	user, err := app.Services.Users.Create(r.Context(), users.UserInput{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      input.Role,
	})
	if err != nil {
		app.handleUsersErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"user": user}, "User successfully created")
}

func (app *Application) updateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	var input updateUserInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	user, err := app.Services.Users.Update(r.Context(), username, users.UserInput{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      input.Role,
	})
	if err != nil {
		app.handleUsersErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "User successfully updated")
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := app.Services.Users.Delete(r.Context(), username); err != nil {
		app.handleUsersErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) getMe(w http.ResponseWriter, r *http.Request) {
	user := app.userFromContext(r)
	if !authz.CanAccessSelfProfile(user, user.Username) {
		app.Http.Unauthorized(w, r, "")
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) updateMe(w http.ResponseWriter, r *http.Request) {
	requester := app.userFromContext(r)
	if !authz.CanAccessSelfProfile(requester, requester.Username) {
		app.Http.Unauthorized(w, r, "")
		return
	}
	var input updateMeInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	user, err := app.Services.Users.UpdateProfile(r.Context(), requester, users.ProfileInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
	})
	if err != nil {
		app.handleUsersErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "Profile successfully updated")
}

func (app *Application) handleUsersErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, users.ErrUserAlreadyExists):
		app.Http.UnprocessableEntity(w, r, map[string]string{"non_field_errors": err.Error()})
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
