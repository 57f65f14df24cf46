package main

import (
	"errors"
	"net/http"

	"reviewhub/proj/internal/domain/filters"
	libvalidator "reviewhub/proj/internal/lib/validator"
	"reviewhub/proj/internal/services/catalog"

	"github.com/go-chi/chi/v5"
)

type categoryInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

func (app *Application) listCategories(w http.ResponseWriter, r *http.Request) {
	f := filters.NameSearch{Filters: defaultFilters([]string{"name", "id"}, "name")}
	if !app.decodeQuery(w, r, &f) {
		return
	}
	categories, total, err := app.Services.Catalog.ListCategories(r.Context(), f.Search, f.Filters)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"categories": categories, "total_records": total}, "")
}

func (app *Application) createCategory(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	category, err := app.Services.Catalog.CreateCategory(r.Context(), input.Name, input.Slug)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryAlreadyExists) {
			app.Http.Conflict(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"category": category}, "Category successfully created")
}

func (app *Application) deleteCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := app.Services.Catalog.DeleteCategory(r.Context(), slug); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) listGenres(w http.ResponseWriter, r *http.Request) {
	f := filters.NameSearch{Filters: defaultFilters([]string{"name", "id"}, "name")}
	if !app.decodeQuery(w, r, &f) {
		return
	}
	genres, total, err := app.Services.Catalog.ListGenres(r.Context(), f.Search, f.Filters)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"genres": genres, "total_records": total}, "")
}

func (app *Application) createGenre(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	genre, err := app.Services.Catalog.CreateGenre(r.Context(), input.Name, input.Slug)
	if err != nil {
		if errors.Is(err, catalog.ErrGenreAlreadyExists) {
			app.Http.Conflict(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Created(w, r, envelop{"genre": genre}, "Genre successfully created")
}

func (app *Application) deleteGenre(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := app.Services.Catalog.DeleteGenre(r.Context(), slug); err != nil {
		if errors.Is(err, catalog.ErrGenreNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}

type createTitleInput struct {
	Name        *string   `json:"name" validate:"required,max=256"`
	Year        *int32    `json:"year" validate:"required,titleyear"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre" validate:"omitempty,dive,slug"`
	Category    *string   `json:"category" validate:"omitempty,max=50,slug"`
}

type updateTitleInput struct {
	Name        *string   `json:"name" validate:"omitempty,max=256"`
	Year        *int32    `json:"year" validate:"omitempty,titleyear"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre" validate:"omitempty,dive,slug"`
	Category    *string   `json:"category" validate:"omitempty,max=50,slug"`
}

func (app *Application) listTitles(w http.ResponseWriter, r *http.Request) {
	f := filters.TitleFilters{Filters: defaultFilters([]string{"id", "name", "year"}, "year")}
	if !app.decodeQuery(w, r, &f) {
		return
	}
	if !f.ValidSort() {
		app.Http.UnprocessableEntity(w, r, map[string]string{"sort": "Value must be a name of one of the title fields (e.g. +name, -year, etc...)"})
		return
	}
	titles, total, err := app.Services.Catalog.ListTitles(r.Context(), f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"titles": titles, "total_records": total}, "")
}

func (app *Application) getTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	title, err := app.Services.Catalog.GetTitle(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrTitleNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{"title": title}, "")
}

func (app *Application) createTitle(w http.ResponseWriter, r *http.Request) {
	var input createTitleInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	title, err := app.Services.Catalog.CreateTitle(r.Context(), catalog.TitleInput{
		Name:        input.Name,
		Year:        input.Year,
		Description: input.Description,
		Category:    input.Category,
		Genres:      input.Genre,
	})
	if err != nil {
		app.handleTitleWriteErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"title": title}, "Title successfully created")
}

func (app *Application) updateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	var input updateTitleInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	title, err := app.Services.Catalog.UpdateTitle(r.Context(), id, catalog.TitleInput{
		Name:        input.Name,
		Year:        input.Year,
		Description: input.Description,
		Category:    input.Category,
		Genres:      input.Genre,
	})
	if err != nil {
		app.handleTitleWriteErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"title": title}, "Title successfully updated")
}

func (app *Application) deleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	if err := app.Services.Catalog.DeleteTitle(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrTitleNotFound) {
			app.Http.NotFound(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.NoContent(w, r, "")
}

// handleTitleWriteErr: a dangling slug reference is the caller's fault, so
// it surfaces as a field-level validation failure, not a 404.
func (app *Application) handleTitleWriteErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrTitleNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, catalog.ErrCategoryNotFound):
		app.Http.UnprocessableEntity(w, r, map[string]string{"category": "category with this slug does not exist"})
	case errors.Is(err, catalog.ErrGenreNotFound):
		app.Http.UnprocessableEntity(w, r, map[string]string{"genre": "genre with this slug does not exist"})
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
