package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"reviewhub/proj/internal/domain/filters"
	libvalidator "reviewhub/proj/internal/lib/validator"

	"github.com/go-chi/chi/v5"
)

func (app *Application) extractIDParam(w http.ResponseWriter, r *http.Request, name string) (id int64, extracted bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		app.Http.BadRequest(w, r, "invalid "+name)
		return 0, false
	}
	if id < 1 {
		app.Http.BadRequest(w, r, name+" must be greater than zero")
		return 0, false
	}
	return id, true
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	src := http.MaxBytesReader(w, r.Body, int64(maxBytes))
	defer io.Copy(io.Discard, src)
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err != nil {
		return handleJsonErr(err)
	}
	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// decodeQuery fills dst from the query string, then validates it. A wrong
// parameter type is a 400, a failed validation a 422; either way the
// response is already written and false comes back.
func (app *Application) decodeQuery(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := app.queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		app.Http.BadRequest(w, r, "invalid query parameters: "+err.Error())
		return false
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, dst); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return false
	}
	return true
}

func defaultFilters(sortSafelist []string, defaultSort string) filters.Filters {
	return filters.Filters{
		Page:         1,
		PageSize:     20,
		Sort:         defaultSort,
		SortSafelist: sortSafelist,
	}
}

func handleJsonErr(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var invalidUnmarshalError *json.InvalidUnmarshalError
	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("body contains badly-formed JSON")

	case errors.As(err, &unmarshalTypeError):
		if unmarshalTypeError.Field != "" {
			return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
		}
		return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

	case errors.Is(err, io.EOF):
		return errors.New("body must not be empty")

	case errors.As(err, &invalidUnmarshalError):
		panic(err)
	default:
		return err
	}
}
