package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"reviewhub/proj/internal/utils"

	govalidator "github.com/go-playground/validator/v10"
)

// structTypeOf unwraps pointers so callers may validate either a struct
// or a pointer to one.
func structTypeOf(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// baseFieldName trims the index suffix dive validators attach to slice
// elements ("Genres[0]" refers to the Genres field).
func baseFieldName(name string) string {
	if i := strings.Index(name, "["); i != -1 {
		return name[:i]
	}
	return name
}

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := structTypeOf(obj)
	origFieldName = baseFieldName(origFieldName)
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	for _, tagName := range []string{"json", "schema"} {
		if tag := field.Tag.Get(tagName); tag != "" && tag != "-" {
			if name := strings.Split(tag, ",")[0]; name != "" {
				return name
			}
		}
	}
	return utils.CamelToSnake(origFieldName)
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(obj, e.StructField())] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		validationErrs = ProcessValidationErrors(obj, err.(govalidator.ValidationErrors))
	}
	return
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := structTypeOf(obj)
	field, found := t.FieldByName(baseFieldName(err.StructField()))
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		switch err.Tag() {
		case "required":
			errorMsg = "This field is required"
		case "max":
			errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
		case "min":
			errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
		case "gte":
			errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
		case "oneof":
			errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
		case "len":
			errorMsg = fmt.Sprintf("Length should be equal to %s", err.Param())
		case "email":
			errorMsg = "Value must be a valid email address"
		case "slug":
			errorMsg = "Value must contain only letters, digits, hyphens and underscores"
		case "titleyear":
			errorMsg = "Year must be between 0 and the current year"
		case "username":
			errorMsg = "Value must contain only letters, digits and @/./+/-/_ characters"
		case "sortbytitlefield":
			errorMsg = "Value must be a name of one of the title fields (e.g. +name, -year, etc...)"
		default:
			errorMsg = "This field is invalid"
		}
	}
	return
}

// CUSTOM VALIDATORS

var (
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
)

func ValidateSlug(fl govalidator.FieldLevel) bool {
	return slugRe.MatchString(fl.Field().String())
}

func ValidateUsername(fl govalidator.FieldLevel) bool {
	return usernameRe.MatchString(fl.Field().String())
}

// ValidateTitleYear bounds a title's year to [0, current year].
func ValidateTitleYear(fl govalidator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= 0 && year <= int64(time.Now().Year())
}

func ValidateSortByTitleField(fl govalidator.FieldLevel) bool {
	sort := strings.TrimPrefix(fl.Field().String(), "-")
	if sort == "" {
		return false
	}
	for _, allowed := range []string{"id", "name", "year"} {
		if strings.EqualFold(sort, allowed) {
			return true
		}
	}
	return false
}
