package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var errBadBody = errors.New("invalid request body")

// readValid decodes the body into v and checks its validate tags. The
// returned error message is safe to show to the client.
func readValid(r *http.Request, v any) error {
	if err := readJSON(r, v); err != nil {
		return errBadBody
	}
	if err := validate.Struct(v); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "invalid request"
	}

	ve := ves[0]
	switch ve.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", ve.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", ve.Field())
	case "min":
		if ve.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", ve.Field(), ve.Param())
		}
		return fmt.Sprintf("%s must be at least %s", ve.Field(), ve.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", ve.Field(), ve.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", ve.Field(), ve.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", ve.Field(), lowerFirst(ve.Param()))
	}
	return fmt.Sprintf("%s is invalid (%s)", ve.Field(), ve.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
