package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// errInvalidBody is returned when the body is not the JSON we expect
var errInvalidBody = errors.New("invalid request body")

// maxBodyBytes caps every JSON request body
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// details is non-nil when validation failed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) (map[string]string, error) {
	if err := decodeJSON(w, r, dst); err != nil {
		return nil, err
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		details := make(map[string]string, len(verrs))
		for _, e := range verrs {
			details[e.Field()] = validationMessage(e)
		}
		return details, nil
	}
	return nil, nil
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "max":
		return "Must be at most " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + e.Param()
	default:
		return "Invalid value"
	}
}
