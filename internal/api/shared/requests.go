package shared

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = newValidator()

// newValidator reports fields by their form tag so messages name the field
// the client actually sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}

// FormString returns the trimmed value of a multipart or urlencoded form field.
func FormString(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// FormInt parses an integer form field, returning def when it is absent.
func FormInt(r *http.Request, key string, def int) (int, error) {
	raw := FormString(r, key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	return n, nil
}

// FormFile reads an optional uploaded file of at most limit bytes. It returns
// nil data and no error when the field is absent.
func FormFile(r *http.Request, key string, limit int64) ([]byte, string, error) {
	file, header, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("field %s: %w", key, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("field %s: %w", key, err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("field %s: %w", key, ErrFileTooLarge)
	}
	return data, header.Filename, nil
}

// ErrFileTooLarge is returned by FormFile when the upload exceeds its limit.
var ErrFileTooLarge = errors.New("uploaded file too large")
