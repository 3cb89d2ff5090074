package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/validation"
)

var pathOpts = runtime.BindStyledParameterOptions{
	ParamLocation: runtime.ParamLocationPath,
	Explode:       false,
	Required:      true,
}

// pathUUID binds the {name} path segment as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id, pathOpts); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a UUID", domain.ErrValidation, name)
	}
	return id, nil
}

// pathInt binds the {name} path segment as an integer.
func pathInt(r *http.Request, name string) (int, error) {
	var n int
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &n, pathOpts); err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return n, nil
}

// pathString binds the {name} path segment, unescaped.
func pathString(r *http.Request, name string) (string, error) {
	var s string
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &s, pathOpts); err != nil {
		return "", fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	return s, nil
}

// queryString returns the optional ?name= parameter, or "" when absent.
func queryString(r *http.Request, name string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("%w: invalid %s", domain.ErrValidation, name)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// pagination reads ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func pagination(r *http.Request) (domain.PaginationParams, error) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("%w: page must be an integer", domain.ErrValidation)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		return domain.PaginationParams{}, fmt.Errorf("%w: limit must be an integer", domain.ErrValidation)
	}
	return domain.NewPaginationParams(page, limit), nil
}

// decodeBody decodes a JSON request body into dst and validates it with the
// struct's validate tags.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrValidation)
	}
	return validation.Struct(dst)
}

// readUpload reads a raw upload body. An empty body is a validation error;
// a body over the configured limit surfaces as *http.MaxBytesError.
func readUpload(r *http.Request) (io.Reader, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image body is required", domain.ErrValidation)
	}
	return bytes.NewReader(data), nil
}
