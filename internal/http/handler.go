package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/lfs/internal/http/apierr"
	"github.com/tuanvumaihuynh/lfs/pkg/ptr"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
)

const (
	maxBodyBytes = 1 << 20 // 1 MB
	// maxPageLimit caps every limit query parameter.
	maxPageLimit = 100
)

// handlerFunc is a http.HandlerFunc that reports failures instead of
// writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

// decodeJSON reads the request body into dest and validates it.
func decodeJSON(r *http.Request, v validator.Validator, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return &apierr.BodyError{Err: errors.New("body is empty")}
		}
		return &apierr.BodyError{Err: err}
	}

	return v.Validate(dest)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}

func noContent(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// pathUUID binds the uuid path parameter name.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return uuid.Nil, paramErr(name, err)
	}
	return id, nil
}

// pathString returns the unescaped path parameter name.
func pathString(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", paramErr(name, err)
	}
	return value, nil
}

// queryParam binds the optional query parameter name into dest, which must
// be a pointer to a pointer or slice.
func queryParam(r *http.Request, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		return paramErr(name, err)
	}
	return nil
}

// page reads the limit and offset query parameters.
func page(r *http.Request) (int32, int32, error) {
	var limit, offset *int32
	if err := queryParam(r, "limit", &limit); err != nil {
		return 0, 0, err
	}
	if err := queryParam(r, "offset", &offset); err != nil {
		return 0, 0, err
	}

	l, o := ptr.Deref(limit, 0), ptr.Deref(offset, 0)
	if l < 0 || o < 0 {
		return 0, 0, paramErr("limit", errors.New("must not be negative"))
	}
	return min(l, maxPageLimit), o, nil
}

func paramErr(name string, err error) error {
	return &apierr.ParamError{Param: name, Err: err}
}
