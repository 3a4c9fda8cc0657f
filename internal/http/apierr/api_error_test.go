package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/pkg/validator"
	"github.com/tuanvumaihuynh/lfs/pkg/zerror"
)

func TestNew(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	type payload struct {
		Name string `validate:"required"`
	}
	validationErr := v.Validate(payload{})
	require.Error(t, validationErr)

	notFound := zerror.NewNotFound("THING_NOT_FOUND", "thing not found")

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails int
	}{
		{
			name:        "validation errors carry field details",
			err:         validationErr,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "validationError",
			wantDetails: 1,
		},
		{
			name:       "wrapped zerror keeps its code",
			err:        fmt.Errorf("get thing: %w", notFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "THING_NOT_FOUND",
		},
		{
			name:       "param error",
			err:        &ParamError{Param: "id", Err: errors.New("not a uuid")},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validationError",
		},
		{
			name:       "body error",
			err:        &BodyError{Err: errors.New("unexpected EOF")},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validationError",
		},
		{
			name:       "openapi request error",
			err:        &openapi3filter.RequestError{Reason: "value is required"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validationError",
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internalServerError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.err)

			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantCode, res.Code)
			if tt.wantDetails > 0 {
				require.NotNil(t, res.Details)
				assert.Len(t, *res.Details, tt.wantDetails)
				assert.Equal(t, "payload.Name", (*res.Details)[0].Field)
			} else {
				assert.Nil(t, res.Details)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()

	res := Write(rec, zerror.NewConflict("SLUG_TAKEN", "slug already exists"))

	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SLUG_TAKEN", body["code"])
	assert.Equal(t, "slug already exists", body["message"])
	assert.NotContains(t, body, "details")
}

func TestZErrorStatusToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ZErrorStatusToHTTPStatus(zerror.StatusUnauthorized))
	assert.Equal(t, http.StatusTooManyRequests, ZErrorStatusToHTTPStatus(zerror.StatusTooManyRequests))
	assert.Equal(t, http.StatusBadRequest, ZErrorStatusToHTTPStatus(zerror.StatusValidationFailed))
	assert.Equal(t, http.StatusBadGateway, ZErrorStatusToHTTPStatus(zerror.StatusBadGateway))
	assert.Equal(t, http.StatusInternalServerError, ZErrorStatusToHTTPStatus(zerror.StatusUnknown))
}
