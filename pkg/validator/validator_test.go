package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemRequest struct {
	ID       string  `json:"id" validate:"required,max=64"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
	Price    float64 `json:"price" validate:"gte=0"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(itemRequest{ID: "p1", ImageURL: "https://img.example.com/a.png", Price: 10})
	assert.NoError(t, err)
}

func TestValidate_FieldsUseJSONNames(t *testing.T) {
	err := Validate(itemRequest{ImageURL: "not a url", Price: -1})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["id"])
	assert.Equal(t, "must be a valid URL", fields["image_url"])
	assert.Equal(t, "must be greater than or equal to 0", fields["price"])
}

func TestValidationError_Message(t *testing.T) {
	err := Validate(itemRequest{ID: strings.Repeat("x", 65)})

	require.Error(t, err)
	assert.Equal(t, "field 'id' must be at most 64 characters", err.Error())
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"p1","price":3.5}`))

	var dst itemRequest
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, "p1", dst.ID)
	assert.Equal(t, 3.5, dst.Price)
}

func TestDecodeAndValidate_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))

	var dst itemRequest
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty body")
}

func TestDecodeAndValidate_Malformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":`))

	var dst itemRequest
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")

	var valErr *ValidationError
	assert.False(t, errors.As(err, &valErr))
}
