package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruizhu/shopapi/pkg/bind"
)

type productInput struct {
	Name  string  `json:"name"  validate:"required"`
	Price float64 `json:"price"`
}

func TestJSONValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"tea","price":9.5}`))
	var in productInput
	errs, err := bind.JSON(req, &in)
	require.NoError(t, err)
	assert.Nil(t, errs)
	assert.Equal(t, "tea", in.Name)
}

func TestJSONValidationErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"price":1}`))
	var in productInput
	errs, err := bind.JSON(req, &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "name")
}

func TestJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	var in productInput
	_, err := bind.JSON(req, &in)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestLimit(t *testing.T) {
	body := `{"name":"a very long product name"}`
	var decodeErr error
	h := func(limit int64) http.Handler {
		return bind.Limit(limit)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			var in productInput
			_, decodeErr = bind.JSON(r, &in)
		}))
	}

	h(8).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	assert.ErrorContains(t, decodeErr, "too large")

	h(0).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	assert.NoError(t, decodeErr)
}

func TestMaxBytesDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.Equal(t, bind.DefaultMaxBodyBytes, bind.MaxBytes(req.Context()))
}
