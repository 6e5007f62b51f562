package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "github.com/ruizhu/shopapi/pkg/ctx"
	"github.com/ruizhu/shopapi/pkg/response"
)

func TestWrapAndOK(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.OK(map[string]any{"ok": true})
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestParamID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders/{id}", appctx.Wrap(func(c *appctx.Context) {
		id, ok := c.ParamID("id")
		if !ok {
			return
		}
		c.OK(map[string]uint{"id": id})
	}))

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/orders/42", http.StatusOK, `{"id":42}`},
		{"/orders/0", http.StatusOK, `{"id":0}`},
		{"/orders/-1", http.StatusOK, `{"id":0}`},
		{"/orders/abc", http.StatusUnprocessableEntity, ""},
		{"/orders/1.5", http.StatusUnprocessableEntity, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.path)
		if tc.body != "" {
			assert.JSONEq(t, tc.body, rec.Body.String(), tc.path)
		}
	}
}

func TestSetAndGetUint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Set("user_id", uint(42))
		assert.Equal(t, uint(42), c.GetUint("user_id"))
		assert.Equal(t, uint(0), c.GetUint("missing"))
		c.OK(nil)
	})(rec, req)
}

func TestBindJSON(t *testing.T) {
	type input struct {
		Name  string `json:"name"  validate:"required"`
		Email string `json:"email" validate:"required,email"`
	}

	cases := []struct {
		name   string
		body   string
		ok     bool
		status int
	}{
		{"valid", `{"name":"John","email":"john@example.com"}`, true, http.StatusOK},
		{"invalid", `{"name":"John","email":"nope"}`, false, http.StatusUnprocessableEntity},
		{"malformed", `{"name":`, false, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			appctx.Wrap(func(c *appctx.Context) {
				var in input
				ok := c.BindJSON(&in)
				assert.Equal(t, tc.ok, ok)
				if ok {
					c.OK(in)
				}
			})(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var written int
	appctx.Wrap(func(c *appctx.Context) {
		c.NotFound("Order not found")
		written = c.WrittenStatus()
	})(rec, req)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusNotFound, written)
	assert.Equal(t, response.Envelope{Status: 404, Message: "Order not found"}, env)
}
