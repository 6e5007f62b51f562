package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruizhu/shopapi/config"
	"github.com/ruizhu/shopapi/pkg/auth"
	"github.com/ruizhu/shopapi/pkg/metrics"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRecoveryReturns500(t *testing.T) {
	before := testutil.ToFloat64(metrics.PanicsRecovered.WithLabelValues("unmatched"))
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":500,"message":"Internal Server Error"}`, rec.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PanicsRecovered.WithLabelValues("unmatched")))
}

func TestRecoveryReraisesAbort(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(DefaultCORSOptions())(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestCORSFromConfig(t *testing.T) {
	cases := []struct {
		name        string
		cfg         config.CORSConfig
		origin      string
		allowOrigin string
		credentials string
	}{
		{"wildcard with credentials echoes origin", config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, "https://shop.example.com", "https://shop.example.com", "true"},
		{"wildcard without credentials", config.CORSConfig{AllowedOrigins: []string{"*"}}, "https://shop.example.com", "*", ""},
		{"listed origin", config.CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}}, "https://admin.example.com", "https://admin.example.com", ""},
		{"unlisted origin", config.CORSConfig{AllowedOrigins: []string{"https://admin.example.com"}}, "https://evil.example.com", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := CORS(CORSOptionsFrom(tc.cfg))(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.allowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tc.credentials, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}

	opts := CORSOptionsFrom(config.CORSConfig{MaxAge: time.Hour})
	assert.Equal(t, []string{"*"}, opts.AllowedOrigins)
	assert.Equal(t, time.Hour, opts.MaxAge)
}

func TestRateLimitMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	h := RateLimit(store, 2, time.Minute)(okHandler)
	hit := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, hit())
	assert.Equal(t, http.StatusOK, hit())
	assert.Equal(t, http.StatusTooManyRequests, hit())

	now = now.Add(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, hit())
}

func TestRateLimitSeparatesClients(t *testing.T) {
	h := RateLimit(NewMemoryStore(), 1, time.Minute)(okHandler)
	for _, ip := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := RateLimit(failingStore{}, 1, time.Minute)(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	store := NewRedisStore(client)
	key := "test-" + time.Now().Format(time.RFC3339Nano)
	ctx := context.Background()
	for want := int64(1); want <= 3; want++ {
		n, err := store.Hit(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	client.Del(ctx, store.prefix+key)
}

func TestAuth(t *testing.T) {
	iss, err := auth.NewIssuer(config.JWTConfig{Secret: "k", Algorithm: "HS256", TTL: time.Hour})
	require.NoError(t, err)
	token, err := iss.Generate(9, "carol")
	require.NoError(t, err)

	var seen uint
	h := Auth(iss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
	assert.Equal(t, uint(9), seen)
}
