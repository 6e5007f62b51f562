package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ruizhu/shopapi/app/models"
	"github.com/ruizhu/shopapi/config"
	"github.com/ruizhu/shopapi/internal/kernel"
)

type client struct {
	t *testing.T
	h http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.Payment{}))

	cfg := &config.Config{
		AppEnv:    "testing",
		JWT:       config.JWTConfig{Secret: "test", Algorithm: "HS256", TTL: time.Hour},
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
		Cache:     config.CacheConfig{TTL: time.Minute},
		Storage:   config.StorageConfig{Disk: "local", LocalRoot: t.TempDir(), URL: "http://localhost:8000/storage"},
		WeChat:    config.WeChatConfig{AppID: "wx_mock_appid", APIKey: "mock_api_key"},
	}
	app, err := kernel.New(context.Background(), cfg, db)
	require.NoError(t, err)
	return &client{t: t, h: app.Handler()}
}

func (c *client) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0.0", decode(t, rec)["version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shop_http_requests_total")
}

func TestUserEndpoints(t *testing.T) {
	c := newClient(t)
	reg := map[string]string{"username": "alice", "email": "alice@example.com", "password": "s3cret"}

	rec := c.do(http.MethodPost, "/api/v1/users/register", reg)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode(t, rec)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, true, user["is_active"])
	assert.NotContains(t, user, "hashed_password")
	assert.Nil(t, user["phone"])

	rec = c.do(http.MethodPost, "/api/v1/users/register", reg)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decode(t, rec)["message"])

	rec = c.do(http.MethodPost, "/api/v1/users/register", map[string]string{"username": "bob", "email": "nope", "password": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "email")

	id := int(user["id"].(float64))
	rec = c.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodGet, "/api/v1/users/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])

	for _, path := range []string{"/api/v1/users", "/api/v1/users/"} {
		rec = c.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var list []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Len(t, list, 1)
	}
}

func TestLoginAndMe(t *testing.T) {
	c := newClient(t)
	c.do(http.MethodPost, "/api/v1/users/register", map[string]string{"username": "alice", "email": "alice@example.com", "password": "s3cret"})

	rec := c.do(http.MethodPost, "/api/v1/users/login", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/users/login", map[string]string{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec)["access_token"].(string)

	rec = c.do(http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/users/me", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode(t, rec)["username"])
}

func TestProductEndpoints(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/v1/products/", map[string]interface{}{
		"name": "Gaiwan", "description": "porcelain", "price": 59.9, "stock": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode(t, rec)
	id := int(p["id"].(float64))
	path := fmt.Sprintf("/api/v1/products/%d", id)

	rec = c.do(http.MethodPost, "/api/v1/products", map[string]interface{}{"name": "No price"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodPut, path, map[string]interface{}{"name": "Gaiwan XL", "price": 79})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)
	assert.Equal(t, "Gaiwan XL", updated["name"])
	assert.Nil(t, updated["description"])
	assert.Equal(t, float64(0), updated["stock"])

	rec = c.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Product deleted"}`, rec.Body.String())

	rec = c.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode(t, rec)["message"])

	rec = c.do(http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestProductImageUpload(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodPost, "/api/v1/products", map[string]interface{}{"name": "Tray", "price": 129})
	require.Equal(t, http.StatusOK, rec.Code)
	id := int(decode(t, rec)["id"].(float64))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "tray.png")
	require.NoError(t, err)
	fw.Write([]byte("\x89PNG fake")) //nolint:errcheck
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/products/%d/image", id), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	up := httptest.NewRecorder()
	c.h.ServeHTTP(up, req)
	require.Equal(t, http.StatusOK, up.Code, up.Body.String())

	url := decode(t, up)["image_url"].(string)
	require.True(t, strings.HasPrefix(url, "http://localhost:8000/storage/products/"))

	rec = c.do(http.MethodGet, strings.TrimPrefix(url, "http://localhost:8000"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "\x89PNG fake", rec.Body.String())

	rec = c.do(http.MethodPost, fmt.Sprintf("/api/v1/products/%d/image", id), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderAndPaymentFlow(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodPost, "/api/v1/orders/", map[string]interface{}{
		"product_id": 999, "product_name": "Ghost", "unit_price": 10, "total_price": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decode(t, rec)
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, float64(1), order["quantity"])
	assert.Nil(t, order["user_id"])
	orderID := int(order["id"].(float64))

	rec = c.do(http.MethodPost, "/api/v1/payments/create", map[string]interface{}{"order_id": 12345, "amount": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", decode(t, rec)["message"])

	rec = c.do(http.MethodPost, "/api/v1/payments/create", map[string]interface{}{"order_id": orderID, "amount": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	payment := decode(t, rec)
	txn := payment["transaction_no"].(string)
	assert.Regexp(t, `^PAY\d{13,}[A-Za-z0-9]{8}$`, txn)
	assert.Regexp(t, `^wx[A-Za-z0-9]{32}$`, payment["prepay_id"])
	assert.Equal(t, "pending", payment["status"])
	assert.NotContains(t, payment, "wechat_response")
	assert.NotContains(t, payment, "callback_data")

	rec = c.do(http.MethodPost, "/api/v1/payments/wechat/callback", map[string]string{"out_trade_no": "nope", "trade_state": "SUCCESS"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"FAIL","message":"Payment not found"}`, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/payments/wechat/callback", map[string]string{
		"out_trade_no": txn, "trade_state": "SUCCESS", "transaction_id": "X",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"SUCCESS","message":"OK"}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/v1/payments/"+txn, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	paid := decode(t, rec)
	assert.Equal(t, "success", paid["status"])
	assert.Equal(t, "X", paid["wechat_transaction_id"])
	assert.NotNil(t, paid["paid_at"])

	rec = c.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", decode(t, rec)["status"])

	rec = c.do(http.MethodGet, "/api/v1/payments/PAY_missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Payment not found", decode(t, rec)["message"])
}

func TestUpdateOrderStatus(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"product_id": 1, "product_name": "Tea", "quantity": 3, "unit_price": 5, "total_price": 15,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	path := fmt.Sprintf("/api/v1/orders/%d/status", int(decode(t, rec)["id"].(float64)))

	rec = c.do(http.MethodPut, path+"?status=shipped", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shipped", decode(t, rec)["status"])

	rec = c.do(http.MethodPut, path, map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "delivered", decode(t, rec)["status"])

	rec = c.do(http.MethodPut, path, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = c.do(http.MethodPut, "/api/v1/orders/999/status?status=shipped", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodPost, "/api/v1/orders", `{"product_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/payments/wechat/callback", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNonPositiveIDsAreNotFound(t *testing.T) {
	c := newClient(t)

	cases := []struct {
		method, path, message string
	}{
		{http.MethodGet, "/api/v1/products/0", "Product not found"},
		{http.MethodGet, "/api/v1/products/-1", "Product not found"},
		{http.MethodDelete, "/api/v1/products/0", "Product not found"},
		{http.MethodGet, "/api/v1/orders/-1", "Order not found"},
		{http.MethodGet, "/api/v1/orders/0", "Order not found"},
		{http.MethodGet, "/api/v1/users/0", "User not found"},
	}
	for _, tc := range cases {
		rec := c.do(tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method+" "+tc.path)
		assert.Equal(t, tc.message, decode(t, rec)["message"], tc.method+" "+tc.path)
	}

	rec := c.do(http.MethodPut, "/api/v1/products/0", map[string]interface{}{"name": "x", "price": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = c.do(http.MethodPut, "/api/v1/orders/-1/status?status=shipped", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderStatusStoredVerbatim(t *testing.T) {
	c := newClient(t)
	rec := c.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"product_id": 1, "product_name": "Tea", "unit_price": 5, "total_price": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	path := fmt.Sprintf("/api/v1/orders/%d/status", int(decode(t, rec)["id"].(float64)))

	rec = c.do(http.MethodPut, path+"?status=%20shipped%20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, " shipped ", decode(t, rec)["status"])

	rec = c.do(http.MethodPut, path+"?status=%20%20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "  ", decode(t, rec)["status"])
}
