package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogamastore/storefront/internal/common"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	users    *fakeUsers
	carts    *fakeCarts
	profiles *fakeProfiles
	pingErr  error
	catalog  fakeCatalog
	handler  http.Handler
}

func newTestEnv(t *testing.T, mutate ...func(*testEnv)) *testEnv {
	t.Helper()
	env := &testEnv{users: &fakeUsers{}, carts: &fakeCarts{}, profiles: &fakeProfiles{}}
	for _, m := range mutate {
		m(env)
	}
	env.handler = NewHTTPServer("", Deps{
		Users:          env.users,
		Catalog:        env.catalog,
		Carts:          env.carts,
		Profiles:       env.profiles,
		Store:          pingerFunc(func(context.Context) error { return env.pingErr }),
		Images:         prefixResolver{},
		Logger:         nopLogger{},
		AllowedOrigins: []string{"*"},
	}).Handler()
	return env
}

func (e *testEnv) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, kind common.Kind) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, string(kind), decode(t, w)["error"])
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/register", "",
		`{"full_name":"Sari Wijaya","email":"sari@example.com","phone":"0812","password":"rahasia123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "good", body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "sari@example.com", user["email"])
	assert.Equal(t, "Sari Wijaya", user["full_name"])
	assert.NotContains(t, user, "password_hash")
	assert.Equal(t, "0812", env.users.lastReg.Phone)
}

func TestRegister_Errors(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		w := newTestEnv(t).do(http.MethodPost, "/api/auth/register", "", `{"email":"a@example.com"}`)
		assertError(t, w, http.StatusBadRequest, common.KindValidation)
	})
	t.Run("email taken", func(t *testing.T) {
		env := newTestEnv(t, func(e *testEnv) { e.users.registerErr = common.ErrEmailTaken })
		w := env.do(http.MethodPost, "/api/auth/register", "",
			`{"full_name":"S","email":"sari@example.com","password":"x"}`)
		assertError(t, w, http.StatusConflict, common.KindEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	w := newTestEnv(t).do(http.MethodPost, "/api/auth/login", "", `{"email":"sari@example.com","password":"rahasia123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bearer", decode(t, w)["token_type"])

	env := newTestEnv(t, func(e *testEnv) { e.users.loginErr = common.ErrBadCredentials })
	w = env.do(http.MethodPost, "/api/auth/login", "", `{"email":"sari@example.com","password":"salah"}`)
	assertError(t, w, http.StatusUnauthorized, common.KindBadCredentials)
	assert.Equal(t, common.ErrBadCredentials.Error(), decode(t, w)["message"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		status int
		kind   common.Kind
	}{
		{"missing header", "", http.StatusUnauthorized, common.KindUnauthorized},
		{"wrong scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, common.KindUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized, common.KindUnauthorized},
		{"malformed", "Bearer junk", http.StatusUnauthorized, common.KindUnauthorized},
		{"expired", "Bearer old", http.StatusUnauthorized, common.KindTokenExpired},
		{"store down", "Bearer down", http.StatusServiceUnavailable, common.KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, req)
			assertError(t, w, tt.status, tt.kind)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "bearer good")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/products", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price":150000.5`)
	assert.Contains(t, w.Body.String(), `"image":"https://cdn.test/products/tshirt.png"`)

	w = env.do(http.MethodGet, "/api/products/p-x", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "T-Shirt Cotton", decode(t, w)["name"])

	w = env.do(http.MethodGet, "/api/products/nope", "good", "")
	assertError(t, w, http.StatusNotFound, common.KindProductNotFound)

	w = env.do(http.MethodGet, "/api/products/by-category/Fashion", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = env.do(http.MethodGet, "/api/products/by-category/Makanan", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(http.MethodGet, "/api/categories", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"image"`)
}

func TestProducts_StoreDown(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv) {
		e.catalog.err = errors.Join(common.ErrUnavailable, errors.New("dial tcp 10.0.0.5:5432"))
	})

	w := env.do(http.MethodGet, "/api/products", "good", "")
	assertError(t, w, http.StatusServiceUnavailable, common.KindUnavailable)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestCart(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/cart", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "cart-1", body["id"])
	assert.Equal(t, []any{}, body["items"])
	assert.Equal(t, float64(0), body["total"])

	w = env.do(http.MethodPost, "/api/cart/add", "good", `{"product_id":"p-x","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, "Item added to cart", body["message"])
	cart := body["cart"].(map[string]any)
	assert.Equal(t, 300001.0, cart["total"])
	item := cart["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "https://cdn.test/products/tshirt.png", item["image"])

	w = env.do(http.MethodDelete, "/api/cart/remove/p-x", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Item removed from cart", decode(t, w)["message"])
	assert.Equal(t, []string{"p-x"}, env.carts.removed)
}

func TestCartAdd_Inputs(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		want   *addCall
	}{
		{"body", "/api/cart/add", `{"product_id":"p-x","quantity":3}`, http.StatusOK, &addCall{"u-1", "p-x", 3}},
		{"body defaults quantity", "/api/cart/add", `{"product_id":"p-x"}`, http.StatusOK, &addCall{"u-1", "p-x", 1}},
		{"query fallback", "/api/cart/add?product_id=p-x&quantity=4", "", http.StatusOK, &addCall{"u-1", "p-x", 4}},
		{"query defaults quantity", "/api/cart/add?product_id=p-x", "", http.StatusOK, &addCall{"u-1", "p-x", 1}},
		{"body wins over query", "/api/cart/add?product_id=other&quantity=9", `{"product_id":"p-x","quantity":2}`, http.StatusOK, &addCall{"u-1", "p-x", 2}},
		{"bad query quantity", "/api/cart/add?product_id=p-x&quantity=two", "", http.StatusBadRequest, nil},
		{"bad body", "/api/cart/add", `{"quantity":"two"}`, http.StatusBadRequest, nil},
		{"zero quantity", "/api/cart/add", `{"product_id":"p-x","quantity":0}`, http.StatusBadRequest, &addCall{"u-1", "p-x", 0}},
		{"unknown product", "/api/cart/add", `{"product_id":"nope"}`, http.StatusNotFound, &addCall{"u-1", "nope", 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(http.MethodPost, tt.target, "good", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.want == nil {
				assert.Empty(t, env.carts.adds)
				return
			}
			require.Len(t, env.carts.adds, 1)
			assert.Equal(t, *tt.want, env.carts.adds[0])
		})
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/profile", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Sari Wijaya", body["full_name"])
	assert.Equal(t, "0812", body["phone"])

	w = env.do(http.MethodPut, "/api/profile", "good", `{"phone":"0899","role":"admin"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Profile updated successfully", decode(t, w)["message"])
	require.Len(t, env.profiles.patches, 1)
	assert.Nil(t, env.profiles.patches[0].FullName)
	assert.Equal(t, "0899", *env.profiles.patches[0].Phone)

	w = env.do(http.MethodPut, "/api/profile", "good", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.profiles.patches[1].IsEmpty())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	for _, p := range []string{"/healthz", "/livez", "/readyz"} {
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, p, "", "").Code, p)
	}

	env = newTestEnv(t, func(e *testEnv) { e.pingErr = errors.New("server selection timeout") })
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/livez", "", "").Code)
	assertError(t, env.do(http.MethodGet, "/readyz", "", ""), http.StatusServiceUnavailable, common.KindUnavailable)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cart/add", nil)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewHTTPServer("127.0.0.1:0", Deps{Logger: nopLogger{}, AllowedOrigins: []string{"*"}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestErrorBody(t *testing.T) {
	status, body := errorBody(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, common.KindInternal, body.Error)
	assert.Equal(t, "internal server error", body.Message)

	status, body = errorBody(common.ErrVersionConflict)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, common.KindUnavailable, body.Error)
}
