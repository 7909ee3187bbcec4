package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vinnymaker/stockapp/database"
	"github.com/vinnymaker/stockapp/internal/service"
)

func TestParseBasicAuth(t *testing.T) {
	encode := func(credentials string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
	}

	cases := []struct {
		name         string
		header       string
		wantUsername string
		wantPassword string
		wantOK       bool
	}{
		{"valid", encode("vinny:secretpass"), "vinny", "secretpass", true},
		{"empty password", encode("vinny:"), "vinny", "", true},
		{"password with colon", encode("vinny:pa:ss"), "vinny", "pa:ss", true},
		{"scheme is case insensitive", "basic " + base64.StdEncoding.EncodeToString([]byte("vinny:secretpass")), "vinny", "secretpass", true},
		{"missing header", "", "", "", false},
		{"wrong scheme", "Bearer abcdef", "", "", false},
		{"bad base64", "Basic !!!not-base64!!!", "", "", false},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("justausername")), "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			username, password, ok := ParseBasicAuth(tc.header)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantUsername, username)
			assert.Equal(t, tc.wantPassword, password)
		})
	}
}

func setupUserService(t *testing.T) *service.UserService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	svc := service.NewUserService(db)
	_, err = svc.CreateUser("vinny", "secretpass")
	require.NoError(t, err)
	return svc
}

func invoke(e *echo.Echo, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.String(http.StatusOK, AuthenticatedUsername(c))
	})
	return rec, handler(c)
}

func TestBasicAuthMiddleware(t *testing.T) {
	svc := setupUserService(t)
	e := echo.New()
	mw := BasicAuthMiddleware(svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("vinny", "secretpass")
	rec, err := invoke(e, mw, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vinny", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("vinny", "wrongpass1")
	rec, err = invoke(e, mw, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec, err = invoke(e, mw, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsernameHeaderMiddleware(t *testing.T) {
	e := echo.New()
	mw := UsernameHeaderMiddleware()

	run := func(headerValue, contextValue string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if headerValue != "" {
			req.Header.Set(UsernameHeader, headerValue)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(UsernameContextKey, contextValue)
		handler := mw(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run("vinny", "vinny").Code)
	assert.Equal(t, http.StatusUnauthorized, run("other", "vinny").Code)
	assert.Equal(t, http.StatusUnauthorized, run("", "vinny").Code)
}
