package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storeauth/internal/access"
	"storeauth/internal/entity"
	"storeauth/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	tokens map[string]service.Claims
	kinds  map[string]service.TokenKind
}

func (v stubVerifier) Verify(token string, kind service.TokenKind) (service.Claims, error) {
	claims, ok := v.tokens[token]
	if !ok || v.kinds[token] != kind {
		return service.Claims{}, service.ErrInvalidToken
	}
	return claims, nil
}

type stubGate struct {
	established map[string]bool
	err         error
}

func (g stubGate) Established(_ context.Context, userID uuid.UUID, origin string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.established[userID.String()+"|"+origin], nil
}

var testUser = service.Claims{UserID: uuid.New(), Role: entity.UserRoleUser}

func newTestMiddleware() AuthMiddleware {
	return AuthMiddleware{
		Tokens: stubVerifier{
			tokens: map[string]service.Claims{"access-ok": testUser, "refresh-ok": testUser},
			kinds:  map[string]service.TokenKind{"access-ok": service.AccessToken, "refresh-ok": service.RefreshToken},
		},
		Sessions: stubGate{established: map[string]bool{testUser.UserID.String() + "|192.0.2.1": true}},
	}
}

func run(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, bool, echo.Context) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called, c
}

func TestRequireAccess(t *testing.T) {
	m := newTestMiddleware()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer access-ok")
	rec, called, c := run(t, m.RequireAccess, req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	subject, ok := SubjectFromContext(c)
	require.True(t, ok)
	assert.Equal(t, access.Subject{UserID: testUser.UserID, Role: testUser.Role}, subject)

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Token access-ok",
		"refresh key":  "Bearer refresh-ok",
		"garbage":      "Bearer nope",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec, called, _ := run(t, m.RequireAccess, req)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRefresh_FromBody(t *testing.T) {
	m := newTestMiddleware()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refreshToken":"refresh-ok"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, called, c := run(t, m.RequireRefresh, req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(c.Request().Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"refreshToken":"refresh-ok"}`, string(body), "body is restored for the handler")
}

func TestRequireRefresh_FromHeader(t *testing.T) {
	m := newTestMiddleware()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer refresh-ok")
	_, called, _ := run(t, m.RequireRefresh, req)
	assert.True(t, called)
}

func TestRequireRefresh_RejectsAccessToken(t *testing.T) {
	m := newTestMiddleware()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refreshToken":"access-ok"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, called, _ := run(t, m.RequireRefresh, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, called, _ = run(t, m.RequireRefresh, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireSession(t *testing.T) {
	m := newTestMiddleware()
	chain := func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.RequireAccess(m.RequireSession(next))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer access-ok")
	_, called, _ := run(t, chain, req)
	assert.True(t, called, "httptest requests originate from 192.0.2.1")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	req.Header.Set("Authorization", "Bearer access-ok")
	rec, called, _ := run(t, chain, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	failing := m
	failing.Sessions = stubGate{err: errors.New("db down")}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer access-ok")
	_, called, _ = run(t, func(next echo.HandlerFunc) echo.HandlerFunc {
		return failing.RequireAccess(failing.RequireSession(next))
	}, req)
	assert.False(t, called)
}
