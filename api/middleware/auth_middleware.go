package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"storeauth/internal/access"
	"storeauth/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxRefreshBody = 1 << 16

type TokenVerifier interface {
	Verify(token string, kind service.TokenKind) (service.Claims, error)
}

type SessionGate interface {
	Established(ctx context.Context, userID uuid.UUID, origin string) (bool, error)
}

type AuthMiddleware struct {
	Tokens   TokenVerifier
	Sessions SessionGate
}

// RequireAccess verifies the Bearer access token and attaches its subject.
func (m AuthMiddleware) RequireAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := m.authenticate(c, extractBearerToken(c.Request()), service.AccessToken); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireRefresh verifies a refresh token taken from the JSON body field
// refreshToken, falling back to the Authorization header.
func (m AuthMiddleware) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := refreshTokenFromBody(c.Request())
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if token == "" {
			token = extractBearerToken(c.Request())
		}
		if err := m.authenticate(c, token, service.RefreshToken); err != nil {
			return err
		}
		return next(c)
	}
}

// RequireSession admits only callers whose origin has completed a login. It
// must run after RequireAccess.
func (m AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		subject, ok := SubjectFromContext(c)
		if !ok || m.Sessions == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		established, err := m.Sessions.Established(c.Request().Context(), subject.UserID, c.RealIP())
		if err != nil {
			return err
		}
		if !established {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		return next(c)
	}
}

func (m AuthMiddleware) authenticate(c echo.Context, token string, kind service.TokenKind) error {
	if m.Tokens == nil || token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	claims, err := m.Tokens.Verify(token, kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	SetSubject(c, access.Subject{UserID: claims.UserID, Role: claims.Role})
	return nil
}

func refreshTokenFromBody(r *http.Request) (string, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}
	if !strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRefreshBody))
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}

	var payload struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", err
	}
	return strings.TrimSpace(payload.RefreshToken), nil
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
