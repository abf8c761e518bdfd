package middleware

import (
	"net/http"

	"storeauth/internal/access"
	"storeauth/internal/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireRole admits subjects whose role is one of roles.
func RequireRole(roles ...entity.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, ok := SubjectFromContext(c)
			if !ok || !access.Allow(subject, roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden resource")
			}
			return next(c)
		}
	}
}

// RequireSelfOrStaff admits the owner of the user id in path param, or staff.
func RequireSelfOrStaff(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, ok := SubjectFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden resource")
			}
			ownerID, err := uuid.Parse(c.Param(param))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
			}
			if !access.AllowSelfOrStaff(subject, ownerID) {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden resource")
			}
			return next(c)
		}
	}
}
