package middleware

import (
	"storeauth/internal/access"

	"github.com/labstack/echo/v4"
)

const contextSubjectKey = "auth_subject"

func SetSubject(c echo.Context, subject access.Subject) {
	c.Set(contextSubjectKey, subject)
}

// SubjectFromContext returns the identity attached by a token gate.
func SubjectFromContext(c echo.Context) (access.Subject, bool) {
	subject, ok := c.Get(contextSubjectKey).(access.Subject)
	return subject, ok
}
