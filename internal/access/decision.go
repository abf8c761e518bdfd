// Package access decides whether an authenticated subject may perform an
// operation. Decisions are pure; token verification and persistence happen in
// the callers.
package access

import (
	"slices"

	"storeauth/internal/entity"

	"github.com/google/uuid"
)

// Subject is the identity taken from a verified token.
type Subject struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

// Staff roles may act on any user's profile.
var Staff = []entity.UserRole{entity.UserRoleAdmin, entity.UserRoleSuperAdmin}

// Allow reports whether the subject's role is one of required. An empty
// required set denies everyone.
func Allow(subject Subject, required ...entity.UserRole) bool {
	return slices.Contains(required, subject.Role)
}

// AllowSelfOrStaff reports whether the subject owns the resource or holds a
// staff role.
func AllowSelfOrStaff(subject Subject, ownerID uuid.UUID) bool {
	if subject.UserID != uuid.Nil && subject.UserID == ownerID {
		return true
	}
	return Allow(subject, Staff...)
}
