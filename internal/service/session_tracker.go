package service

import (
	"context"
	"errors"

	"storeauth/internal/entity"
	"storeauth/internal/metrics"
	"storeauth/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// SessionTracker owns the (user, origin) session rows. A row for the caller's
// origin is what the profile and session endpoints accept as proof of a full
// login, on top of a valid access token.
type SessionTracker struct {
	sessions repository.SessionRepository
	devices  DeviceParser
	log      logrus.FieldLogger
}

func NewSessionTracker(sessions repository.SessionRepository, devices DeviceParser, log logrus.FieldLogger) *SessionTracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionTracker{sessions: sessions, devices: devices, log: log}
}

// Admit creates a session for (userID, origin) unless one already exists.
// The boolean reports whether a row was written. Losing an insert race to a
// concurrent login from the same origin is not an error.
func (t *SessionTracker) Admit(ctx context.Context, userID uuid.UUID, origin string, rawUserAgent string) (*entity.Session, bool, error) {
	existing, err := t.sessions.FindByOrigin(ctx, userID, origin)
	if err != nil {
		return nil, false, storeFailure(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	var info entity.DeviceInfo
	if t.devices != nil {
		info = t.devices.Parse(rawUserAgent)
	}
	session := &entity.Session{
		UserID:    userID,
		IPAddress: origin,
		UserAgent: rawUserAgent,
		Device:    datatypes.NewJSONType(info),
	}
	err = t.sessions.Create(ctx, session)
	if errors.Is(err, repository.ErrDuplicate) {
		t.log.WithFields(logrus.Fields{
			"user_id": userID,
			"origin":  origin,
		}).Debug("session created concurrently")
		existing, err = t.sessions.FindByOrigin(ctx, userID, origin)
		if err != nil {
			return nil, false, storeFailure(err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, storeFailure(err)
	}
	metrics.SessionsCreated.Inc()
	return session, true, nil
}

// Established reports whether userID has completed a login from origin.
func (t *SessionTracker) Established(ctx context.Context, userID uuid.UUID, origin string) (bool, error) {
	session, err := t.sessions.FindByOrigin(ctx, userID, origin)
	if err != nil {
		return false, storeFailure(err)
	}
	return session != nil, nil
}

func (t *SessionTracker) List(ctx context.Context, userID uuid.UUID) ([]entity.Session, error) {
	sessions, err := t.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return sessions, nil
}

func (t *SessionTracker) DeleteOne(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error {
	err := t.sessions.Delete(ctx, sessionID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "Session not found")
	}
	if err != nil {
		return storeFailure(err)
	}
	return nil
}

func (t *SessionTracker) DeleteAllForOrigin(ctx context.Context, userID uuid.UUID, origin string) error {
	if err := t.sessions.DeleteByOrigin(ctx, userID, origin); err != nil {
		return storeFailure(err)
	}
	return nil
}

func (t *SessionTracker) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	if err := t.sessions.DeleteAllByUser(ctx, userID); err != nil {
		return storeFailure(err)
	}
	return nil
}
