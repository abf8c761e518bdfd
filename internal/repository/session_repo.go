package repository

import (
	"context"
	"errors"

	"storeauth/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByOrigin(ctx context.Context, userID uuid.UUID, ipAddress string) (*entity.Session, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Session, error)
	Delete(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error
	DeleteByOrigin(ctx context.Context, userID uuid.UUID, ipAddress string) error
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create returns ErrDuplicate when a row for the same (user, origin) pair
// already exists.
func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *sessionRepository) FindByOrigin(ctx context.Context, userID uuid.UUID, ipAddress string) (*entity.Session, error) {
	var session entity.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ip_address = ?", userID, ipAddress).
		First(&session).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Delete(&entity.Session{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepository) DeleteByOrigin(ctx context.Context, userID uuid.UUID, ipAddress string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND ip_address = ?", userID, ipAddress).
		Delete(&entity.Session{}).
		Error
}

func (r *sessionRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entity.Session{}).
		Error
}
