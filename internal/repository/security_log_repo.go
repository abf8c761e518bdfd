package repository

import (
	"context"

	"storeauth/internal/entity"

	"gorm.io/gorm"
)

// SecurityLogRepository is the append-only audit trail written by the HTTP
// boundary.
type SecurityLogRepository interface {
	Append(ctx context.Context, log *entity.SecurityLog) error
}

type securityLogRepository struct {
	db *gorm.DB
}

func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Append(ctx context.Context, log *entity.SecurityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
