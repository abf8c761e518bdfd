package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DeviceInfo is the structured form of a login's User-Agent header.
type DeviceInfo struct {
	Type          string `json:"type"`
	Client        string `json:"client,omitempty"`
	ClientVersion string `json:"clientVersion,omitempty"`
	Engine        string `json:"engine,omitempty"`
	EngineVersion string `json:"engineVersion,omitempty"`
	OS            string `json:"os,omitempty"`
	Platform      string `json:"platform,omitempty"`
}

// Session records that a user completed a full login from one network origin.
// (UserID, IPAddress) is unique; see idx_sessions_user_origin.
type Session struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sessions_user_origin"`

	IPAddress string `gorm:"type:varchar(45);not null;uniqueIndex:idx_sessions_user_origin"`
	UserAgent string `gorm:"type:text"`

	Device datatypes.JSONType[DeviceInfo] `gorm:"type:jsonb"`

	CreatedAt time.Time
}
