package handler

import (
	"context"
	"encoding/json"

	"storeauth/internal/entity"
	"storeauth/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// AuditRecorder writes security events to the security_logs table and the
// process log. A failed write is logged and otherwise ignored.
type AuditRecorder struct {
	Logs repository.SecurityLogRepository
	Log  logrus.FieldLogger
}

func (a *AuditRecorder) Record(
	ctx context.Context,
	userID *uuid.UUID,
	origin string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if a == nil {
		return
	}
	fields := logrus.Fields{"action": action, "origin": origin}
	if userID != nil {
		fields["user_id"] = userID.String()
	}
	for key, value := range metadata {
		fields[key] = value
	}
	if a.Log != nil {
		a.Log.WithFields(fields).Info("security event")
	}

	if a.Logs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err == nil {
			payload = datatypes.JSON(bytes)
		}
	}
	var ip *string
	if origin != "" {
		ip = &origin
	}
	record := &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ip,
		Action:    action,
		Metadata:  payload,
	}
	if err := a.Logs.Append(ctx, record); err != nil && a.Log != nil {
		a.Log.WithError(err).WithFields(fields).Warn("security log write failed")
	}
}
