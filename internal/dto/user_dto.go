package dto

import (
	"time"

	"storeauth/internal/entity"
)

type ListUsersQuery struct {
	Name    string `query:"name" validate:"omitempty"`
	Email   string `query:"email" validate:"omitempty"`
	Page    int    `query:"page" validate:"omitempty,min=0"`
	Limit   int    `query:"limit" validate:"omitempty,min=0,max=100"`
	OrderBy string `query:"orderBy" validate:"omitempty,oneof=asc desc"`
}

type UpdateUserRequest struct {
	Name   *string  `json:"name" validate:"omitempty,min=1"`
	Images []string `json:"images" validate:"omitempty,min=1,dive,required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Role      string    `json:"role"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SessionResponse struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	IPAddress string            `json:"ipAddress"`
	Device    entity.DeviceInfo `json:"device"`
	CreatedAt time.Time         `json:"createdAt"`
}

type DataResponse[T any] struct {
	Data T `json:"data"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	images := []string(user.Images)
	if images == nil {
		images = []string{}
	}
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Status:    string(user.Status),
		Role:      string(user.Role),
		Images:    images,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func UserResponsesFromEntities(users []entity.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, UserResponseFromEntity(&users[i]))
	}
	return responses
}

func SessionResponsesFromEntities(sessions []entity.Session) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, SessionResponse{
			ID:        session.ID.String(),
			UserID:    session.UserID.String(),
			IPAddress: session.IPAddress,
			Device:    session.Device.Data(),
			CreatedAt: session.CreatedAt,
		})
	}
	return responses
}
