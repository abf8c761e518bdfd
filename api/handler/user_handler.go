package handler

import (
	"context"
	"errors"
	"net/http"

	"storeauth/api/middleware"
	"storeauth/internal/dto"
	"storeauth/internal/entity"
	"storeauth/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	ListUsers(ctx context.Context, input service.ListUsersInput) ([]entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input service.UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	MySessions(ctx context.Context, userID uuid.UUID) ([]entity.Session, error)
	Logout(ctx context.Context, userID uuid.UUID, origin string) error
	DeleteSession(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error
}

type UserHandler struct {
	Service  UserService
	Validate *validator.Validate
	Audit    *AuditRecorder
}

func NewUserHandler(svc UserService, validate *validator.Validate, audit *AuditRecorder) *UserHandler {
	return &UserHandler{Service: svc, Validate: validate, Audit: audit}
}

func (h *UserHandler) List(c echo.Context) error {
	var query dto.ListUsersQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid query"))
	}
	if err := validate(h.Validate, query); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	users, err := h.Service.ListUsers(c.Request().Context(), service.ListUsersInput{
		Name:    query.Name,
		Email:   query.Email,
		Page:    query.Page,
		Limit:   query.Limit,
		OrderBy: query.OrderBy,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.DataResponse[[]dto.UserResponse]{Data: dto.UserResponsesFromEntities(users)})
}

func (h *UserHandler) Me(c echo.Context) error {
	subject, ok := middleware.SubjectFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	user, err := h.Service.Me(c.Request().Context(), subject.UserID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.DataResponse[dto.UserResponse]{Data: dto.UserResponseFromEntity(user)})
}

func (h *UserHandler) MySessions(c echo.Context) error {
	subject, ok := middleware.SubjectFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	sessions, err := h.Service.MySessions(c.Request().Context(), subject.UserID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.DataResponse[[]dto.SessionResponse]{Data: dto.SessionResponsesFromEntities(sessions)})
}

func (h *UserHandler) Logout(c echo.Context) error {
	subject, ok := middleware.SubjectFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	ctx := c.Request().Context()
	origin := c.RealIP()
	if err := h.Service.Logout(ctx, subject.UserID, origin); err != nil {
		return writeServiceError(c, err)
	}
	h.Audit.Record(ctx, &subject.UserID, origin, entity.Logout, nil)
	return c.JSON(http.StatusOK, dto.MessageResponse{Data: "Logout"})
}

func (h *UserHandler) DeleteSession(c echo.Context) error {
	subject, ok := middleware.SubjectFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid session id"))
	}
	ctx := c.Request().Context()
	if err := h.Service.DeleteSession(ctx, subject.UserID, sessionID); err != nil {
		return writeServiceError(c, err)
	}
	h.Audit.Record(ctx, &subject.UserID, c.RealIP(), entity.SessionRevoked, map[string]any{
		"session_id": sessionID.String(),
	})
	return c.JSON(http.StatusOK, dto.MessageResponse{Data: "Session deleted"})
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}
	user, err := h.Service.GetUser(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.DataResponse[dto.UserResponse]{Data: dto.UserResponseFromEntity(user)})
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}
	var req dto.UpdateUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := validate(h.Validate, req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	user, err := h.Service.UpdateUser(c.Request().Context(), id, service.UpdateUserInput{
		Name:   req.Name,
		Images: req.Images,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.DataResponse[dto.UserResponse]{Data: dto.UserResponseFromEntity(user)})
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}
	ctx := c.Request().Context()
	if err := h.Service.DeleteUser(ctx, id); err != nil {
		return writeServiceError(c, err)
	}
	// The row is gone, so the event is not linked to a user.
	metadata := map[string]any{"target_id": id.String()}
	if subject, ok := middleware.SubjectFromContext(c); ok {
		metadata["actor_id"] = subject.UserID.String()
	}
	h.Audit.Record(ctx, nil, c.RealIP(), entity.UserDeleted, metadata)
	return c.NoContent(http.StatusNoContent)
}
