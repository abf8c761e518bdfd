package handler

import (
	"context"
	"encoding/json"
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

type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.RegisterResult, error)
	Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
	SendOTP(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email string, code string) (*service.VerifyResult, error)
	ResetPassword(ctx context.Context, email string, code string, newPassword string) (string, error)
	RefreshAccessToken(ctx context.Context, claims service.Claims) (string, error)
	Elevate(ctx context.Context, targetID uuid.UUID) (*entity.User, error)
}

type AuthHandler struct {
	Service  AuthService
	Validate *validator.Validate
	Audit    *AuditRecorder
}

func NewAuthHandler(svc AuthService, validate *validator.Validate, audit *AuditRecorder) *AuthHandler {
	return &AuthHandler{
		Service:  svc,
		Validate: validate,
		Audit:    audit,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Images:   req.Images,
	}
	result, err := h.Service.Register(c.Request().Context(), input)
	if errors.Is(err, service.ErrPartialSuccess) && result != nil {
		return writePartial(c, err, dto.MessageResponse{Data: result.Message})
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.MessageResponse{Data: result.Message})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	ctx := c.Request().Context()
	origin := c.RealIP()
	input := service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		Origin:    origin,
		UserAgent: c.Request().UserAgent(),
	}
	result, err := h.Service.Login(ctx, input)
	if err != nil && result == nil {
		h.Audit.Record(ctx, nil, origin, entity.LoginFailed, map[string]any{
			"email": req.Email,
			"kind":  service.KindOf(err).Error(),
		})
		return writeServiceError(c, err)
	}

	h.Audit.Record(ctx, &result.User.ID, origin, entity.LoginSuccess, map[string]any{
		"new_session": result.NewSession,
	})
	response := dto.LoginResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}
	if err != nil {
		return writePartial(c, err, response)
	}
	return c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req dto.SendOTPRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	message, err := h.Service.SendOTP(c.Request().Context(), req.Email)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Data: message})
}

func (h *AuthHandler) Verify(c echo.Context) error {
	var req dto.VerifyRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	result, err := h.Service.Verify(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.VerifyResponse{
		Data: result.Message,
		User: dto.UserResponseFromEntity(result.User),
	})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	message, err := h.Service.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Data: message})
}

// RefreshToken runs behind the refresh gate, which has already verified the
// token and attached its subject.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	subject, ok := middleware.SubjectFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	token, err := h.Service.RefreshAccessToken(c.Request().Context(), service.Claims{
		UserID: subject.UserID,
		Role:   subject.Role,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.AccessTokenResponse{AccessToken: token})
}

func (h *AuthHandler) SuperAdmin(c echo.Context) error {
	actor, ok := middleware.SubjectFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, errors.New("unauthorized"))
	}
	var req dto.SuperAdminRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid user id"))
	}

	ctx := c.Request().Context()
	user, err := h.Service.Elevate(ctx, targetID)
	if err != nil {
		return writeServiceError(c, err)
	}
	h.Audit.Record(ctx, &actor.UserID, c.RealIP(), entity.RoleElevated, map[string]any{
		"target_id": user.ID.String(),
		"role":      string(user.Role),
	})
	return c.JSON(http.StatusOK, dto.DataResponse[dto.UserResponse]{Data: dto.UserResponseFromEntity(user)})
}

func (h *AuthHandler) validate(payload any) error {
	return validate(h.Validate, payload)
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writePartial(c echo.Context, err error, data any) error {
	return c.JSON(http.StatusAccepted, dto.PartialResponse{
		Kind:    service.ErrPartialSuccess.Error(),
		Message: err.Error(),
		Data:    data,
	})
}
