package dto

type RegisterRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,alphanum,min=4,max=32"`
	Images   []string `json:"images" validate:"omitempty,min=1,dive,required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,alphanum,min=4,max=32"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,alphanum,min=4,max=32"`
}

type SuperAdminRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

type MessageResponse struct {
	Data string `json:"data"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// PartialResponse accompanies a 202 when the state change committed but the
// notification mail was not delivered.
type PartialResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type VerifyResponse struct {
	Data string       `json:"data"`
	User UserResponse `json:"user"`
}
