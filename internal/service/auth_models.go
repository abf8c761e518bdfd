package service

import (
	"storeauth/internal/entity"
)

const (
	msgRegistered       = "Registered, the code was sent to your email, please activate your account"
	msgUserExists       = "User already exists"
	msgUnauthorized     = "Unauthorized"
	msgWrongCredentials = "Email or password is wrong"
	msgNotActive        = "Your account is not active, please activate your account"
	msgWrongVerifyCode  = "One-time-password or email is wrong"
	msgWrongResetCode   = "Otp or email is wrong"
	msgPasswordUpdated  = "Your password updated successfully"
	msgUserNotFound     = "User not found"
	msgActivated        = "Your account has been successfully activated"
	msgOTPSent          = "OTP sent to your email"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Images   []string
}

type RegisterResult struct {
	User    *entity.User
	Message string
}

// LoginInput carries the credentials plus the network origin and raw
// User-Agent the request was observed from.
type LoginInput struct {
	Email     string
	Password  string
	Origin    string
	UserAgent string
}

type LoginResult struct {
	User       *entity.User
	Session    *entity.Session
	NewSession bool
	Tokens     TokenPair
}

type VerifyResult struct {
	User    *entity.User
	Message string
}
