package service

import (
	"context"
	"errors"

	"storeauth/internal/entity"
	"storeauth/internal/metrics"
	"storeauth/internal/repository"

	"github.com/google/uuid"
)

// dummyPassword is hashed once at construction so unknown-user logins pay the
// same hashing cost as real ones.
const dummyPassword = "storeauth-dummy-password"

const (
	bodyActivate = "Code for verified account - "
	bodyOTP      = "OTP code - "
	bodyNewLogin = "Somebody logged into your account"
)

// AuthService drives the credential lifecycle: PENDING on register, ACTIVE on
// verify, with password reset available in either state.
type AuthService struct {
	users    repository.UserRepository
	sessions *SessionTracker

	mailer       Mailer
	passwordHash PasswordHasher
	codes        CodeEngine
	tokens       TokenIssuer
	replay       ReplayGuard
	dummyHash    string
}

func NewAuthService(
	users repository.UserRepository,
	sessions *SessionTracker,
	mailer Mailer,
	passwordHash PasswordHasher,
	codes CodeEngine,
	tokens TokenIssuer,
) *AuthService {
	dummyHash, _ := passwordHash.Hash(dummyPassword)
	return &AuthService{
		users:        users,
		sessions:     sessions,
		mailer:       mailer,
		passwordHash: passwordHash,
		codes:        codes,
		tokens:       tokens,
		dummyHash:    dummyHash,
	}
}

// WithReplayGuard makes verify and reset reject a code that was already
// accepted within its window.
func (s *AuthService) WithReplayGuard(guard ReplayGuard) *AuthService {
	s.replay = guard
	return s
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, storeFailure(err)
	}
	if existing != nil {
		metrics.Registrations.WithLabelValues("conflict").Inc()
		return nil, newError(ErrConflict, msgUserExists)
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, wrapError(ErrBadRequest, err.Error(), err)
	}

	user := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Status:       entity.UserStatusPending,
		Role:         entity.UserRoleUser,
		Images:       input.Images,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.Registrations.WithLabelValues("conflict").Inc()
			return nil, newError(ErrConflict, msgUserExists)
		}
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, storeFailure(err)
	}

	result := &RegisterResult{User: user, Message: msgRegistered}

	code, err := s.codes.Generate(user.Email)
	if err == nil {
		err = s.send(ctx, user.Email, subjectActivate, bodyActivate+code)
	}
	if err != nil {
		metrics.Registrations.WithLabelValues("partial").Inc()
		return result, partialSuccess("Registered, but the activation code could not be sent, request a new one", err)
	}

	metrics.Registrations.WithLabelValues("ok").Inc()
	return result, nil
}

// Login admits a session for the caller's origin and returns a fresh token
// pair. Existing sessions and tokens are left untouched.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, storeFailure(err)
	}
	if user == nil {
		_ = s.passwordHash.Verify(s.dummyHash, input.Password)
		metrics.Logins.WithLabelValues("unknown_user").Inc()
		return nil, newError(ErrUnauthorized, msgUnauthorized)
	}
	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		metrics.Logins.WithLabelValues("bad_credentials").Inc()
		return nil, newError(ErrBadCredentials, msgWrongCredentials)
	}
	if !user.IsActive() {
		metrics.Logins.WithLabelValues("not_active").Inc()
		return nil, newError(ErrAccountNotActive, msgNotActive)
	}

	session, created, err := s.sessions.Admit(ctx, user.ID, input.Origin, input.UserAgent)
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, err
	}

	pair, err := s.tokens.IssuePair(Claims{UserID: user.ID, Role: user.Role})
	if err != nil {
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, wrapError(ErrBadRequest, err.Error(), err)
	}

	result := &LoginResult{
		User:       user,
		Session:    session,
		NewSession: created,
		Tokens:     *pair,
	}

	if err := s.send(ctx, user.Email, subjectNewLogin, bodyNewLogin); err != nil {
		metrics.Logins.WithLabelValues("partial").Inc()
		return result, partialSuccess("Logged in, but the login notification could not be sent", err)
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	return result, nil
}

// SendOTP mails the current code for email. Within one period repeated calls
// deliver the same code.
func (s *AuthService) SendOTP(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", storeFailure(err)
	}
	if user == nil {
		return "", newError(ErrUnauthorized, msgUnauthorized)
	}

	code, err := s.codes.Generate(user.Email)
	if err != nil {
		return "", wrapError(ErrBadRequest, err.Error(), err)
	}
	if err := s.send(ctx, user.Email, subjectOTP, bodyOTP+code); err != nil {
		return "", wrapError(ErrDelivery, "OTP could not be sent, try again later", err)
	}
	return msgOTPSent, nil
}

func (s *AuthService) Verify(ctx context.Context, email string, code string) (*VerifyResult, error) {
	user, err := s.checkCode(ctx, "verify", email, code, msgWrongVerifyCode)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateStatus(ctx, user.ID, entity.UserStatusActive); err != nil {
		s.releaseCode(ctx, "verify", email, code)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrBadRequest, msgUserNotFound)
		}
		return nil, storeFailure(err)
	}
	user.Status = entity.UserStatusActive
	return &VerifyResult{User: user, Message: msgActivated}, nil
}

// ResetPassword replaces the password of the account bound to code. The
// account may still be PENDING.
func (s *AuthService) ResetPassword(ctx context.Context, email string, code string, newPassword string) (string, error) {
	user, err := s.checkCode(ctx, "reset", email, code, msgWrongResetCode)
	if err != nil {
		return "", err
	}

	hash, err := s.passwordHash.Hash(newPassword)
	if err != nil {
		s.releaseCode(ctx, "reset", email, code)
		return "", wrapError(ErrBadRequest, err.Error(), err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.releaseCode(ctx, "reset", email, code)
		if errors.Is(err, repository.ErrNotFound) {
			return "", newError(ErrBadRequest, msgUserNotFound)
		}
		return "", storeFailure(err)
	}
	return msgPasswordUpdated, nil
}

// RefreshAccessToken mints an access token from already verified refresh
// claims. The refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(_ context.Context, claims Claims) (string, error) {
	token, err := s.tokens.IssueAccess(claims)
	if err != nil {
		return "", wrapError(ErrBadRequest, err.Error(), err)
	}
	return token, nil
}

// Elevate grants the SUPERADMIN role. Callers must gate it on ADMIN.
func (s *AuthService) Elevate(ctx context.Context, targetID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, newError(ErrBadRequest, msgUserNotFound)
	}

	if err := s.users.UpdateRole(ctx, user.ID, entity.UserRoleSuperAdmin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrBadRequest, msgUserNotFound)
		}
		return nil, storeFailure(err)
	}
	user.Role = entity.UserRoleSuperAdmin
	return user, nil
}

func (s *AuthService) checkCode(ctx context.Context, purpose string, email string, code string, wrong string) (*entity.User, error) {
	if !s.codes.Check(code, email) {
		metrics.OTPChecks.WithLabelValues(purpose, "invalid").Inc()
		return nil, newError(ErrBadRequest, wrong)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil {
		return nil, newError(ErrBadRequest, msgUserNotFound)
	}

	if s.replay != nil {
		fresh, err := s.replay.Consume(ctx, purpose+":"+email, code)
		if err != nil {
			return nil, storeFailure(err)
		}
		if !fresh {
			metrics.OTPChecks.WithLabelValues(purpose, "replayed").Inc()
			return nil, newError(ErrBadRequest, wrong)
		}
	}

	metrics.OTPChecks.WithLabelValues(purpose, "valid").Inc()
	return user, nil
}

// releaseCode forgets a consumed code after the write it guarded failed, so
// the same code can be retried within its window.
func (s *AuthService) releaseCode(ctx context.Context, purpose string, email string, code string) {
	if s.replay == nil {
		return
	}
	_ = s.replay.Release(context.WithoutCancel(ctx), purpose+":"+email, code)
}

func (s *AuthService) send(ctx context.Context, to string, subject string, body string) error {
	if s.mailer == nil {
		return nil
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		metrics.MailFailures.WithLabelValues(subject).Inc()
		return err
	}
	return nil
}
