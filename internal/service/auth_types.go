package service

import (
	"context"
	"time"

	"storeauth/internal/entity"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Mailer delivers a plain-text message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

// CodeEngine issues and checks time-windowed one-time codes bound to an
// identity string.
type CodeEngine interface {
	Generate(identity string) (string, error)
	Check(code string, identity string) bool
}

// ReplayGuard records codes that were already accepted. Consume reports
// false when the code was seen before within its window; Release undoes a
// Consume whose operation did not complete.
type ReplayGuard interface {
	Consume(ctx context.Context, identity string, code string) (bool, error)
	Release(ctx context.Context, identity string, code string) error
}

type TokenIssuer interface {
	IssuePair(claims Claims) (*TokenPair, error)
	IssueAccess(claims Claims) (string, error)
}

type DeviceParser interface {
	Parse(rawUserAgent string) entity.DeviceInfo
}

// Claims is the identity carried by access and refresh tokens.
type Claims struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
