package service

import (
	"errors"
	"time"

	"storeauth/internal/entity"
	"storeauth/internal/utils"

	"github.com/google/uuid"
)

type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// TokenConfig holds the signing material. The two secrets must differ.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenService is stateless: there is no revocation list, a token dies only by
// expiry or by rotating its secret.
type TokenService struct {
	access  utils.JWTManager
	refresh utils.JWTManager
}

func NewTokenService(cfg TokenConfig, clock Clock) (*TokenService, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	var now func() time.Time
	if clock != nil {
		now = clock.Now
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 12 * time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		access: utils.JWTManager{
			Secret: cfg.AccessSecret,
			Issuer: cfg.Issuer,
			Type:   AccessToken.String(),
			TTL:    accessTTL,
			Now:    now,
		},
		refresh: utils.JWTManager{
			Secret: cfg.RefreshSecret,
			Issuer: cfg.Issuer,
			Type:   RefreshToken.String(),
			TTL:    refreshTTL,
			Now:    now,
		},
	}, nil
}

func (s *TokenService) IssueAccess(claims Claims) (string, error) {
	token, _, err := s.access.Issue(claims.UserID.String(), string(claims.Role))
	return token, err
}

func (s *TokenService) IssueRefresh(claims Claims) (string, error) {
	token, _, err := s.refresh.Issue(claims.UserID.String(), string(claims.Role))
	return token, err
}

func (s *TokenService) IssuePair(claims Claims) (*TokenPair, error) {
	access, err := s.IssueAccess(claims)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefresh(claims)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks token against the key of the given kind. Every rejection
// yields the same error.
func (s *TokenService) Verify(token string, kind TokenKind) (Claims, error) {
	manager := s.access
	if kind == RefreshToken {
		manager = s.refresh
	}
	parsed, err := manager.Parse(token)
	if err != nil {
		return Claims{}, newError(ErrInvalidToken, "Unauthorized")
	}
	userID, err := uuid.Parse(parsed.UserID)
	if err != nil {
		return Claims{}, newError(ErrInvalidToken, "Unauthorized")
	}
	return Claims{UserID: userID, Role: entity.UserRole(parsed.Role)}, nil
}
