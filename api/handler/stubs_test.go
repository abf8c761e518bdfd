package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"storeauth/api/middleware"
	"storeauth/internal/access"
	"storeauth/internal/entity"
	"storeauth/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type stubAuthService struct {
	register func(service.RegisterInput) (*service.RegisterResult, error)
	login    func(service.LoginInput) (*service.LoginResult, error)
	sendOTP  func(string) (string, error)
	verify   func(string, string) (*service.VerifyResult, error)
	reset    func(string, string, string) (string, error)
	refresh  func(service.Claims) (string, error)
	elevate  func(uuid.UUID) (*entity.User, error)
}

func (s *stubAuthService) Register(_ context.Context, input service.RegisterInput) (*service.RegisterResult, error) {
	return s.register(input)
}

func (s *stubAuthService) Login(_ context.Context, input service.LoginInput) (*service.LoginResult, error) {
	return s.login(input)
}

func (s *stubAuthService) SendOTP(_ context.Context, email string) (string, error) {
	return s.sendOTP(email)
}

func (s *stubAuthService) Verify(_ context.Context, email string, code string) (*service.VerifyResult, error) {
	return s.verify(email, code)
}

func (s *stubAuthService) ResetPassword(_ context.Context, email string, code string, newPassword string) (string, error) {
	return s.reset(email, code, newPassword)
}

func (s *stubAuthService) RefreshAccessToken(_ context.Context, claims service.Claims) (string, error) {
	return s.refresh(claims)
}

func (s *stubAuthService) Elevate(_ context.Context, targetID uuid.UUID) (*entity.User, error) {
	return s.elevate(targetID)
}

type memoryAuditLog struct {
	mu      sync.Mutex
	records []entity.SecurityLog
}

func (m *memoryAuditLog) Append(_ context.Context, log *entity.SecurityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *log)
	return nil
}

func (m *memoryAuditLog) actions() []entity.SecurityAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]entity.SecurityAction, 0, len(m.records))
	for _, record := range m.records {
		actions = append(actions, record.Action)
	}
	return actions
}

func jsonRequest(method string, target string, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func newContext(req *http.Request, rec *httptest.ResponseRecorder, subject *access.Subject) echo.Context {
	c := echo.New().NewContext(req, rec)
	if subject != nil {
		middleware.SetSubject(c, *subject)
	}
	return c
}

func activeUser() *entity.User {
	return &entity.User{
		ID:     uuid.New(),
		Name:   "Ann",
		Email:  "ann@example.com",
		Status: entity.UserStatusActive,
		Role:   entity.UserRoleUser,
	}
}
