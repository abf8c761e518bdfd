package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"storeauth/internal/entity"
	"storeauth/internal/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User

	findErr   error
	createErr error
	// updateFailures makes the next n update calls fail with errStoreDown.
	updateFailures int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) update(id uuid.UUID, apply func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	apply(user)
	return nil
}

func (r *memoryUserRepo) failUpdate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateFailures > 0 {
		r.updateFailures--
		return errStoreDown
	}
	return nil
}

func (r *memoryUserRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.UserStatus) error {
	if err := r.failUpdate(); err != nil {
		return err
	}
	return r.update(id, func(u *entity.User) { u.Status = status })
}

func (r *memoryUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	if err := r.failUpdate(); err != nil {
		return err
	}
	return r.update(id, func(u *entity.User) { u.PasswordHash = passwordHash })
}

func (r *memoryUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role entity.UserRole) error {
	return r.update(id, func(u *entity.User) { u.Role = role })
}

func (r *memoryUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, update repository.UserProfileUpdate) error {
	return r.update(id, func(u *entity.User) {
		if update.Name != nil {
			u.Name = *update.Name
		}
		if update.Images != nil {
			u.Images = update.Images
		}
	})
}

func (r *memoryUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepo) List(_ context.Context, filter repository.UserFilter) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.User
	for _, user := range r.users {
		if filter.Name != "" && !strings.Contains(strings.ToLower(user.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Email != "" && !strings.Contains(strings.ToLower(user.Email), strings.ToLower(filter.Email)) {
			continue
		}
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.OrderDesc {
			return out[i].Name > out[j].Name
		}
		return out[i].Name < out[j].Name
	})
	start := (filter.Page - 1) * filter.Limit
	if start >= len(out) {
		return nil, nil
	}
	end := min(start+filter.Limit, len(out))
	return out[start:end], nil
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions []entity.Session

	// hideNextLookup makes the first FindByOrigin miss, simulating a
	// concurrent insert between lookup and create.
	hideNextLookup bool
	createCalls    int
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{}
}

func (r *memorySessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	for _, existing := range r.sessions {
		if existing.UserID == s.UserID && existing.IPAddress == s.IPAddress {
			return repository.ErrDuplicate
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions = append(r.sessions, *s)
	return nil
}

func (r *memorySessionRepo) FindByOrigin(_ context.Context, userID uuid.UUID, ipAddress string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideNextLookup {
		r.hideNextLookup = false
		return nil, nil
	}
	for _, s := range r.sessions {
		if s.UserID == userID && s.IPAddress == ipAddress {
			copied := s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memorySessionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Session
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memorySessionRepo) remove(keep func(entity.Session) bool) int {
	kept := r.sessions[:0]
	removed := 0
	for _, s := range r.sessions {
		if keep(s) {
			kept = append(kept, s)
			continue
		}
		removed++
	}
	r.sessions = kept
	return removed
}

func (r *memorySessionRepo) Delete(_ context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := r.remove(func(s entity.Session) bool {
		return s.ID != sessionID || s.UserID != userID
	})
	if removed == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *memorySessionRepo) DeleteByOrigin(_ context.Context, userID uuid.UUID, ipAddress string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(func(s entity.Session) bool {
		return s.UserID != userID || s.IPAddress != ipAddress
	})
	return nil
}

func (r *memorySessionRepo) DeleteAllByUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(func(s entity.Session) bool { return s.UserID != userID })
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to string, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}

type staticDevices struct{}

func (staticDevices) Parse(raw string) entity.DeviceInfo {
	if raw == "" {
		return entity.DeviceInfo{Type: "unknown"}
	}
	return entity.DeviceInfo{Type: "desktop", Client: raw}
}

// plainHasher keeps tests fast; bcrypt itself is covered separately.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Verify(hash string, password string) bool {
	return hash == "plain:"+password
}
