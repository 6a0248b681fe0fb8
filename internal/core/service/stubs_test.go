package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

var (
	samplePDF  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	revisedPDF = []byte("%PDF-1.7\n% revised\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
)

// ── accounts ──────────────────────────────────────────────────────────────────

type stubAccountRepo struct {
	accounts map[string]*domain.Account
	err      error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, existing := range r.accounts {
		switch {
		case existing.Email == a.Email:
			return nil, &domain.DuplicateKeyError{Field: "email"}
		case existing.Username == a.Username:
			return nil, &domain.DuplicateKeyError{Field: "username"}
		case existing.Phone == a.Phone:
			return nil, &domain.DuplicateKeyError{Field: "phone"}
		}
	}
	clone := cloneAccount(a)
	if clone.ID == "" {
		clone.ID = "id-" + a.Username
	}
	r.accounts[clone.ID] = cloneAccount(clone)
	return clone, nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrNotFound
}

// ── limiter ───────────────────────────────────────────────────────────────────

type stubLimiter struct {
	limit    int
	attempts map[string]int
	err      error
}

func newStubLimiter(limit int) *stubLimiter {
	return &stubLimiter{limit: limit, attempts: make(map[string]int)}
}

func (l *stubLimiter) Allow(_ context.Context, key string) (int, error) {
	if l.err != nil {
		return 0, l.err
	}
	if l.attempts[key] >= l.limit {
		return 42, nil
	}
	return 0, nil
}

func (l *stubLimiter) Record(_ context.Context, key string) error {
	l.attempts[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	delete(l.attempts, key)
	return nil
}

// ── audit ─────────────────────────────────────────────────────────────────────

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Log(kind domain.AuditKind, message, email, ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, domain.AuditEvent{Kind: kind, Message: message, UserEmail: email, IP: ip})
}

func (a *recordingAudit) kinds() []domain.AuditKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditKind, len(a.events))
	for i, e := range a.events {
		out[i] = e.Kind
	}
	return out
}

// ── profiles ──────────────────────────────────────────────────────────────────

type stubProfileRepo struct {
	students   map[string]*domain.StudentProfile
	recruiters map[string]*domain.RecruiterProfile
	updates    int
	reads      int
	findErr    error
	updateErr  error
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{
		students:   make(map[string]*domain.StudentProfile),
		recruiters: make(map[string]*domain.RecruiterProfile),
	}
}

func (r *stubProfileRepo) FindStudent(_ context.Context, id string) (*domain.StudentProfile, error) {
	r.reads++
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.students[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProfileRepo) FindRecruiter(_ context.Context, id string) (*domain.RecruiterProfile, error) {
	r.reads++
	p, ok := r.recruiters[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProfileRepo) PhoneInUse(_ context.Context, role domain.Role, id, phone string) (bool, error) {
	r.reads++
	if role == domain.RoleStudent {
		for other, p := range r.students {
			if other != id && p.Phone == phone {
				return true, nil
			}
		}
		return false, nil
	}
	for other, p := range r.recruiters {
		if other != id && p.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProfileRepo) UpdateStudent(_ context.Context, id string, u domain.StudentUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	r.students[id] = applyStudent(id, r.students[id], u)
	return nil
}

func (r *stubProfileRepo) UpdateRecruiter(_ context.Context, id string, u domain.RecruiterUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	r.recruiters[id] = applyRecruiter(id, u)
	return nil
}

// ── files ─────────────────────────────────────────────────────────────────────

type memFileStore struct {
	files     map[string][]byte
	saveErr   error
	deleteErr error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[string][]byte)}
}

func (s *memFileStore) Save(_ context.Context, name string, data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.files[name] = append([]byte(nil), data...)
	return nil
}

func (s *memFileStore) Open(_ context.Context, name string) (io.ReadCloser, int64, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *memFileStore) Delete(_ context.Context, name string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.files, name)
	return nil
}

func (s *memFileStore) Exists(_ context.Context, name string) (bool, error) {
	_, ok := s.files[name]
	return ok, nil
}

var errBoom = errors.New("boom")
