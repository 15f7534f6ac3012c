package testutil

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"github.com/prezentenergy/caasweb/internal/model"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
)

// Store is an in-memory stand-in for the postgres repositories.
type Store struct {
	Leads    *LeadRepo
	Users    *UserRepo
	Codes    *CodeRepo
	Sessions *SessionRepo
}

func NewStore() *Store {
	return &Store{
		Leads:    &LeadRepo{},
		Users:    &UserRepo{byID: map[string]*model.User{}},
		Codes:    &CodeRepo{},
		Sessions: &SessionRepo{items: map[string]*model.Session{}},
	}
}

// InTx runs fn directly. The fakes have no rollback.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type LeadRepo struct {
	mu    sync.Mutex
	items []*model.Lead
}

func (r *LeadRepo) Create(ctx context.Context, lead *model.Lead) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *lead
	cp.ID = int64(len(r.items) + 1)
	r.items = append(r.items, &cp)
	lead.ID = cp.ID
	return cp.ID, nil
}

func (r *LeadRepo) List(ctx context.Context) ([]*model.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Lead, 0, len(r.items))
	for _, item := range r.items {
		cp := *item
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ctime != out[j].Ctime {
			return out[i].Ctime > out[j].Ctime
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type UserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.byID {
		if item.Email == user.Email {
			return appErr.ErrDuplicateEmail
		}
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.byID {
		if item.Email == email {
			cp := *item
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *UserRepo) MarkVerified(ctx context.Context, userID string, mtime int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[userID]
	if !ok {
		return appErr.ErrNotFound
	}
	item.IsVerified = true
	item.Mtime = mtime
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return appErr.ErrNotFound
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

type CodeRepo struct {
	mu    sync.Mutex
	items []*model.VerificationCode
}

func (r *CodeRepo) Create(ctx context.Context, code *model.VerificationCode) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *code
	cp.ID = int64(len(r.items) + 1)
	r.items = append(r.items, &cp)
	code.ID = cp.ID
	return cp.ID, nil
}

func (r *CodeRepo) LatestValid(ctx context.Context, userID, purpose string, now int64) (*model.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.items) - 1; i >= 0; i-- {
		item := r.items[i]
		if item.UserID == userID && item.Purpose == purpose && !item.Used && item.ExpiresAt > now {
			cp := *item
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (r *CodeRepo) MarkUsed(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id && !item.Used {
			item.Used = true
			return nil
		}
	}
	return appErr.ErrNotFound
}

// Count returns how many codes were issued.
func (r *CodeRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type SessionRepo struct {
	mu    sync.Mutex
	items map[string]*model.Session

	// FailDelete, when set, is returned by Delete and the session is kept.
	FailDelete error
}

func (r *SessionRepo) Get(ctx context.Context, id string, now int64) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.ExpiresAt <= now {
		return nil, appErr.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDelete != nil {
		return r.FailDelete
	}
	delete(r.items, id)
	return nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, item := range r.items {
		if item.ExpiresAt <= now {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *SessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

type Mail struct {
	To      string
	Subject string
	Body    string
}

// MailBox records outgoing mail instead of delivering it.
type MailBox struct {
	mu   sync.Mutex
	Sent []Mail
	Fail error
}

func (m *MailBox) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.Sent = append(m.Sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

// LastCode extracts the verification code from the most recent mail to addr.
func (m *MailBox) LastCode(addr string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].To == addr {
			return codePattern.FindString(m.Sent[i].Body)
		}
	}
	return ""
}
