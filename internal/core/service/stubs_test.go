package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byEmail   map[string]*domain.User
	findErr   error
	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, domain.ErrUserExists
	}
	clone := *u
	clone.ID = uuid.New()
	r.byEmail[u.Email] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byEmail {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindProfile(_ context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return &domain.UserProfile{User: *u}, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byEmail[u.Email]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *u
	r.byEmail[u.Email] = &clone
	return nil
}

// plainHasher stores passwords with a visible prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Verify(p, h string) bool       { return h == "hashed:"+p }

type stubBlocklist struct {
	revoked map[string]time.Duration
	err     error
}

func newStubBlocklist() *stubBlocklist {
	return &stubBlocklist{revoked: make(map[string]time.Duration)}
}

func (b *stubBlocklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if b.err != nil {
		return b.err
	}
	b.revoked[jti] = ttl
	return nil
}

func (b *stubBlocklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, b.err
}

type stubActivity struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
	err    error
}

func (a *stubActivity) Record(_ context.Context, ev domain.ActivityEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return a.err
}

func (a *stubActivity) types() []domain.ActivityType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.ActivityType, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Type)
	}
	return out
}

type stubMailQueue struct {
	sent []domain.Message
	err  error
}

func (q *stubMailQueue) Enqueue(_ context.Context, msg domain.Message) error {
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

// linkToken extracts the token that follows path in the last queued message.
func (q *stubMailQueue) linkToken(path string) (string, error) {
	if len(q.sent) == 0 {
		return "", errors.New("no mail queued")
	}
	body := q.sent[len(q.sent)-1].HTML
	_, rest, ok := strings.Cut(body, path)
	if !ok {
		return "", errors.New("link not found in " + body)
	}
	tok, _, _ := strings.Cut(rest, `"`)
	return tok, nil
}

type stubBookRepo struct {
	books     map[uuid.UUID]*domain.Book
	deleteErr error
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{books: make(map[uuid.UUID]*domain.Book)}
}

func (r *stubBookRepo) List(context.Context) ([]domain.Book, error) {
	out := make([]domain.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, *b)
	}
	return out, nil
}

func (r *stubBookRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Book, error) {
	var out []domain.Book
	for _, b := range r.books {
		if b.UserID != nil && *b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *stubBookRepo) Get(_ context.Context, id uuid.UUID) (*domain.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookRepo) Create(_ context.Context, b *domain.Book) (*domain.Book, error) {
	clone := *b
	clone.ID = uuid.New()
	r.books[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubBookRepo) Update(_ context.Context, id uuid.UUID, u domain.BookUpdate) (*domain.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.PageCount != nil {
		b.PageCount = *u.PageCount
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

type stubReviewRepo struct {
	lastEmail string
	lastBook  uuid.UUID
	err       error
}

func (r *stubReviewRepo) AddToBook(_ context.Context, email string, bookID uuid.UUID, rv *domain.Review) (*domain.Review, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.lastEmail = email
	r.lastBook = bookID
	clone := *rv
	clone.ID = uuid.New()
	clone.BookID = &bookID
	return &clone, nil
}
