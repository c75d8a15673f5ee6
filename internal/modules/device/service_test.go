package device

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/pkg/mail"
)

// memStore mirrors the MySQL store's semantics in memory, including the
// single-consume token claim.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	sessions map[string]*models.DeviceSession
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*models.DeviceSession)}
}

func (m *memStore) Upsert(ctx context.Context, userID, deviceID, deviceInfo, token string, expiresAt time.Time) (*models.DeviceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == userID && s.DeviceID == deviceID {
			s.Status = models.DeviceStatusPending
			s.DeviceInfo = deviceInfo
			s.VerificationToken = &token
			s.TokenExpiresAt = &expiresAt
			cp := *s
			return &cp, nil
		}
	}

	m.nextID++
	s := &models.DeviceSession{
		UserID:            userID,
		DeviceID:          deviceID,
		DeviceInfo:        deviceInfo,
		Status:            models.DeviceStatusPending,
		VerificationToken: &token,
		TokenExpiresAt:    &expiresAt,
	}
	s.ID = fmt.Sprintf("sess-%d", m.nextID)
	m.sessions[s.ID] = s
	cp := *s
	return &cp, nil
}

func (m *memStore) ClaimToken(ctx context.Context, token string) (*models.DeviceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.VerificationToken == nil || *s.VerificationToken != token {
			continue
		}
		if s.TokenExpiresAt == nil || time.Now().After(*s.TokenExpiresAt) {
			return nil, ErrTokenExpired
		}
		s.VerificationToken = nil
		s.TokenExpiresAt = nil
		cp := *s
		return &cp, nil
	}
	return nil, ErrInvalidToken
}

func (m *memStore) MarkVerified(ctx context.Context, sess *models.DeviceSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if s.UserID != sess.UserID {
			continue
		}
		if id == sess.ID {
			s.Status = models.DeviceStatusVerified
		} else {
			s.Status = models.DeviceStatusRevoked
			s.VerificationToken = nil
			s.TokenExpiresAt = nil
		}
	}
	return nil
}

func (m *memStore) RevokeUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == userID {
			s.Status = models.DeviceStatusRevoked
			s.VerificationToken = nil
			s.TokenExpiresAt = nil
		}
	}
	return nil
}

func (m *memStore) get(id string) models.DeviceSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.sessions[id]
}

func (m *memStore) byDevice(userID, deviceID string) (models.DeviceSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.DeviceID == deviceID {
			return *s, true
		}
	}
	return models.DeviceSession{}, false
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type fakeDir struct {
	addr string
	err  error
}

func (f *fakeDir) MailAddress(ctx context.Context, userID string) (string, error) {
	return f.addr, f.err
}

type fakeRevoker struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeRevoker) RevokeAll(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return f.err
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.DeviceVerifyData
	to   []string
	err  error
}

func (f *fakeMailer) SendDeviceVerify(to string, data mail.DeviceVerifyData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.sent = append(f.sent, data)
	return f.err
}

func newTestService(store Store, revoker SessionRevoker, mailer Mailer) *Service {
	return NewService(store, &fakeDir{addr: "owner@example.com"}, revoker, mailer, "https://rescue-chip.com", nil)
}

func lastToken(t *testing.T, m *fakeMailer) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatalf("no confirmation mail was sent")
	}
	data := m.sent[len(m.sent)-1]
	u, err := url.Parse(data.AllowURL)
	if err != nil {
		t.Fatalf("unexpected allow url %q: %v", data.AllowURL, err)
	}
	token := u.Query().Get("token")
	if token == "" {
		t.Fatalf("allow url %q carries no token", data.AllowURL)
	}
	return token
}

func TestRequestCreatesPendingSession(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRevoker{}, mailer)

	if err := svc.Request(context.Background(), "u1", "d1", "Safari"); err != nil {
		t.Fatalf("Request: %v", err)
	}

	sess, ok := store.byDevice("u1", "d1")
	if !ok {
		t.Fatalf("session row was not created")
	}
	if sess.Status != models.DeviceStatusPending {
		t.Fatalf("status = %q, want pending", sess.Status)
	}
	if sess.VerificationToken == nil || *sess.VerificationToken == "" {
		t.Fatalf("no verification token was issued")
	}
	if token := lastToken(t, mailer); token != *sess.VerificationToken {
		t.Fatalf("mail link token %q does not match stored token %q", token, *sess.VerificationToken)
	}
}

func TestRepeatRequestKeepsSingleRowWithFreshToken(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRevoker{}, mailer)
	ctx := context.Background()

	if err := svc.Request(ctx, "u1", "d1", "Safari"); err != nil {
		t.Fatalf("first Request: %v", err)
	}
	first, _ := store.byDevice("u1", "d1")
	firstToken := *first.VerificationToken

	if err := svc.Request(ctx, "u1", "d1", "Safari 17"); err != nil {
		t.Fatalf("second Request: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("expected a single row per (user, device), got %d", store.count())
	}
	second, _ := store.byDevice("u1", "d1")
	if *second.VerificationToken == firstToken {
		t.Fatalf("re-attempt must issue a fresh token")
	}
	if second.DeviceInfo != "Safari 17" {
		t.Fatalf("device info was not refreshed")
	}
}

func TestRequestMailFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeRevoker{}, &fakeMailer{err: errors.New("smtp down")})

	if err := svc.Request(context.Background(), "u1", "d1", "Safari"); err != nil {
		t.Fatalf("mail failure must not surface: %v", err)
	}
	if _, ok := store.byDevice("u1", "d1"); !ok {
		t.Fatalf("session row must be committed before the mail attempt")
	}
}

func TestConfirmAllowRevokesSiblings(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRevoker{}, mailer)
	ctx := context.Background()

	// An older device already verified, a new one asking for trust.
	_ = svc.Request(ctx, "u1", "d-old", "old phone")
	oldToken := lastToken(t, mailer)
	if _, err := svc.Confirm(ctx, oldToken, ActionAllow); err != nil {
		t.Fatalf("confirm old device: %v", err)
	}

	_ = svc.Request(ctx, "u1", "d-new", "new phone")
	newToken := lastToken(t, mailer)

	sess, err := svc.Confirm(ctx, newToken, ActionAllow)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if sess.Status != models.DeviceStatusVerified {
		t.Fatalf("returned status = %q, want verified", sess.Status)
	}

	newSess, _ := store.byDevice("u1", "d-new")
	oldSess, _ := store.byDevice("u1", "d-old")
	if newSess.Status != models.DeviceStatusVerified {
		t.Fatalf("new device status = %q, want verified", newSess.Status)
	}
	if oldSess.Status != models.DeviceStatusRevoked {
		t.Fatalf("sibling device status = %q, want revoked", oldSess.Status)
	}
	if newSess.VerificationToken != nil {
		t.Fatalf("token must be consumed on confirmation")
	}
}

func TestConfirmRevokeClosesEverything(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	revoker := &fakeRevoker{}
	svc := newTestService(store, revoker, mailer)
	ctx := context.Background()

	_ = svc.Request(ctx, "u1", "d1", "unknown laptop")
	token := lastToken(t, mailer)

	sess, err := svc.Confirm(ctx, token, ActionRevoke)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if sess.Status != models.DeviceStatusRevoked {
		t.Fatalf("returned status = %q, want revoked", sess.Status)
	}

	row, _ := store.byDevice("u1", "d1")
	if row.Status != models.DeviceStatusRevoked {
		t.Fatalf("stored status = %q, want revoked", row.Status)
	}
	if len(revoker.calls) != 1 || revoker.calls[0] != "u1" {
		t.Fatalf("global signout expected exactly once for u1, got %v", revoker.calls)
	}
}

func TestConfirmRevokeSurvivesSignoutFailure(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakeRevoker{err: errors.New("provider down")}, mailer)
	ctx := context.Background()

	_ = svc.Request(ctx, "u1", "d1", "unknown laptop")
	token := lastToken(t, mailer)

	if _, err := svc.Confirm(ctx, token, ActionRevoke); err != nil {
		t.Fatalf("signout failure must not surface: %v", err)
	}
	row, _ := store.byDevice("u1", "d1")
	if row.Status != models.DeviceStatusRevoked {
		t.Fatalf("device state must be committed regardless of the provider call")
	}
}

func TestConfirmRejectsUnknownAction(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeRevoker{}, &fakeMailer{})

	if _, err := svc.Confirm(context.Background(), "whatever", "maybe"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
}

func TestConfirmRejectsUnknownToken(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeRevoker{}, &fakeMailer{})

	if _, err := svc.Confirm(context.Background(), "not-a-token", ActionAllow); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestExpiredTokenIsNotConsumed(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakeRevoker{}, &fakeMailer{})
	ctx := context.Background()

	expired := time.Now().Add(-time.Minute)
	token := "11111111-1111-1111-1111-111111111111"
	if _, err := store.Upsert(ctx, "u1", "d1", "phone", token, expired); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if _, err := svc.Confirm(ctx, token, ActionAllow); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}

	row, _ := store.byDevice("u1", "d1")
	if row.VerificationToken == nil || *row.VerificationToken != token {
		t.Fatalf("an expired claim must not mutate the session")
	}
	if row.Status != models.DeviceStatusPending {
		t.Fatalf("status = %q, want pending", row.Status)
	}
}

func TestConcurrentConfirmConsumesTokenOnce(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	revoker := &fakeRevoker{}
	svc := newTestService(store, revoker, mailer)
	ctx := context.Background()

	_ = svc.Request(ctx, "u1", "d1", "phone")
	token := lastToken(t, mailer)

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Half allow, half revoke, all replaying the same link.
			action := ActionAllow
			if i%2 == 1 {
				action = ActionRevoke
			}
			_, errs[i] = svc.Confirm(ctx, token, action)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidToken):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("token consumed %d times, want exactly 1", wins)
	}
	if len(revoker.calls) > 1 {
		t.Fatalf("global signout ran %d times, want at most 1", len(revoker.calls))
	}
}
