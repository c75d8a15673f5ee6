package notify

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/modules/profile"
	"github.com/rescue-chip/core/internal/pkg/mail"
	"go.uber.org/zap"
)

type fakeLimiter struct {
	allow bool
	mu    sync.Mutex
	keys  []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return f.allow
}

type fakeResolver struct {
	rec   *profile.Recipients
	err   error
	calls int
}

func (f *fakeResolver) ResolveRecipients(ctx context.Context, folio string) (*profile.Recipients, error) {
	f.calls++
	return f.rec, f.err
}

type fakeAlertMailer struct {
	mu   sync.Mutex
	to   [][]string
	data []mail.EmergencyAlertData
	err  error
}

func (f *fakeAlertMailer) SendEmergencyAlert(to []string, data mail.EmergencyAlertData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.to = append(f.to, to)
	f.data = append(f.data, data)
	return f.err
}

type fakePhones struct {
	mu       sync.Mutex
	sms      []string
	whatsapp []string
	smsErr   error
	waErr    error
}

func (f *fakePhones) SendSMS(ctx context.Context, number, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sms = append(f.sms, number)
	return f.smsErr
}

func (f *fakePhones) SendWhatsApp(ctx context.Context, number, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whatsapp = append(f.whatsapp, number)
	return f.waErr
}

func testEvent() Event {
	lat, lng := 19.4326, -99.1332
	return Event{
		Folio:      "rc-001",
		Latitude:   &lat,
		Longitude:  &lng,
		IPAddress:  "1.2.3.4",
		UserAgent:  "scanner",
		OccurredAt: time.Now(),
	}
}

func testRecipients() *profile.Recipients {
	return &profile.Recipients{
		Folio:      "RC-001",
		OwnerName:  "Ana López",
		OwnerMail:  "Ana@Example.com",
		OwnerPhone: "5511111111",
		Contacts: []models.EmergencyContact{
			{Name: "Luis", Phone: "+52 55 1111 1111", Mail: "ana@example.com"},
			{Name: "Marta", Phone: "5522222222", Mail: "marta@example.com"},
			{Name: "Sin datos"},
		},
	}
}

func TestDispatchDeduplicatesRecipients(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	resolver := &fakeResolver{rec: testRecipients()}
	mailer := &fakeAlertMailer{}
	phones := &fakePhones{}
	svc := NewService(limiter, resolver, mailer, phones, "52", zap.NewNop())

	if err := svc.Dispatch(context.Background(), testEvent()); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(mailer.to) != 1 {
		t.Fatalf("expected one aggregate mail, got %d", len(mailer.to))
	}
	// Ana@Example.com and ana@example.com are the same mailbox.
	if len(mailer.to[0]) != 2 {
		t.Fatalf("mail recipients = %v, want 2 after dedupe", mailer.to[0])
	}
	if mailer.data[0].MapsURL == "" {
		t.Fatalf("coordinates were supplied, maps link expected")
	}
	if mailer.data[0].Folio != "RC-001" {
		t.Fatalf("folio = %q, want normalized RC-001", mailer.data[0].Folio)
	}

	// Owner phone and Luis' phone normalize to the same number.
	want := []string{"525511111111", "525522222222"}
	gotSMS := append([]string(nil), phones.sms...)
	gotWA := append([]string(nil), phones.whatsapp...)
	sort.Strings(gotSMS)
	sort.Strings(gotWA)
	for name, got := range map[string][]string{"sms": gotSMS, "whatsapp": gotWA} {
		if len(got) != len(want) {
			t.Fatalf("%s attempts = %v, want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s attempts = %v, want %v", name, got, want)
			}
		}
	}
}

func TestDispatchRateLimited(t *testing.T) {
	limiter := &fakeLimiter{allow: false}
	resolver := &fakeResolver{rec: testRecipients()}
	mailer := &fakeAlertMailer{}
	phones := &fakePhones{}
	svc := NewService(limiter, resolver, mailer, phones, "52", zap.NewNop())

	err := svc.Dispatch(context.Background(), testEvent())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if resolver.calls != 0 || len(mailer.to) != 0 || len(phones.sms) != 0 || len(phones.whatsapp) != 0 {
		t.Fatalf("nothing may be dispatched once the quota trips")
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "RC-001" {
		t.Fatalf("limiter key = %v, want the normalized folio", limiter.keys)
	}
}

func TestDispatchChannelFailuresAreIsolated(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	resolver := &fakeResolver{rec: testRecipients()}
	mailer := &fakeAlertMailer{err: errors.New("mail provider down")}
	phones := &fakePhones{smsErr: errors.New("sms provider down")}
	svc := NewService(limiter, resolver, mailer, phones, "52", zap.NewNop())

	if err := svc.Dispatch(context.Background(), testEvent()); err != nil {
		t.Fatalf("channel failures must not surface: %v", err)
	}
	if len(phones.whatsapp) != 2 {
		t.Fatalf("whatsapp attempts = %d, want 2 despite sms failing", len(phones.whatsapp))
	}
	if len(phones.sms) != 2 {
		t.Fatalf("sms attempts = %d, want 2 despite mail failing", len(phones.sms))
	}
}

func TestDispatchWithoutRecipients(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	resolver := &fakeResolver{rec: &profile.Recipients{Folio: "RC-002", OwnerName: "Ana"}}
	mailer := &fakeAlertMailer{}
	phones := &fakePhones{}
	svc := NewService(limiter, resolver, mailer, phones, "52", zap.NewNop())

	if err := svc.Dispatch(context.Background(), Event{Folio: "rc-002", OccurredAt: time.Now()}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(mailer.to) != 0 || len(phones.sms) != 0 || len(phones.whatsapp) != 0 {
		t.Fatalf("no recipients resolved, nothing should be sent")
	}
}

func TestDispatchResolverFailure(t *testing.T) {
	limiter := &fakeLimiter{allow: true}
	resolver := &fakeResolver{err: errors.New("db down")}
	svc := NewService(limiter, resolver, &fakeAlertMailer{}, &fakePhones{}, "52", zap.NewNop())

	if err := svc.Dispatch(context.Background(), testEvent()); err == nil {
		t.Fatalf("resolver failure must surface to the caller for logging")
	}
}
