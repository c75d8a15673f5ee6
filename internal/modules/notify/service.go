package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rescue-chip/core/internal/modules/profile"
	"github.com/rescue-chip/core/internal/pkg/mail"
	"github.com/rescue-chip/core/internal/pkg/ratelimit"
	"github.com/rescue-chip/core/internal/pkg/sms"
	"go.uber.org/zap"
)

// phoneAttemptTimeout bounds each individual SMS/WhatsApp call so one
// slow provider cannot stall the whole fan-out.
const phoneAttemptTimeout = 15 * time.Second

type Service struct {
	limiter     ratelimit.Limiter
	resolver    RecipientResolver
	mailer      Mailer
	phones      PhoneSender
	countryCode string
	logger      *zap.Logger
}

func NewService(limiter ratelimit.Limiter, resolver RecipientResolver, mailer Mailer, phones PhoneSender, countryCode string, logger *zap.Logger) *Service {
	return &Service{
		limiter:     limiter,
		resolver:    resolver,
		mailer:      mailer,
		phones:      phones,
		countryCode: countryCode,
		logger:      logger,
	}
}

// Dispatch fans an emergency event out to the owner and the stored
// emergency contacts. Every channel is best effort: failures are logged
// and never abort the remaining sends. The only hard error besides
// recipient resolution is ErrRateLimited.
func (s *Service) Dispatch(ctx context.Context, ev Event) error {
	folio := profile.NormalizeFolio(ev.Folio)

	if !s.limiter.Allow(ctx, folio) {
		return ErrRateLimited
	}

	rec, err := s.resolver.ResolveRecipients(ctx, folio)
	if err != nil {
		return fmt.Errorf("resolve recipients for %s: %w", folio, err)
	}

	mails, numbers := s.collect(rec)
	if len(mails) == 0 && len(numbers) == 0 {
		s.logger.Warn("emergency scan has no reachable recipients", zap.String("folio", folio))
		return nil
	}

	data := mail.EmergencyAlertData{
		Folio:     folio,
		OwnerName: rec.OwnerName,
		Date:      ev.OccurredAt.Format("02/01/2006 15:04 MST"),
		MapsURL:   mapsURL(ev.Latitude, ev.Longitude),
		IP:        ev.IPAddress,
		UserAgent: ev.UserAgent,
	}

	if len(mails) > 0 && s.mailer != nil {
		if err := s.mailer.SendEmergencyAlert(mails, data); err != nil {
			s.logger.Error("emergency alert mail failed",
				zap.String("folio", folio), zap.Int("recipients", len(mails)), zap.Error(err))
		}
	}

	s.dispatchPhones(ctx, folio, numbers, smsBody(rec.OwnerName, folio, data))
	return nil
}

// collect flattens owner + contact addresses into deduplicated mail and
// phone lists. Mails compare case-insensitively, phones after E.164
// normalization.
func (s *Service) collect(rec *profile.Recipients) (mails []string, numbers []string) {
	seenMail := map[string]struct{}{}
	seenPhone := map[string]struct{}{}

	addMail := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" || !strings.Contains(addr, "@") {
			return
		}
		key := strings.ToLower(addr)
		if _, ok := seenMail[key]; ok {
			return
		}
		seenMail[key] = struct{}{}
		mails = append(mails, addr)
	}
	addPhone := func(raw string) {
		num, ok := sms.NormalizePhone(raw, s.countryCode)
		if !ok {
			return
		}
		if _, dup := seenPhone[num]; dup {
			return
		}
		seenPhone[num] = struct{}{}
		numbers = append(numbers, num)
	}

	addMail(rec.OwnerMail)
	addPhone(rec.OwnerPhone)
	for _, c := range rec.Contacts {
		addMail(c.Mail)
		addPhone(c.Phone)
	}
	return mails, numbers
}

// dispatchPhones sends the alert to every number over SMS and WhatsApp
// concurrently and waits for all attempts before returning.
func (s *Service) dispatchPhones(ctx context.Context, folio string, numbers []string, body string) {
	if s.phones == nil || len(numbers) == 0 {
		return
	}

	var wg sync.WaitGroup
	var sent, failed atomic.Int64

	attempt := func(channel string, send func(context.Context, string, string) error, number string) {
		defer wg.Done()
		actx, cancel := context.WithTimeout(ctx, phoneAttemptTimeout)
		defer cancel()
		if err := send(actx, number, body); err != nil {
			failed.Add(1)
			s.logger.Warn("emergency alert dispatch failed",
				zap.String("folio", folio),
				zap.String("channel", channel),
				zap.String("number", number),
				zap.Error(err))
			return
		}
		sent.Add(1)
	}

	for _, number := range numbers {
		wg.Add(2)
		go attempt("sms", s.phones.SendSMS, number)
		go attempt("whatsapp", s.phones.SendWhatsApp, number)
	}
	wg.Wait()

	s.logger.Info("emergency alert fan-out finished",
		zap.String("folio", folio),
		zap.Int("numbers", len(numbers)),
		zap.Int64("sent", sent.Load()),
		zap.Int64("failed", failed.Load()))
}

func smsBody(ownerName, folio string, data mail.EmergencyAlertData) string {
	if ownerName == "" {
		ownerName = "tu familiar"
	}
	msg := fmt.Sprintf("ALERTA RescueChip: el chip de %s (folio %s) fue escaneado en una emergencia el %s.",
		ownerName, folio, data.Date)
	if data.MapsURL != "" {
		msg += " Ubicación: " + data.MapsURL
	}
	return msg
}

func mapsURL(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", *lat, *lng)
}
