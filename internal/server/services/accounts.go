// Package services contains server-side business logic. AccountService
// covers the account lifecycle: login and sessions, password recovery,
// signup through emailed links, self-service settings and the admin
// operations on other identities.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/mailer"
	"github.com/dmitrijs2005/gatekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
)

const (
	purposeReset  = "reset"
	purposeSignup = "signup"
)

type AccountService struct {
	repomanager repomanager.RepositoryManager
	signer      *auth.LinkSigner
	mailer      mailer.Mailer
	clock       auth.Clock
	metrics     *metrics.Metrics
	logger      logging.Logger

	baseURL               string
	platformName          string
	linkValidity          time.Duration
	sessionSecret         []byte
	sessionValidity       time.Duration
	anonymizedEmailDomain string
}

// NewAccountService wires the service from server config. clock may be nil
// (system time); metrics may be nil (nothing recorded).
func NewAccountService(
	m repomanager.RepositoryManager,
	ml mailer.Mailer,
	cfg *config.Config,
	clock auth.Clock,
	met *metrics.Metrics,
	logger logging.Logger,
) (*AccountService, error) {
	if clock == nil {
		clock = auth.SystemClock{}
	}
	if cfg.SecretKey == "" {
		return nil, common.ErrEmptySecret
	}
	signer, err := auth.NewLinkSigner([]byte(cfg.HMACKey), clock)
	if err != nil {
		return nil, err
	}
	linkValidity := cfg.LinkValidityDuration
	if linkValidity <= 0 {
		linkValidity = auth.DefaultLinkValidity
	}

	return &AccountService{
		repomanager:           m,
		signer:                signer,
		mailer:                ml,
		clock:                 clock,
		metrics:               met,
		logger:                logger.With("module", "accounts"),
		baseURL:               strings.TrimRight(cfg.BaseURL, "/"),
		platformName:          cfg.PlatformName,
		linkValidity:          linkValidity,
		sessionSecret:         []byte(cfg.SecretKey),
		sessionValidity:       cfg.SessionValidityDuration,
		anonymizedEmailDomain: cfg.AnonymizedEmailDomain,
	}, nil
}

// normalizeEmail accepts a bare address ("a@b.c"), trims it and lowercases it.
// Display-name forms are rejected.
func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || addr.Name != "" {
		return "", common.ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// ResetLink builds the external recovery URL for u, bound to its current
// password hash.
func (s *AccountService) ResetLink(u *models.User) string {
	t := s.signer.Issue(auth.ResetBinding(u.ID, u.PasswordHash), s.linkValidity)
	return fmt.Sprintf("%s/reset/%s/%d/%s", s.baseURL, url.PathEscape(u.ID), t.Expires, t.Code)
}

// SignupLink builds the external registration URL for email.
func (s *AccountService) SignupLink(email string) string {
	t := s.signer.Issue(auth.SignupBinding(email), s.linkValidity)
	return fmt.Sprintf("%s/complete_signup/%s/%d/%s", s.baseURL, url.PathEscape(email), t.Expires, t.Code)
}

func (s *AccountService) verify(ctx context.Context, purpose, binding, expires, code string) bool {
	ok := s.signer.VerifyLink(binding, expires, code)
	s.metrics.LinkVerified(purpose, ok)
	if !ok {
		s.logger.Warn(ctx, "link verification failed", "purpose", purpose, "expires", expires)
	}
	return ok
}

// notify renders tmpl and sends it. The error is ErrMailFailed on any
// failure; callers decide whether that matters.
func (s *AccountService) notify(ctx context.Context, tmpl string, to []string, subject string, data mailer.Data) error {
	data.Platform = s.platformName
	kind := strings.TrimSuffix(tmpl, ".txt")

	text, err := mailer.Render(tmpl, data)
	if err != nil {
		s.logger.Error(ctx, "mail render failed", "template", tmpl, "error", err)
		s.metrics.MailFailed(kind)
		return common.ErrMailFailed
	}

	msg := mailer.Message{To: to, Subject: s.platformName + " " + subject, Text: text}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn(ctx, "mail send failed", "template", tmpl, "error", err)
		s.metrics.MailFailed(kind)
		return common.ErrMailFailed
	}
	return nil
}

// internal logs err and hides it behind common.ErrorInternal.
func (s *AccountService) internal(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrTxConflict) {
		s.logger.Debug(ctx, op+" conflicted", "error", err)
		return common.ErrTxConflict
	}
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}
