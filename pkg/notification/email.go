// Package notification delivers outbound emails with per-recipient rate
// limiting. Delivery is best-effort: malformed addresses and over-limit
// sends are dropped silently, and a send never fails its caller.
package notification

import (
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"
	"time"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)

// recipientWindow tracks sends to one recipient within the current rolling
// window.
type recipientWindow struct {
	count       atomic.Int64
	windowStart time.Time
}

// EmailSender sends plain-text emails with a bounded send count per
// recipient per rolling window. The counter map is owned by the sender and
// guarded by its mutex; it is never shared as ambient state.
type EmailSender struct {
	from   string
	max    int
	window time.Duration
	logger *slog.Logger
	clock  func() time.Time

	mu     sync.Mutex
	limits map[string]*recipientWindow
}

// NewEmailSender creates a sender allowing max sends per recipient per window.
func NewEmailSender(from string, max int, window time.Duration, logger *slog.Logger) *EmailSender {
	return &EmailSender{
		from:   from,
		max:    max,
		window: window,
		logger: logger.With("service", "email"),
		clock:  time.Now,
		limits: make(map[string]*recipientWindow),
	}
}

// Send delivers a plain-text email to the recipient. Invalid addresses and
// recipients over the rate limit are dropped with a warning; Send never
// returns an error to the caller.
func (s *EmailSender) Send(to, subject, body string) {
	if !isValidEmail(to) {
		s.logger.Warn("invalid email address", "to", to)
		return
	}
	if s.rateLimited(to) {
		s.logger.Warn("rate limit exceeded for recipient", "to", to)
		return
	}
	s.deliver(to, subject, body)
	s.recordSend(to)
}

// deliver hands the message to the transport. Outbound SMTP is an external
// collaborator; here the transport is the structured log.
func (s *EmailSender) deliver(to, subject, body string) {
	s.logger.Info("email sent",
		"from", s.from,
		"to", to,
		"subject", subject,
		"bytes", len(body),
	)
}

func (s *EmailSender) rateLimited(to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.limits[to]
	if !ok {
		return false
	}
	if s.clock().Sub(w.windowStart) > s.window {
		w.count.Store(0)
		w.windowStart = s.clock()
		return false
	}
	return w.count.Load() >= int64(s.max)
}

func (s *EmailSender) recordSend(to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.limits[to]
	if !ok {
		w = &recipientWindow{windowStart: s.clock()}
		s.limits[to] = w
	}
	w.count.Add(1)
}

func isValidEmail(email string) bool {
	return email != "" && emailPattern.MatchString(email)
}
