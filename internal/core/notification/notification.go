package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Kind classifies a message in the log
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindApproval     Kind = "approval"
	KindRejection    Kind = "rejection"
	KindReminder     Kind = "reminder"
	KindOverdue      Kind = "overdue"
	KindManual       Kind = "manual"
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

var ErrNoPhone = errors.New("recipient has no WhatsApp number")

// Sender delivers a text through a WhatsApp instance. An empty instance
// means the gateway default.
type Sender interface {
	SendText(ctx context.Context, instance, phone, text string) error
}

// InstanceResolver picks the instance a user sends from.
type InstanceResolver interface {
	ActiveInstance(ctx context.Context, userID string) (string, error)
}

// Recorder persists every send attempt.
type Recorder interface {
	RecordMessage(ctx context.Context, rec *Record) error
}

// Message is one outgoing WhatsApp text on behalf of a user
type Message struct {
	UserID   string
	ClientID string
	Phone    string
	Text     string
	Kind     Kind
	Template string // reminder template name, when one was used
}

// Record is what the Recorder stores for a Message
type Record struct {
	Message
	Status string
	Error  string
	SentAt *time.Time
}

// Service sends notifications best-effort: failures are recorded and
// reported as false, never returned to the caller.
type Service struct {
	sender     Sender
	resolver   InstanceResolver
	recorder   Recorder
	adminPhone string
}

type Option func(*Service)

func WithInstanceResolver(r InstanceResolver) Option {
	return func(s *Service) { s.resolver = r }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithAdminPhone sets where NotifyAdmin messages go.
func WithAdminPhone(phone string) Option {
	return func(s *Service) { s.adminPhone = phone }
}

func NewService(sender Sender, opts ...Option) *Service {
	s := &Service{sender: sender}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify sends msg and records the attempt. It reports whether the
// gateway accepted the message.
func (s *Service) Notify(ctx context.Context, msg Message) bool {
	err := s.send(ctx, msg)

	rec := &Record{Message: msg, Status: StatusSent}
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		log.Printf("❌ WhatsApp %s to %s failed: %v", msg.Kind, msg.Phone, err)
	} else {
		now := time.Now()
		rec.SentAt = &now
		log.Printf("✅ WhatsApp %s sent to %s", msg.Kind, msg.Phone)
	}

	if s.recorder != nil {
		if recErr := s.recorder.RecordMessage(ctx, rec); recErr != nil {
			log.Printf("⚠️  Failed to record WhatsApp message: %v", recErr)
		}
	}
	return err == nil
}

// NotifyAdmin sends an unrecorded message to the configured admin phone.
func (s *Service) NotifyAdmin(ctx context.Context, text string) bool {
	if s.adminPhone == "" || s.sender == nil {
		return false
	}
	if err := s.sender.SendText(ctx, "", s.adminPhone, text); err != nil {
		log.Printf("⚠️  Failed to send WhatsApp to admin: %v", err)
		return false
	}
	log.Printf("📨 WhatsApp notification sent to admin: %s", s.adminPhone)
	return true
}

func (s *Service) send(ctx context.Context, msg Message) error {
	if s.sender == nil {
		return errors.New("whatsapp not configured")
	}
	if msg.Phone == "" {
		return ErrNoPhone
	}

	instance := ""
	if s.resolver != nil && msg.UserID != "" {
		name, err := s.resolver.ActiveInstance(ctx, msg.UserID)
		if err != nil {
			return fmt.Errorf("failed to resolve instance: %w", err)
		}
		instance = name
	}
	return s.sender.SendText(ctx, instance, msg.Phone, msg.Text)
}
