package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

// MessageLog stores every notification attempt and picks the instance a
// user sends from. It plugs into notification.Service.
type MessageLog struct {
	instances repositories.InstanceRepo
	messages  repositories.MessageRepo
}

func NewMessageLog(db *gorm.DB) *MessageLog {
	return &MessageLog{
		instances: repositories.NewInstanceRepo(db),
		messages:  repositories.NewMessageRepo(db),
	}
}

// ActiveInstance returns the user's first connected instance, or "" so the
// gateway default is used.
func (l *MessageLog) ActiveInstance(ctx context.Context, userID string) (string, error) {
	instance, err := l.instances.FirstConnected(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return instance.InstanceName, nil
}

func (l *MessageLog) RecordMessage(ctx context.Context, rec *notification.Record) error {
	uid, err := uuid.Parse(rec.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q", rec.UserID)
	}

	message := &models.WhatsAppMessage{
		UserID:       uid,
		Phone:        rec.Phone,
		MessageType:  string(rec.Kind),
		Content:      rec.Text,
		Status:       rec.Status,
		TemplateType: rec.Template,
		Error:        rec.Error,
		SentAt:       rec.SentAt,
	}
	if cid, err := uuid.Parse(rec.ClientID); err == nil {
		message.ClientID = &cid
	}
	return l.messages.Create(ctx, message)
}

// Gateway is the part of whatsapp.Service that manages instances.
type Gateway interface {
	CreateInstance(ctx context.Context, instance, phone string) (*whatsapp.InstanceInfo, error)
	ConnectionState(ctx context.Context, instance string) (whatsapp.InstanceState, error)
	QRCode(ctx context.Context, instance string) ([]byte, error)
	DeleteInstance(ctx context.Context, instance string) error
}

// InstanceResult is a stored instance with the QR code to pair it
type InstanceResult struct {
	Instance *models.WhatsAppInstance `json:"instance"`
	QRCode   []byte                   `json:"qr_code,omitempty"` // PNG, base64 in JSON
}

type WhatsAppService struct {
	gateway   Gateway
	instances repositories.InstanceRepo
	messages  repositories.MessageRepo
	clients   repositories.ClientRepo
	notifier  *notification.Service
}

// NewWhatsAppService takes a nil gateway when WhatsApp is not configured;
// instance management then reports ErrUnavailable.
func NewWhatsAppService(db *gorm.DB, gateway Gateway, notifier *notification.Service) *WhatsAppService {
	return &WhatsAppService{
		gateway:   gateway,
		instances: repositories.NewInstanceRepo(db),
		messages:  repositories.NewMessageRepo(db),
		clients:   repositories.NewClientRepo(db),
		notifier:  notifier,
	}
}

func (s *WhatsAppService) requireGateway() error {
	if s.gateway == nil {
		return fmt.Errorf("%w: whatsapp gateway", ErrUnavailable)
	}
	return nil
}

func (s *WhatsAppService) CreateInstance(ctx context.Context, userID string, req *models.CreateInstanceRequest) (*InstanceResult, error) {
	if err := s.requireGateway(); err != nil {
		return nil, err
	}
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("fm_%s_%s", strings.ReplaceAll(userID, "-", "")[:8], uuid.NewString()[:8])
	info, err := s.gateway.CreateInstance(ctx, name, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to create instance on gateway: %w", err)
	}

	instance := &models.WhatsAppInstance{
		UserID:       uid,
		InstanceName: info.Name,
		PhoneNumber:  whatsapp.NormalizePhone(req.PhoneNumber),
		Status:       models.InstanceConnecting,
	}
	if err := s.instances.Create(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to save instance: %w", err)
	}

	log.Printf("📱 WhatsApp instance %s created for user %s", instance.InstanceName, userID)
	return &InstanceResult{Instance: instance, QRCode: info.QRCode}, nil
}

func (s *WhatsAppService) ListInstances(ctx context.Context, userID string) ([]models.WhatsAppInstance, error) {
	instances, err := s.instances.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	return instances, nil
}

// RefreshStatus asks the gateway for the connection state and stores it.
func (s *WhatsAppService) RefreshStatus(ctx context.Context, userID, id string) (*models.WhatsAppInstance, error) {
	if err := s.requireGateway(); err != nil {
		return nil, err
	}
	instance, err := s.instances.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("whatsapp instance", err)
	}

	state, err := s.gateway.ConnectionState(ctx, instance.InstanceName)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection state: %w", err)
	}
	status := instanceStatus(state)
	if status != instance.Status {
		if err := s.instances.UpdateStatus(ctx, instance.ID.String(), status); err != nil {
			return nil, fmt.Errorf("failed to update instance: %w", err)
		}
		instance.Status = status
	}
	return instance, nil
}

func instanceStatus(state whatsapp.InstanceState) string {
	switch state {
	case whatsapp.StateOpen:
		return models.InstanceConnected
	case whatsapp.StateConnecting:
		return models.InstanceConnecting
	}
	return models.InstanceDisconnected
}

func (s *WhatsAppService) QRCode(ctx context.Context, userID, id string) ([]byte, error) {
	if err := s.requireGateway(); err != nil {
		return nil, err
	}
	instance, err := s.instances.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("whatsapp instance", err)
	}
	png, err := s.gateway.QRCode(ctx, instance.InstanceName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch QR code: %w", err)
	}
	return png, nil
}

// DeleteInstance removes the instance locally even if the gateway fails.
func (s *WhatsAppService) DeleteInstance(ctx context.Context, userID, id string) error {
	instance, err := s.instances.GetByID(ctx, userID, id)
	if err != nil {
		return notFound("whatsapp instance", err)
	}
	if s.gateway != nil {
		if err := s.gateway.DeleteInstance(ctx, instance.InstanceName); err != nil {
			log.Printf("⚠️  Gateway refused to delete instance %s: %v", instance.InstanceName, err)
		}
	}
	if err := s.instances.Delete(ctx, userID, id); err != nil {
		return notFound("whatsapp instance", err)
	}
	return nil
}

// Send delivers a free-text message to one of the user's clients.
func (s *WhatsAppService) Send(ctx context.Context, userID string, req *models.SendMessageRequest) (bool, error) {
	client, err := s.clients.GetByID(ctx, userID, req.ClientID)
	if err != nil {
		return false, notFound("client", err)
	}
	if s.notifier == nil {
		return false, fmt.Errorf("%w: whatsapp", ErrUnavailable)
	}
	return s.notifier.Notify(ctx, notification.Message{
		UserID:   userID,
		ClientID: client.ID.String(),
		Phone:    client.WhatsApp,
		Text:     req.Message,
		Kind:     notification.KindManual,
	}), nil
}

func (s *WhatsAppService) Messages(ctx context.Context, filter repositories.MessageFilter) ([]models.WhatsAppMessage, error) {
	messages, err := s.messages.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
