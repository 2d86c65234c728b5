package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

type InstanceRepo interface {
	Create(ctx context.Context, instance *models.WhatsAppInstance) error
	GetByID(ctx context.Context, userID, id string) (*models.WhatsAppInstance, error)
	List(ctx context.Context, userID string) ([]models.WhatsAppInstance, error)
	// FirstConnected returns the oldest connected instance of the user.
	FirstConnected(ctx context.Context, userID string) (*models.WhatsAppInstance, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, userID, id string) error
}

type instanceRepo struct {
	db *gorm.DB
}

func NewInstanceRepo(db *gorm.DB) InstanceRepo {
	return &instanceRepo{db: db}
}

func (r *instanceRepo) Create(ctx context.Context, instance *models.WhatsAppInstance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}

func (r *instanceRepo) GetByID(ctx context.Context, userID, id string) (*models.WhatsAppInstance, error) {
	var instance models.WhatsAppInstance
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *instanceRepo) List(ctx context.Context, userID string) ([]models.WhatsAppInstance, error) {
	var instances []models.WhatsAppInstance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&instances).Error
	return instances, err
}

func (r *instanceRepo) FirstConnected(ctx context.Context, userID string) (*models.WhatsAppInstance, error) {
	var instance models.WhatsAppInstance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.InstanceConnected).
		Order("created_at ASC").
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *instanceRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&models.WhatsAppInstance{}).Where("id = ?", id).Update("status", status).Error
}

func (r *instanceRepo) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.WhatsAppInstance{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MessageFilter narrows the message log. Zero fields are ignored.
type MessageFilter struct {
	UserID   string
	ClientID string
	Status   string
	Limit    int
}

type MessageRepo interface {
	Create(ctx context.Context, message *models.WhatsAppMessage) error
	List(ctx context.Context, filter MessageFilter) ([]models.WhatsAppMessage, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, message *models.WhatsAppMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepo) List(ctx context.Context, filter MessageFilter) ([]models.WhatsAppMessage, error) {
	var messages []models.WhatsAppMessage
	query := r.db.WithContext(ctx).Where("user_id = ?", filter.UserID)
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Order("created_at DESC").Find(&messages).Error
	return messages, err
}
