package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

type ReminderRepo interface {
	Create(ctx context.Context, reminder *models.PaymentReminder) error
	GetByID(ctx context.Context, userID, id string) (*models.PaymentReminder, error)
	List(ctx context.Context, userID string) ([]models.PaymentReminder, error)
	// ActiveTemplate returns the newest active template of a type, if any.
	ActiveTemplate(ctx context.Context, userID, reminderType string) (*models.PaymentReminder, error)
	Update(ctx context.Context, reminder *models.PaymentReminder) error
	Delete(ctx context.Context, userID, id string) error

	GetConfig(ctx context.Context, userID string) (*models.AutoReminderConfig, error)
	SaveConfig(ctx context.Context, config *models.AutoReminderConfig) error
	// ListConfigs returns every stored config; users without one are not included.
	ListConfigs(ctx context.Context) ([]models.AutoReminderConfig, error)
}

type reminderRepo struct {
	db *gorm.DB
}

func NewReminderRepo(db *gorm.DB) ReminderRepo {
	return &reminderRepo{db: db}
}

func (r *reminderRepo) Create(ctx context.Context, reminder *models.PaymentReminder) error {
	return r.db.WithContext(ctx).Create(reminder).Error
}

func (r *reminderRepo) GetByID(ctx context.Context, userID, id string) (*models.PaymentReminder, error) {
	var reminder models.PaymentReminder
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepo) List(ctx context.Context, userID string) ([]models.PaymentReminder, error) {
	var reminders []models.PaymentReminder
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&reminders).Error
	return reminders, err
}

func (r *reminderRepo) ActiveTemplate(ctx context.Context, userID, reminderType string) (*models.PaymentReminder, error) {
	var reminder models.PaymentReminder
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND reminder_type = ? AND is_active = ?", userID, reminderType, true).
		Order("created_at DESC").
		First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepo) Update(ctx context.Context, reminder *models.PaymentReminder) error {
	return r.db.WithContext(ctx).Save(reminder).Error
}

func (r *reminderRepo) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.PaymentReminder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reminderRepo) GetConfig(ctx context.Context, userID string) (*models.AutoReminderConfig, error) {
	var config models.AutoReminderConfig
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&config).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *reminderRepo) SaveConfig(ctx context.Context, config *models.AutoReminderConfig) error {
	return r.db.WithContext(ctx).Save(config).Error
}

func (r *reminderRepo) ListConfigs(ctx context.Context) ([]models.AutoReminderConfig, error) {
	var configs []models.AutoReminderConfig
	err := r.db.WithContext(ctx).Find(&configs).Error
	return configs, err
}
