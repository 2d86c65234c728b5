package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

type ClientRepo interface {
	WithTx(tx *gorm.DB) ClientRepo
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, userID, id string) (*models.Client, error)
	List(ctx context.Context, userID, search string) ([]models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int64, error)
}

type clientRepo struct {
	db *gorm.DB
}

func NewClientRepo(db *gorm.DB) ClientRepo {
	return &clientRepo{db: db}
}

func (r *clientRepo) WithTx(tx *gorm.DB) ClientRepo {
	return &clientRepo{db: tx}
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepo) GetByID(ctx context.Context, userID, id string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) List(ctx context.Context, userID, search string) ([]models.Client, error) {
	var clients []models.Client
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR document LIKE ? OR whatsapp LIKE ?", like, like, like)
	}
	err := query.Order("name ASC").Find(&clients).Error
	return clients, err
}

func (r *clientRepo) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepo) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Client{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *clientRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
