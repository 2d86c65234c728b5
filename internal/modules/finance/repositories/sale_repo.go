package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

type SaleRepo interface {
	WithTx(tx *gorm.DB) SaleRepo
	Create(ctx context.Context, sale *models.InstallmentSale) error
	GetByID(ctx context.Context, userID, id string) (*models.InstallmentSale, error)
	// GetForUpdate loads the sale with a row lock; call it inside a transaction.
	GetForUpdate(ctx context.Context, userID, id string) (*models.InstallmentSale, error)
	GetByToken(ctx context.Context, token string) (*models.InstallmentSale, error)
	GetByTokenForUpdate(ctx context.Context, token string) (*models.InstallmentSale, error)
	List(ctx context.Context, userID string, statuses ...models.SaleStatus) ([]models.InstallmentSale, error)
	Save(ctx context.Context, sale *models.InstallmentSale) error
	Delete(ctx context.Context, userID, id string) error
	CountByClient(ctx context.Context, clientID string) (int64, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepo {
	return &saleRepo{db: db}
}

func (r *saleRepo) WithTx(tx *gorm.DB) SaleRepo {
	return &saleRepo{db: tx}
}

func (r *saleRepo) Create(ctx context.Context, sale *models.InstallmentSale) error {
	return r.db.WithContext(ctx).Omit("Client").Create(sale).Error
}

func (r *saleRepo) GetByID(ctx context.Context, userID, id string) (*models.InstallmentSale, error) {
	return r.first(r.db.WithContext(ctx).Preload("Client"), "id = ? AND user_id = ?", id, userID)
}

func (r *saleRepo) GetForUpdate(ctx context.Context, userID, id string) (*models.InstallmentSale, error) {
	sale, err := r.first(forUpdate(r.db.WithContext(ctx)), "id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, err
	}
	return r.withClient(ctx, sale)
}

func (r *saleRepo) GetByToken(ctx context.Context, token string) (*models.InstallmentSale, error) {
	return r.first(r.db.WithContext(ctx).Preload("Client"), "confirmation_token = ?", token)
}

func (r *saleRepo) GetByTokenForUpdate(ctx context.Context, token string) (*models.InstallmentSale, error) {
	sale, err := r.first(forUpdate(r.db.WithContext(ctx)), "confirmation_token = ?", token)
	if err != nil {
		return nil, err
	}
	return r.withClient(ctx, sale)
}

func (r *saleRepo) List(ctx context.Context, userID string, statuses ...models.SaleStatus) ([]models.InstallmentSale, error) {
	var sales []models.InstallmentSale
	query := r.db.WithContext(ctx).Preload("Client").Where("user_id = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Order("created_at DESC").Find(&sales).Error
	return sales, err
}

// Save writes the sale's own columns; the preloaded client is left alone.
func (r *saleRepo) Save(ctx context.Context, sale *models.InstallmentSale) error {
	return r.db.WithContext(ctx).Omit("Client").Save(sale).Error
}

func (r *saleRepo) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.InstallmentSale{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) CountByClient(ctx context.Context, clientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InstallmentSale{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}

func (r *saleRepo) first(query *gorm.DB, cond string, args ...interface{}) (*models.InstallmentSale, error) {
	var sale models.InstallmentSale
	if err := query.Where(cond, args...).First(&sale).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// withClient loads the client separately, FOR UPDATE cannot be combined
// with Preload on every dialect.
func (r *saleRepo) withClient(ctx context.Context, sale *models.InstallmentSale) (*models.InstallmentSale, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).Where("id = ?", sale.ClientID).First(&client).Error; err != nil {
		return nil, err
	}
	sale.Client = &client
	return sale, nil
}
