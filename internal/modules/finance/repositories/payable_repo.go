package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

type PayableRepo interface {
	WithTx(tx *gorm.DB) PayableRepo
	CreateBatch(ctx context.Context, payables []models.Payable) error
	GetByID(ctx context.Context, userID, id string) (*models.Payable, error)
	List(ctx context.Context, filter AccountFilter) ([]models.Payable, error)
	Updates(ctx context.Context, userID, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int64, error)
	// MarkOverdue flips pending rows due before today. An empty userID
	// covers every user.
	MarkOverdue(ctx context.Context, userID string, today time.Time) (int64, error)
	Totals(ctx context.Context, userID string) ([]StatusTotal, error)
}

type payableRepo struct {
	db *gorm.DB
}

func NewPayableRepo(db *gorm.DB) PayableRepo {
	return &payableRepo{db: db}
}

func (r *payableRepo) WithTx(tx *gorm.DB) PayableRepo {
	return &payableRepo{db: tx}
}

func (r *payableRepo) CreateBatch(ctx context.Context, payables []models.Payable) error {
	if len(payables) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Supplier").Create(&payables).Error
}

func (r *payableRepo) GetByID(ctx context.Context, userID, id string) (*models.Payable, error) {
	var payable models.Payable
	err := r.db.WithContext(ctx).Preload("Supplier").
		Where("id = ? AND user_id = ?", id, userID).
		First(&payable).Error
	if err != nil {
		return nil, err
	}
	return &payable, nil
}

func (r *payableRepo) List(ctx context.Context, filter AccountFilter) ([]models.Payable, error) {
	var payables []models.Payable
	err := filter.apply(r.db.WithContext(ctx).Preload("Supplier")).Find(&payables).Error
	return payables, err
}

func (r *payableRepo) Updates(ctx context.Context, userID, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Payable{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *payableRepo) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Payable{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *payableRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payable{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *payableRepo) MarkOverdue(ctx context.Context, userID string, today time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payable{}).
		Where("status = ? AND due_date < ?", models.StatusPending, today)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	result := query.Update("status", models.StatusOverdue)
	return result.RowsAffected, result.Error
}

func (r *payableRepo) Totals(ctx context.Context, userID string) ([]StatusTotal, error) {
	var totals []StatusTotal
	err := r.db.WithContext(ctx).Model(&models.Payable{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&totals).Error
	return totals, err
}
