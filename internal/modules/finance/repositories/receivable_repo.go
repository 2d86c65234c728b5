package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

type ReceivableRepo interface {
	WithTx(tx *gorm.DB) ReceivableRepo
	CreateBatch(ctx context.Context, receivables []models.Receivable) error
	GetByID(ctx context.Context, userID, id string) (*models.Receivable, error)
	List(ctx context.Context, filter AccountFilter) ([]models.Receivable, error)
	Updates(ctx context.Context, userID, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, id string) error
	DeleteByParent(ctx context.Context, parentID string) (int64, error)
	Count(ctx context.Context, userID string) (int64, error)
	CountByParent(ctx context.Context, parentID string) (int64, error)
	CountByClient(ctx context.Context, clientID string) (int64, error)
	// MarkOverdue flips pending rows due before today. An empty userID
	// covers every user.
	MarkOverdue(ctx context.Context, userID string, today time.Time) (int64, error)
	Totals(ctx context.Context, userID string) ([]StatusTotal, error)
	// OpenUserIDs lists users holding pending or overdue receivables.
	OpenUserIDs(ctx context.Context) ([]string, error)
}

type receivableRepo struct {
	db *gorm.DB
}

func NewReceivableRepo(db *gorm.DB) ReceivableRepo {
	return &receivableRepo{db: db}
}

func (r *receivableRepo) WithTx(tx *gorm.DB) ReceivableRepo {
	return &receivableRepo{db: tx}
}

func (r *receivableRepo) CreateBatch(ctx context.Context, receivables []models.Receivable) error {
	if len(receivables) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Client").Create(&receivables).Error
}

func (r *receivableRepo) GetByID(ctx context.Context, userID, id string) (*models.Receivable, error) {
	var receivable models.Receivable
	err := r.db.WithContext(ctx).Preload("Client").
		Where("id = ? AND user_id = ?", id, userID).
		First(&receivable).Error
	if err != nil {
		return nil, err
	}
	return &receivable, nil
}

func (r *receivableRepo) List(ctx context.Context, filter AccountFilter) ([]models.Receivable, error) {
	var receivables []models.Receivable
	err := filter.apply(r.db.WithContext(ctx).Preload("Client")).Find(&receivables).Error
	return receivables, err
}

func (r *receivableRepo) Updates(ctx context.Context, userID, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Receivable{}).
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

func (r *receivableRepo) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Receivable{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *receivableRepo) DeleteByParent(ctx context.Context, parentID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Delete(&models.Receivable{})
	return result.RowsAffected, result.Error
}

func (r *receivableRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Receivable{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *receivableRepo) CountByParent(ctx context.Context, parentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Receivable{}).Where("parent_id = ?", parentID).Count(&count).Error
	return count, err
}

func (r *receivableRepo) CountByClient(ctx context.Context, clientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Receivable{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}

func (r *receivableRepo) MarkOverdue(ctx context.Context, userID string, today time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Receivable{}).
		Where("status = ? AND due_date < ?", models.StatusPending, today)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	result := query.Update("status", models.StatusOverdue)
	return result.RowsAffected, result.Error
}

func (r *receivableRepo) Totals(ctx context.Context, userID string) ([]StatusTotal, error) {
	var totals []StatusTotal
	err := r.db.WithContext(ctx).Model(&models.Receivable{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&totals).Error
	return totals, err
}

func (r *receivableRepo) OpenUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Receivable{}).
		Where("status IN ?", []string{models.StatusPending, models.StatusOverdue}).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}
