package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

type PlanRepo interface {
	WithTx(tx *gorm.DB) PlanRepo
	GetByUser(ctx context.Context, userID string) (*models.UserPlan, error)
	// GetByUserForUpdate locks the plan row until the transaction ends.
	GetByUserForUpdate(ctx context.Context, userID string) (*models.UserPlan, error)
	Create(ctx context.Context, plan *models.UserPlan) error
	Save(ctx context.Context, plan *models.UserPlan) error
	ListByUsers(ctx context.Context, userIDs []string) ([]models.UserPlan, error)
}

type planRepo struct {
	db *gorm.DB
}

func NewPlanRepo(db *gorm.DB) PlanRepo {
	return &planRepo{db: db}
}

func (r *planRepo) WithTx(tx *gorm.DB) PlanRepo {
	return &planRepo{db: tx}
}

func (r *planRepo) GetByUser(ctx context.Context, userID string) (*models.UserPlan, error) {
	var plan models.UserPlan
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) GetByUserForUpdate(ctx context.Context, userID string) (*models.UserPlan, error) {
	var plan models.UserPlan
	if err := forUpdate(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) Create(ctx context.Context, plan *models.UserPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepo) Save(ctx context.Context, plan *models.UserPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *planRepo) ListByUsers(ctx context.Context, userIDs []string) ([]models.UserPlan, error) {
	var plans []models.UserPlan
	if len(userIDs) == 0 {
		return plans, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&plans).Error
	return plans, err
}
