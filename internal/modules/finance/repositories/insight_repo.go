package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

type InsightRepo interface {
	Create(ctx context.Context, insight *models.AIInsight) error
	List(ctx context.Context, userID, kind string, limit int) ([]models.AIInsight, error)
}

type insightRepo struct {
	db *gorm.DB
}

func NewInsightRepo(db *gorm.DB) InsightRepo {
	return &insightRepo{db: db}
}

func (r *insightRepo) Create(ctx context.Context, insight *models.AIInsight) error {
	return r.db.WithContext(ctx).Create(insight).Error
}

func (r *insightRepo) List(ctx context.Context, userID, kind string, limit int) ([]models.AIInsight, error) {
	var insights []models.AIInsight
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("created_at DESC").Find(&insights).Error
	return insights, err
}
