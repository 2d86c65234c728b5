package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := database.Open("sqlite::memory:", database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.GORM.AutoMigrate(&AuditLog{}))
	return conn.GORM
}

func TestService_RecordAndFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(ctx, Entry{
			UserID:   owner,
			Action:   ActionCreate,
			Entity:   "installment_sale",
			EntityID: uuid.NewString(),
			NewValue: map[string]string{"status": "pending"},
		}))
	}
	require.NoError(t, svc.Record(ctx, Entry{UserID: owner, Actor: ActorClient, Action: ActionConfirm, Entity: "installment_sale", EntityID: "s1"}))
	require.NoError(t, svc.Record(ctx, Entry{UserID: other, Action: ActionCreate, Entity: "installment_sale", EntityID: "s2"}))

	page, err := svc.GetLogs(ctx, AuditFilter{UserID: owner.String(), PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Logs, 2)

	page, err = svc.GetLogs(ctx, AuditFilter{UserID: owner.String(), Action: ActionConfirm})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Equal(t, ActorClient, page.Logs[0].Actor)
	assert.Equal(t, 50, page.PageSize)

	history, err := svc.GetEntityHistory(ctx, other.String(), "installment_sale", "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestService_DefaultsActorToUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	owner := uuid.New()

	require.NoError(t, svc.Record(context.Background(), Entry{UserID: owner, Action: ActionDelete, Entity: "installment_sale", EntityID: "s1"}))

	history, err := svc.GetEntityHistory(context.Background(), owner.String(), "installment_sale", "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ActorUser, history[0].Actor)
	assert.NotEqual(t, uuid.Nil, history[0].ID)
}

func TestService_RecordRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	owner := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, svc.WithTx(tx).Record(context.Background(), Entry{UserID: owner, Action: ActionApprove, Entity: "installment_sale", EntityID: "s1"}))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	page, err := svc.GetLogs(context.Background(), AuditFilter{UserID: owner.String()})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}

func TestService_DeleteOldLogs(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	owner := uuid.New()

	old := &AuditLog{UserID: owner, Actor: ActorSystem, Action: ActionPlanExpire, Entity: "user_plan", CreatedAt: time.Now().AddDate(-2, 0, 0)}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, svc.Record(context.Background(), Entry{UserID: owner, Action: ActionPlanChange, Entity: "user_plan"}))

	_, err := svc.DeleteOldLogs(context.Background(), 0)
	assert.Error(t, err)

	removed, err := svc.DeleteOldLogs(context.Background(), 365)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.NoError(t, svc.Cleanup(365)(context.Background()))
	page, err := svc.GetLogs(context.Background(), AuditFilter{UserID: owner.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
}
