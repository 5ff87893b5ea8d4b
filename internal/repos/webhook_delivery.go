package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/types"
)

type WebhookDeliveryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, delivery *types.WebhookDelivery) error
	ListByWebhook(ctx context.Context, tx *gorm.DB, webhookID uuid.UUID, limit int) ([]*types.WebhookDelivery, error)
}

type webhookDeliveryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWebhookDeliveryRepo(db *gorm.DB, baseLog *logger.Logger) WebhookDeliveryRepo {
	return &webhookDeliveryRepo{
		db:  db,
		log: baseLog.With("repo", "WebhookDeliveryRepo"),
	}
}

func (r *webhookDeliveryRepo) Create(ctx context.Context, tx *gorm.DB, delivery *types.WebhookDelivery) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(delivery).Error
}

func (r *webhookDeliveryRepo) ListByWebhook(ctx context.Context, tx *gorm.DB, webhookID uuid.UUID, limit int) ([]*types.WebhookDelivery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit < 1 {
		limit = 25
	}
	var out []*types.WebhookDelivery
	err := transaction.WithContext(ctx).
		Where("webhook_id = ?", webhookID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
