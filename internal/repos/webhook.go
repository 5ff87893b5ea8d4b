package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/types"
)

type WebhookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, hook *types.Webhook) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Webhook, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Webhook, error)
	// ListEnabledForEvent returns every enabled hook subscribed to event.
	ListEnabledForEvent(ctx context.Context, tx *gorm.DB, event string) ([]*types.Webhook, error)
	Save(ctx context.Context, tx *gorm.DB, hook *types.Webhook) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type webhookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWebhookRepo(db *gorm.DB, baseLog *logger.Logger) WebhookRepo {
	return &webhookRepo{
		db:  db,
		log: baseLog.With("repo", "WebhookRepo"),
	}
}

func (r *webhookRepo) Create(ctx context.Context, tx *gorm.DB, hook *types.Webhook) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(hook).Error
}

func (r *webhookRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Webhook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var hook types.Webhook
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&hook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("webhook %s: %w", id, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &hook, nil
}

func (r *webhookRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Webhook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Webhook
	if err := transaction.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *webhookRepo) ListEnabledForEvent(ctx context.Context, tx *gorm.DB, event string) ([]*types.Webhook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Webhook
	err := transaction.WithContext(ctx).
		Where("event = ? AND is_enabled = ?", event, true).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *webhookRepo) Save(ctx context.Context, tx *gorm.DB, hook *types.Webhook) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(hook).Error
}

func (r *webhookRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Webhook{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("webhook %s: %w", id, pkgerrors.ErrNotFound)
	}
	return nil
}
