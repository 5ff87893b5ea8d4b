package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "github.com/yungbote/catalog-backend/internal/pkg/errors"
	"github.com/yungbote/catalog-backend/internal/pkg/logger"
	"github.com/yungbote/catalog-backend/internal/types"
)

// ProductFilter narrows List results. Zero values mean "no filter".
type ProductFilter struct {
	Page     int
	PageSize int
	SKU      string
	Query    string
	IsActive *bool
}

type ProductRepo interface {
	List(ctx context.Context, tx *gorm.DB, filter ProductFilter) ([]*types.Product, int64, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Product, error)
	Create(ctx context.Context, tx *gorm.DB, p *types.Product) error
	Save(ctx context.Context, tx *gorm.DB, p *types.Product) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
	// UpsertBatch applies one atomic insert-or-update statement keyed by SKU.
	// The batch must already be deduplicated by SKU; empty batches are a no-op.
	UpsertBatch(ctx context.Context, tx *gorm.DB, batch []*types.Product) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{
		db:  db,
		log: baseLog.With("repo", "ProductRepo"),
	}
}

func (r *productRepo) List(ctx context.Context, tx *gorm.DB, filter ProductFilter) ([]*types.Product, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 25
	}

	q := transaction.WithContext(ctx).Model(&types.Product{})
	if s := strings.TrimSpace(filter.SKU); s != "" {
		q = q.Where("LOWER(sku) = ?", strings.ToLower(s))
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []*types.Product
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *productRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var p types.Product
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s: %w", id, pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, p *types.Product) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Save(ctx context.Context, tx *gorm.DB, p *types.Product) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, pkgerrors.ErrNotFound)
	}
	return nil
}

func (r *productRepo) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).Where("1 = 1").Delete(&types.Product{})
	return res.RowsAffected, res.Error
}

func (r *productRepo) UpsertBatch(ctx context.Context, tx *gorm.DB, batch []*types.Product) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(batch) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "price", "currency", "is_active", "updated_at",
			}),
		}).
		Create(&batch).Error
}
