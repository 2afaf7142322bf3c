package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"variations-service/internal/models"
)

var ErrNotFound = errors.New("not found")

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute // Single product with its variation grid
	ProductListCacheTTL = 2 * time.Minute
)

// VariationsRepositoryInterface is the storage contract used by the service layer
type VariationsRepositoryInterface interface {
	CreateProduct(ctx context.Context, tenantID string, product *models.Product) error
	GetProduct(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, tenantID string, req models.ListProductsRequest) ([]models.Product, int64, error)
	UpdateProduct(ctx context.Context, tenantID string, productID uuid.UUID, updates map[string]interface{}) error
	DeleteProduct(ctx context.Context, tenantID string, productID uuid.UUID) error

	CreateVariationType(ctx context.Context, variationType *models.VariationType) error
	UpdateVariationType(ctx context.Context, typeID uuid.UUID, updates map[string]interface{}) error
	DeleteVariationType(ctx context.Context, productID, typeID uuid.UUID) error

	CreateVariationOption(ctx context.Context, option *models.VariationOption) error
	UpdateVariationOption(ctx context.Context, optionID uuid.UUID, updates map[string]interface{}) error
	DeleteVariationOption(ctx context.Context, productID, optionID uuid.UUID) error

	ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.Variant) error
	DeleteVariationsByProductIDs(ctx context.Context, productIDs []uuid.UUID) (int64, error)

	InvalidateProduct(ctx context.Context, tenantID string, productID uuid.UUID)
	WithTransaction(ctx context.Context, fn func(txRepo VariationsRepositoryInterface) error) error
}

type VariationsRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

var _ VariationsRepositoryInterface = (*VariationsRepository)(nil)

func NewVariationsRepository(db *gorm.DB, redis *redis.Client) *VariationsRepository {
	repo := &VariationsRepository{
		db:    db,
		redis: redis,
	}

	// Initialize CacheLayer with the existing Redis client
	if redis != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ProductCacheTTL,
			KeyPrefix:  "tesseract:variations:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redis, cacheConfig)
	}

	return repo
}

// Ping checks the database and, when configured, Redis
func (r *VariationsRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if r.redis != nil {
		if err := r.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// WithTransaction runs fn against a repository bound to a single transaction
func (r *VariationsRepository) WithTransaction(ctx context.Context, fn func(txRepo VariationsRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&VariationsRepository{db: tx, redis: r.redis, cache: r.cache})
	})
}

func productCacheKey(tenantID string, productID uuid.UUID) string {
	return fmt.Sprintf("product:%s:%s", tenantID, productID.String())
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(tenantID string, prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s:%s", prefix, tenantID, hex.EncodeToString(hash[:]))
}

// InvalidateProduct drops the cached product and the tenant's list caches
func (r *VariationsRepository) InvalidateProduct(ctx context.Context, tenantID string, productID uuid.UUID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, productCacheKey(tenantID, productID))
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

func (r *VariationsRepository) invalidateTenantProductListCaches(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

// Product CRUD Operations

// CreateProduct creates a new product. A missing slug is derived from the
// name plus the first 8 characters of the id.
func (r *VariationsRepository) CreateProduct(ctx context.Context, tenantID string, product *models.Product) error {
	product.TenantID = tenantID
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Slug == "" {
		product.Slug = fmt.Sprintf("%s-%s", GenerateSlug(product.Name), product.ID.String()[:8])
	}
	if product.Status == "" {
		product.Status = models.ProductStatusDraft
	}

	err := r.db.WithContext(ctx).Create(product).Error
	if err == nil {
		r.invalidateTenantProductListCaches(ctx, tenantID)
	}
	return err
}

// GetProduct loads a product with its variation types, options and variants.
// Types and options come back ordered by position.
func (r *VariationsRepository) GetProduct(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error) {
	if r.cache == nil {
		return r.loadProduct(ctx, tenantID, productID)
	}

	var product models.Product
	var loadErr error
	err := r.cache.GetOrSetJSON(ctx, productCacheKey(tenantID, productID), &product, ProductCacheTTL, func() (any, error) {
		p, err := r.loadProduct(ctx, tenantID, productID)
		loadErr = err
		return p, err
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *VariationsRepository) loadProduct(ctx context.Context, tenantID string, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("VariationTypes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("VariationTypes.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

type productListResult struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// ListProducts returns a page of products without their variation data
func (r *VariationsRepository) ListProducts(ctx context.Context, tenantID string, req models.ListProductsRequest) ([]models.Product, int64, error) {
	load := func() (*productListResult, error) {
		var result productListResult
		query := r.db.WithContext(ctx).Model(&models.Product{}).Where("tenant_id = ?", tenantID)
		if req.Status != nil {
			query = query.Where("status = ?", *req.Status)
		}
		if req.Search != nil && strings.TrimSpace(*req.Search) != "" {
			pattern := "%" + strings.ToLower(strings.TrimSpace(*req.Search)) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", pattern, pattern)
		}
		if err := query.Count(&result.Total).Error; err != nil {
			return nil, err
		}
		offset := (req.Page - 1) * req.Limit
		if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&result.Products).Error; err != nil {
			return nil, err
		}
		return &result, nil
	}

	if r.cache == nil {
		result, err := load()
		if err != nil {
			return nil, 0, err
		}
		return result.Products, result.Total, nil
	}

	var result productListResult
	cacheKey := generateListCacheKey(tenantID, "products:list", req)
	err := r.cache.GetOrSetJSON(ctx, cacheKey, &result, ProductListCacheTTL, func() (any, error) {
		return load()
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Products, result.Total, nil
}

// UpdateProduct applies column updates to a product
func (r *VariationsRepository) UpdateProduct(ctx context.Context, tenantID string, productID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.InvalidateProduct(ctx, tenantID, productID)
	return nil
}

// DeleteProduct soft-deletes a product and hard-deletes its variation data
func (r *VariationsRepository) DeleteProduct(ctx context.Context, tenantID string, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, productID).Delete(&models.Product{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return deleteVariationData(tx, []uuid.UUID{productID})
	})
	if err == nil {
		r.InvalidateProduct(ctx, tenantID, productID)
	}
	return err
}

// Variation type operations. Callers check product ownership first.

// CreateVariationType inserts an axis together with any options it carries
func (r *VariationsRepository) CreateVariationType(ctx context.Context, variationType *models.VariationType) error {
	return r.db.WithContext(ctx).Create(variationType).Error
}

func (r *VariationsRepository) UpdateVariationType(ctx context.Context, typeID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.VariationType{}).Where("id = ?", typeID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVariationType removes an axis with its options. Every variant of the
// product goes too: none of them can cover the remaining axis set.
func (r *VariationsRepository) DeleteVariationType(ctx context.Context, productID, typeID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("variation_type_id = ?", typeID).Delete(&models.VariationOption{}).Error; err != nil {
			return err
		}
		result := tx.Where("product_id = ? AND id = ?", productID, typeID).Delete(&models.VariationType{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("product_id = ?", productID).Delete(&models.Variant{}).Error
	})
}

// Variation option operations

func (r *VariationsRepository) CreateVariationOption(ctx context.Context, option *models.VariationOption) error {
	return r.db.WithContext(ctx).Create(option).Error
}

func (r *VariationsRepository) UpdateVariationOption(ctx context.Context, optionID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.VariationOption{}).Where("id = ?", optionID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVariationOption removes an option and the variants that reference it
func (r *VariationsRepository) DeleteVariationOption(ctx context.Context, productID, optionID uuid.UUID) error {
	ref, err := json.Marshal([]uuid.UUID{optionID})
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", optionID).Delete(&models.VariationOption{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("product_id = ? AND variation_type_option_ids @> ?::jsonb", productID, string(ref)).
			Delete(&models.Variant{}).Error
	})
}

// Variant operations

// ReplaceVariants deletes every variant of the product and inserts variants
// in one transaction. A failure leaves the stored set untouched.
func (r *VariationsRepository) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.Variant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.Variant{}).Error; err != nil {
			return fmt.Errorf("failed to clear variants: %w", err)
		}
		if len(variants) == 0 {
			return nil
		}
		for i := range variants {
			variants[i].ProductID = productID
			if variants[i].ID == uuid.Nil {
				variants[i].ID = uuid.New()
			}
		}
		if err := tx.CreateInBatches(variants, 100).Error; err != nil {
			return fmt.Errorf("failed to insert variants: %w", err)
		}
		return nil
	})
}

// DeleteVariationsByProductIDs removes axes, options and variants of the
// given products and returns how many variants were deleted
func (r *VariationsRepository) DeleteVariationsByProductIDs(ctx context.Context, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("product_id IN ?", productIDs).Delete(&models.Variant{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return deleteVariationData(tx, productIDs)
	})
	return deleted, err
}

func deleteVariationData(tx *gorm.DB, productIDs []uuid.UUID) error {
	if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Variant{}).Error; err != nil {
		return err
	}
	typeIDs := tx.Model(&models.VariationType{}).Select("id").Where("product_id IN ?", productIDs)
	if err := tx.Where("variation_type_id IN (?)", typeIDs).Delete(&models.VariationOption{}).Error; err != nil {
		return err
	}
	return tx.Where("product_id IN ?", productIDs).Delete(&models.VariationType{}).Error
}

// GenerateSlug creates a URL-friendly slug from a name
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
