package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront-service/internal/models"
)

// Cache TTL constants
const (
	ProductListCacheTTL = 10 * time.Minute // Product lists - invalidated on any ProductInfo write
)

// productListKeyPrefix namespaces the cached product-list views; the cache
// invalidator sweeps every key under it.
const productListKeyPrefix = "product_list:"

// CatalogRepository defines data operations for the catalog store.
// Upserts key on natural identifiers so re-imports never duplicate rows.
type CatalogRepository interface {
	WithTransaction(fn func(tx CatalogRepository) error) error

	GetShopByID(id uuid.UUID) (*models.Shop, error)
	ListShops() ([]models.Shop, error)
	ListActiveShops() ([]models.Shop, error)
	UpdateShopFeedURL(id uuid.UUID, feedURL string) error

	ListCategories() ([]models.Category, error)
	UpsertCategory(name, description string) (*models.Category, error)
	AddShopToCategory(categoryID, shopID uuid.UUID) error

	UpsertProduct(name string, categoryID uuid.UUID) (*models.Product, error)
	UpsertProductInfo(info *models.ProductInfo) (*models.ProductInfo, error)
	UpsertParameter(name string) (*models.Parameter, error)
	UpsertProductParameter(productInfoID, parameterID uuid.UUID, value string) error

	GetProductInfoByID(id uuid.UUID) (*models.ProductInfo, error)
	ListProductInfos(filters models.ProductFilters) (*models.ProductListResponse, error)
}

type catalogRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewCatalogRepository creates a catalog repository with optional Redis caching
func NewCatalogRepository(db *gorm.DB, redisClient *redis.Client) CatalogRepository {
	return &catalogRepository{db: db, redis: redisClient}
}

// WithTransaction runs fn with a repository bound to one database transaction.
// Any error from fn rolls the whole transaction back.
func (r *catalogRepository) WithTransaction(fn func(tx CatalogRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&catalogRepository{db: tx, redis: r.redis})
	})
}

func (r *catalogRepository) GetShopByID(id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.First(&shop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &shop, nil
}

func (r *catalogRepository) ListShops() ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.Order("name").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *catalogRepository) ListActiveShops() ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.Where("is_active = ?", true).Order("name").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *catalogRepository) UpdateShopFeedURL(id uuid.UUID, feedURL string) error {
	return r.db.Model(&models.Shop{}).Where("id = ?", id).Update("feed_url", feedURL).Error
}

func (r *catalogRepository) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Preload("Shops").Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// UpsertCategory creates the category or refreshes its description.
// Name is the natural key.
func (r *catalogRepository) UpsertCategory(name, description string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.Category{Name: name, Description: description}
		if err := r.db.Create(&category).Error; err != nil {
			return nil, err
		}
		return &category, nil
	}
	if err != nil {
		return nil, err
	}
	if category.Description != description {
		category.Description = description
		if err := r.db.Model(&category).Update("description", description).Error; err != nil {
			return nil, err
		}
	}
	return &category, nil
}

// AddShopToCategory associates a shop with a category, idempotently
func (r *catalogRepository) AddShopToCategory(categoryID, shopID uuid.UUID) error {
	return r.db.Exec(
		"INSERT INTO shop_categories (category_id, shop_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		categoryID, shopID,
	).Error
}

// UpsertProduct creates the product or reassigns its category. Product names
// are global, so the latest import wins the category assignment.
func (r *catalogRepository) UpsertProduct(name string, categoryID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("name = ?", name).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		product = models.Product{Name: name, CategoryID: categoryID}
		if err := r.db.Create(&product).Error; err != nil {
			return nil, err
		}
		return &product, nil
	}
	if err != nil {
		return nil, err
	}
	if product.CategoryID != categoryID {
		product.CategoryID = categoryID
		if err := r.db.Model(&product).Update("category_id", categoryID).Error; err != nil {
			return nil, err
		}
	}
	return &product, nil
}

// UpsertProductInfo creates or updates the sellable unit keyed by
// (product, shop, name); price, price_rrc and quantity are replaced in place.
func (r *catalogRepository) UpsertProductInfo(info *models.ProductInfo) (*models.ProductInfo, error) {
	var existing models.ProductInfo
	err := r.db.Where("product_id = ? AND shop_id = ? AND name = ?",
		info.ProductID, info.ShopID, info.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(info).Error; err != nil {
			return nil, err
		}
		return info, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(&existing).Updates(map[string]interface{}{
		"price":     info.Price,
		"price_rrc": info.PriceRRC,
		"quantity":  info.Quantity,
	}).Error; err != nil {
		return nil, err
	}
	existing.Price = info.Price
	existing.PriceRRC = info.PriceRRC
	existing.Quantity = info.Quantity
	return &existing, nil
}

func (r *catalogRepository) UpsertParameter(name string) (*models.Parameter, error) {
	var parameter models.Parameter
	if err := r.db.Where(models.Parameter{Name: name}).FirstOrCreate(&parameter).Error; err != nil {
		return nil, err
	}
	return &parameter, nil
}

func (r *catalogRepository) UpsertProductParameter(productInfoID, parameterID uuid.UUID, value string) error {
	var binding models.ProductParameter
	err := r.db.Where("product_info_id = ? AND parameter_id = ?", productInfoID, parameterID).
		First(&binding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		binding = models.ProductParameter{
			ProductInfoID: productInfoID,
			ParameterID:   parameterID,
			Value:         value,
		}
		return r.db.Create(&binding).Error
	}
	if err != nil {
		return err
	}
	if binding.Value != value {
		return r.db.Model(&binding).Update("value", value).Error
	}
	return nil
}

func (r *catalogRepository) GetProductInfoByID(id uuid.UUID) (*models.ProductInfo, error) {
	var info models.ProductInfo
	err := r.db.Preload("Product").Preload("Product.Category").Preload("Shop").
		Preload("Parameters").Preload("Parameters.Parameter").
		First(&info, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

// generateProductListCacheKey builds a cache key from the query parameters
func generateProductListCacheKey(filters models.ProductFilters) string {
	shopID, categoryID := "all", "all"
	if filters.ShopID != nil {
		shopID = filters.ShopID.String()
	}
	if filters.CategoryID != nil {
		categoryID = filters.CategoryID.String()
	}
	minPrice, maxPrice := "-", "-"
	if filters.MinPrice != nil {
		minPrice = fmt.Sprintf("%.2f", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		maxPrice = fmt.Sprintf("%.2f", *filters.MaxPrice)
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%d:%d",
		productListKeyPrefix, shopID, categoryID, minPrice, maxPrice,
		filters.Search, filters.Page, filters.Limit)
}

// ListProductInfos returns a filtered, paginated product list. Results are
// cached in Redis keyed by the query parameters; the cache invalidator sweeps
// these keys whenever any ProductInfo changes.
func (r *catalogRepository) ListProductInfos(filters models.ProductFilters) (*models.ProductListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}

	cacheKey := generateProductListCacheKey(filters)
	if r.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if data, err := r.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached models.ProductListResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	query := r.db.Model(&models.ProductInfo{}).
		Joins("JOIN products ON products.id = product_infos.product_id")

	if filters.ShopID != nil {
		query = query.Where("product_infos.shop_id = ?", *filters.ShopID)
	}
	if filters.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filters.CategoryID)
	}
	if filters.MinPrice != nil {
		query = query.Where("product_infos.price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("product_infos.price <= ?", *filters.MaxPrice)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("product_infos.name ILIKE ? OR products.name ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var infos []models.ProductInfo
	offset := (filters.Page - 1) * filters.Limit
	err := query.Preload("Product").Preload("Product.Category").Preload("Shop").
		Order("product_infos.name").
		Offset(offset).Limit(filters.Limit).
		Find(&infos).Error
	if err != nil {
		return nil, err
	}

	response := &models.ProductListResponse{
		Products: infos,
		Total:    total,
		Page:     filters.Page,
		Limit:    filters.Limit,
	}

	if r.redis != nil {
		if data, err := json.Marshal(response); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			r.redis.Set(ctx, cacheKey, data, ProductListCacheTTL)
		}
	}

	return response, nil
}
