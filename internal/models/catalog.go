package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop represents a supplier whose catalog is synchronized from a feed document
type Shop struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_shops_name"`
	FeedURL   string    `json:"feedUrl,omitempty" gorm:"type:varchar(512)"` // path or http(s) locator of the catalog feed
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`      // inactive shops are skipped by batch imports
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Categories []Category `json:"categories,omitempty" gorm:"many2many:shop_categories;"`
}

// Category groups products; name is the natural key, shared across shops
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_name"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Shops []Shop `json:"shops,omitempty" gorm:"many2many:shop_categories;"`
}

// Product is the catalog entry; the sellable unit is ProductInfo, not Product.
// Name is the natural key and is global, so reconciliation may move a product
// between categories (last writer wins).
type Product struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_name"`
	CategoryID uuid.UUID `json:"categoryId" gorm:"type:uuid;not null;index"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProductInfo is the true inventory record: one product offered by one shop
// under one descriptive name, with its price and quantity on hand.
// (product, shop, name) uniquely identifies a row; re-imports upsert by this key.
type ProductInfo struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_product_infos_natural,priority:1"`
	ShopID    uuid.UUID `json:"shopId" gorm:"type:uuid;not null;uniqueIndex:idx_product_infos_natural,priority:2"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_product_infos_natural,priority:3"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	PriceRRC  float64   `json:"priceRrc" gorm:"type:decimal(10,2);not null"` // recommended retail price
	Quantity  int       `json:"quantity" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Product    *Product           `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Shop       *Shop              `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	Parameters []ProductParameter `json:"parameters,omitempty" gorm:"foreignKey:ProductInfoID"`
}

// Parameter is a named product attribute (e.g. "Color"); name is the natural key
type Parameter struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_parameters_name"`
}

// ProductParameter binds a parameter value to one product info
type ProductParameter struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductInfoID uuid.UUID  `json:"productInfoId" gorm:"type:uuid;not null;uniqueIndex:idx_product_parameters_natural,priority:1"`
	ParameterID   uuid.UUID  `json:"parameterId" gorm:"type:uuid;not null;uniqueIndex:idx_product_parameters_natural,priority:2"`
	Value         string     `json:"value" gorm:"type:varchar(255);not null"`
	Parameter     *Parameter `json:"parameter,omitempty" gorm:"foreignKey:ParameterID"`
}

// ProductFilters represents query filters for the product list endpoint
type ProductFilters struct {
	ShopID     *uuid.UUID
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	Page       int
	Limit      int
}

// ProductListResponse is the paginated product list payload
type ProductListResponse struct {
	Products []ProductInfo `json:"products"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}
