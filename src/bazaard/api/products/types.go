package products

import (
	"github.com/bitswalk/bazaar/src/bazaard/db"
	"github.com/bitswalk/bazaar/src/bazaard/storage"
)

// Handler handles product HTTP requests
type Handler struct {
	productRepo  *db.ProductRepository
	categoryRepo *db.CategoryRepository
	storage      storage.Backend
	maxImageSize int64
}

// Config contains configuration options for the Handler
type Config struct {
	ProductRepo  *db.ProductRepository
	CategoryRepo *db.CategoryRepository
	// Storage holds product images. Image endpoints answer 503 without it.
	Storage storage.Backend
	// MaxImageSize defaults to DefaultMaxImageSize
	MaxImageSize int64
}

// ListQuery holds the query parameters of GET /products
type ListQuery struct {
	Page        int      `form:"page,default=1" binding:"min=1"`
	PageSize    int      `form:"page_size,default=20" binding:"min=1,max=100"`
	CategoryID  *int64   `form:"category_id"`
	Search      string   `form:"search"`
	MinPrice    *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice    *float64 `form:"max_price" binding:"omitempty,min=0"`
	InStock     *bool    `form:"in_stock"`
	SellerID    *int64   `form:"seller_id"`
	CreatedDate string   `form:"created_date" binding:"omitempty,datetime=2006-01-02"`
}

// ProductRequest is the body of product create and update
type ProductRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=100" example:"Mechanical keyboard"`
	Description *string `json:"description" binding:"omitempty,max=500" example:"Tenkeyless, brown switches"`
	Price       float64 `json:"price" binding:"required,gt=0" example:"89.90"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=200"`
	Stock       *int    `json:"stock" binding:"required,min=0" example:"12"`
	CategoryID  int64   `json:"category_id" binding:"required,gt=0" example:"2"`
}

// ProductListResponse is one page of products
type ProductListResponse struct {
	Items    []db.Product `json:"items"`
	Total    int          `json:"total" example:"42"`
	Page     int          `json:"page" example:"1"`
	PageSize int          `json:"page_size" example:"20"`
}

// ImageResponse is returned after an image upload
type ImageResponse struct {
	ImageURL    string `json:"image_url" example:"/products/4/image/5b7c0e8e-8d7d-4d5e-9f0a-6c1f6f4a2b11.png"`
	Size        int64  `json:"size" example:"48213"`
	ContentType string `json:"content_type" example:"image/png"`
}
