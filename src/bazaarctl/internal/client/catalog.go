package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Category is a product category
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	IsActive bool   `json:"is_active"`
}

// Product is a catalog product
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"image_url"`
	Stock       int       `json:"stock"`
	Rating      float64   `json:"rating"`
	CategoryID  int64     `json:"category_id"`
	SellerID    int64     `json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductList is one page of products
type ProductList struct {
	Items    []Product `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// ProductListOptions holds the optional filters of the product list endpoint
type ProductListOptions struct {
	Page       int
	PageSize   int
	CategoryID int64
	SellerID   int64
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    bool
}

// QueryString builds a URL query string from the options
func (o *ProductListOptions) QueryString() string {
	if o == nil {
		return ""
	}
	params := url.Values{}
	if o.Page > 0 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(o.PageSize))
	}
	if o.CategoryID > 0 {
		params.Set("category_id", strconv.FormatInt(o.CategoryID, 10))
	}
	if o.SellerID > 0 {
		params.Set("seller_id", strconv.FormatInt(o.SellerID, 10))
	}
	if o.Search != "" {
		params.Set("search", o.Search)
	}
	if o.MinPrice != nil {
		params.Set("min_price", strconv.FormatFloat(*o.MinPrice, 'f', -1, 64))
	}
	if o.MaxPrice != nil {
		params.Set("max_price", strconv.FormatFloat(*o.MaxPrice, 'f', -1, 64))
	}
	if o.InStock {
		params.Set("in_stock", "true")
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// ListCategories returns the active categories
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var resp []Category
	if err := c.Get(ctx, "/categories", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListProducts returns one page of active products
func (c *Client) ListProducts(ctx context.Context, opts *ProductListOptions) (*ProductList, error) {
	var resp ProductList
	if err := c.Get(ctx, "/products"+opts.QueryString(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
