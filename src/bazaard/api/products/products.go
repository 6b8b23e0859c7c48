package products

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bitswalk/bazaar/src/bazaard/api/common"
	"github.com/bitswalk/bazaar/src/bazaard/db"
	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/bitswalk/bazaar/src/common/logs"
	"github.com/gin-gonic/gin"
)

var log = logs.NewDefault()

// SetLogger sets the logger for the products api package
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}

// NewHandler creates a new products handler
func NewHandler(cfg Config) *Handler {
	maxSize := cfg.MaxImageSize
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &Handler{
		productRepo:  cfg.ProductRepo,
		categoryRepo: cfg.CategoryRepo,
		storage:      cfg.Storage,
		maxImageSize: maxSize,
	}
}

// HandleList returns one page of active products
// @Summary      List products
// @Description  Paginated, filterable listing. With a search, products whose name matches rank above description-only matches.
// @Tags         Products
// @Produce      json
// @Param        page          query     int     false  "Page number"  default(1)
// @Param        page_size     query     int     false  "Page size (max 100)"  default(20)
// @Param        category_id   query     int     false  "Category filter"
// @Param        search        query     string  false  "Search in name and description"
// @Param        min_price     query     number  false  "Minimum price"
// @Param        max_price     query     number  false  "Maximum price"
// @Param        in_stock      query     bool    false  "true for products in stock, false for sold out"
// @Param        seller_id     query     int     false  "Seller filter"
// @Param        created_date  query     string  false  "Creation date (YYYY-MM-DD)"
// @Success      200           {object}  ProductListResponse
// @Failure      400           {object}  common.ErrorResponse
// @Router       /products [get]
func (h *Handler) HandleList(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	filter := db.ProductFilter{
		Page:       q.Page,
		PageSize:   q.PageSize,
		CategoryID: q.CategoryID,
		Search:     strings.TrimSpace(q.Search),
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		InStock:    q.InStock,
		SellerID:   q.SellerID,
	}
	if q.CreatedDate != "" {
		day, err := time.Parse(time.DateOnly, q.CreatedDate)
		if err != nil {
			common.BadRequest(c, "created_date must be YYYY-MM-DD")
			return
		}
		filter.CreatedDate = &day
	}

	items, total, err := h.productRepo.List(c.Request.Context(), filter)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if items == nil {
		items = []db.Product{}
	}

	c.JSON(http.StatusOK, ProductListResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// HandleListByCategory returns the active products of an active category
// @Summary      List products of a category
// @Tags         Products
// @Produce      json
// @Param        category_id  path      int  true  "Category ID"
// @Success      200          {array}   db.Product
// @Failure      404          {object}  common.ErrorResponse
// @Router       /products/category/{category_id} [get]
func (h *Handler) HandleListByCategory(c *gin.Context) {
	categoryID, ok := common.ParseID(c, "category_id")
	if !ok {
		return
	}

	items, err := h.productRepo.ListByCategory(c.Request.Context(), categoryID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if items == nil {
		items = []db.Product{}
	}
	c.JSON(http.StatusOK, items)
}

// HandleGet returns an active product whose category is active
// @Summary      Get a product
// @Tags         Products
// @Produce      json
// @Param        product_id  path      int  true  "Product ID"
// @Success      200         {object}  db.Product
// @Failure      400         {object}  common.ErrorResponse
// @Failure      404         {object}  common.ErrorResponse
// @Router       /products/{product_id} [get]
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := common.ParseID(c, "product_id")
	if !ok {
		return
	}

	product, err := h.productRepo.GetActive(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if _, err := h.categoryRepo.GetActive(c.Request.Context(), product.CategoryID); err != nil {
		if errors.Is(err, errors.ErrCategoryNotFound) {
			err = errors.ErrCategoryInactive.WithMessagef("Category for product %d not found or inactive", id)
		}
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// HandleCreate creates a product owned by the calling seller
// @Summary      Create a product
// @Tags         Products
// @Accept       json
// @Produce      json
// @Param        request  body      ProductRequest  true  "Product"
// @Success      201      {object}  db.Product
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *Handler) HandleCreate(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	if req.ImageURL != nil && isManagedImageURL(*req.ImageURL) {
		common.BadRequest(c, "image_url cannot point to an uploaded image, use POST /products/{product_id}/image")
		return
	}

	seller := common.GetAccountFromContext(c)
	product := &db.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       *req.Stock,
		CategoryID:  req.CategoryID,
		SellerID:    seller.ID,
	}
	if err := h.productRepo.Create(c.Request.Context(), product); err != nil {
		common.RespondError(c, err)
		return
	}

	log.Debug("Product created", "product_id", product.ID, "seller_id", seller.ID)
	c.JSON(http.StatusCreated, product)
}

// ownedProduct loads an active product and checks that the caller sells it.
// On failure the response has already been written.
func (h *Handler) ownedProduct(c *gin.Context, action string) (*db.Product, bool) {
	id, ok := common.ParseID(c, "product_id")
	if !ok {
		return nil, false
	}

	product, err := h.productRepo.GetActive(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return nil, false
	}

	seller := common.GetAccountFromContext(c)
	if product.SellerID != seller.ID {
		common.AuditLog(c, common.AuditEvent{
			Action:   "product." + action,
			Resource: fmt.Sprintf("product:%d", id),
			Detail:   "not the owner",
			Success:  false,
		})
		common.RespondError(c, errors.ErrOwnershipViolation.WithMessagef("You can only %s your own products", action))
		return nil, false
	}
	return product, true
}

// HandleUpdate replaces the fields of a product owned by the caller. Omitted
// description and image_url keep their current values.
// @Summary      Update a product
// @Tags         Products
// @Accept       json
// @Produce      json
// @Param        product_id  path      int             true  "Product ID"
// @Param        request     body      ProductRequest  true  "Product"
// @Success      200         {object}  db.Product
// @Failure      400         {object}  common.ErrorResponse
// @Failure      401         {object}  common.ErrorResponse
// @Failure      403         {object}  common.ErrorResponse
// @Failure      404         {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{product_id} [put]
func (h *Handler) HandleUpdate(c *gin.Context) {
	product, ok := h.ownedProduct(c, "update")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	if req.ImageURL != nil && isManagedImageURL(*req.ImageURL) &&
		(product.ImageURL == nil || *req.ImageURL != *product.ImageURL) {
		common.BadRequest(c, "image_url cannot point to an uploaded image, use POST /products/{product_id}/image")
		return
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Price = req.Price
	product.Stock = *req.Stock
	product.CategoryID = req.CategoryID
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}

	updated, err := h.productRepo.Update(c.Request.Context(), product)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// HandleDelete soft-deletes a product owned by the caller
// @Summary      Delete a product
// @Tags         Products
// @Produce      json
// @Param        product_id  path      int  true  "Product ID"
// @Success      200         {object}  common.StatusResponse
// @Failure      401         {object}  common.ErrorResponse
// @Failure      403         {object}  common.ErrorResponse
// @Failure      404         {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /products/{product_id} [delete]
func (h *Handler) HandleDelete(c *gin.Context) {
	product, ok := h.ownedProduct(c, "delete")
	if !ok {
		return
	}

	if err := h.productRepo.Deactivate(c.Request.Context(), product.ID); err != nil {
		common.RespondError(c, err)
		return
	}

	common.AuditLog(c, common.AuditEvent{
		Action:   "product.delete",
		Resource: fmt.Sprintf("product:%d", product.ID),
		Success:  true,
	})
	c.JSON(http.StatusOK, common.StatusResponse{Status: "success", Message: "Product marked as inactive"})
}
