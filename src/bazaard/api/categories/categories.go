package categories

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bitswalk/bazaar/src/bazaard/api/common"
	"github.com/bitswalk/bazaar/src/bazaard/db"
	"github.com/gin-gonic/gin"
)

// NewHandler creates a new categories handler
func NewHandler(cfg Config) *Handler {
	return &Handler{categoryRepo: cfg.CategoryRepo}
}

// HandleList returns all active categories
// @Summary      List categories
// @Tags         Categories
// @Produce      json
// @Success      200  {array}   db.Category
// @Failure      500  {object}  common.ErrorResponse
// @Router       /categories [get]
func (h *Handler) HandleList(c *gin.Context) {
	categories, err := h.categoryRepo.ListActive(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if categories == nil {
		categories = []db.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

// HandleCreate creates a category
// @Summary      Create a category
// @Description  The parent, when given, must be an active category
// @Tags         Categories
// @Accept       json
// @Produce      json
// @Param        request  body      CategoryRequest  true  "Category"
// @Success      201      {object}  db.Category
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /categories [post]
func (h *Handler) HandleCreate(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	category := &db.Category{Name: strings.TrimSpace(req.Name), ParentID: req.ParentID}
	if err := h.categoryRepo.Create(c.Request.Context(), category); err != nil {
		common.RespondError(c, err)
		return
	}

	common.AuditLog(c, common.AuditEvent{
		Action:   "category.create",
		Resource: fmt.Sprintf("category:%d", category.ID),
		Success:  true,
	})
	c.JSON(http.StatusCreated, category)
}

// HandleUpdate replaces a category's name and parent
// @Summary      Update a category
// @Tags         Categories
// @Accept       json
// @Produce      json
// @Param        category_id  path      int              true  "Category ID"
// @Param        request      body      CategoryRequest  true  "Category"
// @Success      200          {object}  db.Category
// @Failure      400          {object}  common.ErrorResponse
// @Failure      401          {object}  common.ErrorResponse
// @Failure      403          {object}  common.ErrorResponse
// @Failure      404          {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /categories/{category_id} [put]
func (h *Handler) HandleUpdate(c *gin.Context) {
	id, ok := common.ParseID(c, "category_id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryRepo.Update(c.Request.Context(), id, strings.TrimSpace(req.Name), req.ParentID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.AuditLog(c, common.AuditEvent{
		Action:   "category.update",
		Resource: fmt.Sprintf("category:%d", id),
		Success:  true,
	})
	c.JSON(http.StatusOK, category)
}

// HandleDelete soft-deletes a category
// @Summary      Delete a category
// @Tags         Categories
// @Produce      json
// @Param        category_id  path      int  true  "Category ID"
// @Success      200          {object}  common.StatusResponse
// @Failure      401          {object}  common.ErrorResponse
// @Failure      403          {object}  common.ErrorResponse
// @Failure      404          {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /categories/{category_id} [delete]
func (h *Handler) HandleDelete(c *gin.Context) {
	id, ok := common.ParseID(c, "category_id")
	if !ok {
		return
	}

	if err := h.categoryRepo.Deactivate(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}

	common.AuditLog(c, common.AuditEvent{
		Action:   "category.delete",
		Resource: fmt.Sprintf("category:%d", id),
		Success:  true,
	})
	c.JSON(http.StatusOK, common.StatusResponse{Status: "success", Message: "Category marked as inactive"})
}
