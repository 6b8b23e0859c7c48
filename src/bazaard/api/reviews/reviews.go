package reviews

import (
	"fmt"
	"net/http"

	"github.com/bitswalk/bazaar/src/bazaard/api/common"
	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/bitswalk/bazaar/src/bazaard/db"
	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/gin-gonic/gin"
)

// NewHandler creates a new reviews handler
func NewHandler(cfg Config) *Handler {
	return &Handler{reviewRepo: cfg.ReviewRepo}
}

// HandleList returns all active reviews
// @Summary      List reviews
// @Tags         Reviews
// @Produce      json
// @Success      200  {array}   db.Review
// @Router       /reviews [get]
func (h *Handler) HandleList(c *gin.Context) {
	reviews, err := h.reviewRepo.ListActive(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []db.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

// HandleListByProduct returns the active reviews of a product, empty for an
// unknown product
// @Summary      List reviews of a product
// @Tags         Reviews
// @Produce      json
// @Param        product_id  path      int  true  "Product ID"
// @Success      200         {array}   db.Review
// @Failure      400         {object}  common.ErrorResponse
// @Router       /reviews/products/{product_id} [get]
func (h *Handler) HandleListByProduct(c *gin.Context) {
	productID, ok := common.ParseID(c, "product_id")
	if !ok {
		return
	}

	reviews, err := h.reviewRepo.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []db.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

// HandleCreate records the calling buyer's review and updates the product rating
// @Summary      Create a review
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Param        request  body      CreateReviewRequest  true  "Review"
// @Success      201      {object}  db.Review
// @Failure      400      {object}  common.ErrorResponse
// @Failure      401      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      404      {object}  common.ErrorResponse
// @Failure      409      {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /reviews [post]
func (h *Handler) HandleCreate(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	buyer := common.GetAccountFromContext(c)
	review := &db.Review{
		UserID:    buyer.ID,
		ProductID: req.ProductID,
		Comment:   req.Comment,
		Grade:     req.Grade,
	}
	if err := h.reviewRepo.Create(c.Request.Context(), review); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// HandleUpdate changes the comment and grade of the caller's review
// @Summary      Update a review
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Param        review_id  path      int                  true  "Review ID"
// @Param        request    body      UpdateReviewRequest  true  "Review"
// @Success      200        {object}  db.Review
// @Failure      400        {object}  common.ErrorResponse
// @Failure      401        {object}  common.ErrorResponse
// @Failure      403        {object}  common.ErrorResponse
// @Failure      404        {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{review_id} [put]
func (h *Handler) HandleUpdate(c *gin.Context) {
	id, ok := common.ParseID(c, "review_id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.BadRequest(c, err.Error())
		return
	}

	current, err := h.reviewRepo.GetActive(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if current.UserID != common.GetAccountFromContext(c).ID {
		common.RespondError(c, errors.ErrOwnershipViolation.WithMessagef("No rights to change review %d", id))
		return
	}

	updated, err := h.reviewRepo.Update(c.Request.Context(), id, req.Comment, req.Grade)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// canDelete reports whether account may delete a review written by authorID:
// buyers their own, admins any
func canDelete(account *auth.Account, authorID int64) bool {
	switch account.Role {
	case auth.RoleAdmin:
		return true
	case auth.RoleBuyer:
		return account.ID == authorID
	}
	return false
}

// HandleDelete soft-deletes a review and updates the product rating
// @Summary      Delete a review
// @Description  Buyers may delete their own reviews, admins any review
// @Tags         Reviews
// @Produce      json
// @Param        review_id  path      int  true  "Review ID"
// @Success      200        {object}  common.StatusResponse
// @Failure      401        {object}  common.ErrorResponse
// @Failure      403        {object}  common.ErrorResponse
// @Failure      404        {object}  common.ErrorResponse
// @Security     BearerAuth
// @Router       /reviews/{review_id} [delete]
func (h *Handler) HandleDelete(c *gin.Context) {
	id, ok := common.ParseID(c, "review_id")
	if !ok {
		return
	}

	current, err := h.reviewRepo.GetActive(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	account := common.GetAccountFromContext(c)
	if !canDelete(account, current.UserID) {
		common.RespondError(c, errors.ErrOwnershipViolation.WithMessagef("No rights to delete review %d", id))
		return
	}

	if err := h.reviewRepo.Deactivate(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}

	if account.ID != current.UserID {
		common.AuditLog(c, common.AuditEvent{
			Action:   "review.moderate",
			Resource: fmt.Sprintf("review:%d", id),
			Success:  true,
		})
	}
	c.JSON(http.StatusOK, common.StatusResponse{Status: "success", Message: "Review deleted"})
}
