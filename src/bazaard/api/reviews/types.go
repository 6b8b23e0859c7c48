package reviews

import "github.com/bitswalk/bazaar/src/bazaard/db"

// Handler handles review HTTP requests
type Handler struct {
	reviewRepo *db.ReviewRepository
}

// Config contains configuration options for the Handler
type Config struct {
	ReviewRepo *db.ReviewRepository
}

// CreateReviewRequest is the body of POST /reviews
type CreateReviewRequest struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0" example:"4"`
	Comment   string `json:"comment" binding:"required" example:"Sturdy and quiet"`
	Grade     int    `json:"grade" binding:"required,min=1,max=5" example:"5"`
}

// UpdateReviewRequest is the body of PUT /reviews/:review_id. The product
// of a review cannot change.
type UpdateReviewRequest struct {
	Comment string `json:"comment" binding:"required" example:"Keys started to squeak"`
	Grade   int    `json:"grade" binding:"required,min=1,max=5" example:"3"`
}
