package categories

import "github.com/bitswalk/bazaar/src/bazaard/db"

// Handler handles category HTTP requests
type Handler struct {
	categoryRepo *db.CategoryRepository
}

// Config contains configuration options for the Handler
type Config struct {
	CategoryRepo *db.CategoryRepository
}

// CategoryRequest is the body of category create and update
type CategoryRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=50" example:"Electronics"`
	ParentID *int64 `json:"parent_id" example:"1"`
}
