package api

import (
	"github.com/bitswalk/bazaar/src/bazaard/auth"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes configures all API routes on the given router
func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/", a.Base.HandleRoot)
	router.GET("/health", a.Base.HandleHealth)
	router.GET("/version", a.Base.HandleVersion)

	admin := a.gated(auth.PolicyAdmin)
	seller := a.gated(auth.PolicySeller)
	buyer := a.gated(auth.PolicyBuyer)
	anyActive := a.gated(auth.PolicyAnyActive)

	// Account endpoints reachable without a token
	usersPublic := router.Group("/users")
	usersPublic.Use(a.rateLimitAuth())
	{
		usersPublic.POST("", a.Users.HandleRegister)
		usersPublic.POST("/token", a.Users.HandleLogin)
		usersPublic.POST("/refresh-token", a.Users.HandleRefreshToken)
		usersPublic.POST("/access-token", a.Users.HandleAccessToken)
	}

	users := router.Group("/users")
	users.Use(a.rateLimitAPI())
	{
		users.GET("/me", anyActive, a.Users.HandleMe)
		users.PUT("/:user_id", admin, a.Users.HandleUpdateRole)
		users.DELETE("/:user_id", admin, a.Users.HandleDeactivate)
	}

	categories := router.Group("/categories")
	categories.Use(a.rateLimitAPI())
	{
		categories.GET("", a.Categories.HandleList)
		categories.POST("", admin, a.Categories.HandleCreate)
		categories.PUT("/:category_id", admin, a.Categories.HandleUpdate)
		categories.DELETE("/:category_id", admin, a.Categories.HandleDelete)
	}

	products := router.Group("/products")
	products.Use(a.rateLimitAPI())
	{
		products.GET("", a.Products.HandleList)
		products.POST("", seller, a.Products.HandleCreate)
		products.GET("/category/:category_id", a.Products.HandleListByCategory)
		products.GET("/:product_id", a.Products.HandleGet)
		products.PUT("/:product_id", seller, a.Products.HandleUpdate)
		products.DELETE("/:product_id", seller, a.Products.HandleDelete)
		products.POST("/:product_id/image", seller, a.Products.HandleUploadImage)
		products.GET("/:product_id/image/:name", a.Products.HandleGetImage)
	}

	reviews := router.Group("/reviews")
	reviews.Use(a.rateLimitAPI())
	{
		reviews.GET("", a.Reviews.HandleList)
		reviews.GET("/products/:product_id", a.Reviews.HandleListByProduct)
		reviews.POST("", buyer, a.Reviews.HandleCreate)
		reviews.PUT("/:review_id", buyer, a.Reviews.HandleUpdate)
		reviews.DELETE("/:review_id", anyActive, a.Reviews.HandleDelete)
	}
}
