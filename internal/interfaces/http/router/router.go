package router

import (
	"github.com/gin-gonic/gin"

	"storefront/internal/interfaces/http/handler"
	"storefront/internal/interfaces/http/middleware"
)

func RegisterRoutes(r *gin.Engine, products *handler.ProductHandler, orders *handler.OrderHandler) {
	api := r.Group("/api")
	api.Use(middleware.Resolve())
	{
		api.GET("/products", products.List)
		api.GET("/products/categories", products.Categories)
		api.GET("/products/:id", products.Show)
		api.POST("/products", middleware.RequireAdmin(), products.Create)
		api.PUT("/products/:id", middleware.RequireAdmin(), products.Update)
		api.PATCH("/products/:id", middleware.RequireAdmin(), products.Update)

		authed := api.Group("/orders", middleware.RequireCustomer())
		{
			authed.POST("", orders.Create)
			authed.GET("", orders.List)
			authed.GET("/:id", orders.Show)
			authed.POST("/:id/checkout", orders.Checkout)
		}
	}
}
