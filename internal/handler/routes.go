package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/chicommerce/catalog-api/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health        *HealthHandler
	Product       *ProductHandler
	Template      *TemplateHandler
	OptionSet     *OptionSetHandler
	Cart          *CartHandler
	Customization *CustomizationHandler
}

// Middlewares groups the per-route middleware.
type Middlewares struct {
	Admin   *middleware.AdminAuthMiddleware
	Session *middleware.SessionMiddleware
}

// SetupRoutes registers all routes. Catalog reads are public, catalog writes
// need the admin key, and cart/customization routes run on the cookie session.
func SetupRoutes(router *gin.Engine, prefix string, h *Handlers, mw *Middlewares) {
	router.GET("/", h.Health.GetRoot)
	router.GET("/health", h.Health.GetHealth)

	api := router.Group(prefix)
	admin := mw.Admin.Handle()
	session := mw.Session.Handle()

	// Products
	api.GET("/products", h.Product.ListProducts)
	api.GET("/products/export", admin, h.Product.ExportProducts)
	api.GET("/products/:id", h.Product.GetProduct)
	api.POST("/products", admin, h.Product.CreateProduct)
	api.PUT("/products/:id", admin, h.Product.UpdateProduct)
	api.DELETE("/products/:id", admin, h.Product.DeleteProduct)

	// Templates
	api.GET("/templates", h.Template.ListTemplates)
	api.GET("/templates/:id", h.Template.GetTemplate)
	api.POST("/templates", admin, h.Template.CreateTemplate)
	api.PUT("/templates/:id", admin, h.Template.UpdateTemplate)
	api.DELETE("/templates/:id", admin, h.Template.DeleteTemplate)

	// Option sets and options
	api.GET("/products/:id/option-sets", admin, h.OptionSet.ListOptionSets)
	api.POST("/products/:id/option-sets", admin, h.OptionSet.CreateOptionSet)
	optionSets := api.Group("/option-sets")
	optionSets.Use(admin)
	{
		optionSets.GET("/:id", h.OptionSet.GetOptionSet)
		optionSets.PUT("/:id", h.OptionSet.UpdateOptionSet)
		optionSets.DELETE("/:id", h.OptionSet.DeleteOptionSet)
		optionSets.GET("/:id/options", h.OptionSet.ListOptions)
		optionSets.POST("/:id/options", h.OptionSet.CreateOption)
	}
	options := api.Group("/options")
	options.Use(admin)
	{
		options.GET("/:id", h.OptionSet.GetOption)
		options.PUT("/:id", h.OptionSet.UpdateOption)
		options.DELETE("/:id", h.OptionSet.DeleteOption)
	}

	// Cart
	cart := api.Group("/cart")
	cart.Use(session)
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:item_id", h.Cart.UpdateItem)
		cart.DELETE("/items/:item_id", h.Cart.RemoveItem)
	}

	// Customization sessions
	customization := api.Group("/customization-sessions")
	customization.Use(session)
	{
		customization.POST("", h.Customization.StartSession)
		customization.GET("/:product_id", h.Customization.GetSession)
		customization.PUT("/:product_id", h.Customization.UpdateSession)
	}
}
