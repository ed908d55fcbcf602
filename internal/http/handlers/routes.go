package handlers

import (
	"metaladmin/internal/app"
	"metaladmin/internal/http/middleware"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	// Every route forwards the caller's token to the commerce API
	protected := api.Group("")
	protected.Use(middleware.UpstreamAuth())

	productHandler := NewProductHandler(services.Products, services.BulkUpdate)
	products := protected.Group("/products")
	products.GET("", productHandler.List)
	products.POST("", productHandler.Create)
	products.POST("/bulk-update", productHandler.BulkUpdate)
	products.GET("/:id", productHandler.GetByID)
	products.PUT("/:id", productHandler.Update)
	products.DELETE("/:id", productHandler.Delete)

	orderHandler := NewOrderHandler(services.Orders, services.Payments)
	protected.GET("/orders", orderHandler.List)
	protected.POST("/orders/bulk-delete", orderHandler.BulkDelete)
	protected.GET("/payments", orderHandler.ListPayments)
	protected.GET("/payments/:id", orderHandler.GetPayment)

	familyHandler := NewFamilyHandler(services.Families)
	families := protected.Group("/families")
	families.GET("", familyHandler.List)
	families.POST("", familyHandler.Create)
	families.PUT("/:id", familyHandler.Update)
	families.DELETE("/:id", familyHandler.Delete)

	shippingHandler := NewShippingHandler(services.Shipping)
	shipping := protected.Group("/shipping")
	shipping.GET("", shippingHandler.List)
	shipping.PUT("/:method", shippingHandler.Update)
	shipping.DELETE("/:method", shippingHandler.Delete)

	templateHandler := NewTemplateHandler(services.Templates)
	templates := protected.Group("/templates/:kind")
	templates.GET("", templateHandler.List)
	templates.POST("", templateHandler.Create)
	templates.POST("/validate", templateHandler.Validate)
	templates.GET("/:code", templateHandler.Get)
	templates.PUT("/:code", templateHandler.Update)
	templates.DELETE("/:code", templateHandler.Delete)

	calculationHandler := NewCalculationHandler(services.Calculations)
	protected.GET("/calculations", calculationHandler.Get)
	protected.PUT("/calculations/:type", calculationHandler.Submit)
	protected.POST("/calculations/:type/preview", calculationHandler.Preview)

	dashboardHandler := NewDashboardHandler(services.Dashboard)
	protected.GET("/dashboard/charts", dashboardHandler.Charts)
	protected.GET("/dashboard/summary", dashboardHandler.Summary)

	viewHandler := NewViewHandler(services.Views, services.Config.Server.CORSOrigins)
	views := protected.Group("/views")
	views.POST("/:resource", viewHandler.Open)
	views.GET("/:id", viewHandler.Get)
	views.PUT("/:id/search", viewHandler.Search)
	views.PUT("/:id/page", viewHandler.Page)
	views.POST("/:id/refresh", viewHandler.Refresh)
	views.GET("/:id/ws", viewHandler.Stream)
	views.DELETE("/:id", viewHandler.Close)

	uploadHandler := NewUploadHandler(services.Storage)
	protected.POST("/uploads/preview", uploadHandler.StagePreview)
	protected.DELETE("/uploads/preview", uploadHandler.DeletePreview)
}
