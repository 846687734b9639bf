package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/yacht-charter/internal/handler"
	"github.com/iliyamo/yacht-charter/internal/middleware"
)

// RegisterRoutes registers the probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterPublic registers the read-only catalog.  Responses are cached
// under the tables they are built from so a change event for any of them
// drops the entry.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cache *middleware.ResponseCache) {
	g := e.Group("/v1")
	g.GET("/yachts", h.ListYachts, cache.Middleware("yachts", "promotions"))
	g.GET("/yachts/:id", h.GetYacht, cache.Middleware("yachts", "yacht_images", "yacht_options", "promotions"))
	g.GET("/yachts/:id/quote", h.QuoteYacht, cache.Middleware("yachts", "yacht_options", "promotions"))
	g.GET("/services/:kind", h.ListServices, cache.Middleware("water_sports", "food_items", "additional_services", "promotions"))
	g.GET("/services/:kind/:id/quote", h.QuoteService, cache.Middleware("water_sports", "food_items", "additional_services", "promotions"))
	g.GET("/promotions", h.ListPromotions, cache.Middleware("promotions"))
	g.GET("/settings", h.PublicSettings, cache.Middleware("site_settings"))
}

// RegisterBooking registers the booking form endpoints.  Both write paths
// are rate limited.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", limit)
	g.POST("/bookings", h.CreateBooking)
	g.POST("/whatsapp/booking", h.WhatsAppBooking)
}

// RegisterCart registers the shopping list and services cart.  Every route
// runs inside an anonymous session; writes are rate limited.
func RegisterCart(e *echo.Echo, h *handler.CartHandler, session, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", session)
	g.GET("/cart", h.GetCart)
	g.POST("/cart", h.AddToCart, limit)
	g.DELETE("/cart", h.ClearCart)
	g.DELETE("/cart/:yacht_id", h.RemoveFromCart)
	g.POST("/cart/whatsapp", h.CartWhatsApp, limit)

	g.GET("/service-cart", h.GetServiceCart)
	g.POST("/service-cart", h.AddService, limit)
	g.DELETE("/service-cart", h.ClearServices)
	g.DELETE("/service-cart/:id", h.RemoveService)
	g.POST("/service-cart/whatsapp", h.ServiceCartWhatsApp, limit)
}

// RegisterAdmin registers the back-office under /v1/admin.  Callers need a
// valid JWT and the admin role in user_roles.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, roles middleware.RoleChecker) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(roles, "admin", h.Log),
	)
	g.GET("/bookings", h.ListBookings)
	g.GET("/bookings/incomplete", h.ListIncomplete)
	g.GET("/bookings/:id", h.GetBooking)
	g.PATCH("/bookings/:id/status", h.UpdateStatus)
	g.DELETE("/bookings/:id", h.DeleteBooking)
	g.GET("/bookings/:id/invoice", h.Invoice)
	g.POST("/quote", h.Quote)
	g.PUT("/settings/:key", h.PutSetting)
}
