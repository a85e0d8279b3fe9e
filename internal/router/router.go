package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/storefront/api/handler"
)

type Handlers struct {
	Session *apiHandler.SessionHandler
	OTP     *apiHandler.OTPHandler
	Cart    *apiHandler.CartHandler
	Catalog *apiHandler.CatalogHandler
	Health  *apiHandler.HealthHandler
	// Metrics is mounted at /metrics when set.
	Metrics fasthttp.RequestHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()
	r.SaveMatchedRoutePath = true

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	// Session
	r.GET("/api/session", handlers.Session.Get)
	r.POST("/api/session/register", handlers.Session.Register)
	r.POST("/api/session/login", handlers.Session.Login)
	r.POST("/api/session/logout", handlers.Session.Logout)
	r.POST("/api/session/reset-password", handlers.Session.ResetPassword)
	r.POST("/api/session/verify", handlers.Session.Verify)

	// OTP screen
	r.GET("/api/session/otp", handlers.OTP.Get)
	r.DELETE("/api/session/otp", handlers.OTP.Close)
	r.POST("/api/session/otp/digit", handlers.OTP.Digit)
	r.POST("/api/session/otp/backspace", handlers.OTP.Backspace)
	r.POST("/api/session/otp/paste", handlers.OTP.Paste)
	r.POST("/api/session/otp/submit", handlers.OTP.Submit)
	r.POST("/api/session/otp/resend", handlers.OTP.Resend)

	// Cart
	r.GET("/api/cart", handlers.Cart.Get)
	r.DELETE("/api/cart", handlers.Cart.Clear)
	r.POST("/api/cart/items", handlers.Cart.Add)
	r.PUT("/api/cart/items/{id}", handlers.Cart.UpdateQuantity)
	r.DELETE("/api/cart/items/{id}", handlers.Cart.Remove)

	// Catalog
	r.GET("/api/products", handlers.Catalog.List)
	r.POST("/api/products/refresh", handlers.Catalog.Refresh)
	r.GET("/api/products/{id}", handlers.Catalog.Get)

	return r
}
