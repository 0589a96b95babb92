package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"techmart/internal/auth"
	"techmart/internal/config"
	"techmart/internal/errors"
	"techmart/internal/handler"
	"techmart/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	categoryHandler *handler.CategoryHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowCredentials: true,
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/uploads", cfg.UploadDir)

	// Per-IP limits: 5 registrations per 15 minutes, 5 logins and 5 reset
	// requests per 5 minutes.
	registerLimiter := rateLimiter(rate.Every(3*time.Minute), 5, 15*time.Minute)
	loginLimiter := rateLimiter(rate.Every(time.Minute), 5, 5*time.Minute)
	forgotPasswordLimiter := rateLimiter(rate.Every(time.Minute), 5, 5*time.Minute)

	requireAuth := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	})

	api := e.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register, registerLimiter)
	authGroup.POST("/login", authHandler.Login, loginLimiter)
	authGroup.POST("/verify-otp", authHandler.VerifyOTP)
	authGroup.POST("/resend-otp", authHandler.ResendOTP)
	authGroup.PUT("/update", authHandler.UpdateProfile, requireAuth)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword, forgotPasswordLimiter)
	authGroup.POST("/reset-password/:token", authHandler.ResetPassword)
	authGroup.POST("/refresh-token", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/users", authHandler.ListUsers, requireAuth, adminOnly)
	authGroup.GET("/user/:id", authHandler.GetUser, requireAuth, adminOnly)
	authGroup.GET("/profile", authHandler.GetProfile, requireAuth)

	// Product routes
	products := api.Group("/products")
	products.POST("/createproduct", productHandler.Create, requireAuth, adminOnly)
	products.GET("/best", productHandler.BestSellers)
	products.GET("/search", productHandler.Search, requireAuth)
	products.GET("/top-selling", productHandler.TopSelling, requireAuth, adminOnly)
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Update, requireAuth, adminOnly)
	products.DELETE("/:id", productHandler.Delete, requireAuth, adminOnly)

	// Category routes
	categories := api.Group("/categories")
	categories.GET("", categoryHandler.List)
	categories.GET("/products/:id", categoryHandler.Products)
	categories.GET("/:id", categoryHandler.Get)
	categories.POST("/create", categoryHandler.Create, requireAuth, adminOnly)
	categories.PUT("/:id", categoryHandler.Update, requireAuth, adminOnly)
	categories.DELETE("/:id", categoryHandler.Delete, requireAuth, adminOnly)

	// Cart routes (all require auth)
	cart := api.Group("/cart", requireAuth)
	cart.GET("", cartHandler.Get)
	cart.POST("/add", cartHandler.Add)
	cart.PUT("/update", cartHandler.Update)
	cart.DELETE("/remove/:itemId", cartHandler.Remove)
	cart.DELETE("/clear", cartHandler.Clear)

	// Order routes
	orders := api.Group("/order", requireAuth)
	orders.POST("/create", orderHandler.Create)
	orders.GET("", orderHandler.List, adminOnly)
	orders.GET("/stats/revenue", orderHandler.RevenueStats, adminOnly)
	orders.GET("/:id", orderHandler.Get, adminOnly)
	orders.PUT("/:id/status", orderHandler.UpdateStatus, adminOnly)
	orders.PUT("/:id/cancel", orderHandler.Cancel)
}

// adminOnly rejects requests whose token does not carry the ADMIN role. It
// must run after the JWT middleware.
func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		claims, ok := token.Claims.(*auth.Claims)
		if !ok || claims.Role != model.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "access denied",
				Code:  "ACCESS_DENIED",
			})
		}
		return next(c)
	}
}

// rateLimiter builds a per-IP limiter: r tokens per interval with the given
// burst, forgetting idle IPs after expiresIn.
func rateLimiter(r rate.Limit, burst int, expiresIn time.Duration) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      r,
			Burst:     burst,
			ExpiresIn: expiresIn,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
