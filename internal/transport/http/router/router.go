package router

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-grocery-store/internal/core/auth"
	"go-grocery-store/internal/domain"
	"go-grocery-store/internal/transport/http/handler"
	mw "go-grocery-store/internal/transport/http/middleware"
)

type Deps struct {
	Log      *zap.Logger
	JWT      *auth.JWTer
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Reviews  *handler.ReviewHandler
}

func NewEngine(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		mw.RequestID(),
		mw.RateLimit(200, 400),
		mw.ConcurrencyLimit(300),
		mw.MaxBodyBytes(16<<20),
		mw.Timeout(10*time.Second),
		mw.SimpleRecovery(),
		mw.Metrics(),
		mw.AccessLog(d.Log),
		cors.Default(),
		ginzap.RecoveryWithZap(d.Log, true),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	authed := mw.AuthJWT(d.JWT)
	adminOnly := mw.RequireRole(domain.RoleAdmin)
	customerOnly := mw.RequireRole(domain.RoleCustomer)

	ag := api.Group("/auth")
	{
		ag.POST("/register", d.Auth.Register)
		ag.POST("/login", d.Auth.Login)
		ag.POST("/refresh", d.Auth.Refresh)
		ag.POST("/validate", d.Auth.Validate)
		ag.POST("/logout", d.Auth.Logout)
	}

	ug := api.Group("/users", authed)
	{
		ug.GET("/profile", d.Users.Profile)
		ug.PUT("/profile", d.Users.UpdateProfile)
		ug.PUT("/change-password", d.Users.ChangePassword)

		ug.GET("", adminOnly, d.Users.List)
		ug.GET("/statistics", adminOnly, d.Users.Statistics)
		ug.GET("/email/:email", adminOnly, d.Users.GetByEmail)
		ug.GET("/role/:role", adminOnly, d.Users.ListByRole)
		ug.GET("/:id", adminOnly, d.Users.GetByID)
		ug.PUT("/:id/role", adminOnly, d.Users.UpdateRole)
		ug.DELETE("/:id", adminOnly, d.Users.Delete)
	}

	pg := api.Group("/products")
	{
		pg.GET("", d.Products.List)
		pg.GET("/search", d.Products.Search)
		pg.GET("/in-stock", d.Products.InStock)
		pg.GET("/price-range", d.Products.PriceRange)
		pg.GET("/top-rated", d.Products.TopRated)
		pg.GET("/most-reviewed", d.Products.MostReviewed)
		pg.GET("/recent", d.Products.Recent)
		pg.GET("/:id", d.Products.Get)

		pg.GET("/:id/reviews", d.Reviews.ListByProduct)
		pg.GET("/:id/reviews/summary", d.Reviews.Summary)
		pg.POST("/:id/reviews", authed, customerOnly, d.Reviews.Create)

		pg.GET("/low-stock", authed, adminOnly, d.Products.LowStock)
		pg.GET("/statistics", authed, adminOnly, d.Products.Statistics)
		pg.POST("", authed, adminOnly, d.Products.Create)
		pg.PUT("/:id", authed, adminOnly, d.Products.Update)
		pg.PUT("/:id/stock", authed, adminOnly, d.Products.UpdateStock)
		pg.DELETE("/:id", authed, adminOnly, d.Products.Delete)
	}

	og := api.Group("/orders", authed)
	{
		og.POST("", customerOnly, d.Orders.Place)
		og.GET("/my-orders", d.Orders.MyOrders)
		og.GET("/admin/all", adminOnly, d.Orders.All)
		og.GET("/admin/statistics", adminOnly, d.Orders.Statistics)
		og.GET("/:id", d.Orders.Get)
		og.PUT("/:id/status", adminOnly, d.Orders.UpdateStatus)
	}

	rg := api.Group("/reviews", authed)
	{
		rg.PUT("/:id", d.Reviews.Update)
		rg.DELETE("/:id", d.Reviews.Delete)
	}

	return r
}
