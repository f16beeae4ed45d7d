package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aq2208/storefront-api/internal/adapter/http/middleware"
	"github.com/aq2208/storefront-api/internal/logging"
)

type Handlers struct {
	Orders   *OrderHandler
	Payments *PaymentHandler
	Cart     *CartHandler
	Stock    *StockHandler
	Products *ProductHandler
}

func NewRouter(h Handlers, authn *middleware.Authn, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware(), middleware.Logging(log))

	r.GET("/health", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// public catalog
	products := r.Group("/products")
	{
		products.GET("", h.Products.List)
		products.GET("/:productId", h.Products.Get)
	}

	auth := authn.Require()

	cart := r.Group("/cart", auth)
	{
		cart.GET("", h.Cart.List)
		cart.POST("", h.Cart.Add)
		cart.PUT("/:productId", h.Cart.SetQuantity)
		cart.DELETE("/:productId", h.Cart.Remove)
	}

	orders := r.Group("/orders", auth)
	{
		orders.POST("/cod", h.Orders.PlaceCOD)
		orders.POST("/upi-initiate", h.Orders.PlaceUPI)
		orders.GET("/my-orders", h.Orders.MyOrders)
		orders.PUT("/:orderId/cancel", h.Orders.Cancel)
		orders.PUT("/:orderId/status", authn.RequireAdmin(), h.Orders.SetStatus)
		orders.GET("", authn.RequireAdmin(), h.Orders.ListAll)
		orders.GET("/:userId/:orderId", h.Orders.GetOrder)
	}

	payment := r.Group("/payment", auth)
	{
		payment.POST("/create-order", h.Payments.CreateOrder)
		payment.POST("/verify-payment", h.Payments.VerifyPayment)
	}

	stock := r.Group("/stock", auth, authn.RequireAdmin())
	{
		stock.GET("", h.Stock.List)
		stock.POST("", h.Stock.Create)
		stock.PUT("/:productId", h.Stock.SetQuantity)
	}

	return r
}
