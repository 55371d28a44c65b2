// Package http собирает HTTP-поверхность сервиса: каталог, оформление
// заказов и сервисные маршруты (метрики, health-пробы).
package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
	"github.com/dmikhailov/estore/internal/health"
	"github.com/dmikhailov/estore/internal/service/catalog"
	"github.com/dmikhailov/estore/internal/service/checkout"
)

// Deps — зависимости HTTP-слоя.
type Deps struct {
	Catalog  *catalog.Service
	Checkout *checkout.Coordinator
	Orders   domain.OrderRepository
	Notifier domain.NotificationDispatcher
	Health   *health.Handler
	Logger   *log.Entry
}

// NewRouter настраивает маршруты поверх gin.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", gin.WrapF(health.LivenessHandler))
	if deps.Health != nil {
		router.GET("/readyz", gin.WrapF(deps.Health.ReadinessHandler))
		router.GET("/health", gin.WrapH(deps.Health))
	}

	catalogH := &catalogHandlers{catalog: deps.Catalog, logger: deps.Logger}
	orderH := &orderHandlers{
		checkout: deps.Checkout,
		orders:   deps.Orders,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}

	api := router.Group("/api")
	{
		api.GET("/catalog/products", catalogH.listProducts)
		api.GET("/catalog/products/:id", catalogH.getProduct)
		api.GET("/catalog/categories", catalogH.listCategories)

		api.GET("/checkout/orders", orderH.listOrders)
		api.POST("/checkout/orders", orderH.createOrder)
		api.GET("/checkout/orders/:orderNumber", orderH.getOrder)
		api.PATCH("/checkout/orders/:orderNumber/status", orderH.updateStatus)

		api.POST("/email/order-confirmation-by-number", orderH.resendConfirmation)
	}

	return router
}
