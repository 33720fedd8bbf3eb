package handler

import (
	"net/http"
	"slices"

	"catalogadmin/pkg/logger"
	"catalogadmin/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает все маршруты Catalog Service с использованием Gin
// Аутентификации нет, админка работает во внутренней сети
func SetupRoutes(catalogHandler *CatalogHandler, liveHandler *LiveHandler, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))

	// CORS: админка открывается с другого origin и читает заголовок Link
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.Use(UpdatesLinkMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET(UpdatesPath, liveHandler.Subscribe)

	categories := router.Group("/categories")
	{
		categories.GET("", catalogHandler.ListCategories)     // Страница категорий (кеш Redis)
		categories.POST("", catalogHandler.CreateCategory)    // Создать категорию
		categories.GET("/:id", catalogHandler.GetCategory)    // Категория по ID
		categories.PUT("/:id", catalogHandler.UpdateCategory) // Переименовать категорию
		categories.DELETE("/:id", catalogHandler.DeleteCategory)
	}

	products := router.Group("/products")
	{
		products.GET("", catalogHandler.ListProducts)
		products.POST("", catalogHandler.CreateProduct)
		products.GET("/:id", catalogHandler.GetProduct)
		products.PUT("/:id", catalogHandler.UpdateProduct)
		products.DELETE("/:id", catalogHandler.DeleteProduct)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Link", "X-Request-ID"},
		MaxAge:        300,
	}

	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		config.AllowAllOrigins = true
		return config
	}

	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	return config
}
