package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookery/pkg/logger"
	"bookery/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Library Service
// Чтение каталога и отзывов публичное; запись в каталог - только админ,
// отправка/изменение отзывов - любой аутентифицированный пользователь
func SetupRoutes(catalogHandler *CatalogHandler, reviewHandler *ReviewHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("library-service"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "library-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authors := router.Group("/authors")
	{
		authors.GET("", catalogHandler.GetAllAuthors)
		authors.GET("/:author_id", catalogHandler.GetAuthor)

		adminOnly := authors.Group("")
		adminOnly.Use(authMiddleware.Authenticate(), authMiddleware.RequireAdmin())
		{
			adminOnly.POST("", catalogHandler.CreateAuthor)
			adminOnly.PATCH("/:author_id", catalogHandler.UpdateAuthor)
			adminOnly.DELETE("/:author_id", catalogHandler.DeleteAuthor)
		}
	}

	categories := router.Group("/categories")
	{
		categories.GET("", catalogHandler.GetAllCategories)
		categories.GET("/:category_id", catalogHandler.GetCategory)

		adminOnly := categories.Group("")
		adminOnly.Use(authMiddleware.Authenticate(), authMiddleware.RequireAdmin())
		{
			adminOnly.POST("", catalogHandler.CreateCategory)
			adminOnly.PATCH("/:category_id", catalogHandler.UpdateCategory)
			adminOnly.DELETE("/:category_id", catalogHandler.DeleteCategory)
		}
	}

	books := router.Group("/books")
	{
		books.GET("", catalogHandler.GetAllBooks)
		books.GET("/:book_id", catalogHandler.GetBook)
		books.GET("/:book_id/reviews", reviewHandler.GetBookReviews)

		// Отправка отзыва - аутентифицированный пользователь
		books.POST("/:book_id/reviews", authMiddleware.Authenticate(), reviewHandler.SubmitReview)

		adminOnly := books.Group("")
		adminOnly.Use(authMiddleware.Authenticate(), authMiddleware.RequireAdmin())
		{
			adminOnly.POST("", catalogHandler.CreateBook)
			adminOnly.PATCH("/:book_id", catalogHandler.UpdateBook)
			adminOnly.DELETE("/:book_id", catalogHandler.DeleteBook)
		}
	}

	reviews := router.Group("/reviews")
	{
		reviews.GET("/:review_id", reviewHandler.GetReview)

		protected := reviews.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.PATCH("/:review_id", reviewHandler.UpdateReview)
			protected.DELETE("/:review_id", reviewHandler.DeleteReview)
		}
	}

	router.GET("/users/:user_id/reviews", reviewHandler.GetUserReviews)

	return router
}
