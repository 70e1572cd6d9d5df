package routes

import (
	"product-admin/internal/handlers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, h *handlers.ProductHandler) {
	admin := router.Group("/api/admin")
	{
		admin.Any("/products", h.Dispatch)
		admin.GET("/images/failed", h.FailedImageDeletions)
	}
}
