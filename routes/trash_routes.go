package routes

import (
	"github.com/gin-gonic/gin"

	"nimbusdrive/controllers"
	"nimbusdrive/middleware"
)

func RegisterTrashRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	trashController := controllers.NewTrashController(container.TrashService)

	trash := rg.Group("/trash")
	trash.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		trash.GET("/", trashController.ListTrash)
		trash.DELETE("/", trashController.EmptyTrash)
		trash.POST("/files/:id/restore", trashController.RestoreFile)
		trash.POST("/folders/:id/restore", trashController.RestoreFolder)
		trash.DELETE("/files/:id", trashController.PurgeFile)
		trash.DELETE("/folders/:id", trashController.PurgeFolder)
	}
}
