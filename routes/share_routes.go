package routes

import (
	"github.com/gin-gonic/gin"

	"nimbusdrive/controllers"
	"nimbusdrive/middleware"
)

func RegisterShareRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	shareController := controllers.NewShareController(
		container.PermissionService,
		container.NotificationService,
		container.FileService,
		container.FolderService,
	)

	auth := middleware.AuthMiddleware(container.JWTSecret)

	files := rg.Group("/files", auth)
	{
		files.POST("/:id/shares", shareController.GrantAccess)
		files.GET("/:id/shares", shareController.ListShares)
		files.DELETE("/:id/shares/:email", shareController.RevokeAccess)
	}

	folders := rg.Group("/folders", auth)
	{
		folders.POST("/:id/shares", shareController.GrantAccess)
		folders.GET("/:id/shares", shareController.ListShares)
		folders.DELETE("/:id/shares/:email", shareController.RevokeAccess)
	}

	rg.GET("/shared", auth, shareController.ListSharedWithMe)

	notifications := rg.Group("/notifications", auth)
	{
		notifications.GET("/", shareController.ListNotifications)
		notifications.PATCH("/:id/read", shareController.MarkNotificationRead)
	}
}
