package routes

import (
	"github.com/gin-gonic/gin"

	"nimbusdrive/controllers"
	"nimbusdrive/middleware"
)

func RegisterFolderRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	folderController := controllers.NewFolderController(container.FolderService)

	folders := rg.Group("/folders")
	folders.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		folders.POST("/", folderController.CreateFolder)
		folders.GET("/", folderController.ListRootFolders)
		folders.GET("/:id", folderController.GetFolderContents)
		folders.PATCH("/:id/rename", folderController.RenameFolder)
		folders.PATCH("/:id/move", folderController.MoveFolder)
		folders.PATCH("/:id/star", folderController.SetStarred)
		folders.GET("/:id/breadcrumbs", folderController.GetBreadcrumbs)
		folders.DELETE("/:id", folderController.DeleteFolder)
	}
}
