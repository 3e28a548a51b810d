package routes

import (
	"github.com/gin-gonic/gin"

	"nimbusdrive/controllers"
	"nimbusdrive/middleware"
)

func RegisterFileRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	fileController := controllers.NewFileController(container.FileService, container.ImportService)

	files := rg.Group("/files")
	files.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		files.POST("/upload", fileController.UploadFiles)
		files.POST("/import", fileController.ImportTree)
		files.GET("/", fileController.ListFiles)
		files.GET("/:id", fileController.GetFile)
		files.GET("/:id/download", fileController.GetDownloadURL)
		files.PATCH("/:id/rename", fileController.RenameFile)
		files.PATCH("/:id/move", fileController.MoveFile)
		files.PATCH("/:id/star", fileController.SetStarred)
		files.DELETE("/:id", fileController.DeleteFile)
	}
}
