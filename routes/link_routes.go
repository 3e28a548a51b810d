package routes

import (
	"github.com/gin-gonic/gin"

	"nimbusdrive/controllers"
	"nimbusdrive/middleware"
)

func RegisterLinkRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	linkController := controllers.NewLinkController(container.LinkService, container.BlobStore)

	links := rg.Group("/links")
	links.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		links.POST("/:type/:id", linkController.CreateLink)
		links.GET("/:type/:id", linkController.ListLinks)
		links.DELETE("/:id", linkController.RevokeLink)
	}

	// Token redemption is anonymous; the token is the credential.
	rg.GET("/public/:token", linkController.ResolveLink)
}
