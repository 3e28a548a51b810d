package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nimbusdrive/models"
	"nimbusdrive/services"
	"nimbusdrive/utils"
)

type LinkController struct {
	linkService *services.LinkService
	blobStore   services.BlobStore
}

func NewLinkController(linkService *services.LinkService, blobStore services.BlobStore) *LinkController {
	return &LinkController{
		linkService: linkService,
		blobStore:   blobStore,
	}
}

func linkTarget(c *gin.Context) (string, primitive.ObjectID, bool) {
	resourceType := c.Param("type")
	// Routes use the plural segment.
	switch resourceType {
	case "files":
		resourceType = models.ResourceTypeFile
	case "folders":
		resourceType = models.ResourceTypeFolder
	default:
		utils.ErrorResponse(c, http.StatusBadRequest, "Unknown resource type")
		return "", primitive.NilObjectID, false
	}
	id, ok := pathObjectID(c, "id")
	return resourceType, id, ok
}

// CreateLink handles POST /links/:type/:id.
func (lc *LinkController) CreateLink(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	resourceType, resourceID, ok := linkTarget(c)
	if !ok {
		return
	}

	var req struct {
		Role        string     `json:"role" binding:"required"`
		ExpiresAt   *time.Time `json:"expires_at,omitempty"`
		MaxAccesses *int64     `json:"max_accesses,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	link, err := lc.linkService.CreateLink(c.Request.Context(), identity, resourceType, resourceID, req.Role, req.ExpiresAt, req.MaxAccesses)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Link created", link)
}

// ListLinks handles GET /links/:type/:id.
func (lc *LinkController) ListLinks(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	resourceType, resourceID, ok := linkTarget(c)
	if !ok {
		return
	}

	links, err := lc.linkService.ListLinks(c.Request.Context(), identity, resourceType, resourceID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Links retrieved", links)
}

// RevokeLink handles DELETE /links/:id.
func (lc *LinkController) RevokeLink(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	linkID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := lc.linkService.RevokeLink(c.Request.Context(), identity, linkID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Link revoked", nil)
}

// ResolveLink handles GET /public/:token. No authentication; the token is
// the credential.
func (lc *LinkController) ResolveLink(c *gin.Context) {
	token := c.Param("token")

	access, err := lc.linkService.ResolveLink(c.Request.Context(), token, lc.blobStore)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Link resolved", access)
}
