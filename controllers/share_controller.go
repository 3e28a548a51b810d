package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nimbusdrive/models"
	"nimbusdrive/services"
	"nimbusdrive/utils"
)

type ShareController struct {
	permissionService   *services.PermissionService
	notificationService *services.NotificationService
	fileService         *services.FileService
	folderService       *services.FolderService
}

func NewShareController(permissionService *services.PermissionService, notificationService *services.NotificationService, fileService *services.FileService, folderService *services.FolderService) *ShareController {
	return &ShareController{
		permissionService:   permissionService,
		notificationService: notificationService,
		fileService:         fileService,
		folderService:       folderService,
	}
}

// shareTarget reads the resource type and id from the route. Routes are
// mounted under /files/:id/... and /folders/:id/..., so the type comes from
// the matched path.
func shareTarget(c *gin.Context) (string, primitive.ObjectID, bool) {
	resourceType := models.ResourceTypeFile
	if strings.HasPrefix(c.FullPath(), "/api/folders") || strings.HasPrefix(c.FullPath(), "/folders") {
		resourceType = models.ResourceTypeFolder
	}
	id, ok := pathObjectID(c, "id")
	return resourceType, id, ok
}

// GrantAccess handles POST /files/:id/shares and POST /folders/:id/shares.
func (sc *ShareController) GrantAccess(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	resourceType, resourceID, ok := shareTarget(c)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email" binding:"required"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	grant, err := sc.permissionService.Grant(c.Request.Context(), identity, resourceType, resourceID, req.Email, req.Role)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	sc.notifyGrant(c, identity, resourceType, resourceID, grant)

	utils.CreatedResponse(c, "Access granted", grant)
}

func (sc *ShareController) notifyGrant(c *gin.Context, identity, resourceType string, resourceID primitive.ObjectID, grant *models.Grant) {
	name := ""
	switch resourceType {
	case models.ResourceTypeFile:
		if file, err := sc.fileService.GetFile(c.Request.Context(), identity, resourceID); err == nil {
			name = file.Name
		}
	case models.ResourceTypeFolder:
		if folder, err := sc.folderService.GetFolder(c.Request.Context(), identity, resourceID); err == nil {
			name = folder.Name
		}
	}
	sc.notificationService.NotifyResourceShared(c.Request.Context(), grant.GranteeEmail, identity, resourceType, name, resourceID, grant.Role)
}

// RevokeAccess handles DELETE /files/:id/shares/:email and the folder
// equivalent.
func (sc *ShareController) RevokeAccess(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	resourceType, resourceID, ok := shareTarget(c)
	if !ok {
		return
	}

	granteeEmail := c.Param("email")
	if granteeEmail == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Grantee email is required")
		return
	}

	if err := sc.permissionService.Revoke(c.Request.Context(), identity, resourceType, resourceID, granteeEmail); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Access revoked", nil)
}

// ListShares handles GET /files/:id/shares and the folder equivalent.
func (sc *ShareController) ListShares(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	resourceType, resourceID, ok := shareTarget(c)
	if !ok {
		return
	}

	grants, err := sc.permissionService.ListGrants(c.Request.Context(), identity, resourceType, resourceID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Shares retrieved", grants)
}

// ListSharedWithMe handles GET /shared. Returns files and folders other
// owners have granted to the caller.
func (sc *ShareController) ListSharedWithMe(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	files, err := sc.permissionService.ListSharedWithMe(c.Request.Context(), identity, models.ResourceTypeFile)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	folders, err := sc.permissionService.ListSharedWithMe(c.Request.Context(), identity, models.ResourceTypeFolder)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Shared resources retrieved", gin.H{
		"files":   files,
		"folders": folders,
	})
}

// ListNotifications handles GET /notifications.
func (sc *ShareController) ListNotifications(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	notifications, err := sc.notificationService.ListNotifications(c.Request.Context(), identity, 50)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Notifications retrieved", notifications)
}

// MarkNotificationRead handles PATCH /notifications/:id/read.
func (sc *ShareController) MarkNotificationRead(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	notificationID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := sc.notificationService.MarkRead(c.Request.Context(), identity, notificationID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Notification marked read", nil)
}
