package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nimbusdrive/services"
	"nimbusdrive/utils"
)

type FolderController struct {
	folderService *services.FolderService
}

func NewFolderController(folderService *services.FolderService) *FolderController {
	return &FolderController{folderService: folderService}
}

// CreateFolder handles POST /folders.
func (fc *FolderController) CreateFolder(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req struct {
		Name     string  `json:"name" binding:"required"`
		ParentID *string `json:"parent_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	parentID, ok := optionalObjectID(req.ParentID)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid parent folder ID format")
		return
	}

	folder, err := fc.folderService.CreateFolder(c.Request.Context(), identity, req.Name, parentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Folder created", folder)
}

// ListRootFolders handles GET /folders.
func (fc *FolderController) ListRootFolders(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	folders, err := fc.folderService.ListRootFolders(c.Request.Context(), identity)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folders retrieved", folders)
}

// GetFolderContents handles GET /folders/:id.
func (fc *FolderController) GetFolderContents(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	folderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	contents, err := fc.folderService.ListFolderContents(c.Request.Context(), identity, folderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder contents retrieved", contents)
}

// RenameFolder handles PATCH /folders/:id/rename.
func (fc *FolderController) RenameFolder(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	folderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	folder, err := fc.folderService.RenameFolder(c.Request.Context(), identity, folderID, req.Name)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder renamed", folder)
}

// MoveFolder handles PATCH /folders/:id/move. A null parent moves the folder
// to the root.
func (fc *FolderController) MoveFolder(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	folderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	parentID, ok := optionalObjectID(req.ParentID)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid parent folder ID format")
		return
	}

	folder, err := fc.folderService.MoveFolder(c.Request.Context(), identity, folderID, parentID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder moved", folder)
}

// GetBreadcrumbs handles GET /folders/:id/breadcrumbs.
func (fc *FolderController) GetBreadcrumbs(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	folderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	crumbs, err := fc.folderService.Breadcrumbs(c.Request.Context(), identity, folderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Breadcrumbs retrieved", crumbs)
}

// SetStarred handles PATCH /folders/:id/star.
func (fc *FolderController) SetStarred(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	folderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Starred *bool `json:"starred" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	if err := fc.folderService.SetStarred(c.Request.Context(), identity, folderID, *req.Starred); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder updated", nil)
}

// DeleteFolder handles DELETE /folders/:id. The folder and its subtree move
// to the trash.
func (fc *FolderController) DeleteFolder(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	folderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := fc.folderService.DeleteFolder(c.Request.Context(), identity, folderID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder moved to trash", nil)
}
