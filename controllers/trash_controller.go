package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"nimbusdrive/services"
	"nimbusdrive/utils"
)

type TrashController struct {
	trashService *services.TrashService
}

func NewTrashController(trashService *services.TrashService) *TrashController {
	return &TrashController{trashService: trashService}
}

// ListTrash handles GET /trash. Optional query parameters: type narrows to
// "file" or "folder", page selects a 1-based page.
func (tc *TrashController) ListTrash(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	items, err := tc.trashService.ListTrash(c.Request.Context(), identity, c.Query("type"), page)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Trash retrieved", items)
}

// RestoreFile handles POST /trash/files/:id/restore.
func (tc *TrashController) RestoreFile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	fileID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	file, err := tc.trashService.RestoreFile(c.Request.Context(), identity, fileID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File restored", file)
}

// RestoreFolder handles POST /trash/folders/:id/restore.
func (tc *TrashController) RestoreFolder(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	folderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	folder, err := tc.trashService.RestoreFolder(c.Request.Context(), identity, folderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder restored", folder)
}

// PurgeFile handles DELETE /trash/files/:id. Permanent.
func (tc *TrashController) PurgeFile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	fileID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := tc.trashService.PurgeFile(c.Request.Context(), identity, fileID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File permanently deleted", nil)
}

// PurgeFolder handles DELETE /trash/folders/:id. Permanent.
func (tc *TrashController) PurgeFolder(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	folderID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := tc.trashService.PurgeFolder(c.Request.Context(), identity, folderID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Folder permanently deleted", nil)
}

// EmptyTrash handles DELETE /trash. Permanent.
func (tc *TrashController) EmptyTrash(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := tc.trashService.EmptyTrash(c.Request.Context(), identity); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Trash emptied", nil)
}
