package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nimbusdrive/services"
	"nimbusdrive/utils"
)

type FileController struct {
	fileService   *services.FileService
	importService *services.ImportService
}

func NewFileController(fileService *services.FileService, importService *services.ImportService) *FileController {
	return &FileController{
		fileService:   fileService,
		importService: importService,
	}
}

// UploadFiles handles POST /files/upload. Multipart form with one or more
// "files" parts and an optional folder_id field.
func (fc *FileController) UploadFiles(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	parts := form.File["files"]
	if len(parts) == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "No files provided")
		return
	}

	var folderIDRaw *string
	if v := c.PostForm("folder_id"); v != "" {
		folderIDRaw = &v
	}
	folderID, ok := optionalObjectID(folderIDRaw)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid folder ID format")
		return
	}

	outcome, err := fc.fileService.UploadFiles(c.Request.Context(), identity, folderID, parts)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Upload complete", outcome)
}

// ImportTree handles POST /files/import. Multipart form carrying a
// "root_name" field, a "tree" field with the declared folder/file nodes as
// JSON, and "files" parts paired index-wise with "paths" fields that key
// them to file nodes.
func (fc *FileController) ImportTree(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	var nodes []services.ImportNode
	if treeJSON := c.PostForm("tree"); treeJSON != "" {
		if err := json.Unmarshal([]byte(treeJSON), &nodes); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid tree description")
			return
		}
	}

	parts := form.File["files"]
	paths := form.Value["paths"]
	if len(paths) != len(parts) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Each file needs a matching path")
		return
	}
	blobs := make(map[string]*multipart.FileHeader, len(parts))
	for i, part := range parts {
		blobs[paths[i]] = part
	}

	var folderIDRaw *string
	if v := c.PostForm("folder_id"); v != "" {
		folderIDRaw = &v
	}
	folderID, ok := optionalObjectID(folderIDRaw)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid folder ID format")
		return
	}

	result, err := fc.importService.ImportTree(c.Request.Context(), identity, c.PostForm("root_name"), folderID, nodes, blobs)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Import complete", result)
}

// ListFiles handles GET /files with query, folder, star, sort, and paging
// parameters.
func (fc *FileController) ListFiles(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var folderIDRaw *string
	if v := c.Query("folder_id"); v != "" {
		folderIDRaw = &v
	}
	folderID, ok := optionalObjectID(folderIDRaw)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid folder ID format")
		return
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	opts := services.ListOptions{
		FolderID:    folderID,
		Query:       c.Query("q"),
		StarredOnly: c.Query("starred") == "true",
		SortBy:      c.DefaultQuery("sort_by", "name"),
		SortOrder:   c.DefaultQuery("sort_order", "asc"),
		Page:        page,
		PageSize:    pageSize,
	}

	files, total, err := fc.fileService.ListFiles(c.Request.Context(), identity, opts)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	totalPages := int(total / opts.PageSize)
	if total%opts.PageSize != 0 {
		totalPages++
	}
	utils.PaginatedSuccessResponse(c, "Files retrieved", files, &utils.Pagination{
		Page:       int(opts.Page),
		Limit:      int(opts.PageSize),
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetFile handles GET /files/:id.
func (fc *FileController) GetFile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	fileID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	file, err := fc.fileService.GetFile(c.Request.Context(), identity, fileID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File retrieved", file)
}

// GetDownloadURL handles GET /files/:id/download. Pass preview=true for a
// short-lived inline URL.
func (fc *FileController) GetDownloadURL(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	fileID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	url, err := fc.fileService.DownloadURL(c.Request.Context(), identity, fileID, c.Query("preview") == "true")
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Download URL generated", gin.H{"url": url})
}

// RenameFile handles PATCH /files/:id/rename.
func (fc *FileController) RenameFile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	fileID, ok := pathObjectID(c, "id")
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

	file, err := fc.fileService.RenameFile(c.Request.Context(), identity, fileID, req.Name)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File renamed", file)
}

// MoveFile handles PATCH /files/:id/move. A null folder moves the file to
// the root.
func (fc *FileController) MoveFile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	fileID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req struct {
		FolderID *string `json:"folder_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	folderID, ok := optionalObjectID(req.FolderID)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid folder ID format")
		return
	}

	file, err := fc.fileService.MoveFile(c.Request.Context(), identity, fileID, folderID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File moved", file)
}

// SetStarred handles PATCH /files/:id/star.
func (fc *FileController) SetStarred(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	fileID, ok := pathObjectID(c, "id")
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

	if err := fc.fileService.SetStarred(c.Request.Context(), identity, fileID, *req.Starred); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File updated", nil)
}

// DeleteFile handles DELETE /files/:id. The file moves to the trash.
func (fc *FileController) DeleteFile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	fileID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := fc.fileService.DeleteFile(c.Request.Context(), identity, fileID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File moved to trash", nil)
}
