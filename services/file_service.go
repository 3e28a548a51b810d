package services

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
	"nimbusdrive/utils"
)

type FileService struct {
	fileCollection    *mongo.Collection
	folderCollection  *mongo.Collection
	permissionService *PermissionService
	blobStore         BlobStore
	maxFileSize       int64
}

func NewFileService(db *mongo.Database, permissionService *PermissionService, blobStore BlobStore, maxFileSize int64) *FileService {
	return &FileService{
		fileCollection:    db.Collection("files"),
		folderCollection:  db.Collection("folders"),
		permissionService: permissionService,
		blobStore:         blobStore,
		maxFileSize:       maxFileSize,
	}
}

func (s *FileService) lookupLive(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	var file models.File
	err := s.fileCollection.FindOne(ctx, bson.M{
		"_id":        id,
		"is_deleted": false,
	}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetch file", err)
	}
	return &file, nil
}

// UploadOutcome reports per-file results of a multi-file upload. One bad file
// does not abort the batch.
type UploadOutcome struct {
	Uploaded []models.File   `json:"uploaded"`
	Failed   []UploadFailure `json:"failed,omitempty"`
}

type UploadFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// UploadFiles stores each part's contents and inserts a metadata row owned by
// identity. A nil folderID uploads to the root; otherwise the caller needs
// Editor on the destination folder.
func (s *FileService) UploadFiles(ctx context.Context, identity string, folderID *primitive.ObjectID, parts []*multipart.FileHeader) (*UploadOutcome, error) {
	if len(parts) == 0 {
		return nil, apperrors.InvalidArgumentf("no files provided")
	}

	if folderID != nil {
		if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, *folderID, models.RoleEditor); err != nil {
			return nil, err
		}
	}

	outcome := &UploadOutcome{}
	for _, part := range parts {
		file, err := s.uploadOne(ctx, identity, folderID, part)
		if err != nil {
			utils.LogWarning("upload failed for " + part.Filename + ": " + err.Error())
			outcome.Failed = append(outcome.Failed, UploadFailure{
				Name:   part.Filename,
				Reason: err.Error(),
			})
			continue
		}
		outcome.Uploaded = append(outcome.Uploaded, *file)
	}
	return outcome, nil
}

func (s *FileService) uploadOne(ctx context.Context, identity string, folderID *primitive.ObjectID, part *multipart.FileHeader) (*models.File, error) {
	if err := utils.ValidateResourceName(part.Filename, false); err != nil {
		return nil, err
	}
	if s.maxFileSize > 0 && part.Size > s.maxFileSize {
		return nil, apperrors.InvalidArgumentf("file exceeds the %d byte limit", s.maxFileSize)
	}

	reader, err := part.Open()
	if err != nil {
		return nil, apperrors.Internal("open upload part", err)
	}
	defer reader.Close()

	blob, err := s.blobStore.Upload(ctx, identity, part.Filename, reader)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	file := models.File{
		ID:           primitive.NewObjectID(),
		Name:         part.Filename,
		OriginalName: part.Filename,
		Size:         blob.Size,
		MimeType:     part.Header.Get("Content-Type"),
		Extension:    strings.ToLower(filepath.Ext(part.Filename)),
		FolderID:     folderID,
		OwnerEmail:   identity,
		StorageKey:   blob.StorageKey,
		SHA1Hash:     blob.SHA1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.fileCollection.InsertOne(ctx, file); err != nil {
		// Metadata failed after the bytes landed; drop the orphan blob.
		if derr := s.blobStore.Delete(ctx, blob.StorageKey); derr != nil {
			utils.LogError("failed to clean up orphaned blob "+blob.StorageKey, derr)
		}
		return nil, apperrors.Internal("insert file", err)
	}
	return &file, nil
}

// GetFile returns a live file the caller may at least view.
func (s *FileService) GetFile(ctx context.Context, identity string, fileID primitive.ObjectID) (*models.File, error) {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFile, fileID, models.RoleViewer); err != nil {
		return nil, err
	}

	file, err := s.lookupLive(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.NotFoundf("file not found")
	}
	return file, nil
}

// DownloadURL returns a signed URL for a file's contents. Preview URLs carry
// a shorter expiry than download URLs.
func (s *FileService) DownloadURL(ctx context.Context, identity string, fileID primitive.ObjectID, preview bool) (string, error) {
	file, err := s.GetFile(ctx, identity, fileID)
	if err != nil {
		return "", err
	}

	ttl := DownloadURLTTL
	if preview {
		ttl = PreviewURLTTL
	}
	return s.blobStore.SignedURL(ctx, file.StorageKey, ttl)
}

// RenameFile renames a file the caller can edit. The original upload name is
// preserved separately.
func (s *FileService) RenameFile(ctx context.Context, identity string, fileID primitive.ObjectID, newName string) (*models.File, error) {
	if err := utils.ValidateResourceName(newName, false); err != nil {
		return nil, err
	}

	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFile, fileID, models.RoleEditor); err != nil {
		return nil, err
	}

	result, err := s.fileCollection.UpdateOne(ctx, bson.M{
		"_id":        fileID,
		"is_deleted": false,
	}, bson.M{
		"$set": bson.M{
			"name":       newName,
			"extension":  strings.ToLower(filepath.Ext(newName)),
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return nil, apperrors.Internal("rename file", err)
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NotFoundf("file not found")
	}

	file, err := s.lookupLive(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.NotFoundf("file not found")
	}
	return file, nil
}

// MoveFile relocates a file into another folder, or to the root when
// folderID is nil. The caller needs Editor on both the file and the
// destination folder.
func (s *FileService) MoveFile(ctx context.Context, identity string, fileID primitive.ObjectID, folderID *primitive.ObjectID) (*models.File, error) {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFile, fileID, models.RoleEditor); err != nil {
		return nil, err
	}

	if folderID != nil {
		if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, *folderID, models.RoleEditor); err != nil {
			return nil, err
		}

		err := s.folderCollection.FindOne(ctx, bson.M{
			"_id":        *folderID,
			"is_deleted": false,
		}).Err()
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFoundf("destination folder not found")
		}
		if err != nil {
			return nil, apperrors.Internal("fetch destination folder", err)
		}
	}

	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if folderID != nil {
		update["$set"].(bson.M)["folder_id"] = *folderID
	} else {
		update["$unset"] = bson.M{"folder_id": ""}
	}

	result, err := s.fileCollection.UpdateOne(ctx, bson.M{
		"_id":        fileID,
		"is_deleted": false,
	}, update)
	if err != nil {
		return nil, apperrors.Internal("move file", err)
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NotFoundf("file not found")
	}

	file, err := s.lookupLive(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.NotFoundf("file not found")
	}
	return file, nil
}

// DeleteFile soft-deletes a file; the blob stays until a purge.
func (s *FileService) DeleteFile(ctx context.Context, identity string, fileID primitive.ObjectID) error {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFile, fileID, models.RoleEditor); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.fileCollection.UpdateOne(ctx, bson.M{
		"_id":        fileID,
		"is_deleted": false,
	}, bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		},
	})
	if err != nil {
		return apperrors.Internal("soft-delete file", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFoundf("file not found")
	}
	return nil
}

// SetStarred toggles the starred flag on a file the caller can edit.
func (s *FileService) SetStarred(ctx context.Context, identity string, fileID primitive.ObjectID, starred bool) error {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFile, fileID, models.RoleEditor); err != nil {
		return err
	}

	result, err := s.fileCollection.UpdateOne(ctx, bson.M{
		"_id":        fileID,
		"is_deleted": false,
	}, bson.M{
		"$set": bson.M{
			"is_starred": starred,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return apperrors.Internal("star file", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFoundf("file not found")
	}
	return nil
}

// ListOptions narrows and pages a file listing.
type ListOptions struct {
	FolderID    *primitive.ObjectID
	Query       string
	StarredOnly bool
	SortBy      string // name, date, size
	SortOrder   string // asc, desc
	Page        int64
	PageSize    int64
}

// ListFiles returns live files identity can see, owned or shared, filtered
// and paged per opts.
func (s *FileService) ListFiles(ctx context.Context, identity string, opts ListOptions) ([]models.File, int64, error) {
	grantedIDs, err := s.permissionService.GrantedIDs(ctx, identity, models.ResourceTypeFile, models.RoleViewer)
	if err != nil {
		return nil, 0, err
	}
	grantedFolderIDs, err := s.permissionService.GrantedFolderSubtreeIDs(ctx, identity, models.RoleViewer)
	if err != nil {
		return nil, 0, err
	}

	filter := bson.M{
		"is_deleted": false,
		"$or": []bson.M{
			{"owner_email": identity},
			{"_id": bson.M{"$in": grantedIDs}},
			{"folder_id": bson.M{"$in": grantedFolderIDs}},
		},
	}
	if opts.FolderID != nil {
		filter["folder_id"] = *opts.FolderID
	}
	if opts.StarredOnly {
		filter["is_starred"] = true
	}
	if opts.Query != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{
			Pattern: escapeRegex(opts.Query),
			Options: "i",
		}}
	}

	total, err := s.fileCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Internal("count files", err)
	}

	sortField := "name"
	switch opts.SortBy {
	case "date":
		sortField = "updated_at"
	case "size":
		sortField = "size"
	}
	sortDir := 1
	if opts.SortOrder == "desc" {
		sortDir = -1
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	cursor, err := s.fileCollection.Find(ctx, filter, options.Find().
		SetSort(bson.M{sortField: sortDir}).
		SetSkip((page-1)*pageSize).
		SetLimit(pageSize))
	if err != nil {
		return nil, 0, apperrors.Internal("list files", err)
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, 0, apperrors.Internal("decode files", err)
	}
	return files, total, nil
}
