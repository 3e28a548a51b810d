package services

import (
	"context"
	"mime/multipart"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
	"nimbusdrive/utils"
)

// maxImportDepth bounds the folder nesting a single import may create. The
// node tree comes from the client, so the recursion must not trust it to be
// shallow.
const maxImportDepth = 32

// Node kinds of an import tree.
const (
	ImportNodeFolder = "folder"
	ImportNodeFile   = "file"
)

// ImportNode is one entry of a client-declared directory tree. Folder nodes
// carry nested Contents; file nodes carry the relative path that keys their
// uploaded contents.
type ImportNode struct {
	Type     string       `json:"type"`
	Name     string       `json:"name"`
	Path     string       `json:"path,omitempty"`
	Contents []ImportNode `json:"contents,omitempty"`
}

type ImportService struct {
	folderCollection *mongo.Collection
	fileCollection   *mongo.Collection
	fileService      *FileService
	permission       *PermissionService
}

func NewImportService(db *mongo.Database, fileService *FileService, permission *PermissionService) *ImportService {
	return &ImportService{
		folderCollection: db.Collection("folders"),
		fileCollection:   db.Collection("files"),
		fileService:      fileService,
		permission:       permission,
	}
}

// ImportResult summarizes one tree import. Bad entries are skipped with a
// reason rather than aborting the batch.
type ImportResult struct {
	RootFolderID   primitive.ObjectID `json:"root_folder_id"`
	CreatedFolders int                `json:"created_folders"`
	CreatedFiles   int                `json:"created_files"`
	Skipped        []SkippedEntry     `json:"skipped,omitempty"`
}

type SkippedEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportTree materializes a declared directory tree under a newly created
// folder named rootName. File nodes are matched to uploaded blobs by their
// declared path; an unmatched file node still gets a metadata-only record so
// one missing part does not abort the rest. Children nest under their own
// created parent, exactly as declared.
func (s *ImportService) ImportTree(ctx context.Context, identity, rootName string, parentID *primitive.ObjectID, nodes []ImportNode, blobs map[string]*multipart.FileHeader) (*ImportResult, error) {
	if err := utils.ValidateResourceName(rootName, true); err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := s.permission.RequireRole(ctx, identity, models.ResourceTypeFolder, *parentID, models.RoleEditor); err != nil {
			return nil, err
		}
	}

	rootID, err := s.createFolder(ctx, identity, rootName, parentID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		RootFolderID:   rootID,
		CreatedFolders: 1,
	}
	s.importNodes(ctx, identity, rootID, nodes, blobs, 1, result)
	return result, nil
}

// importNodes walks one level of the declared tree, creating folders and
// files under parentID and recursing into folder contents.
func (s *ImportService) importNodes(ctx context.Context, identity string, parentID primitive.ObjectID, nodes []ImportNode, blobs map[string]*multipart.FileHeader, depth int, result *ImportResult) {
	if depth > maxImportDepth {
		for _, node := range nodes {
			result.Skipped = append(result.Skipped, SkippedEntry{Name: node.Name, Reason: "directory nesting too deep"})
		}
		return
	}

	for _, node := range nodes {
		switch node.Type {
		case ImportNodeFolder:
			if err := utils.ValidateResourceName(node.Name, true); err != nil {
				result.Skipped = append(result.Skipped, SkippedEntry{Name: node.Name, Reason: err.Error()})
				continue
			}
			folderID, err := s.createFolder(ctx, identity, node.Name, &parentID)
			if err != nil {
				utils.LogWarning("import: folder " + node.Name + " failed: " + err.Error())
				result.Skipped = append(result.Skipped, SkippedEntry{Name: node.Name, Reason: err.Error()})
				continue
			}
			result.CreatedFolders++
			s.importNodes(ctx, identity, folderID, node.Contents, blobs, depth+1, result)

		case ImportNodeFile:
			if err := s.importFile(ctx, identity, parentID, node, blobs); err != nil {
				utils.LogWarning("import: file " + node.Name + " failed: " + err.Error())
				result.Skipped = append(result.Skipped, SkippedEntry{Name: node.Name, Reason: err.Error()})
				continue
			}
			result.CreatedFiles++

		default:
			result.Skipped = append(result.Skipped, SkippedEntry{Name: node.Name, Reason: "unknown node type " + node.Type})
		}
	}
}

func (s *ImportService) importFile(ctx context.Context, identity string, parentID primitive.ObjectID, node ImportNode, blobs map[string]*multipart.FileHeader) error {
	if err := utils.ValidateResourceName(node.Name, false); err != nil {
		return err
	}
	if err := utils.ValidateRelativePath(node.Path); err != nil {
		return err
	}

	if part, ok := blobs[node.Path]; ok && node.Path != "" {
		_, err := s.fileService.uploadOne(ctx, identity, &parentID, part)
		return err
	}

	// No uploaded contents for this node; record the entry with empty
	// contents rather than dropping it from the tree.
	now := time.Now().UTC()
	file := models.File{
		ID:           primitive.NewObjectID(),
		Name:         node.Name,
		OriginalName: node.Name,
		MimeType:     "application/octet-stream",
		FolderID:     &parentID,
		OwnerEmail:   identity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.fileCollection.InsertOne(ctx, file); err != nil {
		return apperrors.Internal("insert placeholder file", err)
	}
	return nil
}

// createFolder inserts a folder owned by identity under parentID, rejecting
// a duplicate sibling name.
func (s *ImportService) createFolder(ctx context.Context, identity, name string, parentID *primitive.ObjectID) (primitive.ObjectID, error) {
	filter := bson.M{
		"name":        name,
		"owner_email": identity,
		"is_deleted":  false,
	}
	if parentID != nil {
		filter["parent_id"] = *parentID
	} else {
		filter["parent_id"] = nil
	}

	err := s.folderCollection.FindOne(ctx, filter).Err()
	if err == nil {
		return primitive.NilObjectID, apperrors.Conflictf("folder %q already exists here", name)
	}
	if err != mongo.ErrNoDocuments {
		return primitive.NilObjectID, apperrors.Internal("check duplicate folder", err)
	}

	now := time.Now().UTC()
	folder := models.Folder{
		ID:         primitive.NewObjectID(),
		Name:       name,
		OwnerEmail: identity,
		ParentID:   parentID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.folderCollection.InsertOne(ctx, folder); err != nil {
		return primitive.NilObjectID, apperrors.Internal("create import folder", err)
	}
	return folder.ID, nil
}
