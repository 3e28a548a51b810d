package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
	"nimbusdrive/utils"
)

// maxTreeDepth bounds every ancestor walk. A chain deeper than this means the
// stored ancestry is corrupted; walks fail instead of looping forever.
const maxTreeDepth = 100

// Crumb is one element of a breadcrumb path.
type Crumb struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// folderLookup fetches a live folder by id, returning (nil, nil) when absent.
// The tree-walk helpers take it as a parameter so they stay testable without
// a database behind them.
type folderLookup func(ctx context.Context, id primitive.ObjectID) (*models.Folder, error)

// ancestryContains walks from start toward the root and reports whether
// target appears on the chain (start included).
func ancestryContains(ctx context.Context, target primitive.ObjectID, start *models.Folder, lookup folderLookup) (bool, error) {
	current := start
	for depth := 0; current != nil; depth++ {
		if depth > maxTreeDepth {
			return false, apperrors.Internal("walk ancestry", errAncestryTooDeep)
		}
		if current.ID == target {
			return true, nil
		}
		if current.ParentID == nil {
			return false, nil
		}
		next, err := lookup(ctx, *current.ParentID)
		if err != nil {
			return false, err
		}
		current = next
	}
	return false, nil
}

// buildBreadcrumbs walks from leaf to the root and returns the chain
// root-first, leaf last.
func buildBreadcrumbs(ctx context.Context, leaf *models.Folder, lookup folderLookup) ([]Crumb, error) {
	var reversed []Crumb
	current := leaf
	for depth := 0; current != nil; depth++ {
		if depth > maxTreeDepth {
			return nil, apperrors.Internal("walk breadcrumbs", errAncestryTooDeep)
		}
		reversed = append(reversed, Crumb{ID: current.ID, Name: current.Name})
		if current.ParentID == nil {
			break
		}
		next, err := lookup(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
		current = next
	}

	crumbs := make([]Crumb, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		crumbs = append(crumbs, reversed[i])
	}
	return crumbs, nil
}

var errAncestryTooDeep = errors.New("folder ancestry exceeds depth bound")

type FolderService struct {
	folderCollection  *mongo.Collection
	fileCollection    *mongo.Collection
	permissionService *PermissionService
}

func NewFolderService(db *mongo.Database, permissionService *PermissionService) *FolderService {
	return &FolderService{
		folderCollection:  db.Collection("folders"),
		fileCollection:    db.Collection("files"),
		permissionService: permissionService,
	}
}

// lookupLive is the database-backed folderLookup.
func (s *FolderService) lookupLive(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	err := s.folderCollection.FindOne(ctx, bson.M{
		"_id":        id,
		"is_deleted": false,
	}).Decode(&folder)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetch folder", err)
	}
	return &folder, nil
}

// CreateFolder creates a folder owned by identity. When parentID is set, the
// caller needs Editor on the parent; ownership does not inherit from it.
func (s *FolderService) CreateFolder(ctx context.Context, identity, name string, parentID *primitive.ObjectID) (*models.Folder, error) {
	if err := utils.ValidateResourceName(name, true); err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, *parentID, models.RoleEditor); err != nil {
			return nil, err
		}
	}

	// Same name, same parent, same owner is a duplicate.
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
		return nil, apperrors.Conflictf("folder %q already exists here", name)
	}
	if err != mongo.ErrNoDocuments {
		return nil, apperrors.Internal("check duplicate folder", err)
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
		return nil, apperrors.Internal("insert folder", err)
	}
	return &folder, nil
}

// GetFolder returns a live folder the caller may at least view.
func (s *FolderService) GetFolder(ctx context.Context, identity string, folderID primitive.ObjectID) (*models.Folder, error) {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, folderID, models.RoleViewer); err != nil {
		return nil, err
	}

	folder, err := s.lookupLive(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, apperrors.NotFoundf("folder not found")
	}
	return folder, nil
}

// FolderContents is the combined subfolders-plus-files view of one folder.
type FolderContents struct {
	Folder     FolderInfo      `json:"folder"`
	Subfolders []SubfolderInfo `json:"subfolders"`
	Files      []models.File   `json:"files"`
	Counts     ContentCounts   `json:"counts"`
}

type FolderInfo struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	IsStarred bool               `json:"is_starred"`
	CanEdit   bool               `json:"can_edit"`
	CanShare  bool               `json:"can_share"`
}

type SubfolderInfo struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	IsStarred bool               `json:"is_starred"`
	FileCount int                `json:"file_count"`
	CreatedAt time.Time          `json:"created_at"`
}

type ContentCounts struct {
	Subfolders int `json:"subfolders"`
	Files      int `json:"files"`
}

// ListFolderContents returns a folder's live subfolders and files in a single
// view, with the caller's edit/share capabilities on the folder.
func (s *FolderService) ListFolderContents(ctx context.Context, identity string, folderID primitive.ObjectID) (*FolderContents, error) {
	folder, err := s.GetFolder(ctx, identity, folderID)
	if err != nil {
		return nil, err
	}

	role, err := s.permissionService.ResolveRole(ctx, identity, models.ResourceTypeFolder, folderID)
	if err != nil {
		return nil, err
	}
	canEdit := role.Satisfies(models.RoleEditor)
	canShare := role.Satisfies(models.RoleOwner)

	subfolders, err := s.subfoldersWithCounts(ctx, folderID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.fileCollection.Find(ctx, bson.M{
		"folder_id":  folderID,
		"is_deleted": false,
	}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, apperrors.Internal("list files", err)
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, apperrors.Internal("decode files", err)
	}

	return &FolderContents{
		Folder: FolderInfo{
			ID:        folder.ID,
			Name:      folder.Name,
			IsStarred: folder.IsStarred,
			CanEdit:   canEdit,
			CanShare:  canShare,
		},
		Subfolders: subfolders,
		Files:      files,
		Counts: ContentCounts{
			Subfolders: len(subfolders),
			Files:      len(files),
		},
	}, nil
}

func (s *FolderService) subfoldersWithCounts(ctx context.Context, parentID primitive.ObjectID) ([]SubfolderInfo, error) {
	cursor, err := s.folderCollection.Find(ctx, bson.M{
		"parent_id":  parentID,
		"is_deleted": false,
	}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, apperrors.Internal("list subfolders", err)
	}
	defer cursor.Close(ctx)

	var subfolders []SubfolderInfo
	for cursor.Next(ctx) {
		var folder models.Folder
		if err := cursor.Decode(&folder); err != nil {
			continue
		}

		fileCount, err := s.fileCollection.CountDocuments(ctx, bson.M{
			"folder_id":  folder.ID,
			"is_deleted": false,
		})
		if err != nil {
			fileCount = 0
		}

		subfolders = append(subfolders, SubfolderInfo{
			ID:        folder.ID,
			Name:      folder.Name,
			IsStarred: folder.IsStarred,
			FileCount: int(fileCount),
			CreatedAt: folder.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Internal("list subfolders", err)
	}
	return subfolders, nil
}

// FolderSummary is one entry of a root-folder listing.
type FolderSummary struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	IsStarred      bool               `json:"is_starred"`
	CreatedAt      time.Time          `json:"created_at"`
	FileCount      int                `json:"file_count"`
	SubfolderCount int                `json:"subfolder_count"`
}

// ListRootFolders returns identity's own top-level live folders with child
// counts, sorted by name.
func (s *FolderService) ListRootFolders(ctx context.Context, identity string) ([]FolderSummary, error) {
	cursor, err := s.folderCollection.Find(ctx, bson.M{
		"owner_email": identity,
		"parent_id":   nil,
		"is_deleted":  false,
	}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, apperrors.Internal("list root folders", err)
	}
	defer cursor.Close(ctx)

	var results []FolderSummary
	for cursor.Next(ctx) {
		var folder models.Folder
		if err := cursor.Decode(&folder); err != nil {
			continue
		}

		fileCount, err := s.fileCollection.CountDocuments(ctx, bson.M{
			"folder_id":  folder.ID,
			"is_deleted": false,
		})
		if err != nil {
			fileCount = 0
		}

		subfolderCount, err := s.folderCollection.CountDocuments(ctx, bson.M{
			"parent_id":  folder.ID,
			"is_deleted": false,
		})
		if err != nil {
			subfolderCount = 0
		}

		results = append(results, FolderSummary{
			ID:             folder.ID,
			Name:           folder.Name,
			IsStarred:      folder.IsStarred,
			CreatedAt:      folder.CreatedAt,
			FileCount:      int(fileCount),
			SubfolderCount: int(subfolderCount),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Internal("list root folders", err)
	}
	return results, nil
}

// RenameFolder renames a folder the caller can edit.
func (s *FolderService) RenameFolder(ctx context.Context, identity string, folderID primitive.ObjectID, newName string) (*models.Folder, error) {
	if err := utils.ValidateResourceName(newName, true); err != nil {
		return nil, err
	}

	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, folderID, models.RoleEditor); err != nil {
		return nil, err
	}

	result, err := s.folderCollection.UpdateOne(ctx, bson.M{
		"_id":        folderID,
		"is_deleted": false,
	}, bson.M{
		"$set": bson.M{
			"name":       newName,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return nil, apperrors.Internal("rename folder", err)
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NotFoundf("folder not found")
	}

	folder, err := s.lookupLive(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, apperrors.NotFoundf("folder not found")
	}
	return folder, nil
}

// MoveFolder reparents a folder. A nil newParentID moves it to the root. The
// move is rejected when the destination is the folder itself or any of its
// descendants; a post-write walk catches moves that raced each other and
// reverts the write.
func (s *FolderService) MoveFolder(ctx context.Context, identity string, folderID primitive.ObjectID, newParentID *primitive.ObjectID) (*models.Folder, error) {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, folderID, models.RoleEditor); err != nil {
		return nil, err
	}

	folder, err := s.lookupLive(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, apperrors.NotFoundf("folder not found")
	}

	if newParentID != nil {
		if *newParentID == folderID {
			return nil, apperrors.InvalidArgumentf("folder cannot be its own parent")
		}

		if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, *newParentID, models.RoleEditor); err != nil {
			return nil, err
		}

		dest, err := s.lookupLive(ctx, *newParentID)
		if err != nil {
			return nil, err
		}
		if dest == nil {
			return nil, apperrors.NotFoundf("destination folder not found")
		}

		cyclic, err := ancestryContains(ctx, folderID, dest, s.lookupLive)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, apperrors.InvalidArgumentf("cannot move a folder into its own subtree")
		}
	}

	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if newParentID != nil {
		update["$set"].(bson.M)["parent_id"] = *newParentID
	} else {
		update["$unset"] = bson.M{"parent_id": ""}
	}

	result, err := s.folderCollection.UpdateOne(ctx, bson.M{
		"_id":        folderID,
		"is_deleted": false,
	}, update)
	if err != nil {
		return nil, apperrors.Internal("move folder", err)
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NotFoundf("folder not found")
	}

	// A concurrent move may have reparented an ancestor between the check
	// and the write. Re-walk from the folder's new position and revert if
	// the chain now loops back onto it.
	if newParentID != nil {
		dest, err := s.lookupLive(ctx, *newParentID)
		if err == nil && dest != nil {
			if cyclic, werr := ancestryContains(ctx, folderID, dest, s.lookupLive); werr == nil && cyclic {
				s.revertParent(ctx, folderID, folder.ParentID)
				return nil, apperrors.Conflictf("concurrent move created a cycle; move reverted")
			}
		}
	}

	moved, err := s.lookupLive(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if moved == nil {
		return nil, apperrors.NotFoundf("folder not found")
	}
	return moved, nil
}

func (s *FolderService) revertParent(ctx context.Context, folderID primitive.ObjectID, oldParent *primitive.ObjectID) {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if oldParent != nil {
		update["$set"].(bson.M)["parent_id"] = *oldParent
	} else {
		update["$unset"] = bson.M{"parent_id": ""}
	}
	if _, err := s.folderCollection.UpdateOne(ctx, bson.M{"_id": folderID}, update); err != nil {
		utils.LogError("failed to revert folder move", err)
	}
}

// Breadcrumbs returns the path from the root ancestor down to folderID.
func (s *FolderService) Breadcrumbs(ctx context.Context, identity string, folderID primitive.ObjectID) ([]Crumb, error) {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, folderID, models.RoleViewer); err != nil {
		return nil, err
	}

	folder, err := s.lookupLive(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, apperrors.NotFoundf("folder not found")
	}

	return buildBreadcrumbs(ctx, folder, s.lookupLive)
}

// SetStarred toggles the starred flag on a folder the caller can edit.
func (s *FolderService) SetStarred(ctx context.Context, identity string, folderID primitive.ObjectID, starred bool) error {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, folderID, models.RoleEditor); err != nil {
		return err
	}

	result, err := s.folderCollection.UpdateOne(ctx, bson.M{
		"_id":        folderID,
		"is_deleted": false,
	}, bson.M{
		"$set": bson.M{
			"is_starred": starred,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return apperrors.Internal("star folder", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFoundf("folder not found")
	}
	return nil
}

// DeleteFolder soft-deletes a folder and cascades recursively through its
// subtree: every descendant folder and file is marked with the same
// deletion timestamp, which later lets a restore bring back exactly the
// subtree that went out together.
func (s *FolderService) DeleteFolder(ctx context.Context, identity string, folderID primitive.ObjectID) error {
	if err := s.permissionService.RequireRole(ctx, identity, models.ResourceTypeFolder, folderID, models.RoleEditor); err != nil {
		return err
	}

	folder, err := s.lookupLive(ctx, folderID)
	if err != nil {
		return err
	}
	if folder == nil {
		return apperrors.NotFoundf("folder not found")
	}

	subtree, err := s.subtreeFolderIDs(ctx, folderID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	mark := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		},
	}

	if _, err := s.folderCollection.UpdateMany(ctx, bson.M{
		"_id":        bson.M{"$in": subtree},
		"is_deleted": false,
	}, mark); err != nil {
		return apperrors.Internal("soft-delete folders", err)
	}

	if _, err := s.fileCollection.UpdateMany(ctx, bson.M{
		"folder_id":  bson.M{"$in": subtree},
		"is_deleted": false,
	}, mark); err != nil {
		return apperrors.Internal("soft-delete files", err)
	}

	return nil
}

// subtreeFolderIDs collects folderID and every live descendant folder id via
// a breadth-first walk, bounded by maxTreeDepth levels.
func (s *FolderService) subtreeFolderIDs(ctx context.Context, folderID primitive.ObjectID) ([]primitive.ObjectID, error) {
	all := []primitive.ObjectID{folderID}
	frontier := []primitive.ObjectID{folderID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth > maxTreeDepth {
			return nil, apperrors.Internal("collect subtree", errAncestryTooDeep)
		}

		cursor, err := s.folderCollection.Find(ctx, bson.M{
			"parent_id":  bson.M{"$in": frontier},
			"is_deleted": false,
		}, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, apperrors.Internal("collect subtree", err)
		}

		var next []primitive.ObjectID
		for cursor.Next(ctx) {
			var doc struct {
				ID primitive.ObjectID `bson:"_id"`
			}
			if err := cursor.Decode(&doc); err != nil {
				continue
			}
			next = append(next, doc.ID)
		}
		err = cursor.Err()
		cursor.Close(ctx)
		if err != nil {
			return nil, apperrors.Internal("collect subtree", err)
		}

		all = append(all, next...)
		frontier = next
	}

	return all, nil
}
