package services

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
	"nimbusdrive/utils"
)

type TrashService struct {
	fileCollection   *mongo.Collection
	folderCollection *mongo.Collection
	grantCollection  *mongo.Collection
	linkCollection   *mongo.Collection
	blobStore        BlobStore
}

func NewTrashService(db *mongo.Database, blobStore BlobStore) *TrashService {
	return &TrashService{
		fileCollection:   db.Collection("files"),
		folderCollection: db.Collection("folders"),
		grantCollection:  db.Collection("grants"),
		linkCollection:   db.Collection("links"),
		blobStore:        blobStore,
	}
}

// trashPageSize is the fixed page length of trash listings.
const trashPageSize = 50

// ListTrash returns one page of identity's deleted files and folders, merged
// and ordered most recently deleted first, each with its scheduled auto-purge
// time. typeFilter narrows the listing to one resource kind, "" keeps both;
// page is 1-based. Only items still inside the restore window appear;
// anything past it is awaiting the purge job and no longer restorable.
func (s *TrashService) ListTrash(ctx context.Context, identity, typeFilter string, page int) ([]models.TrashItem, error) {
	if typeFilter != "" && !models.ValidResourceType(typeFilter) {
		return nil, apperrors.InvalidArgumentf("unknown resource type %q", typeFilter)
	}

	now := time.Now().UTC()
	var items []models.TrashItem

	if typeFilter == "" || typeFilter == models.ResourceTypeFolder {
		cursor, err := s.folderCollection.Find(ctx, bson.M{
			"owner_email": identity,
			"is_deleted":  true,
		})
		if err != nil {
			return nil, apperrors.Internal("list trashed folders", err)
		}
		for cursor.Next(ctx) {
			var folder models.Folder
			if err := cursor.Decode(&folder); err != nil {
				continue
			}
			if folder.DeletedAt == nil || !models.WithinRestoreWindow(*folder.DeletedAt, now) {
				continue
			}
			items = append(items, models.TrashItem{
				ItemID:      folder.ID,
				ItemType:    models.ResourceTypeFolder,
				Name:        folder.Name,
				OwnerEmail:  folder.OwnerEmail,
				DeletedAt:   *folder.DeletedAt,
				AutoPurgeAt: folder.DeletedAt.Add(models.RestoreWindow),
			})
		}
		err = cursor.Err()
		cursor.Close(ctx)
		if err != nil {
			return nil, apperrors.Internal("list trashed folders", err)
		}
	}

	if typeFilter == "" || typeFilter == models.ResourceTypeFile {
		cursor, err := s.fileCollection.Find(ctx, bson.M{
			"owner_email": identity,
			"is_deleted":  true,
		})
		if err != nil {
			return nil, apperrors.Internal("list trashed files", err)
		}
		for cursor.Next(ctx) {
			var file models.File
			if err := cursor.Decode(&file); err != nil {
				continue
			}
			if file.DeletedAt == nil || !models.WithinRestoreWindow(*file.DeletedAt, now) {
				continue
			}
			items = append(items, models.TrashItem{
				ItemID:      file.ID,
				ItemType:    models.ResourceTypeFile,
				Name:        file.Name,
				OwnerEmail:  file.OwnerEmail,
				Size:        file.Size,
				DeletedAt:   *file.DeletedAt,
				AutoPurgeAt: file.DeletedAt.Add(models.RestoreWindow),
			})
		}
		err = cursor.Err()
		cursor.Close(ctx)
		if err != nil {
			return nil, apperrors.Internal("list trashed files", err)
		}
	}

	orderTrash(items)
	return pageTrash(items, page), nil
}

// orderTrash sorts a merged trash listing most recently deleted first.
func orderTrash(items []models.TrashItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].DeletedAt.After(items[j].DeletedAt)
	})
}

// pageTrash slices one 1-based page out of an ordered listing.
func pageTrash(items []models.TrashItem, page int) []models.TrashItem {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * trashPageSize
	if start >= len(items) {
		return nil
	}
	end := start + trashPageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// RestoreFile brings a deleted file back. Only the owner may restore, and
// only inside the restore window. If the original parent folder is gone or
// still deleted, the file lands in the root instead.
func (s *TrashService) RestoreFile(ctx context.Context, identity string, fileID primitive.ObjectID) (*models.File, error) {
	var file models.File
	err := s.fileCollection.FindOne(ctx, bson.M{
		"_id":         fileID,
		"owner_email": identity,
		"is_deleted":  true,
	}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFoundf("file not found in trash")
	}
	if err != nil {
		return nil, apperrors.Internal("fetch trashed file", err)
	}

	if file.DeletedAt == nil || !models.WithinRestoreWindow(*file.DeletedAt, time.Now().UTC()) {
		return nil, apperrors.InvalidStatef("restore window has elapsed")
	}

	update := bson.M{
		"$set":   bson.M{"is_deleted": false, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"deleted_at": ""},
	}
	if file.FolderID != nil && !s.folderIsLive(ctx, *file.FolderID) {
		update["$unset"].(bson.M)["folder_id"] = ""
	}

	if _, err := s.fileCollection.UpdateOne(ctx, bson.M{"_id": fileID}, update); err != nil {
		return nil, apperrors.Internal("restore file", err)
	}

	var restored models.File
	if err := s.fileCollection.FindOne(ctx, bson.M{"_id": fileID}).Decode(&restored); err != nil {
		return nil, apperrors.Internal("fetch restored file", err)
	}
	return &restored, nil
}

// RestoreFolder brings back a deleted folder together with the descendants
// that were deleted in the same cascade. Cascade members share one deletion
// timestamp, so matching on it recovers exactly the subtree that went out
// together and leaves independently-deleted items in the trash.
func (s *TrashService) RestoreFolder(ctx context.Context, identity string, folderID primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	err := s.folderCollection.FindOne(ctx, bson.M{
		"_id":         folderID,
		"owner_email": identity,
		"is_deleted":  true,
	}).Decode(&folder)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFoundf("folder not found in trash")
	}
	if err != nil {
		return nil, apperrors.Internal("fetch trashed folder", err)
	}

	if folder.DeletedAt == nil || !models.WithinRestoreWindow(*folder.DeletedAt, time.Now().UTC()) {
		return nil, apperrors.InvalidStatef("restore window has elapsed")
	}
	cascadeStamp := *folder.DeletedAt

	subtree, err := s.trashedSubtreeFolderIDs(ctx, folderID, cascadeStamp)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	revive := bson.M{
		"$set":   bson.M{"is_deleted": false, "updated_at": now},
		"$unset": bson.M{"deleted_at": ""},
	}

	if _, err := s.folderCollection.UpdateMany(ctx, bson.M{
		"_id":        bson.M{"$in": subtree},
		"is_deleted": true,
		"deleted_at": cascadeStamp,
	}, revive); err != nil {
		return nil, apperrors.Internal("restore folders", err)
	}

	if _, err := s.fileCollection.UpdateMany(ctx, bson.M{
		"folder_id":  bson.M{"$in": subtree},
		"is_deleted": true,
		"deleted_at": cascadeStamp,
	}, revive); err != nil {
		return nil, apperrors.Internal("restore files", err)
	}

	// The restored root may point at a parent that is gone; reattach at
	// the top level in that case.
	if folder.ParentID != nil && !s.folderIsLive(ctx, *folder.ParentID) {
		if _, err := s.folderCollection.UpdateOne(ctx, bson.M{"_id": folderID}, bson.M{
			"$unset": bson.M{"parent_id": ""},
			"$set":   bson.M{"updated_at": now},
		}); err != nil {
			return nil, apperrors.Internal("reattach restored folder", err)
		}
	}

	var restored models.Folder
	if err := s.folderCollection.FindOne(ctx, bson.M{"_id": folderID}).Decode(&restored); err != nil {
		return nil, apperrors.Internal("fetch restored folder", err)
	}
	return &restored, nil
}

func (s *TrashService) folderIsLive(ctx context.Context, folderID primitive.ObjectID) bool {
	err := s.folderCollection.FindOne(ctx, bson.M{
		"_id":        folderID,
		"is_deleted": false,
	}).Err()
	return err == nil
}

// trashedSubtreeFolderIDs walks the deleted subtree rooted at folderID,
// following only folders carrying the same cascade timestamp.
func (s *TrashService) trashedSubtreeFolderIDs(ctx context.Context, folderID primitive.ObjectID, stamp time.Time) ([]primitive.ObjectID, error) {
	all := []primitive.ObjectID{folderID}
	frontier := []primitive.ObjectID{folderID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth > maxTreeDepth {
			return nil, apperrors.Internal("collect trashed subtree", errAncestryTooDeep)
		}

		cursor, err := s.folderCollection.Find(ctx, bson.M{
			"parent_id":  bson.M{"$in": frontier},
			"is_deleted": true,
			"deleted_at": stamp,
		}, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, apperrors.Internal("collect trashed subtree", err)
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
			return nil, apperrors.Internal("collect trashed subtree", err)
		}

		all = append(all, next...)
		frontier = next
	}

	return all, nil
}

// PurgeFile permanently removes a trashed file: the metadata row, its
// grants and public links, and the stored blob. The blob delete is best
// effort; a storage failure is logged and the metadata still goes.
func (s *TrashService) PurgeFile(ctx context.Context, identity string, fileID primitive.ObjectID) error {
	var file models.File
	err := s.fileCollection.FindOne(ctx, bson.M{
		"_id":         fileID,
		"owner_email": identity,
		"is_deleted":  true,
	}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return apperrors.NotFoundf("file not found in trash")
	}
	if err != nil {
		return apperrors.Internal("fetch trashed file", err)
	}

	s.purgeFileRow(ctx, &file)
	return nil
}

func (s *TrashService) purgeFileRow(ctx context.Context, file *models.File) {
	if file.StorageKey != "" {
		if err := s.blobStore.Delete(ctx, file.StorageKey); err != nil {
			utils.LogWarning("blob delete failed for " + file.StorageKey + ", purging metadata anyway: " + err.Error())
		}
	}

	if _, err := s.fileCollection.DeleteOne(ctx, bson.M{"_id": file.ID}); err != nil {
		utils.LogError("failed to delete file row "+file.ID.Hex(), err)
		return
	}
	s.cleanAttachments(ctx, models.ResourceTypeFile, file.ID)
}

// PurgeFolder permanently removes a trashed folder and every trashed
// descendant folder and file beneath it, regardless of cascade timestamps.
func (s *TrashService) PurgeFolder(ctx context.Context, identity string, folderID primitive.ObjectID) error {
	err := s.folderCollection.FindOne(ctx, bson.M{
		"_id":         folderID,
		"owner_email": identity,
		"is_deleted":  true,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return apperrors.NotFoundf("folder not found in trash")
	}
	if err != nil {
		return apperrors.Internal("fetch trashed folder", err)
	}

	return s.purgeFolderTree(ctx, folderID)
}

func (s *TrashService) purgeFolderTree(ctx context.Context, folderID primitive.ObjectID) error {
	subtree, err := s.deletedSubtreeFolderIDs(ctx, folderID)
	if err != nil {
		return err
	}

	cursor, err := s.fileCollection.Find(ctx, bson.M{
		"folder_id":  bson.M{"$in": subtree},
		"is_deleted": true,
	})
	if err != nil {
		return apperrors.Internal("list subtree files", err)
	}
	for cursor.Next(ctx) {
		var file models.File
		if err := cursor.Decode(&file); err != nil {
			continue
		}
		s.purgeFileRow(ctx, &file)
	}
	err = cursor.Err()
	cursor.Close(ctx)
	if err != nil {
		return apperrors.Internal("list subtree files", err)
	}

	if _, err := s.folderCollection.DeleteMany(ctx, bson.M{
		"_id":        bson.M{"$in": subtree},
		"is_deleted": true,
	}); err != nil {
		return apperrors.Internal("delete folder rows", err)
	}

	for _, id := range subtree {
		s.cleanAttachments(ctx, models.ResourceTypeFolder, id)
	}
	return nil
}

// deletedSubtreeFolderIDs walks the trashed subtree without regard to
// cascade timestamps, for purges that take everything beneath the root.
func (s *TrashService) deletedSubtreeFolderIDs(ctx context.Context, folderID primitive.ObjectID) ([]primitive.ObjectID, error) {
	all := []primitive.ObjectID{folderID}
	frontier := []primitive.ObjectID{folderID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth > maxTreeDepth {
			return nil, apperrors.Internal("collect purge subtree", errAncestryTooDeep)
		}

		cursor, err := s.folderCollection.Find(ctx, bson.M{
			"parent_id":  bson.M{"$in": frontier},
			"is_deleted": true,
		}, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, apperrors.Internal("collect purge subtree", err)
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
			return nil, apperrors.Internal("collect purge subtree", err)
		}

		all = append(all, next...)
		frontier = next
	}

	return all, nil
}

// cleanAttachments drops grants and public links pointing at a purged
// resource so nothing dangles.
func (s *TrashService) cleanAttachments(ctx context.Context, resourceType string, resourceID primitive.ObjectID) {
	filter := bson.M{"resource_type": resourceType, "resource_id": resourceID}

	if _, err := s.grantCollection.DeleteMany(ctx, filter); err != nil {
		utils.LogError("failed to clean grants for "+resourceID.Hex(), err)
	}
	if _, err := s.linkCollection.DeleteMany(ctx, filter); err != nil {
		utils.LogError("failed to clean links for "+resourceID.Hex(), err)
	}
}

// EmptyTrash purges everything identity has in the trash.
func (s *TrashService) EmptyTrash(ctx context.Context, identity string) error {
	cursor, err := s.folderCollection.Find(ctx, bson.M{
		"owner_email": identity,
		"is_deleted":  true,
	}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return apperrors.Internal("list trashed folders", err)
	}
	var folderIDs []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		folderIDs = append(folderIDs, doc.ID)
	}
	err = cursor.Err()
	cursor.Close(ctx)
	if err != nil {
		return apperrors.Internal("list trashed folders", err)
	}

	for _, id := range folderIDs {
		if err := s.purgeFolderTree(ctx, id); err != nil {
			utils.LogError("failed to purge folder "+id.Hex(), err)
		}
	}

	cursor, err = s.fileCollection.Find(ctx, bson.M{
		"owner_email": identity,
		"is_deleted":  true,
	})
	if err != nil {
		return apperrors.Internal("list trashed files", err)
	}
	for cursor.Next(ctx) {
		var file models.File
		if err := cursor.Decode(&file); err != nil {
			continue
		}
		s.purgeFileRow(ctx, &file)
	}
	err = cursor.Err()
	cursor.Close(ctx)
	if err != nil {
		return apperrors.Internal("list trashed files", err)
	}

	return nil
}

// PurgeExpired removes every trashed item across all owners whose restore
// window has lapsed. The cleanup job calls this on a schedule.
func (s *TrashService) PurgeExpired(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-models.RestoreWindow)
	purged := 0

	cursor, err := s.folderCollection.Find(ctx, bson.M{
		"is_deleted": true,
		"deleted_at": bson.M{"$lt": cutoff},
	}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, apperrors.Internal("list expired folders", err)
	}
	var folderIDs []primitive.ObjectID
	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		folderIDs = append(folderIDs, doc.ID)
	}
	err = cursor.Err()
	cursor.Close(ctx)
	if err != nil {
		return 0, apperrors.Internal("list expired folders", err)
	}

	for _, id := range folderIDs {
		if err := s.purgeFolderTree(ctx, id); err != nil {
			utils.LogError("failed to purge expired folder "+id.Hex(), err)
			continue
		}
		purged++
	}

	cursor, err = s.fileCollection.Find(ctx, bson.M{
		"is_deleted": true,
		"deleted_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return purged, apperrors.Internal("list expired files", err)
	}
	for cursor.Next(ctx) {
		var file models.File
		if err := cursor.Decode(&file); err != nil {
			continue
		}
		s.purgeFileRow(ctx, &file)
		purged++
	}
	err = cursor.Err()
	cursor.Close(ctx)
	if err != nil {
		return purged, apperrors.Internal("list expired files", err)
	}

	return purged, nil
}
