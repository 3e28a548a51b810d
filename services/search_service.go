package services

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
)

// escapeRegex neutralizes regex metacharacters so user input matches
// literally in $regex filters.
func escapeRegex(input string) string {
	return regexp.QuoteMeta(input)
}

type SearchService struct {
	fileCollection    *mongo.Collection
	folderCollection  *mongo.Collection
	permissionService *PermissionService
}

func NewSearchService(db *mongo.Database, permissionService *PermissionService) *SearchService {
	return &SearchService{
		fileCollection:    db.Collection("files"),
		folderCollection:  db.Collection("folders"),
		permissionService: permissionService,
	}
}

// SearchResults groups folder and file hits for one query.
type SearchResults struct {
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
	Total   int             `json:"total"`
}

// Search finds live folders and files whose name matches the query
// case-insensitively, scoped to what identity owns or has been granted.
// limit caps each kind separately.
func (s *SearchService) Search(ctx context.Context, identity, query string, skip, limit int64) (*SearchResults, error) {
	if query == "" {
		return nil, apperrors.InvalidArgumentf("search query is required")
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	if skip < 0 {
		skip = 0
	}

	pattern := primitive.Regex{Pattern: escapeRegex(query), Options: "i"}

	folders, err := s.searchFolders(ctx, identity, pattern, skip, limit)
	if err != nil {
		return nil, err
	}

	files, err := s.searchFiles(ctx, identity, pattern, skip, limit)
	if err != nil {
		return nil, err
	}

	return &SearchResults{
		Folders: folders,
		Files:   files,
		Total:   len(folders) + len(files),
	}, nil
}

func (s *SearchService) searchFolders(ctx context.Context, identity string, pattern primitive.Regex, skip, limit int64) ([]models.Folder, error) {
	grantedIDs, err := s.permissionService.GrantedFolderSubtreeIDs(ctx, identity, models.RoleViewer)
	if err != nil {
		return nil, err
	}

	cursor, err := s.folderCollection.Find(ctx, bson.M{
		"is_deleted": false,
		"name":       bson.M{"$regex": pattern},
		"$or": []bson.M{
			{"owner_email": identity},
			{"_id": bson.M{"$in": grantedIDs}},
		},
	}, options.Find().SetSort(bson.M{"name": 1}).SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, apperrors.Internal("search folders", err)
	}
	defer cursor.Close(ctx)

	var folders []models.Folder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, apperrors.Internal("decode folder results", err)
	}
	return folders, nil
}

func (s *SearchService) searchFiles(ctx context.Context, identity string, pattern primitive.Regex, skip, limit int64) ([]models.File, error) {
	grantedIDs, err := s.permissionService.GrantedIDs(ctx, identity, models.ResourceTypeFile, models.RoleViewer)
	if err != nil {
		return nil, err
	}
	grantedFolderIDs, err := s.permissionService.GrantedFolderSubtreeIDs(ctx, identity, models.RoleViewer)
	if err != nil {
		return nil, err
	}

	cursor, err := s.fileCollection.Find(ctx, bson.M{
		"is_deleted": false,
		"$and": []bson.M{
			{"$or": []bson.M{
				{"name": bson.M{"$regex": pattern}},
				{"original_name": bson.M{"$regex": pattern}},
			}},
			{"$or": []bson.M{
				{"owner_email": identity},
				{"_id": bson.M{"$in": grantedIDs}},
				{"folder_id": bson.M{"$in": grantedFolderIDs}},
			}},
		},
	}, options.Find().SetSort(bson.M{"name": 1}).SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, apperrors.Internal("search files", err)
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, apperrors.Internal("decode file results", err)
	}
	return files, nil
}
