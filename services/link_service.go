package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
	"nimbusdrive/utils"
)

type LinkService struct {
	linkCollection    *mongo.Collection
	fileCollection    *mongo.Collection
	folderCollection  *mongo.Collection
	permissionService *PermissionService
}

func NewLinkService(db *mongo.Database, permissionService *PermissionService) *LinkService {
	return &LinkService{
		linkCollection:    db.Collection("links"),
		fileCollection:    db.Collection("files"),
		folderCollection:  db.Collection("folders"),
		permissionService: permissionService,
	}
}

// CreateLink issues a public link for a resource the caller owns. The token
// is unguessable; expiry and access caps are optional, but when present the
// expiry must be in the future and the cap positive.
func (s *LinkService) CreateLink(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID, roleName string, expiresAt *time.Time, maxAccesses *int64) (*models.PublicLink, error) {
	if !models.ValidResourceType(resourceType) {
		return nil, apperrors.InvalidArgumentf("unknown resource type %q", resourceType)
	}

	role, err := models.ParseRole(roleName)
	if err != nil {
		return nil, apperrors.InvalidArgumentf("role must be one of viewer, editor, admin")
	}
	if !role.Grantable() {
		return nil, apperrors.InvalidArgumentf("role %s cannot be attached to a link", role)
	}

	now := time.Now().UTC()
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, apperrors.InvalidArgumentf("expiry must be in the future")
	}
	if maxAccesses != nil && *maxAccesses < 1 {
		return nil, apperrors.InvalidArgumentf("access limit must be positive")
	}

	if err := s.permissionService.RequireRole(ctx, identity, resourceType, resourceID, models.RoleOwner); err != nil {
		return nil, err
	}

	token, err := utils.GenerateLinkToken()
	if err != nil {
		return nil, apperrors.Internal("generate link token", err)
	}

	link := models.PublicLink{
		ID:           primitive.NewObjectID(),
		Token:        token,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Role:         role.String(),
		ExpiresAt:    expiresAt,
		MaxAccesses:  maxAccesses,
		CreatedBy:    identity,
		CreatedAt:    now,
	}

	if _, err := s.linkCollection.InsertOne(ctx, link); err != nil {
		return nil, apperrors.Internal("insert link", err)
	}
	return &link, nil
}

// LinkAccess is what an anonymous visitor gets back for a valid token.
type LinkAccess struct {
	ResourceType string             `json:"resource_type"`
	ResourceID   primitive.ObjectID `json:"resource_id"`
	Name         string             `json:"name"`
	Role         string             `json:"role"`
	Size         int64              `json:"size,omitempty"`
	MimeType     string             `json:"mime_type,omitempty"`
	DownloadURL  string             `json:"download_url,omitempty"`
}

// ResolveLink redeems a token. Unknown tokens and tokens whose target has
// since been deleted answer NotFound; expired and exhausted tokens answer
// Gone. Counting the access is a guarded increment, so concurrent
// redemptions cannot push past the cap.
func (s *LinkService) ResolveLink(ctx context.Context, token string, blobStore BlobStore) (*LinkAccess, error) {
	if token == "" {
		return nil, apperrors.InvalidArgumentf("token is required")
	}

	var link models.PublicLink
	err := s.linkCollection.FindOne(ctx, bson.M{"token": token}).Decode(&link)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFoundf("link not found")
	}
	if err != nil {
		return nil, apperrors.Internal("fetch link", err)
	}

	now := time.Now().UTC()
	if link.Expired(now) {
		return nil, apperrors.Gonef("link has expired")
	}
	if link.Exhausted() {
		return nil, apperrors.Gonef("link access limit reached")
	}

	access := &LinkAccess{
		ResourceType: link.ResourceType,
		ResourceID:   link.ResourceID,
		Role:         link.Role,
	}

	switch link.ResourceType {
	case models.ResourceTypeFile:
		var file models.File
		err := s.fileCollection.FindOne(ctx, bson.M{
			"_id":        link.ResourceID,
			"is_deleted": false,
		}).Decode(&file)
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFoundf("linked resource no longer exists")
		}
		if err != nil {
			return nil, apperrors.Internal("fetch linked file", err)
		}
		access.Name = file.Name
		access.Size = file.Size
		access.MimeType = file.MimeType

		if blobStore != nil {
			url, err := blobStore.SignedURL(ctx, file.StorageKey, PreviewURLTTL)
			if err != nil {
				return nil, err
			}
			access.DownloadURL = url
		}
	case models.ResourceTypeFolder:
		var folder models.Folder
		err := s.folderCollection.FindOne(ctx, bson.M{
			"_id":        link.ResourceID,
			"is_deleted": false,
		}).Decode(&folder)
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFoundf("linked resource no longer exists")
		}
		if err != nil {
			return nil, apperrors.Internal("fetch linked folder", err)
		}
		access.Name = folder.Name
	default:
		return nil, apperrors.NotFoundf("linked resource no longer exists")
	}

	// The filter re-checks the cap so the increment and the check are one
	// atomic step; losing the race means the link just ran out.
	filter := bson.M{"_id": link.ID}
	if link.MaxAccesses != nil {
		filter["access_count"] = bson.M{"$lt": *link.MaxAccesses}
	}
	result, err := s.linkCollection.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"access_count": 1},
	})
	if err != nil {
		return nil, apperrors.Internal("count link access", err)
	}
	if result.ModifiedCount == 0 {
		return nil, apperrors.Gonef("link access limit reached")
	}

	return access, nil
}

// RevokeLink deletes a link. Only its creator may revoke it.
func (s *LinkService) RevokeLink(ctx context.Context, identity string, linkID primitive.ObjectID) error {
	result, err := s.linkCollection.DeleteOne(ctx, bson.M{
		"_id":        linkID,
		"created_by": identity,
	})
	if err != nil {
		return apperrors.Internal("revoke link", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFoundf("link not found")
	}
	return nil
}

// ListLinks returns the links on a resource the caller owns, newest first.
func (s *LinkService) ListLinks(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID) ([]models.PublicLink, error) {
	if !models.ValidResourceType(resourceType) {
		return nil, apperrors.InvalidArgumentf("unknown resource type %q", resourceType)
	}

	if err := s.permissionService.RequireRole(ctx, identity, resourceType, resourceID, models.RoleOwner); err != nil {
		return nil, err
	}

	cursor, err := s.linkCollection.Find(ctx, bson.M{
		"resource_type": resourceType,
		"resource_id":   resourceID,
	}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, apperrors.Internal("list links", err)
	}
	defer cursor.Close(ctx)

	var links []models.PublicLink
	if err := cursor.All(ctx, &links); err != nil {
		return nil, apperrors.Internal("decode links", err)
	}
	return links, nil
}
