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

// PermissionService resolves effective roles from ownership and explicit
// grants. It is stateless and read-only except for grant management; every
// role comparison goes through models.Role.Satisfies.
type PermissionService struct {
	fileCollection   *mongo.Collection
	folderCollection *mongo.Collection
	grantCollection  *mongo.Collection
}

func NewPermissionService(db *mongo.Database) *PermissionService {
	return &PermissionService{
		fileCollection:   db.Collection("files"),
		folderCollection: db.Collection("folders"),
		grantCollection:  db.Collection("grants"),
	}
}

// ownerDoc is the minimal projection used for role resolution. ParentID is
// populated for folders, FolderID for files; either gives the containing
// folder that inherited grants flow down from.
type ownerDoc struct {
	ID         primitive.ObjectID  `bson:"_id"`
	OwnerEmail string              `bson:"owner_email"`
	ParentID   *primitive.ObjectID `bson:"parent_id,omitempty"`
	FolderID   *primitive.ObjectID `bson:"folder_id,omitempty"`
}

func (s *PermissionService) resourceCollection(resourceType string) *mongo.Collection {
	if resourceType == models.ResourceTypeFolder {
		return s.folderCollection
	}
	return s.fileCollection
}

// fetchLiveOwner returns the owner projection of a live resource, or nil when
// the resource is absent or soft-deleted.
func (s *PermissionService) fetchLiveOwner(ctx context.Context, resourceType string, resourceID primitive.ObjectID) (*ownerDoc, error) {
	var doc ownerDoc
	err := s.resourceCollection(resourceType).FindOne(ctx, bson.M{
		"_id":        resourceID,
		"is_deleted": false,
	}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal("fetch resource", err)
	}
	return &doc, nil
}

// grantRoleLookup fetches the role identity holds by direct grant on one
// folder, RoleNone when no grant exists.
type grantRoleLookup func(ctx context.Context, folderID primitive.ObjectID) (models.Role, error)

// inheritedRole walks containing folders from start toward the root and
// returns the first role found on the way up: Owner when the caller owns an
// ancestor folder, otherwise the nearest folder grant's role. Sharing a
// folder thereby shares everything beneath it. The walk is depth-bounded
// like every other ancestry walk.
func inheritedRole(ctx context.Context, identity string, start *primitive.ObjectID, lookup folderLookup, grantRole grantRoleLookup) (models.Role, error) {
	current := start
	for depth := 0; current != nil; depth++ {
		if depth > maxTreeDepth {
			return models.RoleNone, apperrors.Internal("walk folder ancestry", errAncestryTooDeep)
		}
		folder, err := lookup(ctx, *current)
		if err != nil {
			return models.RoleNone, err
		}
		if folder == nil {
			return models.RoleNone, nil
		}
		if folder.OwnerEmail == identity {
			return models.RoleOwner, nil
		}
		role, err := grantRole(ctx, folder.ID)
		if err != nil {
			return models.RoleNone, err
		}
		if role != models.RoleNone {
			return role, nil
		}
		current = folder.ParentID
	}
	return models.RoleNone, nil
}

// ResolveRole computes the effective role of identity on a resource: Owner
// for the creator, the grant's role for a grantee, and failing both, the role
// inherited from the nearest containing folder the caller owns or was granted.
// A missing or deleted resource resolves to RoleNone, never an error.
func (s *PermissionService) ResolveRole(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID) (models.Role, error) {
	if !models.ValidResourceType(resourceType) {
		return models.RoleNone, apperrors.InvalidArgumentf("unknown resource type %q", resourceType)
	}

	doc, err := s.fetchLiveOwner(ctx, resourceType, resourceID)
	if err != nil {
		return models.RoleNone, err
	}
	if doc == nil {
		return models.RoleNone, nil
	}

	if doc.OwnerEmail == identity {
		return models.RoleOwner, nil
	}

	role, err := s.directGrantRole(ctx, identity, resourceType, resourceID)
	if err != nil {
		return models.RoleNone, err
	}
	if role != models.RoleNone {
		return role, nil
	}

	start := doc.ParentID
	if resourceType == models.ResourceTypeFile {
		start = doc.FolderID
	}
	return inheritedRole(ctx, identity, start, s.liveFolder, func(ctx context.Context, folderID primitive.ObjectID) (models.Role, error) {
		return s.directGrantRole(ctx, identity, models.ResourceTypeFolder, folderID)
	})
}

func (s *PermissionService) directGrantRole(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID) (models.Role, error) {
	var grant models.Grant
	err := s.grantCollection.FindOne(ctx, bson.M{
		"resource_type": resourceType,
		"resource_id":   resourceID,
		"grantee_email": identity,
	}).Decode(&grant)
	if err == mongo.ErrNoDocuments {
		return models.RoleNone, nil
	}
	if err != nil {
		return models.RoleNone, apperrors.Internal("fetch grant", err)
	}

	role, perr := models.ParseRole(grant.Role)
	if perr != nil {
		return models.RoleNone, nil
	}
	return role, nil
}

// liveFolder is the database-backed folderLookup for ancestry walks.
func (s *PermissionService) liveFolder(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
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

// Authorize reports whether identity holds at least required on the resource.
func (s *PermissionService) Authorize(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID, required models.Role) (bool, error) {
	role, err := s.ResolveRole(ctx, identity, resourceType, resourceID)
	if err != nil {
		return false, err
	}
	return role.Satisfies(required), nil
}

// RequireRole enforces required and encodes the existence-hiding policy:
// callers with no role at all get NotFound, callers with an insufficient role
// get Forbidden.
func (s *PermissionService) RequireRole(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID, required models.Role) error {
	role, err := s.ResolveRole(ctx, identity, resourceType, resourceID)
	if err != nil {
		return err
	}
	if role == models.RoleNone {
		return apperrors.NotFoundf("%s not found", resourceType)
	}
	if !role.Satisfies(required) {
		return apperrors.Forbiddenf("operation requires %s access", required)
	}
	return nil
}

// GrantedIDs returns the ids of resources of the given type that identity can
// reach through grants at or above required. One grant-table scan, no
// per-resource resolution.
func (s *PermissionService) GrantedIDs(ctx context.Context, identity, resourceType string, required models.Role) ([]primitive.ObjectID, error) {
	cursor, err := s.grantCollection.Find(ctx, bson.M{
		"resource_type": resourceType,
		"grantee_email": identity,
		"role":          bson.M{"$in": models.RolesAtOrAbove(required)},
	})
	if err != nil {
		return nil, apperrors.Internal("scan grants", err)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var grant models.Grant
		if err := cursor.Decode(&grant); err != nil {
			continue
		}
		ids = append(ids, grant.ResourceID)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Internal("scan grants", err)
	}
	return ids, nil
}

// GrantedFolderSubtreeIDs expands identity's folder grants at or above
// required into every live folder they reach: the granted folders plus their
// descendants, since folder grants carry down the tree. One grant scan plus
// a level-by-level subtree expansion, no per-resource resolution.
func (s *PermissionService) GrantedFolderSubtreeIDs(ctx context.Context, identity string, required models.Role) ([]primitive.ObjectID, error) {
	roots, err := s.GrantedIDs(ctx, identity, models.ResourceTypeFolder, required)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, nil
	}

	seen := make(map[primitive.ObjectID]struct{}, len(roots))
	var all, frontier []primitive.ObjectID
	for _, id := range roots {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		all = append(all, id)
		frontier = append(frontier, id)
	}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth > maxTreeDepth {
			return nil, apperrors.Internal("expand folder grants", errAncestryTooDeep)
		}

		cursor, err := s.folderCollection.Find(ctx, bson.M{
			"parent_id":  bson.M{"$in": frontier},
			"is_deleted": false,
		}, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, apperrors.Internal("expand folder grants", err)
		}

		var next []primitive.ObjectID
		for cursor.Next(ctx) {
			var doc struct {
				ID primitive.ObjectID `bson:"_id"`
			}
			if err := cursor.Decode(&doc); err != nil {
				continue
			}
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			all = append(all, doc.ID)
			next = append(next, doc.ID)
		}
		err = cursor.Err()
		cursor.Close(ctx)
		if err != nil {
			return nil, apperrors.Internal("expand folder grants", err)
		}
		frontier = next
	}

	return all, nil
}

// PermittedIDs returns the union of resources identity owns and resources
// granted at or above required: one ownership scan plus one grant scan.
func (s *PermissionService) PermittedIDs(ctx context.Context, identity, resourceType string, required models.Role) ([]primitive.ObjectID, error) {
	if !models.ValidResourceType(resourceType) {
		return nil, apperrors.InvalidArgumentf("unknown resource type %q", resourceType)
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID

	cursor, err := s.resourceCollection(resourceType).Find(ctx, bson.M{
		"owner_email": identity,
		"is_deleted":  false,
	}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, apperrors.Internal("scan owned resources", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc ownerDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		if _, ok := seen[doc.ID]; !ok {
			seen[doc.ID] = struct{}{}
			ids = append(ids, doc.ID)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Internal("scan owned resources", err)
	}

	granted, err := s.GrantedIDs(ctx, identity, resourceType, required)
	if err != nil {
		return nil, err
	}
	for _, id := range granted {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// Grant shares a resource with granteeEmail at the given role. Only the owner
// may grant. The write is a single atomic upsert keyed on the grant's unique
// triple, so concurrent sharing calls cannot produce duplicate rows.
func (s *PermissionService) Grant(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID, granteeEmail, roleName string) (*models.Grant, error) {
	if !models.ValidResourceType(resourceType) {
		return nil, apperrors.InvalidArgumentf("unknown resource type %q", resourceType)
	}

	role, err := models.ParseRole(roleName)
	if err != nil || !role.Grantable() {
		return nil, apperrors.InvalidArgumentf("role must be one of viewer, editor, admin")
	}

	if err := utils.ValidateEmail(granteeEmail); err != nil {
		return nil, err
	}

	if granteeEmail == identity {
		return nil, apperrors.InvalidArgumentf("cannot share a resource with yourself")
	}

	if err := s.RequireRole(ctx, identity, resourceType, resourceID, models.RoleOwner); err != nil {
		return nil, err
	}

	doc, err := s.fetchLiveOwner(ctx, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NotFoundf("%s not found", resourceType)
	}
	if doc.OwnerEmail == granteeEmail {
		return nil, apperrors.InvalidArgumentf("cannot grant a role to the owner")
	}

	now := time.Now().UTC()
	filter := bson.M{
		"resource_type": resourceType,
		"resource_id":   resourceID,
		"grantee_email": granteeEmail,
	}
	update := bson.M{
		"$set": bson.M{
			"role":       role.String(),
			"granted_by": identity,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	if _, err := s.grantCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return nil, apperrors.Internal("upsert grant", err)
	}

	var grant models.Grant
	if err := s.grantCollection.FindOne(ctx, filter).Decode(&grant); err != nil {
		return nil, apperrors.Internal("fetch grant", err)
	}
	return &grant, nil
}

// Revoke removes a grant outright. Only the resource owner may revoke.
func (s *PermissionService) Revoke(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID, granteeEmail string) error {
	if !models.ValidResourceType(resourceType) {
		return apperrors.InvalidArgumentf("unknown resource type %q", resourceType)
	}

	if err := s.RequireRole(ctx, identity, resourceType, resourceID, models.RoleOwner); err != nil {
		return err
	}

	result, err := s.grantCollection.DeleteOne(ctx, bson.M{
		"resource_type": resourceType,
		"resource_id":   resourceID,
		"grantee_email": granteeEmail,
	})
	if err != nil {
		return apperrors.Internal("delete grant", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFoundf("grant not found")
	}
	return nil
}

// ListGrants returns all grants on a resource, newest first. Owner only.
func (s *PermissionService) ListGrants(ctx context.Context, identity, resourceType string, resourceID primitive.ObjectID) ([]models.Grant, error) {
	if !models.ValidResourceType(resourceType) {
		return nil, apperrors.InvalidArgumentf("unknown resource type %q", resourceType)
	}

	if err := s.RequireRole(ctx, identity, resourceType, resourceID, models.RoleOwner); err != nil {
		return nil, err
	}

	cursor, err := s.grantCollection.Find(ctx, bson.M{
		"resource_type": resourceType,
		"resource_id":   resourceID,
	}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, apperrors.Internal("list grants", err)
	}
	defer cursor.Close(ctx)

	var grants []models.Grant
	if err := cursor.All(ctx, &grants); err != nil {
		return nil, apperrors.Internal("decode grants", err)
	}
	return grants, nil
}

// SharedResource is one entry of a shared-with-me listing.
type SharedResource struct {
	ResourceType string             `json:"resource_type"`
	Role         string             `json:"role"`
	SharedBy     string             `json:"shared_by"`
	SharedAt     time.Time          `json:"shared_at"`
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	Size         int64              `json:"size,omitempty"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ListSharedWithMe returns the live resources other users granted to
// identity, newest grant first. An optional resourceType narrows the kinds.
func (s *PermissionService) ListSharedWithMe(ctx context.Context, identity, resourceType string) ([]SharedResource, error) {
	filter := bson.M{"grantee_email": identity}
	if resourceType != "" {
		if !models.ValidResourceType(resourceType) {
			return nil, apperrors.InvalidArgumentf("unknown resource type %q", resourceType)
		}
		filter["resource_type"] = resourceType
	}

	cursor, err := s.grantCollection.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, apperrors.Internal("list shared grants", err)
	}
	defer cursor.Close(ctx)

	var shared []SharedResource
	for cursor.Next(ctx) {
		var grant models.Grant
		if err := cursor.Decode(&grant); err != nil {
			continue
		}

		entry := SharedResource{
			ResourceType: grant.ResourceType,
			Role:         grant.Role,
			SharedBy:     grant.GrantedBy,
			SharedAt:     grant.CreatedAt,
			ID:           grant.ResourceID,
		}

		// Skip grants whose target has since been deleted.
		if grant.ResourceType == models.ResourceTypeFolder {
			var folder models.Folder
			if err := s.folderCollection.FindOne(ctx, bson.M{"_id": grant.ResourceID, "is_deleted": false}).Decode(&folder); err != nil {
				continue
			}
			entry.Name = folder.Name
			entry.UpdatedAt = folder.UpdatedAt
		} else {
			var file models.File
			if err := s.fileCollection.FindOne(ctx, bson.M{"_id": grant.ResourceID, "is_deleted": false}).Decode(&file); err != nil {
				continue
			}
			entry.Name = file.Name
			entry.Size = file.Size
			entry.UpdatedAt = file.UpdatedAt
		}

		shared = append(shared, entry)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Internal("list shared grants", err)
	}
	return shared, nil
}
