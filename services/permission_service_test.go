package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
)

// mapGrants backs inheritedRole with an in-memory grant table for one grantee.
func mapGrants(grants map[primitive.ObjectID]models.Role) grantRoleLookup {
	return func(_ context.Context, folderID primitive.ObjectID) (models.Role, error) {
		return grants[folderID], nil
	}
}

func TestInheritedRoleFromSharedFolder(t *testing.T) {
	// Owner shares "docs" with an editor; everything beneath it, however
	// deep, resolves to editor for that grantee.
	byID, ordered := chain("docs", "reports", "2026")
	docs := ordered[0]
	for _, folder := range ordered {
		folder.OwnerEmail = "owner@example.com"
	}
	lookup := mapLookup(byID)
	grants := mapGrants(map[primitive.ObjectID]models.Role{
		docs.ID: models.RoleEditor,
	})
	ctx := context.Background()

	for _, folder := range ordered {
		start := folder.ID
		role, err := inheritedRole(ctx, "grantee@example.com", &start, lookup, grants)
		if err != nil {
			t.Fatalf("inheritedRole(%s) returned error: %v", folder.Name, err)
		}
		if role != models.RoleEditor {
			t.Errorf("inheritedRole(%s) = %v, want %v", folder.Name, role, models.RoleEditor)
		}
		if !role.Satisfies(models.RoleEditor) {
			t.Errorf("inherited %v should satisfy %v", role, models.RoleEditor)
		}
		if role.Satisfies(models.RoleOwner) {
			t.Errorf("inherited %v must not satisfy %v", role, models.RoleOwner)
		}
	}
}

func TestInheritedRoleNearestGrantWins(t *testing.T) {
	byID, ordered := chain("docs", "reports")
	docs, reports := ordered[0], ordered[1]
	lookup := mapLookup(byID)
	grants := mapGrants(map[primitive.ObjectID]models.Role{
		docs.ID:    models.RoleViewer,
		reports.ID: models.RoleEditor,
	})

	start := reports.ID
	role, err := inheritedRole(context.Background(), "grantee@example.com", &start, lookup, grants)
	if err != nil {
		t.Fatalf("inheritedRole returned error: %v", err)
	}
	if role != models.RoleEditor {
		t.Errorf("inheritedRole = %v, want nearest grant %v", role, models.RoleEditor)
	}
}

func TestInheritedRoleOwnerOfAncestor(t *testing.T) {
	byID, ordered := chain("docs", "reports")
	docs, reports := ordered[0], ordered[1]
	docs.OwnerEmail = "alice@example.com"
	reports.OwnerEmail = "bob@example.com"
	lookup := mapLookup(byID)

	start := reports.ID
	role, err := inheritedRole(context.Background(), "alice@example.com", &start, lookup, mapGrants(nil))
	if err != nil {
		t.Fatalf("inheritedRole returned error: %v", err)
	}
	if role != models.RoleOwner {
		t.Errorf("inheritedRole = %v, want %v for ancestor owner", role, models.RoleOwner)
	}
}

func TestInheritedRoleNoGrantAnywhere(t *testing.T) {
	byID, ordered := chain("docs", "reports", "2026")
	leaf := ordered[2]
	start := leaf.ID

	role, err := inheritedRole(context.Background(), "stranger@example.com", &start, mapLookup(byID), mapGrants(nil))
	if err != nil {
		t.Fatalf("inheritedRole returned error: %v", err)
	}
	if role != models.RoleNone {
		t.Errorf("inheritedRole = %v, want %v", role, models.RoleNone)
	}
}

func TestInheritedRoleNilStart(t *testing.T) {
	role, err := inheritedRole(context.Background(), "anyone@example.com", nil, mapLookup(nil), mapGrants(nil))
	if err != nil {
		t.Fatalf("inheritedRole returned error: %v", err)
	}
	if role != models.RoleNone {
		t.Errorf("inheritedRole = %v, want %v for a root resource", role, models.RoleNone)
	}
}

func TestInheritedRoleStopsAtMissingFolder(t *testing.T) {
	missing := primitive.NewObjectID()
	role, err := inheritedRole(context.Background(), "anyone@example.com", &missing, mapLookup(nil), mapGrants(nil))
	if err != nil {
		t.Fatalf("inheritedRole returned error: %v", err)
	}
	if role != models.RoleNone {
		t.Errorf("inheritedRole = %v, want %v when the chain dead-ends", role, models.RoleNone)
	}
}

func TestInheritedRoleFailsOnCyclicChain(t *testing.T) {
	a := &models.Folder{ID: primitive.NewObjectID(), Name: "a"}
	b := &models.Folder{ID: primitive.NewObjectID(), Name: "b"}
	a.ParentID = &b.ID
	b.ParentID = &a.ID
	byID := map[primitive.ObjectID]*models.Folder{a.ID: a, b.ID: b}

	start := a.ID
	_, err := inheritedRole(context.Background(), "anyone@example.com", &start, mapLookup(byID), mapGrants(nil))
	if !errors.Is(err, apperrors.ErrInternal) {
		t.Fatalf("inheritedRole on cyclic chain = %v, want ErrInternal", err)
	}
}
