package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
)

// mapLookup backs the tree-walk helpers with an in-memory folder set.
func mapLookup(folders map[primitive.ObjectID]*models.Folder) folderLookup {
	return func(_ context.Context, id primitive.ObjectID) (*models.Folder, error) {
		return folders[id], nil
	}
}

// chain builds root -> ... -> leaf and returns the folders in order.
func chain(names ...string) (map[primitive.ObjectID]*models.Folder, []*models.Folder) {
	byID := make(map[primitive.ObjectID]*models.Folder)
	ordered := make([]*models.Folder, 0, len(names))

	var parent *models.Folder
	for _, name := range names {
		folder := &models.Folder{
			ID:   primitive.NewObjectID(),
			Name: name,
		}
		if parent != nil {
			parentID := parent.ID
			folder.ParentID = &parentID
		}
		byID[folder.ID] = folder
		ordered = append(ordered, folder)
		parent = folder
	}
	return byID, ordered
}

func TestAncestryContains(t *testing.T) {
	byID, ordered := chain("root", "mid", "leaf")
	root, mid, leaf := ordered[0], ordered[1], ordered[2]
	lookup := mapLookup(byID)
	ctx := context.Background()

	tests := []struct {
		name   string
		target primitive.ObjectID
		start  *models.Folder
		want   bool
	}{
		{"root is leaf's ancestor", root.ID, leaf, true},
		{"mid is leaf's ancestor", mid.ID, leaf, true},
		{"start matches target", leaf.ID, leaf, true},
		{"leaf is not root's ancestor", leaf.ID, root, false},
		{"unrelated id", primitive.NewObjectID(), leaf, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ancestryContains(ctx, tt.target, tt.start, lookup)
			if err != nil {
				t.Fatalf("ancestryContains returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ancestryContains = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAncestryContainsStopsAtMissingParent(t *testing.T) {
	orphanParent := primitive.NewObjectID()
	orphan := &models.Folder{
		ID:       primitive.NewObjectID(),
		Name:     "orphan",
		ParentID: &orphanParent,
	}
	lookup := mapLookup(map[primitive.ObjectID]*models.Folder{orphan.ID: orphan})

	got, err := ancestryContains(context.Background(), primitive.NewObjectID(), orphan, lookup)
	if err != nil {
		t.Fatalf("ancestryContains returned error: %v", err)
	}
	if got {
		t.Error("walk past a missing parent should report false, not loop")
	}
}

func TestAncestryContainsDetectsCorruptedChain(t *testing.T) {
	// Two folders pointing at each other never reach a root.
	a := &models.Folder{ID: primitive.NewObjectID(), Name: "a"}
	b := &models.Folder{ID: primitive.NewObjectID(), Name: "b"}
	aID, bID := a.ID, b.ID
	a.ParentID = &bID
	b.ParentID = &aID
	lookup := mapLookup(map[primitive.ObjectID]*models.Folder{a.ID: a, b.ID: b})

	_, err := ancestryContains(context.Background(), primitive.NewObjectID(), a, lookup)
	if !errors.Is(err, apperrors.ErrInternal) {
		t.Errorf("cyclic chain should fail with ErrInternal, got %v", err)
	}
}

func TestBuildBreadcrumbs(t *testing.T) {
	byID, ordered := chain("root", "mid", "leaf")
	lookup := mapLookup(byID)

	crumbs, err := buildBreadcrumbs(context.Background(), ordered[2], lookup)
	if err != nil {
		t.Fatalf("buildBreadcrumbs returned error: %v", err)
	}

	want := []string{"root", "mid", "leaf"}
	if len(crumbs) != len(want) {
		t.Fatalf("got %d crumbs, want %d", len(crumbs), len(want))
	}
	for i, crumb := range crumbs {
		if crumb.Name != want[i] {
			t.Errorf("crumb[%d] = %q, want %q", i, crumb.Name, want[i])
		}
		if crumb.ID != ordered[i].ID {
			t.Errorf("crumb[%d] carries the wrong id", i)
		}
	}
}

func TestBuildBreadcrumbsSingleFolder(t *testing.T) {
	root := &models.Folder{ID: primitive.NewObjectID(), Name: "solo"}
	lookup := mapLookup(map[primitive.ObjectID]*models.Folder{root.ID: root})

	crumbs, err := buildBreadcrumbs(context.Background(), root, lookup)
	if err != nil {
		t.Fatalf("buildBreadcrumbs returned error: %v", err)
	}
	if len(crumbs) != 1 || crumbs[0].Name != "solo" {
		t.Errorf("got %v, want single crumb 'solo'", crumbs)
	}
}

func TestBuildBreadcrumbsCorruptedChain(t *testing.T) {
	a := &models.Folder{ID: primitive.NewObjectID(), Name: "a"}
	aID := a.ID
	a.ParentID = &aID // self-parent
	lookup := mapLookup(map[primitive.ObjectID]*models.Folder{a.ID: a})

	_, err := buildBreadcrumbs(context.Background(), a, lookup)
	if !errors.Is(err, apperrors.ErrInternal) {
		t.Errorf("self-parented folder should fail with ErrInternal, got %v", err)
	}
}
