package services

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nimbusdrive/models"
)

func trashedAt(itemType string, deletedAt time.Time) models.TrashItem {
	return models.TrashItem{
		ItemID:    primitive.NewObjectID(),
		ItemType:  itemType,
		DeletedAt: deletedAt,
	}
}

// Files and folders come out of separate collections; the merged listing
// must still be one descending timeline, not folders-then-files.
func TestOrderTrashInterleavesKinds(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	oldFolder := trashedAt(models.ResourceTypeFolder, base)
	newestFile := trashedAt(models.ResourceTypeFile, base.Add(3*time.Hour))
	midFolder := trashedAt(models.ResourceTypeFolder, base.Add(2*time.Hour))
	oldFile := trashedAt(models.ResourceTypeFile, base.Add(time.Hour))

	items := []models.TrashItem{oldFolder, midFolder, newestFile, oldFile}
	orderTrash(items)

	want := []primitive.ObjectID{newestFile.ItemID, midFolder.ItemID, oldFile.ItemID, oldFolder.ItemID}
	for i, id := range want {
		if items[i].ItemID != id {
			t.Fatalf("position %d = %s (%s), want %s", i, items[i].ItemID.Hex(), items[i].ItemType, id.Hex())
		}
	}
	for i := 1; i < len(items); i++ {
		if items[i].DeletedAt.After(items[i-1].DeletedAt) {
			t.Errorf("items[%d] deleted after items[%d]; listing not descending", i, i-1)
		}
	}
}

func TestPageTrash(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	items := make([]models.TrashItem, trashPageSize+10)
	for i := range items {
		items[i] = trashedAt(models.ResourceTypeFile, base.Add(time.Duration(i)*time.Minute))
	}

	first := pageTrash(items, 1)
	if len(first) != trashPageSize {
		t.Errorf("page 1 has %d items, want %d", len(first), trashPageSize)
	}
	if first[0].ItemID != items[0].ItemID {
		t.Errorf("page 1 does not start at the first item")
	}

	second := pageTrash(items, 2)
	if len(second) != 10 {
		t.Errorf("page 2 has %d items, want 10", len(second))
	}
	if second[0].ItemID != items[trashPageSize].ItemID {
		t.Errorf("page 2 does not continue where page 1 ended")
	}

	if got := pageTrash(items, 3); got != nil {
		t.Errorf("page past the end = %d items, want none", len(got))
	}
	if got := pageTrash(items, 0); len(got) != trashPageSize {
		t.Errorf("page 0 clamps to page 1, got %d items", len(got))
	}
}
