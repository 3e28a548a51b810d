package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RestoreWindow is how long a soft-deleted resource stays restorable. The
// boundary is inclusive: a restore at exactly deleted_at + RestoreWindow
// succeeds.
const RestoreWindow = 30 * 24 * time.Hour

// TrashItem is the trash-view projection of a soft-deleted file or folder.
type TrashItem struct {
	ItemID      primitive.ObjectID `bson:"item_id" json:"item_id"`
	ItemType    string             `bson:"item_type" json:"item_type"`
	Name        string             `bson:"name" json:"name"`
	OwnerEmail  string             `bson:"owner_email" json:"owner_email"`
	Size        int64              `bson:"size" json:"size"`
	DeletedAt   time.Time          `bson:"deleted_at" json:"deleted_at"`
	AutoPurgeAt time.Time          `bson:"auto_purge_at" json:"auto_purge_at"`
}

// WithinRestoreWindow reports whether a resource deleted at deletedAt may
// still be restored at now.
func WithinRestoreWindow(deletedAt, now time.Time) bool {
	return !now.After(deletedAt.Add(RestoreWindow))
}
