package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type File struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	OriginalName string              `bson:"original_name" json:"original_name"`
	Size         int64               `bson:"size" json:"size"`
	MimeType     string              `bson:"mime_type" json:"mime_type"`
	Extension    string              `bson:"extension" json:"extension"`
	FolderID     *primitive.ObjectID `bson:"folder_id,omitempty" json:"folder_id,omitempty"`
	OwnerEmail   string              `bson:"owner_email" json:"owner_email"`
	StorageKey   string              `bson:"storage_key" json:"-"`
	SHA1Hash     string              `bson:"sha1_hash,omitempty" json:"sha1_hash,omitempty"`
	IsStarred    bool                `bson:"is_starred" json:"is_starred"`
	IsDeleted    bool                `bson:"is_deleted" json:"is_deleted"`
	DeletedAt    *time.Time          `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}
