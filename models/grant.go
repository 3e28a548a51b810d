package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ResourceTypeFile   = "file"
	ResourceTypeFolder = "folder"
)

// ValidResourceType reports whether t names one of the two resource kinds.
func ValidResourceType(t string) bool {
	return t == ResourceTypeFile || t == ResourceTypeFolder
}

// Grant links a non-owner identity to a resource at a role. At most one grant
// exists per (resource_type, resource_id, grantee_email); re-granting updates
// the row in place. The owner's access is implicit and never lives here.
type Grant struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ResourceType string             `bson:"resource_type" json:"resource_type"`
	ResourceID   primitive.ObjectID `bson:"resource_id" json:"resource_id"`
	GranteeEmail string             `bson:"grantee_email" json:"grantee_email"`
	Role         string             `bson:"role" json:"role"`
	GrantedBy    string             `bson:"granted_by" json:"granted_by"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
