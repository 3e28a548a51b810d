package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublicLink is a bearer-token credential granting anonymous access to one
// resource at a fixed role, optionally bounded by expiry and an access quota.
type PublicLink struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token        string             `bson:"token" json:"token"`
	ResourceType string             `bson:"resource_type" json:"resource_type"`
	ResourceID   primitive.ObjectID `bson:"resource_id" json:"resource_id"`
	Role         string             `bson:"role" json:"role"`
	ExpiresAt    *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	MaxAccesses  *int64             `bson:"max_accesses,omitempty" json:"max_accesses,omitempty"`
	AccessCount  int64              `bson:"access_count" json:"access_count"`
	CreatedBy    string             `bson:"created_by" json:"created_by"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Expired reports whether the link's expiry has passed at now.
func (l *PublicLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// Exhausted reports whether the access quota has been used up.
func (l *PublicLink) Exhausted() bool {
	return l.MaxAccesses != nil && l.AccessCount >= *l.MaxAccesses
}
