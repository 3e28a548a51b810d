package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nimbusdrive/apperrors"
	"nimbusdrive/models"
)

// Input validation runs before any storage access, so a zero service is
// enough to exercise the rejection paths.
func TestCreateLinkRejectsBadInput(t *testing.T) {
	s := &LinkService{}
	ctx := context.Background()
	resourceID := primitive.NewObjectID()
	past := time.Now().UTC().Add(-time.Hour)
	zero := int64(0)

	tests := []struct {
		name         string
		resourceType string
		role         string
		expiresAt    *time.Time
		maxAccesses  *int64
	}{
		{"unknown role", models.ResourceTypeFile, "superuser", nil, nil},
		{"owner role not grantable", models.ResourceTypeFile, "owner", nil, nil},
		{"unknown resource type", "document", "viewer", nil, nil},
		{"expiry in the past", models.ResourceTypeFile, "viewer", &past, nil},
		{"non-positive access limit", models.ResourceTypeFolder, "editor", nil, &zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateLink(ctx, "owner@example.com", tt.resourceType, resourceID, tt.role, tt.expiresAt, tt.maxAccesses)
			if !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Fatalf("CreateLink = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestResolveLinkRequiresToken(t *testing.T) {
	s := &LinkService{}
	_, err := s.ResolveLink(context.Background(), "", nil)
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("ResolveLink(\"\") = %v, want ErrInvalidArgument", err)
	}
}
