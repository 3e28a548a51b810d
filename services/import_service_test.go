package services

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestImportNodesDepthBound(t *testing.T) {
	s := &ImportService{}
	result := &ImportResult{}

	nodes := []ImportNode{
		{Type: ImportNodeFolder, Name: "too-deep"},
		{Type: ImportNodeFile, Name: "lost.txt"},
	}

	s.importNodes(context.Background(), "alice@example.com", primitive.NewObjectID(), nodes, nil, maxImportDepth+1, result)

	if result.CreatedFolders != 0 || result.CreatedFiles != 0 {
		t.Errorf("nothing should be created past the depth bound, got %d folders %d files", result.CreatedFolders, result.CreatedFiles)
	}
	if len(result.Skipped) != len(nodes) {
		t.Fatalf("all %d nodes should be skipped, got %d", len(nodes), len(result.Skipped))
	}
	for _, skipped := range result.Skipped {
		if !strings.Contains(skipped.Reason, "too deep") {
			t.Errorf("skip reason %q should mention the depth bound", skipped.Reason)
		}
	}
}

func TestImportNodesUnknownType(t *testing.T) {
	s := &ImportService{}
	result := &ImportResult{}

	s.importNodes(context.Background(), "alice@example.com", primitive.NewObjectID(), []ImportNode{
		{Type: "symlink", Name: "shortcut"},
	}, nil, 1, result)

	if len(result.Skipped) != 1 {
		t.Fatalf("unknown node type should be skipped, got %v", result.Skipped)
	}
	if !strings.Contains(result.Skipped[0].Reason, "unknown node type") {
		t.Errorf("skip reason %q should name the unknown type", result.Skipped[0].Reason)
	}
}
