package models

import (
	"testing"
	"time"
)

func TestLinkExpired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	noExpiry := PublicLink{}
	if noExpiry.Expired(now) {
		t.Error("link without expiry should never expire")
	}

	live := PublicLink{ExpiresAt: &future}
	if live.Expired(now) {
		t.Error("link expiring in the future should not be expired")
	}

	dead := PublicLink{ExpiresAt: &past}
	if !dead.Expired(now) {
		t.Error("link with a past expiry should be expired")
	}

	// Exactly at the boundary the link is still usable.
	boundary := PublicLink{ExpiresAt: &now}
	if boundary.Expired(now) {
		t.Error("link at its exact expiry instant should still be usable")
	}
}

func TestLinkExhausted(t *testing.T) {
	limit := int64(3)

	unlimited := PublicLink{AccessCount: 1000000}
	if unlimited.Exhausted() {
		t.Error("link without a cap should never exhaust")
	}

	fresh := PublicLink{MaxAccesses: &limit, AccessCount: 2}
	if fresh.Exhausted() {
		t.Error("link below its cap should not be exhausted")
	}

	spent := PublicLink{MaxAccesses: &limit, AccessCount: 3}
	if !spent.Exhausted() {
		t.Error("link at its cap should be exhausted")
	}
}
