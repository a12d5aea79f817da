package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/talentlane/marketplace_be/internal/models"
)

func wantLimitError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a rate limit error, got nil")
	}
	resp, ok := err.(*models.ErrorResponse)
	if !ok {
		t.Fatalf("expected *models.ErrorResponse, got %T: %v", err, err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
}

func TestGuardJobPostCap(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(NewMemoryCounter(), 5, 10, 24*time.Hour)

	for i := 0; i < 5; i++ {
		if err := g.CheckJobPost(ctx, "u1"); err != nil {
			t.Fatalf("post %d rejected: %v", i+1, err)
		}
		if err := g.RecordJobPost(ctx, "u1"); err != nil {
			t.Fatalf("RecordJobPost: %v", err)
		}
	}

	wantLimitError(t, g.CheckJobPost(ctx, "u1"))

	// Another user is unaffected.
	if err := g.CheckJobPost(ctx, "u2"); err != nil {
		t.Errorf("second user rejected: %v", err)
	}
}

func TestGuardProposalCap(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(NewMemoryCounter(), 5, 10, 24*time.Hour)

	for i := 0; i < 10; i++ {
		if err := g.CheckProposal(ctx, "u1"); err != nil {
			t.Fatalf("proposal %d rejected: %v", i+1, err)
		}
		if err := g.RecordProposal(ctx, "u1"); err != nil {
			t.Fatalf("RecordProposal: %v", err)
		}
	}

	wantLimitError(t, g.CheckProposal(ctx, "u1"))

	// The job cap is a separate counter.
	if err := g.CheckJobPost(ctx, "u1"); err != nil {
		t.Errorf("job posting blocked by the proposal counter: %v", err)
	}
}

func TestCounterKeysPerUser(t *testing.T) {
	if got := jobKey("abc"); got != "user_jobs_count_abc" {
		t.Errorf("jobKey = %q", got)
	}
	if got := proposalKey("abc"); got != "user_proposals_count_abc" {
		t.Errorf("proposalKey = %q", got)
	}
}

func TestMemoryCounterWindowExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCounter()

	if err := c.Incr(ctx, "k", 10*time.Millisecond); err != nil {
		t.Fatalf("Incr: %v", err)
	}
	if n, _ := c.Get(ctx, "k"); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	time.Sleep(20 * time.Millisecond)

	if n, _ := c.Get(ctx, "k"); n != 0 {
		t.Errorf("count = %d after expiry, want 0", n)
	}
}

func TestMemoryCounterZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCounter()

	for i := 0; i < 3; i++ {
		if err := c.Incr(ctx, "k", 0); err != nil {
			t.Fatalf("Incr: %v", err)
		}
	}
	if n, _ := c.Get(ctx, "k"); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestGuardZeroWindowIsLifetime(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(NewMemoryCounter(), 1, 1, 0)

	if err := g.RecordJobPost(ctx, "u1"); err != nil {
		t.Fatalf("RecordJobPost: %v", err)
	}
	wantLimitError(t, g.CheckJobPost(ctx, "u1"))
}
