package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linksnip/linksnip/pkg/core/domain"
	"github.com/linksnip/linksnip/pkg/ports"
)

func strPtr(s string) *string { return &s }

func TestAccountUniqueness(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	acct := &domain.Account{Name: "Ana", Email: "ana@x.com", CreatedAt: time.Now()}
	if err := repo.CreateAccount(ctx, acct); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if acct.ID == "" {
		t.Fatal("CreateAccount did not assign an id")
	}

	dup := &domain.Account{Name: "Other", Email: "ana@x.com"}
	if err := repo.CreateAccount(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate email: expected conflict, got %v", err)
	}

	found, err := repo.AccountByEmail(ctx, "ana@x.com")
	if err != nil || found == nil {
		t.Fatalf("AccountByEmail: %v, %v", found, err)
	}
	if found.ID != acct.ID {
		t.Errorf("found id %q, want %q", found.ID, acct.ID)
	}

	missing, err := repo.AccountByEmail(ctx, "nobody@x.com")
	if err != nil || missing != nil {
		t.Errorf("missing account should be (nil, nil), got %v, %v", missing, err)
	}
}

func TestLinkUniqueness(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	link := &domain.ShortLink{ShortID: "abc1234", RedirectURL: "https://example.com"}
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	err := repo.CreateLink(ctx, &domain.ShortLink{ShortID: "abc1234", RedirectURL: "https://other.com"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate short id: expected conflict, got %v", err)
	}
}

func TestStoredLinksAreIsolated(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	link := &domain.ShortLink{
		ShortID:      "abc1234",
		RedirectURL:  "https://example.com",
		CreatedBy:    strPtr("user-1"),
		VisitHistory: []domain.VisitRecord{},
		Tags:         []string{"a"},
	}
	if err := repo.CreateLink(ctx, link); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	// Mutating what callers hold must not reach the stored document.
	link.Tags[0] = "mutated"
	got, _ := repo.LinkByShortID(ctx, "abc1234")
	if got.Tags[0] != "a" {
		t.Errorf("stored link shares memory with the caller: tags = %v", got.Tags)
	}

	got.VisitHistory = append(got.VisitHistory, domain.VisitRecord{Timestamp: 1})
	again, _ := repo.LinkByShortID(ctx, "abc1234")
	if len(again.VisitHistory) != 0 {
		t.Errorf("returned link shares memory with the store: visits = %d", len(again.VisitHistory))
	}
}

func TestApplyChangesRekeysShortID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	owner := "user-1"
	if err := repo.CreateLink(ctx, &domain.ShortLink{ShortID: "old1234", CreatedBy: &owner}); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	updated, err := repo.ApplyChanges(ctx, owner, "old1234", ports.LinkChanges{ShortID: strPtr("newname")})
	if err != nil {
		t.Fatalf("ApplyChanges failed: %v", err)
	}
	if updated.ShortID != "newname" {
		t.Errorf("short id = %q", updated.ShortID)
	}

	if old, _ := repo.LinkByShortID(ctx, "old1234"); old != nil {
		t.Error("old short id still present after rename")
	}
	if renamed, _ := repo.LinkByShortID(ctx, "newname"); renamed == nil {
		t.Error("new short id not present after rename")
	}
}

func TestApplyChangesConflictLeavesLinkAlone(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	owner := "user-1"
	_ = repo.CreateLink(ctx, &domain.ShortLink{ShortID: "first12", CreatedBy: &owner})
	_ = repo.CreateLink(ctx, &domain.ShortLink{ShortID: "second2", CreatedBy: &owner})

	_, err := repo.ApplyChanges(ctx, owner, "second2", ports.LinkChanges{ShortID: strPtr("first12")})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if link, _ := repo.LinkByShortID(ctx, "second2"); link == nil {
		t.Error("losing link vanished after conflicting rename")
	}
}

func TestApplyChangesOwnershipScoped(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	owner := "user-1"
	_ = repo.CreateLink(ctx, &domain.ShortLink{ShortID: "abc1234", CreatedBy: &owner})

	updated, err := repo.ApplyChanges(ctx, "user-2", "abc1234", ports.LinkChanges{Title: strPtr("x")})
	if err != nil {
		t.Fatalf("ApplyChanges failed: %v", err)
	}
	if updated != nil {
		t.Error("foreign owner could apply changes")
	}

	anon := &domain.ShortLink{ShortID: "anon123"}
	_ = repo.CreateLink(ctx, anon)
	updated, err = repo.ApplyChanges(ctx, "user-1", "anon123", ports.LinkChanges{Title: strPtr("x")})
	if err != nil || updated != nil {
		t.Errorf("anonymous link should not be editable: %v, %v", updated, err)
	}
}

func TestListByOwnerNewestFirst(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	owner := "user-1"
	base := time.Now()
	for i, id := range []string{"link001", "link002", "link003"} {
		_ = repo.CreateLink(ctx, &domain.ShortLink{
			ShortID:   id,
			CreatedBy: &owner,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	links, err := repo.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("got %d links", len(links))
	}
	for i, want := range []string{"link003", "link002", "link001"} {
		if links[i].ShortID != want {
			t.Errorf("links[%d] = %q, want %q", i, links[i].ShortID, want)
		}
	}
}

func TestAppendVisit(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_ = repo.CreateLink(ctx, &domain.ShortLink{ShortID: "abc1234"})

	if err := repo.AppendVisit(ctx, "abc1234", domain.VisitRecord{Timestamp: 42}); err != nil {
		t.Fatalf("AppendVisit failed: %v", err)
	}
	link, _ := repo.LinkByShortID(ctx, "abc1234")
	if len(link.VisitHistory) != 1 || link.VisitHistory[0].Timestamp != 42 {
		t.Errorf("visit history = %+v", link.VisitHistory)
	}

	if err := repo.AppendVisit(ctx, "missing", domain.VisitRecord{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown short id: expected not-found, got %v", err)
	}
}
