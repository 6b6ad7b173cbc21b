// Package memory is a map-backed implementation of the repository ports.
// It mirrors the mongo adapter's semantics (unique email and shortId,
// single-document updates) and backs the test suites and local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/linksnip/linksnip/pkg/core/domain"
	"github.com/linksnip/linksnip/pkg/ports"
)

type Repository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account // keyed by account ID
	emails   map[string]string          // email -> account ID
	links    map[string]*domain.ShortLink
}

func NewRepository() *Repository {
	return &Repository{
		accounts: make(map[string]*domain.Account),
		emails:   make(map[string]string),
		links:    make(map[string]*domain.ShortLink),
	}
}

func (r *Repository) CreateAccount(ctx context.Context, acct *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.emails[acct.Email]; taken {
		return fmt.Errorf("email %q: %w", acct.Email, domain.ErrConflict)
	}

	if acct.ID == "" {
		acct.ID = shortuuid.New()
	}
	stored := *acct
	r.accounts[acct.ID] = &stored
	r.emails[acct.Email] = acct.ID
	return nil
}

func (r *Repository) AccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, nil
	}
	acct := *r.accounts[id]
	return &acct, nil
}

func (r *Repository) CreateLink(ctx context.Context, link *domain.ShortLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.links[link.ShortID]; taken {
		return fmt.Errorf("short id %q: %w", link.ShortID, domain.ErrConflict)
	}

	r.links[link.ShortID] = copyLink(link)
	return nil
}

func (r *Repository) LinkByShortID(ctx context.Context, shortID string) (*domain.ShortLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[shortID]
	if !ok {
		return nil, nil
	}
	return copyLink(link), nil
}

func (r *Repository) OwnedLink(ctx context.Context, owner, shortID string) (*domain.ShortLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[shortID]
	if !ok || link.CreatedBy == nil || *link.CreatedBy != owner {
		return nil, nil
	}
	return copyLink(link), nil
}

func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]domain.ShortLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := []domain.ShortLink{}
	for _, link := range r.links {
		if link.CreatedBy != nil && *link.CreatedBy == owner {
			links = append(links, *copyLink(link))
		}
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (r *Repository) AppendVisit(ctx context.Context, shortID string, visit domain.VisitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[shortID]
	if !ok {
		return fmt.Errorf("short id %q: %w", shortID, domain.ErrNotFound)
	}
	link.VisitHistory = append(link.VisitHistory, visit)
	return nil
}

func (r *Repository) ApplyChanges(ctx context.Context, owner, shortID string, changes ports.LinkChanges) (*domain.ShortLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[shortID]
	if !ok || link.CreatedBy == nil || *link.CreatedBy != owner {
		return nil, nil
	}

	if changes.ShortID != nil && *changes.ShortID != shortID {
		if _, taken := r.links[*changes.ShortID]; taken {
			return nil, fmt.Errorf("short id %q: %w", *changes.ShortID, domain.ErrConflict)
		}
		delete(r.links, shortID)
		link.ShortID = *changes.ShortID
		r.links[link.ShortID] = link
	}
	if changes.Title != nil {
		link.Title = *changes.Title
	}
	if changes.Tags != nil {
		link.Tags = append([]string{}, (*changes.Tags)...)
	}
	link.UpdatedAt = time.Now()

	return copyLink(link), nil
}

func (r *Repository) Dump(ctx context.Context) ([]domain.ShortLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make([]domain.ShortLink, 0, len(r.links))
	for _, link := range r.links {
		links = append(links, *copyLink(link))
	}
	return links, nil
}

func copyLink(link *domain.ShortLink) *domain.ShortLink {
	out := *link
	out.VisitHistory = append([]domain.VisitRecord{}, link.VisitHistory...)
	out.Tags = append([]string{}, link.Tags...)
	if link.CreatedBy != nil {
		owner := *link.CreatedBy
		out.CreatedBy = &owner
	}
	return &out
}
