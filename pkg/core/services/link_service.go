package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/linksnip/linksnip/pkg/core/domain"
	"github.com/linksnip/linksnip/pkg/ports"
)

// Short identifiers are drawn from the URL-safe base64 alphabet. At 7
// characters the space is 64^7, so random collisions stay negligible at the
// expected scale; the retry loop and the store's unique index cover the rest.
const (
	charset       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"
	shortIDLength = 7
	maxRetries    = 5
)

var backHalfStrip = regexp.MustCompile(`[^A-Za-z0-9_-]`)

type LinkService struct {
	repo ports.LinkRepository
}

func NewLinkService(repo ports.LinkRepository) *LinkService {
	return &LinkService{repo: repo}
}

// Shorten allocates a short identifier for destinationURL and persists the
// mapping with an empty visit history. owner is nil for anonymous creation.
func (s *LinkService) Shorten(ctx context.Context, destinationURL string, owner *string) (*domain.ShortLink, error) {
	if destinationURL == "" {
		return nil, fmt.Errorf("url is required: %w", domain.ErrValidation)
	}

	destinationURL = normalizeURL(destinationURL)

	for attempt := 0; attempt < maxRetries; attempt++ {
		code, err := generateShortID(shortIDLength)
		if err != nil {
			return nil, err
		}

		existing, err := s.repo.LinkByShortID(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		now := time.Now()
		link := &domain.ShortLink{
			ShortID:      code,
			RedirectURL:  destinationURL,
			CreatedBy:    owner,
			VisitHistory: []domain.VisitRecord{},
			Tags:         []string{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = s.repo.CreateLink(ctx, link)
		if errors.Is(err, domain.ErrConflict) {
			// Lost the race to a concurrent writer; the unique index is the
			// final arbiter, so treat it as a collision and regenerate.
			continue
		}
		if err != nil {
			return nil, err
		}
		return link, nil
	}

	return nil, fmt.Errorf("could not allocate a unique short id: %w", domain.ErrInternal)
}

// Resolve returns the destination URL for shortID and appends one visit
// record. Unknown identifiers fail without mutating anything.
func (s *LinkService) Resolve(ctx context.Context, shortID string, visit domain.VisitRecord) (string, error) {
	link, err := s.repo.LinkByShortID(ctx, shortID)
	if err != nil {
		return "", err
	}
	if link == nil {
		return "", fmt.Errorf("short url not found: %w", domain.ErrNotFound)
	}

	if visit.Timestamp == 0 {
		visit.Timestamp = time.Now().UnixMilli()
	}
	if err := s.repo.AppendVisit(ctx, link.ShortID, visit); err != nil {
		return "", err
	}

	return link.RedirectURL, nil
}

// ListOwned returns every link created by owner, newest first. Anonymous
// links and other owners' links are never included.
func (s *LinkService) ListOwned(ctx context.Context, owner string) ([]domain.ShortLink, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// GetOwned looks up one of owner's links. A link owned by someone else is
// reported as absent, so callers cannot probe which identifiers exist.
func (s *LinkService) GetOwned(ctx context.Context, owner, shortID string) (*domain.ShortLink, error) {
	link, err := s.repo.OwnedLink(ctx, owner, shortID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("link not found: %w", domain.ErrNotFound)
	}
	return link, nil
}

// UpdateOwned applies a partial edit to one of owner's links. Title and tags
// replace the stored values wholesale. A back-half request is sanitized to
// [A-Za-z0-9_-]; when the sanitized value is empty the request is silently
// ignored, otherwise the identifier is changed in place after a global
// uniqueness check (the old short URL goes dead, no aliasing).
func (s *LinkService) UpdateOwned(ctx context.Context, owner, shortID string, edit domain.LinkEdit) (*domain.ShortLink, error) {
	link, err := s.repo.OwnedLink(ctx, owner, shortID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, fmt.Errorf("link not found: %w", domain.ErrNotFound)
	}

	changes := ports.LinkChanges{
		Title: edit.Title,
		Tags:  edit.Tags,
	}

	if edit.BackHalf != nil && strings.TrimSpace(*edit.BackHalf) != "" {
		sanitized := backHalfStrip.ReplaceAllString(*edit.BackHalf, "")
		if sanitized != "" && sanitized != link.ShortID {
			taken, err := s.repo.LinkByShortID(ctx, sanitized)
			if err != nil {
				return nil, err
			}
			if taken != nil {
				return nil, fmt.Errorf("back-half already in use: %w", domain.ErrConflict)
			}
			changes.ShortID = &sanitized
		}
	}

	updated, err := s.repo.ApplyChanges(ctx, owner, shortID, changes)
	if errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("back-half already in use: %w", domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("link not found: %w", domain.ErrNotFound)
	}
	return updated, nil
}

// normalizeURL prepends https:// when no scheme prefix is present.
func normalizeURL(u string) string {
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return "https://" + u
	}
	return u
}

func generateShortID(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
