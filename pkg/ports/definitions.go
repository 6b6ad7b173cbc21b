package ports

import (
	"context"

	"github.com/linksnip/linksnip/pkg/core/domain"
)

// AccountRepository defines storage operations for accounts. Lookups return
// (nil, nil) when no account matches.
type AccountRepository interface {
	// CreateAccount persists a new account, assigning its ID. Returns
	// domain.ErrConflict when the email is already taken (the store's
	// unique index is the final arbiter under concurrent signups).
	CreateAccount(ctx context.Context, acct *domain.Account) error
	AccountByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// LinkChanges is the set of fields a link edit may touch at the storage
// layer. Nil fields are not written.
type LinkChanges struct {
	ShortID *string
	Title   *string
	Tags    *[]string
}

// LinkRepository defines storage operations for short links. Lookups return
// (nil, nil) when no link matches.
type LinkRepository interface {
	// CreateLink persists a new link. Returns domain.ErrConflict when the
	// short identifier is already taken.
	CreateLink(ctx context.Context, link *domain.ShortLink) error
	LinkByShortID(ctx context.Context, shortID string) (*domain.ShortLink, error)
	// OwnedLink looks up a link by identifier and owner together, so an
	// ownership mismatch is indistinguishable from absence.
	OwnedLink(ctx context.Context, owner, shortID string) (*domain.ShortLink, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.ShortLink, error)
	// AppendVisit atomically appends one visit record to the link's history.
	AppendVisit(ctx context.Context, shortID string, visit domain.VisitRecord) error
	// ApplyChanges updates the owned link in place and returns the updated
	// document. Returns (nil, nil) when no owned link matches and
	// domain.ErrConflict when a changed short identifier is already taken.
	ApplyChanges(ctx context.Context, owner, shortID string, changes LinkChanges) (*domain.ShortLink, error)
	Dump(ctx context.Context) ([]domain.ShortLink, error) // For migration
}

// IdentityService registers accounts, verifies credentials and issues
// bearer tokens carrying the account identifier.
type IdentityService interface {
	Register(ctx context.Context, name, email, password string) error
	Authenticate(ctx context.Context, email, password string) (string, error)
	AuthenticateExternal(ctx context.Context, name, email string) (string, error)
	VerifyToken(token string) (string, error)
	VerifyTokenOptional(token string) *string
}

// LinkService defines the business logic operations of the link registry.
type LinkService interface {
	Shorten(ctx context.Context, destinationURL string, owner *string) (*domain.ShortLink, error)
	Resolve(ctx context.Context, shortID string, visit domain.VisitRecord) (string, error)
	ListOwned(ctx context.Context, owner string) ([]domain.ShortLink, error)
	GetOwned(ctx context.Context, owner, shortID string) (*domain.ShortLink, error)
	UpdateOwned(ctx context.Context, owner, shortID string, edit domain.LinkEdit) (*domain.ShortLink, error)
}
