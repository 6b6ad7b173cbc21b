// Package mongo implements the repository ports on a MongoDB document
// store via qmgo. Unique indexes on account email and link shortId are the
// final arbiter for the uniqueness invariants; visit records are appended
// with $push so concurrent redirects never clobber each other.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/qiniu/qmgo"
	qmgoopts "github.com/qiniu/qmgo/options"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	officialopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linksnip/linksnip/pkg/core/domain"
	"github.com/linksnip/linksnip/pkg/ports"
)

const (
	accountsCollection = "accounts"
	linksCollection    = "links"
)

type Repository struct {
	client   *qmgo.Client
	accounts *qmgo.Collection
	links    *qmgo.Collection
}

// NewRepository connects to the document store and ensures the unique
// indexes the core invariants rely on.
func NewRepository(ctx context.Context, uri, database string) (*Repository, error) {
	client, err := qmgo.NewClient(ctx, &qmgo.Config{Uri: uri})
	if err != nil {
		return nil, err
	}

	db := client.Database(database)
	r := &Repository{
		client:   client,
		accounts: db.Collection(accountsCollection),
		links:    db.Collection(linksCollection),
	}

	if err := r.accounts.CreateOneIndex(ctx, qmgoopts.IndexModel{
		Key:          []string{"email"},
		IndexOptions: officialopts.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}
	if err := r.links.CreateOneIndex(ctx, qmgoopts.IndexModel{
		Key:          []string{"shortId"},
		IndexOptions: officialopts.Index().SetUnique(true),
	}); err != nil {
		return nil, err
	}
	if err := r.links.CreateOneIndex(ctx, qmgoopts.IndexModel{
		Key: []string{"createdBy"},
	}); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close(ctx)
}

func (r *Repository) CreateAccount(ctx context.Context, acct *domain.Account) error {
	if acct.ID == "" {
		acct.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.accounts.InsertOne(ctx, acct)
	if qmgo.IsDup(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *Repository) AccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acct domain.Account
	err := r.accounts.Find(ctx, bson.M{"email": email}).One(&acct)
	if errors.Is(err, qmgo.ErrNoSuchDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *Repository) CreateLink(ctx context.Context, link *domain.ShortLink) error {
	_, err := r.links.InsertOne(ctx, link)
	if qmgo.IsDup(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *Repository) LinkByShortID(ctx context.Context, shortID string) (*domain.ShortLink, error) {
	return r.findOne(ctx, bson.M{"shortId": shortID})
}

func (r *Repository) OwnedLink(ctx context.Context, owner, shortID string) (*domain.ShortLink, error) {
	return r.findOne(ctx, bson.M{"shortId": shortID, "createdBy": owner})
}

func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]domain.ShortLink, error) {
	links := []domain.ShortLink{}
	err := r.links.Find(ctx, bson.M{"createdBy": owner}).Sort("-createdAt").All(&links)
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *Repository) AppendVisit(ctx context.Context, shortID string, visit domain.VisitRecord) error {
	err := r.links.UpdateOne(ctx, bson.M{"shortId": shortID}, bson.M{
		"$push": bson.M{"visitHistory": visit},
	})
	if errors.Is(err, qmgo.ErrNoSuchDocuments) {
		return domain.ErrNotFound
	}
	return err
}

func (r *Repository) ApplyChanges(ctx context.Context, owner, shortID string, changes ports.LinkChanges) (*domain.ShortLink, error) {
	set := bson.M{"updatedAt": time.Now()}
	newID := shortID
	if changes.ShortID != nil {
		set["shortId"] = *changes.ShortID
		newID = *changes.ShortID
	}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Tags != nil {
		set["tags"] = *changes.Tags
	}

	err := r.links.UpdateOne(ctx, bson.M{"shortId": shortID, "createdBy": owner}, bson.M{"$set": set})
	if errors.Is(err, qmgo.ErrNoSuchDocuments) {
		return nil, nil
	}
	if qmgo.IsDup(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, bson.M{"shortId": newID})
}

func (r *Repository) Dump(ctx context.Context) ([]domain.ShortLink, error) {
	links := []domain.ShortLink{}
	err := r.links.Find(ctx, bson.M{}).All(&links)
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*domain.ShortLink, error) {
	var link domain.ShortLink
	err := r.links.Find(ctx, filter).One(&link)
	if errors.Is(err, qmgo.ErrNoSuchDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}
