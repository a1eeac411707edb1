package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// BookRepository implements ports.BookRepository on a MongoDB collection.
type BookRepository struct {
	col *mongo.Collection
}

func NewBookRepository(db *mongo.Database, collection string) *BookRepository {
	return &BookRepository{col: db.Collection(collection)}
}

// Insert persists a new book document.
func (r *BookRepository) Insert(ctx context.Context, b *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return storeErr("insert book", err)
	}
	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Book
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, storeErr("find book", err)
	}
	return &b, nil
}

// SetStatus overwrites the availability flag and returns the updated book.
func (r *BookRepository) SetStatus(ctx context.Context, id string, status domain.BookStatus) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Book
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, storeErr("set book status", err)
	}
	return &b, nil
}

// MarkUnavailableIfAvailable is the conditional flip used by reconciliation:
// only a book that currently reads available is touched.
func (r *BookRepository) MarkUnavailableIfAvailable(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(domain.StatusAvailable)},
		bson.M{"$set": bson.M{"status": string(domain.StatusUnavailable)}},
	)
	if err != nil {
		return false, storeErr("conditional book flip", err)
	}
	return res.ModifiedCount > 0, nil
}

// List returns books matching the exact-match filters, served by the
// category and status indexes.
func (r *BookRepository) List(ctx context.Context, filter ports.BookFilter) ([]*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	cur, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, storeErr("list books", err)
	}
	defer cur.Close(ctx)

	var books []*domain.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, storeErr("decode books", err)
	}
	return books, nil
}

// Categories returns the sorted distinct category values.
func (r *BookRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.col.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, storeErr("distinct categories", err)
	}

	cats := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			cats = append(cats, s)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storeErr("count books", err)
	}
	return n, nil
}

func (r *BookRepository) CountByStatus(ctx context.Context, status domain.BookStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"status": string(status)})
	if err != nil {
		return 0, storeErr("count books by status", err)
	}
	return n, nil
}

// EnsureIndexes creates the category and status indexes on the books
// collection.
func (r *BookRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// storeErr tags a store-layer failure so callers can classify it as
// transient without losing the underlying cause.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
