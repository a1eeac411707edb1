package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenfield-library/lending-system/internal/core/domain"
	"github.com/greenfield-library/lending-system/internal/core/ports"
)

// RequestRepository implements ports.RequestRepository on a MongoDB
// collection. The at-most-one unresolved request per (user, book) invariant
// is enforced by a partial unique index, so the insert itself is the
// conditional write, so there is no read-then-write race window.
type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database, collection string) *RequestRepository {
	return &RequestRepository{col: db.Collection(collection)}
}

// Insert persists a new request. A violation of the partial unique index
// surfaces as domain.ErrDuplicateRequest.
func (r *RequestRepository) Insert(ctx context.Context, req *domain.Request) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateRequest
		}
		return storeErr("insert request", err)
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var req domain.Request
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, storeErr("find request", err)
	}
	return &req, nil
}

// Approve conditionally flips a pending request to approved. The filter
// matches on status, so two racing approvals resolve deterministically:
// one wins, the other sees ErrAlreadyApproved.
func (r *RequestRepository) Approve(ctx context.Context, id string) (*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var req domain.Request
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": string(domain.RequestPending)},
		bson.M{"$set": bson.M{"status": string(domain.RequestApproved)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&req)
	if err == nil {
		return &req, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storeErr("approve request", err)
	}

	// No pending document matched: distinguish a missing id from a request
	// that already left the pending state.
	existing, findErr := r.FindByID(ctx, id)
	if findErr != nil {
		return nil, findErr
	}
	if existing.Status == domain.RequestApproved {
		return nil, domain.ErrAlreadyApproved
	}
	return nil, domain.ErrRequestNotFound
}

// List returns requests matching the filter, served by the user_id and
// status indexes.
func (r *RequestRepository) List(ctx context.Context, filter ports.RequestFilter) ([]*domain.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, requestQuery(filter))
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	defer cur.Close(ctx)

	var reqs []*domain.Request
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, storeErr("decode requests", err)
	}
	return reqs, nil
}

func (r *RequestRepository) Count(ctx context.Context, filter ports.RequestFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, requestQuery(filter))
	if err != nil {
		return 0, storeErr("count requests", err)
	}
	return n, nil
}

// BookIDsWithStatus returns the distinct book ids referenced by requests in
// the given status.
func (r *RequestRepository) BookIDsWithStatus(ctx context.Context, status domain.RequestStatus) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.col.Distinct(ctx, "book_id", bson.M{"status": string(status)})
	if err != nil {
		return nil, storeErr("distinct book ids", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func requestQuery(filter ports.RequestFilter) bson.M {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	return query
}

// EnsureIndexes creates the query indexes plus the partial unique index
// backing the uniqueness invariant: at most one request per (user, book)
// pair while its status is pending or approved.
func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unresolved := bson.M{"status": bson.M{"$in": []string{
		string(domain.RequestPending),
		string(domain.RequestApproved),
	}}}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(unresolved),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
