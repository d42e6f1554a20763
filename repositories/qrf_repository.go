// repositories/qrf_repository.go
package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gig-portal/eqrf_backend/config"
	"github.com/gig-portal/eqrf_backend/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// QRFStore is the persistence contract the QRF controllers depend on. The
// lifecycle engine itself is pure; this interface exists so the controllers
// can be tested against an in-memory fake.
type QRFStore interface {
	FetchQRF(ctx context.Context, id string) (*models.QRF, error)
	FetchAllQRFs(ctx context.Context, filterByUserID string) ([]models.QRF, error)
	PersistQRF(ctx context.Context, qrf models.QRF) (models.QRF, error)
	ExistingReferenceNumbers(ctx context.Context) ([]string, error)
	CountActiveForAgent(ctx context.Context, agentID string) (int64, error)
	CountAssignedSubmitted(ctx context.Context, underwriterID string) (int64, error)
}

type QRFRepository struct {
	collection *mongo.Collection
}

func NewQRFRepository(client *mongo.Client) *QRFRepository {
	return &QRFRepository{
		collection: config.GetCollection(client, "qrfs"),
	}
}

func (r *QRFRepository) FetchQRF(ctx context.Context, id string) (*models.QRF, error) {
	var qrf models.QRF
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&qrf)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &qrf, nil
}

// FetchAllQRFs lists every QRF, or only those the given user owns or is
// assigned to when filterByUserID is set.
func (r *QRFRepository) FetchAllQRFs(ctx context.Context, filterByUserID string) ([]models.QRF, error) {
	filter := bson.M{}
	if filterByUserID != "" {
		filter = bson.M{"$or": []bson.M{
			{"agentId": filterByUserID},
			{"assignedToId": filterByUserID},
		}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var qrfs []models.QRF
	if err := cursor.All(ctx, &qrfs); err != nil {
		return nil, err
	}
	return qrfs, nil
}

// PersistQRF upserts the record by id. The document is written whole: the
// lifecycle engine already computed the full next state in memory, so the
// write is atomic from the caller's point of view.
func (r *QRFRepository) PersistQRF(ctx context.Context, qrf models.QRF) (models.QRF, error) {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": qrf.ID}, qrf, opts)
	if err != nil {
		return models.QRF{}, err
	}
	return qrf, nil
}

// ExistingReferenceNumbers returns every reference number in use, for the
// reference generator.
func (r *QRFRepository) ExistingReferenceNumbers(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"referenceNumber": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ReferenceNumber string `bson:"referenceNumber"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, d.ReferenceNumber)
	}
	return refs, nil
}

// CountActiveForAgent counts the agent's QRFs that still need attention
// (anything not yet approved).
func (r *QRFRepository) CountActiveForAgent(ctx context.Context, agentID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"agentId": agentID,
		"status":  bson.M{"$ne": models.StatusApproved},
	})
}

// CountAssignedSubmitted counts submitted QRFs waiting on the underwriter.
func (r *QRFRepository) CountAssignedSubmitted(ctx context.Context, underwriterID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"assignedToId": underwriterID,
		"status":       models.StatusSubmitted,
	})
}
