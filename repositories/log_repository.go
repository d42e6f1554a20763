// repositories/log_repository.go
package repositories

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gig-portal/eqrf_backend/config"
	"github.com/gig-portal/eqrf_backend/models"
)

type LogStore interface {
	Append(ctx context.Context, entry models.SystemLog) error
	ListForUser(ctx context.Context, viewer models.User, limit int64) ([]models.SystemLog, error)
}

type LogRepository struct {
	collection *mongo.Collection
}

func NewLogRepository(client *mongo.Client) *LogRepository {
	return &LogRepository{
		collection: config.GetCollection(client, "system_logs"),
	}
}

func (r *LogRepository) Append(ctx context.Context, entry models.SystemLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// ListForUser returns audit entries the viewer is entitled to see, newest
// first. Super admins see everything. Sales admins see their agents' activity,
// underwriting admins see their underwriters', and everyone always sees their
// own entries.
func (r *LogRepository) ListForUser(ctx context.Context, viewer models.User, limit int64) ([]models.SystemLog, error) {
	var filter bson.M

	switch viewer.Role {
	case models.RoleSuperAdmin:
		filter = bson.M{}
	case models.RoleAdmin:
		filter = bson.M{"$or": []bson.M{
			{"userRole": bson.M{"$in": []string{models.RoleAgent, models.RoleAdmin}}},
			{"userId": viewer.ID.Hex()},
		}}
	case models.RoleUWAdmin:
		filter = bson.M{"$or": []bson.M{
			{"userRole": bson.M{"$in": []string{models.RoleUnderwriter, models.RoleUWAdmin}}},
			{"userId": viewer.ID.Hex()},
		}}
	default:
		filter = bson.M{"userId": viewer.ID.Hex()}
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []models.SystemLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
