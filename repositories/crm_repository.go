// repositories/crm_repository.go
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

type LeadStore interface {
	FetchLead(ctx context.Context, id string) (*models.CRMLead, error)
	FetchAllLeads(ctx context.Context, salespersonID string) ([]models.CRMLead, error)
	PersistLead(ctx context.Context, lead models.CRMLead) (models.CRMLead, error)
	DeleteLead(ctx context.Context, id string) error
}

type CompanyStore interface {
	ListCompanies(ctx context.Context) ([]models.CRMCompany, error)
	InsertCompany(ctx context.Context, company models.CRMCompany) (models.CRMCompany, error)
}

type CRMRepository struct {
	leads     *mongo.Collection
	companies *mongo.Collection
}

func NewCRMRepository(client *mongo.Client) *CRMRepository {
	return &CRMRepository{
		leads:     config.GetCollection(client, "crm_leads"),
		companies: config.GetCollection(client, "crm_companies"),
	}
}

func (r *CRMRepository) FetchLead(ctx context.Context, id string) (*models.CRMLead, error) {
	var lead models.CRMLead
	err := r.leads.FindOne(ctx, bson.M{"_id": id}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// FetchAllLeads lists the pipeline, optionally scoped to one salesperson.
func (r *CRMRepository) FetchAllLeads(ctx context.Context, salespersonID string) ([]models.CRMLead, error) {
	filter := bson.M{}
	if salespersonID != "" {
		filter = bson.M{"salespersonId": salespersonID}
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.leads.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []models.CRMLead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *CRMRepository) PersistLead(ctx context.Context, lead models.CRMLead) (models.CRMLead, error) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.leads.ReplaceOne(ctx, bson.M{"_id": lead.ID}, lead, opts)
	if err != nil {
		return models.CRMLead{}, err
	}
	return lead, nil
}

func (r *CRMRepository) DeleteLead(ctx context.Context, id string) error {
	result, err := r.leads.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CRMRepository) ListCompanies(ctx context.Context) ([]models.CRMCompany, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.companies.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var companies []models.CRMCompany
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *CRMRepository) InsertCompany(ctx context.Context, company models.CRMCompany) (models.CRMCompany, error) {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	_, err := r.companies.InsertOne(ctx, company)
	if err != nil {
		return models.CRMCompany{}, err
	}
	return company, nil
}
