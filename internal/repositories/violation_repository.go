package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/gorm"

	"jobportal_backend/internal/models"
)

type ViolationFilter struct {
	Type       models.ViolationType
	UserID     string
	Pagination Pagination
}

// ViolationRepository - журнал нарушений безопасности. Пишется вне
// транзакций запроса, поэтому хранилище держит соединение само.
type ViolationRepository interface {
	Record(ctx context.Context, v *models.SecurityViolation) error
	List(ctx context.Context, filter ViolationFilter) ([]models.SecurityViolation, int64, error)
}

func prepareViolation(v *models.SecurityViolation) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
}

// ---------- SQL ----------

type SQLViolationRepository struct {
	db *gorm.DB
}

func NewSQLViolationRepository(db *gorm.DB) *SQLViolationRepository {
	return &SQLViolationRepository{db: db}
}

func (r *SQLViolationRepository) Record(ctx context.Context, v *models.SecurityViolation) error {
	prepareViolation(v)
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *SQLViolationRepository) List(ctx context.Context, filter ViolationFilter) ([]models.SecurityViolation, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SecurityViolation{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.SecurityViolation, 0)
	err := q.Order("created_at DESC").Scopes(filter.Pagination.Scope).Find(&items).Error
	return items, total, err
}

// ---------- MongoDB ----------

type MongoViolationRepository struct {
	collection *mongo.Collection
}

func NewMongoViolationRepository(database *mongo.Database, collection string) *MongoViolationRepository {
	return &MongoViolationRepository{collection: database.Collection(collection)}
}

// InitializeIndexes создает индексы для выборок в админке
func (r *MongoViolationRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create violation indexes: %w", err)
	}
	return nil
}

func (r *MongoViolationRepository) Record(ctx context.Context, v *models.SecurityViolation) error {
	prepareViolation(v)
	if _, err := r.collection.InsertOne(ctx, v); err != nil {
		return fmt.Errorf("failed to insert security violation: %w", err)
	}
	return nil
}

func (r *MongoViolationRepository) List(ctx context.Context, filter ViolationFilter) ([]models.SecurityViolation, int64, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count security violations: %w", err)
	}

	p := filter.Pagination
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))

	cursor, err := r.collection.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query security violations: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.SecurityViolation, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode security violations: %w", err)
	}
	return items, total, nil
}
