package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"baryabazaar-api/internal/models"
)

// AuditRepository is the append-only store for audit log entries. There is
// deliberately no update or delete operation.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditLog) error
	GetAll(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	GetFiltered(ctx context.Context, filter *models.AuditFilter, limit, offset int) ([]*models.AuditLog, error)
}

type auditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) AuditRepository {
	return &auditRepository{
		collection: db.Collection("system_logs"),
	}
}

func (r *auditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *auditRepository) GetFiltered(ctx context.Context, filter *models.AuditFilter, limit, offset int) ([]*models.AuditLog, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Actor != "" {
		query["actor"] = filter.Actor
	}
	if filter.Target != "" {
		query["target"] = filter.Target
	}
	if !filter.StartDate.IsZero() || !filter.EndDate.IsZero() {
		ts := bson.M{}
		if !filter.StartDate.IsZero() {
			ts["$gte"] = filter.StartDate
		}
		if !filter.EndDate.IsZero() {
			ts["$lte"] = filter.EndDate
		}
		query["timestamp"] = ts
	}
	return r.find(ctx, query, limit, offset)
}

func (r *auditRepository) find(ctx context.Context, query bson.M, limit, offset int) ([]*models.AuditLog, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit)).SetSkip(int64(offset))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.AuditLog
	for cursor.Next(ctx) {
		var entry models.AuditLog
		if err := cursor.Decode(&entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, cursor.Err()
}
