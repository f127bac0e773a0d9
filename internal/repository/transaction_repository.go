package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"baryabazaar-api/internal/models"
)

// TransactionRepository persists the ordered transaction collection.
// Listings are always newest-first by timestamp.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error)
	GetAll(ctx context.Context, limit, offset int) ([]*models.Transaction, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, transactionID string) error
	CountPendingByUser(ctx context.Context, userID string) (int64, error)
}

type transactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) TransactionRepository {
	return &transactionRepository{
		collection: db.Collection("transactions"),
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	_, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("transaction %s: %w", tx.TransactionID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.collection.FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit)).SetSkip(int64(offset))
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *transactionRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit)).SetSkip(int64(offset))
	}
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *transactionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Transaction, error) {
	filter := bson.M{
		"timestamp": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	return r.find(ctx, filter, opts)
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = time.Now()

	filter := bson.M{"transaction_id": tx.TransactionID}
	result, err := r.collection.ReplaceOne(ctx, filter, tx)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("transaction %s: %w", tx.TransactionID, ErrNotFound)
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, transactionID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"transaction_id": transactionID})
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
	}
	return nil
}

func (r *transactionRepository) CountPendingByUser(ctx context.Context, userID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"status":  models.StatusPending,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Transaction, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*models.Transaction
	for cursor.Next(ctx) {
		var tx models.Transaction
		if err := cursor.Decode(&tx); err != nil {
			continue
		}
		txs = append(txs, &tx)
	}
	return txs, cursor.Err()
}
