package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"baryabazaar-api/internal/models"
)

// RegistryRepository persists the platform and bank registries. Platform
// balance writes use the same compare-and-swap discipline as user balances.
type RegistryRepository interface {
	CreatePlatform(ctx context.Context, platform *models.PlatformBalance) error
	GetPlatform(ctx context.Context, name string) (*models.PlatformBalance, error)
	GetPlatforms(ctx context.Context) ([]*models.PlatformBalance, error)
	SetPlatformBalance(ctx context.Context, name string, amount decimal.Decimal, expectedVersion int64) error
	DeletePlatform(ctx context.Context, name string) error

	CreateBank(ctx context.Context, bank *models.Bank) error
	GetBanks(ctx context.Context) ([]*models.Bank, error)
	DeleteBank(ctx context.Context, name string) error
}

type registryRepository struct {
	platforms *mongo.Collection
	banks     *mongo.Collection
}

func NewRegistryRepository(db *mongo.Database) RegistryRepository {
	return &registryRepository{
		platforms: db.Collection("platforms"),
		banks:     db.Collection("banks"),
	}
}

func (r *registryRepository) CreatePlatform(ctx context.Context, platform *models.PlatformBalance) error {
	now := time.Now()
	platform.CreatedAt = now
	platform.UpdatedAt = now

	_, err := r.platforms.InsertOne(ctx, platform)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("platform %s: %w", platform.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create platform: %w", err)
	}
	return nil
}

func (r *registryRepository) GetPlatform(ctx context.Context, name string) (*models.PlatformBalance, error) {
	var platform models.PlatformBalance
	err := r.platforms.FindOne(ctx, bson.M{"name": name}).Decode(&platform)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("platform %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get platform: %w", err)
	}
	return &platform, nil
}

func (r *registryRepository) GetPlatforms(ctx context.Context) ([]*models.PlatformBalance, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.platforms.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query platforms: %w", err)
	}
	defer cursor.Close(ctx)

	var platforms []*models.PlatformBalance
	for cursor.Next(ctx) {
		var platform models.PlatformBalance
		if err := cursor.Decode(&platform); err != nil {
			continue
		}
		platforms = append(platforms, &platform)
	}
	return platforms, cursor.Err()
}

// SetPlatformBalance writes an absolute USDT balance guarded by the stored
// version counter.
func (r *registryRepository) SetPlatformBalance(ctx context.Context, name string, amount decimal.Decimal, expectedVersion int64) error {
	filter := bson.M{
		"name":    name,
		"version": expectedVersion,
	}
	update := bson.M{
		"$set": bson.M{
			"usdt":       amount,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.platforms.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set platform balance: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetPlatform(ctx, name); err != nil {
			return err
		}
		return fmt.Errorf("platform %s balance write: %w", name, ErrVersionConflict)
	}
	return nil
}

func (r *registryRepository) DeletePlatform(ctx context.Context, name string) error {
	result, err := r.platforms.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to delete platform: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("platform %s: %w", name, ErrNotFound)
	}
	return nil
}

func (r *registryRepository) CreateBank(ctx context.Context, bank *models.Bank) error {
	bank.CreatedAt = time.Now()

	_, err := r.banks.InsertOne(ctx, bank)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("bank %s: %w", bank.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create bank: %w", err)
	}
	return nil
}

func (r *registryRepository) GetBanks(ctx context.Context) ([]*models.Bank, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.banks.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query banks: %w", err)
	}
	defer cursor.Close(ctx)

	var banks []*models.Bank
	for cursor.Next(ctx) {
		var bank models.Bank
		if err := cursor.Decode(&bank); err != nil {
			continue
		}
		banks = append(banks, &bank)
	}
	return banks, cursor.Err()
}

func (r *registryRepository) DeleteBank(ctx context.Context, name string) error {
	result, err := r.banks.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to delete bank: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("bank %s: %w", name, ErrNotFound)
	}
	return nil
}
