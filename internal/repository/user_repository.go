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

// UserRepository persists trading users and their per-bank balances.
// Balance writes are compare-and-swap on the document version so concurrent
// adjustments computed from the same stale read cannot overwrite each other.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetBankBalance(ctx context.Context, userID, bank string, amount decimal.Decimal, expectedVersion int64) error
	SetLoginState(ctx context.Context, userID string, loggedIn bool, at time.Time) error
	Delete(ctx context.Context, userID string) error
	AnyBalanceInBank(ctx context.Context, bank string) (bool, error)
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.BankBalances == nil {
		user.BankBalances = make(map[string]decimal.Decimal)
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.UserID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		users = append(users, &user)
	}
	return users, cursor.Err()
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	filter := bson.M{"user_id": user.UserID}
	result, err := r.collection.ReplaceOne(ctx, filter, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", user.UserID, ErrNotFound)
	}
	return nil
}

// SetBankBalance writes an absolute balance for one bank. The write only
// succeeds when the stored version still matches expectedVersion; the
// version is incremented atomically with the balance.
func (r *userRepository) SetBankBalance(ctx context.Context, userID, bank string, amount decimal.Decimal, expectedVersion int64) error {
	filter := bson.M{
		"user_id": userID,
		"version": expectedVersion,
	}
	update := bson.M{
		"$set": bson.M{
			"bank_balances." + bank: amount,
			"updated_at":            time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set bank balance: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing user from a stale version.
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return err
		}
		return fmt.Errorf("user %s balance write: %w", userID, ErrVersionConflict)
	}
	return nil
}

func (r *userRepository) SetLoginState(ctx context.Context, userID string, loggedIn bool, at time.Time) error {
	set := bson.M{
		"is_logged_in": loggedIn,
		"updated_at":   time.Now(),
	}
	if loggedIn {
		set["login_time"] = at
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set login state: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

// AnyBalanceInBank reports whether any user still holds a non-zero balance
// in the named bank. Bank removal is blocked while this returns true.
func (r *userRepository) AnyBalanceInBank(ctx context.Context, bank string) (bool, error) {
	filter := bson.M{
		"bank_balances." + bank: bson.M{"$exists": true, "$ne": decimal.Zero},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check bank balances: %w", err)
	}
	return count > 0, nil
}
