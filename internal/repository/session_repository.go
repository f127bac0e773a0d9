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

// SessionRepository persists login/logout session logs.
type SessionRepository interface {
	Create(ctx context.Context, session *models.SessionLog) error
	CloseOpenSession(ctx context.Context, userID string, at time.Time) (*models.SessionLog, error)
	GetByUser(ctx context.Context, userID string, limit int) ([]*models.SessionLog, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
}

type sessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) SessionRepository {
	return &sessionRepository{
		collection: db.Collection("hr_logs"),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.SessionLog) error {
	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create session log: %w", err)
	}
	return nil
}

// CloseOpenSession stamps the most recent open session of the user with the
// logout time and computed duration, returning the closed record.
func (r *sessionRepository) CloseOpenSession(ctx context.Context, userID string, at time.Time) (*models.SessionLog, error) {
	filter := bson.M{
		"user_id":     userID,
		"logout_time": bson.M{"$in": []interface{}{nil, time.Time{}}},
	}
	opts := options.FindOne().SetSort(bson.M{"login_time": -1})

	var session models.SessionLog
	err := r.collection.FindOne(ctx, filter, opts).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("open session for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}

	session.Close(at)

	update := bson.M{
		"$set": bson.M{
			"logout_time": session.LogoutTime,
			"duration":    session.Duration,
		},
	}
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": session.ID}, update); err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.SessionLog, error) {
	opts := options.Find().SetSort(bson.M{"login_time": -1})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*models.SessionLog
	for cursor.Next(ctx) {
		var session models.SessionLog
		if err := cursor.Decode(&session); err != nil {
			continue
		}
		sessions = append(sessions, &session)
	}
	return sessions, cursor.Err()
}

// CountActiveSince counts distinct users with a session started after the
// given instant, the "active traders" input for trend metrics.
func (r *sessionRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	userIDs, err := r.collection.Distinct(ctx, "user_id", bson.M{
		"login_time": bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return int64(len(userIDs)), nil
}
