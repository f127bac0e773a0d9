package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionLog records one login/logout pair per user session. Open sessions
// have a zero LogoutTime. Used as the timestamp source for active-trader
// metrics; not part of balance accounting.
type SessionLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     string             `bson:"user_id" json:"user_id"`
	UserName   string             `bson:"user_name" json:"user_name"`
	LoginTime  time.Time          `bson:"login_time" json:"login_time"`
	LogoutTime time.Time          `bson:"logout_time,omitempty" json:"logout_time,omitempty"`
	Duration   time.Duration      `bson:"duration,omitempty" json:"duration,omitempty"`
}

// IsOpen reports whether the session has not been closed yet.
func (s *SessionLog) IsOpen() bool {
	return s.LogoutTime.IsZero()
}

// Close stamps the logout time and computes the session duration.
func (s *SessionLog) Close(at time.Time) {
	s.LogoutTime = at
	s.Duration = at.Sub(s.LoginTime)
}
