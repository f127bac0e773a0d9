package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlatformBalance is the aggregate USDT held on a named exchange venue.
// Like users, platform documents carry a version counter for optimistic
// concurrency on balance writes.
type PlatformBalance struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	USDT      decimal.Decimal    `bson:"usdt" json:"usdt"`
	Version   int64              `bson:"version" json:"version"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Bank is a named fiat custody channel. The registry is global; per-user
// balances live on the User document.
type Bank struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
