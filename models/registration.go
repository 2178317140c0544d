package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// At most one Registration exists per (UserID, EventID).
type Registration struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       bson.ObjectID `bson:"user" json:"userId"`
	EventID      bson.ObjectID `bson:"event" json:"eventId"`
	RegisteredAt time.Time     `bson:"registeredAt" json:"registeredAt"`
}
