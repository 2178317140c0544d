package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Event.Capacity counts remaining open seats, not the maximum.
type Event struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizerID  bson.ObjectID `bson:"organizer" json:"organizerId"`
	Title        string        `bson:"title" json:"title"`
	Slug         string        `bson:"slug" json:"slug"`
	Description  string        `bson:"description" json:"description"`
	Location     string        `bson:"location" json:"location"`
	Date         time.Time     `bson:"date" json:"date"`
	Capacity     int           `bson:"capacity" json:"capacity"`
	Banner       string        `bson:"banner,omitempty" json:"banner,omitempty"`
	BannerObject string        `bson:"bannerObject,omitempty" json:"-"`
	IsPublished  bool          `bson:"isPublished" json:"isPublished"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (e *Event) HasStarted(now time.Time) bool {
	return !e.Date.After(now)
}

type EventPatch struct {
	Title        *string
	Slug         *string
	Description  *string
	Location     *string
	Date         *time.Time
	Banner       *string
	BannerObject *string
	IsPublished  *bool
}

type LocationCount struct {
	Location string `bson:"_id" json:"location"`
	Count    int    `bson:"count" json:"count"`
}

type OrganizerCount struct {
	OrganizerID bson.ObjectID `bson:"_id" json:"organizerId"`
	Count       int           `bson:"count" json:"count"`
}

type EventFilter struct {
	Query    string
	Location string
	From     *time.Time
	Before   *time.Time
	// Descending sorts by date, newest first.
	Descending bool
	Skip       int64
	Limit      int64
}
