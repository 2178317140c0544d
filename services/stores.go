package services

import (
	"context"

	"github.com/princinho/eventsbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Lookup methods return (nil, nil) when nothing matches.

type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id bson.ObjectID, hash string) error
}

// EventStore is the capacity-facing view of event persistence.
// Capacity changes must be single atomic store operations.
type EventStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Event, error)
	// DecrementCapacityIfPositive returns nil when capacity was already 0 or the event is gone.
	DecrementCapacityIfPositive(ctx context.Context, id bson.ObjectID) (*models.Event, error)
	IncrementCapacity(ctx context.Context, id bson.ObjectID) (*models.Event, error)
}

type EventRepository interface {
	EventStore
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Update(ctx context.Context, id bson.ObjectID, patch models.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int64, error)
	PopularLocations(ctx context.Context, limit int) ([]models.LocationCount, error)
	TopOrganizers(ctx context.Context, limit int) ([]models.OrganizerCount, error)
}

type RegistrationStore interface {
	FindOne(ctx context.Context, userID, eventID bson.ObjectID) (*models.Registration, error)
	// Insert returns repositories.ErrDuplicate when (user, event) already exists.
	Insert(ctx context.Context, reg *models.Registration) (*models.Registration, error)
	// Delete reports whether a registration was actually removed.
	Delete(ctx context.Context, userID, eventID bson.ObjectID) (bool, error)
	ListByEvent(ctx context.Context, eventID bson.ObjectID) ([]models.Registration, error)
	ListByUser(ctx context.Context, userID bson.ObjectID) ([]models.Registration, error)
	DeleteByEvent(ctx context.Context, eventID bson.ObjectID) (int64, error)
}

// NotificationSink delivers best-effort notices. Failures never fail the caller.
type NotificationSink interface {
	NotifyRegistered(ctx context.Context, user *models.User) error
}

type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// UserSeeder creates a user only when its email is not taken yet.
type UserSeeder interface {
	EnsureUser(ctx context.Context, user *models.User) (bool, error)
}
