package repositories

import (
	"context"
	"errors"

	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/utils"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type RegistrationsRepository struct {
	col *mongo.Collection
}

func NewRegistrationsRepository(col *mongo.Collection) *RegistrationsRepository {
	return &RegistrationsRepository{col: col}
}

func (r *RegistrationsRepository) FindOne(ctx context.Context, userID, eventID bson.ObjectID) (*models.Registration, error) {
	var reg models.Registration
	err := r.col.FindOne(ctx, bson.M{"user": userID, "event": eventID}).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, oops.In("registrations").Code("REGISTRATION_LOOKUP_FAILED").
			With("user_id", userID.Hex()).With("event_id", eventID.Hex()).Wrap(err)
	}
	return &reg, nil
}

func (r *RegistrationsRepository) Insert(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	if reg.ID.IsZero() {
		reg.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, reg); err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, &DuplicateError{Field: "user_event"}
		}
		return nil, oops.In("registrations").Code("REGISTRATION_INSERT_FAILED").
			With("user_id", reg.UserID.Hex()).With("event_id", reg.EventID.Hex()).Wrap(err)
	}
	return reg, nil
}

func (r *RegistrationsRepository) Delete(ctx context.Context, userID, eventID bson.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"user": userID, "event": eventID})
	if err != nil {
		return false, oops.In("registrations").Code("REGISTRATION_DELETE_FAILED").
			With("user_id", userID.Hex()).With("event_id", eventID.Hex()).Wrap(err)
	}
	return res.DeletedCount == 1, nil
}

func (r *RegistrationsRepository) ListByEvent(ctx context.Context, eventID bson.ObjectID) ([]models.Registration, error) {
	return r.list(ctx, bson.M{"event": eventID})
}

func (r *RegistrationsRepository) ListByUser(ctx context.Context, userID bson.ObjectID) ([]models.Registration, error) {
	return r.list(ctx, bson.M{"user": userID})
}

func (r *RegistrationsRepository) list(ctx context.Context, filter bson.M) ([]models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "registeredAt", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, oops.In("registrations").Code("REGISTRATION_LIST_FAILED").Wrap(err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Registration, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, oops.In("registrations").Code("REGISTRATION_LIST_FAILED").Wrap(err)
	}
	return items, nil
}

func (r *RegistrationsRepository) DeleteByEvent(ctx context.Context, eventID bson.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"event": eventID})
	if err != nil {
		return 0, oops.In("registrations").Code("REGISTRATION_DELETE_FAILED").With("event_id", eventID.Hex()).Wrap(err)
	}
	return res.DeletedCount, nil
}
