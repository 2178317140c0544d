package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/princinho/eventsbackend/models"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type EventsRepository struct {
	col *mongo.Collection
}

func NewEventsRepository(col *mongo.Collection) *EventsRepository {
	return &EventsRepository{col: col}
}

func (r *EventsRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Event, error) {
	var event models.Event
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, oops.In("events").Code("EVENT_LOOKUP_FAILED").With("event_id", id.Hex()).Wrap(err)
	}
	return &event, nil
}

// DecrementCapacityIfPositive is a single conditional findAndModify: the filter
// only matches while capacity > 0, so concurrent callers can never drive it negative.
func (r *EventsRepository) DecrementCapacityIfPositive(ctx context.Context, id bson.ObjectID) (*models.Event, error) {
	filter := bson.M{"_id": id, "capacity": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"capacity": -1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findAndModify(ctx, id, filter, update, "EVENT_DECREMENT_FAILED")
}

func (r *EventsRepository) IncrementCapacity(ctx context.Context, id bson.ObjectID) (*models.Event, error) {
	update := bson.M{
		"$inc": bson.M{"capacity": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findAndModify(ctx, id, bson.M{"_id": id}, update, "EVENT_INCREMENT_FAILED")
}

func (r *EventsRepository) findAndModify(ctx context.Context, id bson.ObjectID, filter, update bson.M, code string) (*models.Event, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event models.Event
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, oops.In("events").Code(code).With("event_id", id.Hex()).Wrap(err)
	}
	return &event, nil
}

func (r *EventsRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if event.ID.IsZero() {
		event.ID = bson.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, event); err != nil {
		return nil, oops.In("events").Code("EVENT_INSERT_FAILED").With("title", event.Title).Wrap(err)
	}
	return event, nil
}

func (r *EventsRepository) Update(ctx context.Context, id bson.ObjectID, patch models.EventPatch) (*models.Event, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Date != nil {
		set["date"] = patch.Date.UTC()
	}
	if patch.Banner != nil {
		set["banner"] = *patch.Banner
	}
	if patch.BannerObject != nil {
		set["bannerObject"] = *patch.BannerObject
	}
	if patch.IsPublished != nil {
		set["isPublished"] = *patch.IsPublished
	}

	return r.findAndModify(ctx, id, bson.M{"_id": id}, bson.M{"$set": set}, "EVENT_UPDATE_FAILED")
}

func (r *EventsRepository) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, oops.In("events").Code("EVENT_DELETE_FAILED").With("event_id", id.Hex()).Wrap(err)
	}
	return res.DeletedCount == 1, nil
}

func (r *EventsRepository) List(ctx context.Context, f models.EventFilter) ([]models.Event, int64, error) {
	filter := bson.M{}
	if f.Query != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Query), "$options": "i"}
	}
	if f.Location != "" {
		filter["location"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Location) + "$", "$options": "i"}
	}
	date := bson.M{}
	if f.From != nil {
		date["$gte"] = f.From.UTC()
	}
	if f.Before != nil {
		date["$lt"] = f.Before.UTC()
	}
	if len(date) > 0 {
		filter["date"] = date
	}

	sortDir := 1
	if f.Descending {
		sortDir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: sortDir}, {Key: "_id", Value: 1}})
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, oops.In("events").Code("EVENT_LIST_FAILED").Wrap(err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Event, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, oops.In("events").Code("EVENT_LIST_FAILED").Wrap(err)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, oops.In("events").Code("EVENT_COUNT_FAILED").Wrap(err)
	}
	return items, total, nil
}

func (r *EventsRepository) PopularLocations(ctx context.Context, limit int) ([]models.LocationCount, error) {
	out := make([]models.LocationCount, 0)
	if err := r.aggregate(ctx, countBy("$location", limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EventsRepository) TopOrganizers(ctx context.Context, limit int) ([]models.OrganizerCount, error) {
	out := make([]models.OrganizerCount, 0)
	if err := r.aggregate(ctx, countBy("$organizer", limit), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// countBy groups events by field, most frequent first. A non-positive limit returns every group.
func countBy(field string, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return pipeline
}

func (r *EventsRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return oops.In("events").Code("EVENT_AGGREGATE_FAILED").Wrap(err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return oops.In("events").Code("EVENT_AGGREGATE_FAILED").Wrap(err)
	}
	return nil
}
