package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestEvents_DecrementNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	store := NewEvents()
	ev, err := store.Create(ctx, &models.Event{Title: "Meetup", Capacity: 3, Date: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.DecrementCapacityIfPositive(ctx, ev.ID)
			assert.NoError(t, err)
			if got != nil {
				assert.GreaterOrEqual(t, got.Capacity, 0)
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, success)
	final, err := store.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, final.Capacity)
}

func TestEvents_MissingEvent(t *testing.T) {
	ctx := context.Background()
	store := NewEvents()
	id := bson.NewObjectID()

	got, err := store.FindByID(ctx, id)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.DecrementCapacityIfPositive(ctx, id)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.IncrementCapacity(ctx, id)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestEvents_ListFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	store := NewEvents()
	now := time.Now().UTC()
	for i, title := range []string{"Go Meetup", "Rust Night", "Go Conference"} {
		_, err := store.Create(ctx, &models.Event{
			Title:    title,
			Location: "Lomé",
			Date:     now.Add(time.Duration(i+1) * time.Hour),
		})
		require.NoError(t, err)
	}

	got, total, err := store.List(ctx, models.EventFilter{Query: "go", Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, got, 1)
	assert.Equal(t, "Go Meetup", got[0].Title)

	got, _, err = store.List(ctx, models.EventFilter{Query: "go", Descending: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Go Conference", got[0].Title)

	before := now.Add(90 * time.Minute)
	got, total, err = store.List(ctx, models.EventFilter{Before: &before, Location: "lomé"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Go Meetup", got[0].Title)

	locs, err := store.PopularLocations(ctx, 5)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 3, locs[0].Count)
}

func TestRegistrations_InsertIsUnique(t *testing.T) {
	ctx := context.Background()
	store := NewRegistrations()
	user, event := bson.NewObjectID(), bson.NewObjectID()

	_, err := store.Insert(ctx, &models.Registration{UserID: user, EventID: event, RegisteredAt: time.Now()})
	require.NoError(t, err)

	_, err = store.Insert(ctx, &models.Registration{UserID: user, EventID: event, RegisteredAt: time.Now()})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	removed, err := store.Delete(ctx, user, event)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(ctx, user, event)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRegistrations_DeleteByEvent(t *testing.T) {
	ctx := context.Background()
	store := NewRegistrations()
	event, other := bson.NewObjectID(), bson.NewObjectID()
	for range 3 {
		_, err := store.Insert(ctx, &models.Registration{UserID: bson.NewObjectID(), EventID: event})
		require.NoError(t, err)
	}
	_, err := store.Insert(ctx, &models.Registration{UserID: bson.NewObjectID(), EventID: other})
	require.NoError(t, err)

	n, err := store.DeleteByEvent(ctx, event)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	left, err := store.ListByEvent(ctx, other)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestUsers_CreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewUsers()

	_, err := store.Create(ctx, &models.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = store.Create(ctx, &models.User{Username: "bob", Email: "a@x.com"})
	var dup *repositories.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	_, err = store.Create(ctx, &models.User{Username: "alice", Email: "b@x.com"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	found, err := store.FindByEmail(ctx, " A@X.com ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "alice", found.Username)
}

func TestUsers_EnsureUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewUsers()

	inserted, err := store.EnsureUser(ctx, &models.User{Username: "admin", Email: "root@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.EnsureUser(ctx, &models.User{Username: "admin2", Email: "root@x.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, inserted)
}
