package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/princinho/eventsbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// eventEntry carries its own lock so capacity changes serialize per event.
type eventEntry struct {
	mu    sync.Mutex
	event models.Event
}

type Events struct {
	mu      sync.RWMutex
	entries map[bson.ObjectID]*eventEntry
}

func NewEvents() *Events {
	return &Events{entries: make(map[bson.ObjectID]*eventEntry)}
}

func (s *Events) entry(id bson.ObjectID) *eventEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

func (s *Events) FindByID(_ context.Context, id bson.ObjectID) (*models.Event, error) {
	e := s.entry(id)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.event
	return &out, nil
}

func (s *Events) DecrementCapacityIfPositive(_ context.Context, id bson.ObjectID) (*models.Event, error) {
	e := s.entry(id)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.event.Capacity <= 0 {
		return nil, nil
	}
	e.event.Capacity--
	e.event.UpdatedAt = time.Now().UTC()
	out := e.event
	return &out, nil
}

func (s *Events) IncrementCapacity(_ context.Context, id bson.ObjectID) (*models.Event, error) {
	e := s.entry(id)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.event.Capacity++
	e.event.UpdatedAt = time.Now().UTC()
	out := e.event
	return &out, nil
}

func (s *Events) Create(_ context.Context, event *models.Event) (*models.Event, error) {
	if event.ID.IsZero() {
		event.ID = bson.NewObjectID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[event.ID] = &eventEntry{event: *event}
	out := *event
	return &out, nil
}

func (s *Events) Update(_ context.Context, id bson.ObjectID, patch models.EventPatch) (*models.Event, error) {
	e := s.entry(id)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ev := &e.event
	if patch.Title != nil {
		ev.Title = *patch.Title
	}
	if patch.Slug != nil {
		ev.Slug = *patch.Slug
	}
	if patch.Description != nil {
		ev.Description = *patch.Description
	}
	if patch.Location != nil {
		ev.Location = *patch.Location
	}
	if patch.Date != nil {
		ev.Date = patch.Date.UTC()
	}
	if patch.Banner != nil {
		ev.Banner = *patch.Banner
	}
	if patch.BannerObject != nil {
		ev.BannerObject = *patch.BannerObject
	}
	if patch.IsPublished != nil {
		ev.IsPublished = *patch.IsPublished
	}
	ev.UpdatedAt = time.Now().UTC()

	out := *ev
	return &out, nil
}

func (s *Events) Delete(_ context.Context, id bson.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false, nil
	}
	delete(s.entries, id)
	return true, nil
}

func (s *Events) snapshot() []models.Event {
	s.mu.RLock()
	entries := make([]*eventEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]models.Event, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.event)
		e.mu.Unlock()
	}
	return out
}

func (s *Events) List(_ context.Context, f models.EventFilter) ([]models.Event, int64, error) {
	query := strings.ToLower(f.Query)
	matched := make([]models.Event, 0)
	for _, ev := range s.snapshot() {
		if query != "" && !strings.Contains(strings.ToLower(ev.Title), query) {
			continue
		}
		if f.Location != "" && !strings.EqualFold(ev.Location, f.Location) {
			continue
		}
		if f.From != nil && ev.Date.Before(*f.From) {
			continue
		}
		if f.Before != nil && !ev.Date.Before(*f.Before) {
			continue
		}
		matched = append(matched, ev)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Date.Equal(b.Date) {
			if f.Descending {
				return a.Date.After(b.Date)
			}
			return a.Date.Before(b.Date)
		}
		return a.ID.Hex() < b.ID.Hex()
	})

	total := int64(len(matched))
	start := min(f.Skip, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	return matched[start:end], total, nil
}

func (s *Events) PopularLocations(_ context.Context, limit int) ([]models.LocationCount, error) {
	counts := make(map[string]int)
	for _, ev := range s.snapshot() {
		counts[ev.Location]++
	}
	out := make([]models.LocationCount, 0, len(counts))
	for loc, n := range counts {
		out = append(out, models.LocationCount{Location: loc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Location < out[j].Location
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Events) TopOrganizers(_ context.Context, limit int) ([]models.OrganizerCount, error) {
	counts := make(map[bson.ObjectID]int)
	for _, ev := range s.snapshot() {
		counts[ev.OrganizerID]++
	}
	out := make([]models.OrganizerCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.OrganizerCount{OrganizerID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].OrganizerID.Hex() < out[j].OrganizerID.Hex()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
