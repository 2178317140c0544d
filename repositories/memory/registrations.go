package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/repositories"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type registrationKey struct {
	user  bson.ObjectID
	event bson.ObjectID
}

type Registrations struct {
	mu   sync.RWMutex
	regs map[registrationKey]models.Registration
}

func NewRegistrations() *Registrations {
	return &Registrations{regs: make(map[registrationKey]models.Registration)}
}

func (s *Registrations) FindOne(_ context.Context, userID, eventID bson.ObjectID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.regs[registrationKey{userID, eventID}]
	if !ok {
		return nil, nil
	}
	return &reg, nil
}

func (s *Registrations) Insert(_ context.Context, reg *models.Registration) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := registrationKey{reg.UserID, reg.EventID}
	if _, exists := s.regs[key]; exists {
		return nil, &repositories.DuplicateError{Field: "user_event"}
	}
	if reg.ID.IsZero() {
		reg.ID = bson.NewObjectID()
	}
	s.regs[key] = *reg
	out := *reg
	return &out, nil
}

func (s *Registrations) Delete(_ context.Context, userID, eventID bson.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := registrationKey{userID, eventID}
	if _, ok := s.regs[key]; !ok {
		return false, nil
	}
	delete(s.regs, key)
	return true, nil
}

func (s *Registrations) ListByEvent(_ context.Context, eventID bson.ObjectID) ([]models.Registration, error) {
	return s.list(func(r models.Registration) bool { return r.EventID == eventID }), nil
}

func (s *Registrations) ListByUser(_ context.Context, userID bson.ObjectID) ([]models.Registration, error) {
	return s.list(func(r models.Registration) bool { return r.UserID == userID }), nil
}

func (s *Registrations) list(keep func(models.Registration) bool) []models.Registration {
	s.mu.RLock()
	out := make([]models.Registration, 0)
	for _, r := range s.regs {
		if keep(r) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

func (s *Registrations) DeleteByEvent(_ context.Context, eventID bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key := range s.regs {
		if key.event == eventID {
			delete(s.regs, key)
			n++
		}
	}
	return n, nil
}
