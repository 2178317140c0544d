package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/repositories"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Users struct {
	mu         sync.RWMutex
	byID       map[bson.ObjectID]models.User
	byEmail    map[string]bson.ObjectID
	byUsername map[string]bson.ObjectID
}

func NewUsers() *Users {
	return &Users{
		byID:       make(map[bson.ObjectID]models.User),
		byEmail:    make(map[string]bson.ObjectID),
		byUsername: make(map[string]bson.ObjectID),
	}
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	u := s.byID[id]
	return &u, nil
}

func (s *Users) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Users) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(user)
}

func (s *Users) insertLocked(user *models.User) (*models.User, error) {
	if _, taken := s.byEmail[user.Email]; taken {
		return nil, &repositories.DuplicateError{Field: "email"}
	}
	if _, taken := s.byUsername[user.Username]; taken {
		return nil, &repositories.DuplicateError{Field: "username"}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	s.byUsername[user.Username] = user.ID
	out := *user
	return &out, nil
}

func (s *Users) UpdatePassword(_ context.Context, id bson.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	s.byID[id] = u
	return nil
}

func (s *Users) EnsureUser(_ context.Context, user *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return false, nil
	}
	if _, err := s.insertLocked(user); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a user; only used to simulate accounts disappearing.
func (s *Users) Delete(id bson.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byEmail, u.Email)
	delete(s.byUsername, u.Username)
	delete(s.byID, id)
}
