package services

import (
	"context"
	"errors"
	"time"

	"github.com/princinho/eventsbackend/logger"
	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/repositories"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// Admission is the result of a successful admit. AlreadyRegistered is set when
// the user held a seat before the call; capacity is untouched in that case.
type Admission struct {
	Registration      *models.Registration
	AlreadyRegistered bool
}

type RegistrationService struct {
	events        EventStore
	registrations RegistrationStore
	log           *zap.Logger
	now           func() time.Time
}

func NewRegistrationService(events EventStore, registrations RegistrationStore, log *zap.Logger, now func() time.Time) *RegistrationService {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &RegistrationService{events: events, registrations: registrations, log: log, now: now}
}

// Admit registers userID for eventID. Every failed gate leaves no registration
// behind and capacity unchanged.
func (s *RegistrationService) Admit(ctx context.Context, userID, eventID bson.ObjectID) (*Admission, error) {
	admission, err := s.admit(ctx, userID, eventID)
	switch {
	case err != nil:
		admissionsTotal.WithLabelValues(admissionOutcome(err)).Inc()
	case admission.AlreadyRegistered:
		admissionsTotal.WithLabelValues("already_registered").Inc()
	default:
		admissionsTotal.WithLabelValues("admitted").Inc()
	}
	return admission, err
}

func (s *RegistrationService) admit(ctx context.Context, userID, eventID bson.ObjectID) (*Admission, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	now := s.now().UTC()
	if event.HasStarted(now) {
		return nil, ErrEventClosed
	}
	if event.OrganizerID == userID {
		return nil, ErrSelfRegistrationForbidden
	}

	existing, err := s.registrations.FindOne(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Admission{Registration: existing, AlreadyRegistered: true}, nil
	}

	if event.Capacity <= 0 {
		return nil, ErrEventFull
	}

	// Seat first: a stored registration always holds one decrement.
	updated, err := s.events.DecrementCapacityIfPositive(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrEventFull
	}

	reg, err := s.registrations.Insert(ctx, &models.Registration{
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: now,
	})
	if err != nil {
		s.restoreSeat(ctx, eventID)
		if errors.Is(err, repositories.ErrDuplicate) {
			// a concurrent admit for the same pair won the insert
			return s.alreadyRegistered(ctx, userID, eventID)
		}
		return nil, err
	}
	return &Admission{Registration: reg}, nil
}

func (s *RegistrationService) alreadyRegistered(ctx context.Context, userID, eventID bson.ObjectID) (*Admission, error) {
	existing, err := s.registrations.FindOne(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, oops.In("registrations").
			Code("REGISTRATION_CONFLICT").
			With("user_id", userID.Hex(), "event_id", eventID.Hex()).
			Errorf("registration changed concurrently")
	}
	return &Admission{Registration: existing, AlreadyRegistered: true}, nil
}

// restoreSeat gives back a seat taken by an admit whose registration was not stored.
func (s *RegistrationService) restoreSeat(ctx context.Context, eventID bson.ObjectID) {
	if _, err := s.events.IncrementCapacity(context.WithoutCancel(ctx), eventID); err != nil {
		logger.LogError(s.log.With(zap.String("event_id", eventID.Hex())), "failed to restore seat", err)
	}
}

// Cancel removes the registration and gives its seat back. Capacity is only
// restored when a registration was actually removed.
func (s *RegistrationService) Cancel(ctx context.Context, userID, eventID bson.ObjectID) error {
	err := s.cancel(ctx, userID, eventID)
	cancellationsTotal.WithLabelValues(cancellationOutcome(err)).Inc()
	return err
}

func (s *RegistrationService) cancel(ctx context.Context, userID, eventID bson.ObjectID) error {
	removed, err := s.registrations.Delete(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrRegistrationNotFound
	}

	event, err := s.events.IncrementCapacity(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		s.log.Debug("cancelled registration for a deleted event", zap.String("event_id", eventID.Hex()))
	}
	return nil
}

// ListForEvent returns the attendees of an event. Only its organizer or an admin may list them.
func (s *RegistrationService) ListForEvent(ctx context.Context, eventID bson.ObjectID, requester models.Principal) ([]models.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.OrganizerID != requester.ID && !requester.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.registrations.ListByEvent(ctx, eventID)
}

func (s *RegistrationService) ListForUser(ctx context.Context, userID bson.ObjectID) ([]models.Registration, error) {
	return s.registrations.ListByUser(ctx, userID)
}
