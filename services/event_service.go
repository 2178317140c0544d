package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/princinho/eventsbackend/logger"
	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/storage"
	"github.com/princinho/eventsbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type CreateEventInput struct {
	Title       string
	Description string
	Location    string
	Date        time.Time
	Capacity    int
	IsPublished bool
	Banner      *multipart.FileHeader
}

// UpdateEventInput leaves nil fields unchanged. Capacity cannot be edited here;
// admissions own it once the event exists.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Location    *string
	Date        *time.Time
	IsPublished *bool
	Banner      *multipart.FileHeader
}

type EventService struct {
	events        EventRepository
	registrations RegistrationStore
	banners       storage.BannerStore
	log           *zap.Logger
	now           func() time.Time
}

// NewEventService builds the event service. banners may be nil when uploads are disabled.
func NewEventService(events EventRepository, registrations RegistrationStore, banners storage.BannerStore, log *zap.Logger) *EventService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventService{
		events:        events,
		registrations: registrations,
		banners:       banners,
		log:           log,
		now:           time.Now,
	}
}

func canOrganize(p models.Principal) bool {
	return p.Role == models.RoleOrganizer || p.Role == models.RoleAdmin
}

func canManage(p models.Principal, event *models.Event) bool {
	return p.IsAdmin() || event.OrganizerID == p.ID
}

func (s *EventService) Create(ctx context.Context, organizer models.Principal, in CreateEventInput) (*models.Event, error) {
	if !canOrganize(organizer) {
		return nil, ErrNotAuthorized
	}
	if in.Capacity < 0 || strings.TrimSpace(in.Title) == "" || in.Date.IsZero() {
		return nil, ErrInvalidInput
	}

	now := s.now().UTC()
	event := &models.Event{
		OrganizerID: organizer.ID,
		Title:       strings.TrimSpace(in.Title),
		Slug:        utils.GenerateSlug(in.Title),
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Date:        in.Date.UTC(),
		Capacity:    in.Capacity,
		IsPublished: in.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if in.Banner != nil {
		obj, err := s.uploadBanner(ctx, event.Slug, in.Banner)
		if err != nil {
			return nil, err
		}
		event.Banner = obj.PublicURL
		event.BannerObject = obj.ObjectName
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		s.removeBanner(ctx, event.BannerObject)
		return nil, err
	}
	return created, nil
}

func (s *EventService) uploadBanner(ctx context.Context, slug string, fh *multipart.FileHeader) (*storage.Object, error) {
	if s.banners == nil {
		return nil, ErrInvalidInput
	}
	return s.banners.UploadBanner(ctx, slug, fh)
}

func (s *EventService) removeBanner(ctx context.Context, objectName string) {
	if s.banners == nil || objectName == "" {
		return
	}
	if err := s.banners.Delete(context.WithoutCancel(ctx), objectName); err != nil {
		logger.LogError(s.log.With(zap.String("object", objectName)), "failed to delete banner", err)
	}
}

func (s *EventService) Get(ctx context.Context, id bson.ObjectID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *EventService) Update(ctx context.Context, id bson.ObjectID, requester models.Principal, in UpdateEventInput) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(requester, event) {
		return nil, ErrNotAuthorized
	}

	patch := models.EventPatch{
		Description: trimmed(in.Description),
		Location:    trimmed(in.Location),
		Date:        in.Date,
		IsPublished: in.IsPublished,
	}
	if title := trimmed(in.Title); title != nil {
		if *title == "" {
			return nil, ErrInvalidInput
		}
		slug := utils.GenerateSlug(*title)
		patch.Title = title
		patch.Slug = &slug
	}

	if in.Banner != nil {
		slug := event.Slug
		if patch.Slug != nil {
			slug = *patch.Slug
		}
		obj, err := s.uploadBanner(ctx, slug, in.Banner)
		if err != nil {
			return nil, err
		}
		patch.Banner = &obj.PublicURL
		patch.BannerObject = &obj.ObjectName
	}

	updated, err := s.events.Update(ctx, id, patch)
	if err != nil {
		if patch.BannerObject != nil {
			s.removeBanner(ctx, *patch.BannerObject)
		}
		return nil, err
	}
	if updated == nil {
		return nil, ErrEventNotFound
	}
	if patch.BannerObject != nil {
		s.removeBanner(ctx, event.BannerObject)
	}
	return updated, nil
}

// Delete removes the event together with its registrations and banner.
func (s *EventService) Delete(ctx context.Context, id bson.ObjectID, requester models.Principal) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(requester, event) {
		return ErrNotAuthorized
	}

	removed, err := s.events.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrEventNotFound
	}

	n, err := s.registrations.DeleteByEvent(ctx, id)
	if err != nil {
		logger.LogError(s.log.With(zap.String("event_id", id.Hex())), "failed to delete event registrations", err)
	} else if n > 0 {
		s.log.Info("deleted event registrations", zap.String("event_id", id.Hex()), zap.Int64("count", n))
	}
	s.removeBanner(ctx, event.BannerObject)
	return nil
}

func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int64, error) {
	return s.events.List(ctx, filter)
}

// Upcoming lists events that have not started yet, soonest first.
func (s *EventService) Upcoming(ctx context.Context, filter models.EventFilter) ([]models.Event, int64, error) {
	now := s.now().UTC()
	filter.From = &now
	filter.Before = nil
	filter.Descending = false
	return s.events.List(ctx, filter)
}

// Past lists events that already started, most recent first.
func (s *EventService) Past(ctx context.Context, filter models.EventFilter) ([]models.Event, int64, error) {
	now := s.now().UTC()
	filter.From = nil
	filter.Before = &now
	filter.Descending = true
	return s.events.List(ctx, filter)
}

func (s *EventService) ByLocation(ctx context.Context, location string, filter models.EventFilter) ([]models.Event, int64, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, 0, ErrInvalidInput
	}
	filter.Location = location
	return s.events.List(ctx, filter)
}

func (s *EventService) PopularLocations(ctx context.Context, limit int) ([]models.LocationCount, error) {
	return s.events.PopularLocations(ctx, limit)
}

func (s *EventService) TopOrganizers(ctx context.Context, limit int) ([]models.OrganizerCount, error) {
	return s.events.TopOrganizers(ctx, limit)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
