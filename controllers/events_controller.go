package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eventsbackend/dto"
	"github.com/princinho/eventsbackend/middleware"
	"github.com/princinho/eventsbackend/models"
	"github.com/princinho/eventsbackend/services"
	"github.com/princinho/eventsbackend/storage"
	"github.com/princinho/eventsbackend/utils"
)

type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// bindEventBody decodes a JSON body, or the "data" field of a multipart form
// together with an optional "banner" file.
func bindEventBody(c *gin.Context, out any, banners *storage.FileValidator) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, c.ShouldBindJSON(out)
	}

	dataStr := c.PostForm("data")
	if dataStr == "" {
		return nil, errors.New("missing data field")
	}
	if err := json.Unmarshal([]byte(dataStr), out); err != nil {
		return nil, errors.New("invalid data json")
	}
	if err := dto.Validate(out); err != nil {
		return nil, err
	}

	fh, err := c.FormFile("banner")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid banner: %w", err)
	}
	if banners == nil {
		return nil, errors.New("banner uploads are disabled")
	}
	if _, err := banners.ValidateFile(fh); err != nil {
		return nil, err
	}
	return fh, nil
}

// POST /events
func CreateEvent(events *services.EventService, banners *storage.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := middleware.MustPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		var body dto.CreateEventDTO
		banner, err := bindEventBody(c, &body, banners)
		if err != nil {
			badRequest(c, err)
			return
		}

		event, err := events.Create(c.Request.Context(), p, services.CreateEventInput{
			Title:       body.Title,
			Description: body.Description,
			Location:    body.Location,
			Date:        body.Date,
			Capacity:    body.Capacity,
			IsPublished: body.IsPublished,
			Banner:      banner,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, event)
	}
}

// PATCH /events/:id
func UpdateEvent(events *services.EventService, banners *storage.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		p, err := middleware.MustPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		var body dto.UpdateEventDTO
		banner, err := bindEventBody(c, &body, banners)
		if err != nil {
			badRequest(c, err)
			return
		}

		event, err := events.Update(c.Request.Context(), id, p, services.UpdateEventInput{
			Title:       body.Title,
			Description: body.Description,
			Location:    body.Location,
			Date:        body.Date,
			IsPublished: body.IsPublished,
			Banner:      banner,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

// DELETE /events/:id
func DeleteEvent(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		p, err := middleware.MustPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		if err := events.Delete(c.Request.Context(), id, p); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GET /events/:id
func GetEvent(events *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		event, err := events.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

type eventLister func(c *gin.Context, filter models.EventFilter) ([]models.Event, int64, error)

// listEvents handles the shared page/limit/q query parameters.
func listEvents(limits Limits, list eventLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, skip := utils.Page(c.Query("page"), c.Query("limit"), limits.DefaultLimit, limits.MaxLimit)
		filter := models.EventFilter{
			Query: strings.TrimSpace(c.Query("q")),
			Skip:  skip,
			Limit: int64(limit),
		}

		items, total, err := list(c, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /events
func ListEvents(events *services.EventService, limits Limits) gin.HandlerFunc {
	return listEvents(limits, func(c *gin.Context, f models.EventFilter) ([]models.Event, int64, error) {
		return events.List(c.Request.Context(), f)
	})
}

// GET /events/upcoming
func UpcomingEvents(events *services.EventService, limits Limits) gin.HandlerFunc {
	return listEvents(limits, func(c *gin.Context, f models.EventFilter) ([]models.Event, int64, error) {
		return events.Upcoming(c.Request.Context(), f)
	})
}

// GET /events/past
func PastEvents(events *services.EventService, limits Limits) gin.HandlerFunc {
	return listEvents(limits, func(c *gin.Context, f models.EventFilter) ([]models.Event, int64, error) {
		return events.Past(c.Request.Context(), f)
	})
}

// GET /events/location/:location
func EventsByLocation(events *services.EventService, limits Limits) gin.HandlerFunc {
	return listEvents(limits, func(c *gin.Context, f models.EventFilter) ([]models.Event, int64, error) {
		return events.ByLocation(c.Request.Context(), c.Param("location"), f)
	})
}

// GET /events/stats/locations
func PopularLocations(events *services.EventService, limits Limits) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, limit, _ := utils.Page("", c.Query("limit"), 10, limits.MaxLimit)
		items, err := events.PopularLocations(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// GET /events/stats/organizers
func TopOrganizers(events *services.EventService, limits Limits) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, limit, _ := utils.Page("", c.Query("limit"), 10, limits.MaxLimit)
		items, err := events.TopOrganizers(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
