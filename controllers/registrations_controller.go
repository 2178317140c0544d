package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eventsbackend/dto"
	"github.com/princinho/eventsbackend/middleware"
	"github.com/princinho/eventsbackend/services"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// POST /registrations answers 201 for a new seat and 200 when the caller already held one.
func CreateRegistration(registrations *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateRegistrationDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
		p, err := middleware.MustPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		eventID, _ := bson.ObjectIDFromHex(body.EventID)

		admission, err := registrations.Admit(c.Request.Context(), p.ID, eventID)
		if err != nil {
			respondError(c, err)
			return
		}

		status := http.StatusCreated
		if admission.AlreadyRegistered {
			status = http.StatusOK
		}
		c.JSON(status, gin.H{
			"registration":      admission.Registration,
			"alreadyRegistered": admission.AlreadyRegistered,
		})
	}
}

// DELETE /registrations/:eventId
func CancelRegistration(registrations *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseObjectID(c, "eventId")
		if !ok {
			return
		}
		p, err := middleware.MustPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}

		if err := registrations.Cancel(c.Request.Context(), p.ID, eventID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GET /registrations/me
func MyRegistrations(registrations *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := middleware.MustPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		items, err := registrations.ListForUser(c.Request.Context(), p.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// GET /events/:id/registrations
func EventRegistrations(registrations *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		p, err := middleware.MustPrincipal(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		items, err := registrations.ListForEvent(c.Request.Context(), eventID, p)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
