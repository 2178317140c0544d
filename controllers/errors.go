package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eventsbackend/services"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{services.ErrEventFull, "EVENT_FULL"},
	{services.ErrEventNotFound, "EVENT_NOT_FOUND"},
	{services.ErrEventClosed, "EVENT_CLOSED"},
	{services.ErrSelfRegistrationForbidden, "SELF_REGISTRATION_FORBIDDEN"},
	{services.ErrRegistrationNotFound, "REGISTRATION_NOT_FOUND"},
	{services.ErrNotAuthorized, "NOT_AUTHORIZED"},
	{services.ErrEmailAlreadyInUse, "EMAIL_IN_USE"},
	{services.ErrUsernameAlreadyInUse, "USERNAME_IN_USE"},
	{services.ErrInvalidRole, "INVALID_ROLE"},
	{services.ErrInvalidInput, "INVALID_INPUT"},
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict, services.KindResourceExhausted:
		return http.StatusConflict
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindInvalid:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes the error response for err. Authentication failures all
// share one message; internal errors are attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	switch kind {
	case services.KindInternal:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	case services.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials", "code": "UNAUTHENTICATED"})
		return
	}

	body := gin.H{"error": err.Error()}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			body["code"] = ec.code
			break
		}
	}
	c.JSON(statusFor(kind), body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "INVALID_INPUT"})
}

func parseObjectID(c *gin.Context, param string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param, "code": "INVALID_INPUT"})
		return bson.NilObjectID, false
	}
	return id, true
}
