package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	admissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventsbackend",
		Name:      "admissions_total",
		Help:      "Registration admission attempts by outcome.",
	}, []string{"outcome"})

	cancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventsbackend",
		Name:      "cancellations_total",
		Help:      "Registration cancellations by outcome.",
	}, []string{"outcome"})

	tokensIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventsbackend",
		Name:      "tokens_issued_total",
		Help:      "Token pairs issued by reason.",
	}, []string{"reason"})
)

func admissionOutcome(err error) string {
	switch {
	case err == nil:
		return "admitted"
	case KindOf(err) == KindResourceExhausted:
		return "event_full"
	case errors.Is(err, ErrEventClosed):
		return "closed"
	case errors.Is(err, ErrSelfRegistrationForbidden):
		return "self_registration"
	case errors.Is(err, ErrEventNotFound):
		return "not_found"
	}
	return "error"
}

func cancellationOutcome(err error) string {
	switch {
	case err == nil:
		return "cancelled"
	case errors.Is(err, ErrRegistrationNotFound):
		return "not_found"
	}
	return "error"
}
