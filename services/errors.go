package services

import "errors"

var (
	ErrEventNotFound             = errors.New("event not found")
	ErrEventClosed               = errors.New("event is closed to new registrations")
	ErrSelfRegistrationForbidden = errors.New("organizers cannot register for their own event")
	ErrEventFull                 = errors.New("event is full")
	ErrRegistrationNotFound      = errors.New("registration not found")
	ErrNotAuthorized             = errors.New("not authorized")

	ErrEmailAlreadyInUse    = errors.New("email already in use")
	ErrUsernameAlreadyInUse = errors.New("username already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPrincipalNotFound    = errors.New("principal not found")
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredToken         = errors.New("token expired")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidInput         = errors.New("invalid input")
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthenticated
	KindResourceExhausted
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindInvalid:
		return "invalid"
	}
	return "internal"
}

// KindOf classifies err. Token and credential failures all collapse to KindUnauthenticated.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrRegistrationNotFound):
		return KindNotFound
	case errors.Is(err, ErrEmailAlreadyInUse), errors.Is(err, ErrUsernameAlreadyInUse):
		return KindConflict
	case errors.Is(err, ErrSelfRegistrationForbidden), errors.Is(err, ErrNotAuthorized):
		return KindForbidden
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrPrincipalNotFound),
		errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		return KindUnauthenticated
	case errors.Is(err, ErrEventFull):
		return KindResourceExhausted
	case errors.Is(err, ErrEventClosed), errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidInput):
		return KindInvalid
	}
	return KindInternal
}
