package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Access-control errors. ErrAccessDenied is a security decision (plate
// recognized but not authorized); ErrPlateUnknown at exit is operational.
var (
	ErrPlateUnknown  = errors.New("plate not registered")
	ErrAccessDenied  = errors.New("access denied")
	ErrNoActiveVisit = errors.New("no active visit")
	ErrVisitNotFound = errors.New("visit not found")
)

// Billing errors
var (
	ErrTargetNotFound     = errors.New("payment target not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrOverpayment        = errors.New("amount exceeds remaining balance")
	ErrDuplicateExpense   = errors.New("expense already exists for this period")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// Announcement errors
var (
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrWrongAudience        = errors.New("announcement does not target the caller's role")
	ErrNoResidentProfile    = errors.New("user has no resident profile")
)

// Maintenance errors
var (
	ErrTicketNotFound      = errors.New("maintenance ticket not found")
	ErrInvalidTicketStatus = errors.New("invalid ticket status transition")
)
