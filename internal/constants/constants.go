package constants

import "time"

// Context keys shared between middleware and handlers.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyActor     = "actor"
	ContextKeyRequestID = "request_id"
)

const (
	HeaderRequestID = "X-Request-ID"

	MinPasswordLength = 6

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// DefaultStoreTimeout bounds a single store round trip.
	DefaultStoreTimeout = 5 * time.Second

	// MaxProfileImageBytes caps multipart profile uploads.
	MaxProfileImageBytes = 5 << 20
)
