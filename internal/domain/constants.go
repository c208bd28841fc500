package domain

import "time"

// ==== WebSocket Constants ====

// MaxMessageSize is the maximum allowed WebSocket message size in bytes
const MaxMessageSize = 4096

// SendBufferSize is the per-connection outbound queue length. A client
// that falls this far behind is disconnected rather than blocking
// delivery to everyone else.
const SendBufferSize = 256

// ==== History Constants ====

// HistoryPageSize is the number of messages per history page
const HistoryPageSize = 10

// ==== Session Constants ====

// SessionTTL is the default session cookie time-to-live
const SessionTTL = 24 * time.Hour

// ==== Rate Limit Constants ====

const (
	// DefaultRateLimitAPI is the default rate limit for API endpoints (requests/sec)
	DefaultRateLimitAPI = 10

	// DefaultRateLimitWS is the default rate limit for WebSocket connections (req/sec)
	DefaultRateLimitWS = 5
)
