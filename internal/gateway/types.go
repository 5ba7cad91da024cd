package gateway

import (
	"time"

	"github.com/pigeonhq/pigeon/internal/dedup"
	"github.com/pigeonhq/pigeon/internal/twilio"
)

// Deduper tracks provider message IDs across delivery retries.
type Deduper interface {
	CheckAndRecord(id string, now time.Time) dedup.Outcome
}

// Publisher receives first-seen inbound messages for downstream processing.
type Publisher interface {
	Publish(eventType string, msg twilio.InboundMessage) string
}

// Config holds gateway server configuration.
type Config struct {
	// Listen is the host:port to bind.
	Listen string

	// SignatureHeader is the HTTP header carrying the provider signature.
	SignatureHeader string

	// CallbackURL, when non-empty, is the public URL used in signature
	// computation. Empty means reconstruct it from the request.
	CallbackURL string

	// MaxBodySize is the maximum allowed request body size in bytes.
	MaxBodySize int64
}

// HealthResponse is the JSON body for liveness probes.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the JSON body for webhook failures. Failure paths never
// answer with TwiML.
type ErrorResponse struct {
	Error string `json:"error"`
}
