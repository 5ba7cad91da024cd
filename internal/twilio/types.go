package twilio

// InboundMessage is a decoded inbound SMS delivery callback.
// Values are immutable once decoded; the gateway discards them after the
// reply is rendered.
type InboundMessage struct {
	// From is the sender's phone number in E.164 form.
	From string

	// To is the receiving Twilio number in E.164 form.
	To string

	// Body is the message text, capped by the provider (1600 chars for SMS).
	Body string

	// MessageSID is Twilio's opaque identifier for this message. It is
	// globally unique per message but re-sent unchanged on delivery retries,
	// which is what makes it usable as a dedupe key.
	MessageSID string

	// AccountSID identifies the Twilio account the message arrived on.
	AccountSID string
}

// Header carrying Twilio's request signature.
const SignatureHeader = "X-Twilio-Signature"

// Default values
const (
	DefaultMaxBodySize = 65536 // 64 KB, generous for form-encoded SMS callbacks
)
