// Package gateway implements the inbound SMS webhook HTTP surface.
//
// Twilio POSTs a form-encoded delivery notification to /message; the
// gateway authenticates it, decodes it, suppresses provider retries and
// answers synchronously with a TwiML document telling Twilio to send a text
// back to the original sender.
//
// # Security Model
//
// - Request signatures verified before any payload processing
//   (HMAC-SHA1 per Twilio's scheme, constant-time comparison)
// - Body size limits enforced to prevent DoS
// - No signature detail leaked in error responses (generic 401)
// - Error paths never answer with TwiML, so Twilio cannot mistake a failure
//   for a reply instruction
//
// # Request Flow
//
//  1. HTTP POST arrives at /message
//  2. Body size checked (reject with 413 if too large)
//  3. Signature header verified against URL + sorted form params (401 on failure)
//  4. Form decoded into an InboundMessage (400 on failure, naming the field)
//  5. MessageSid checked against the dedupe window; first-seen deliveries
//     are logged and published to the event hub, retries are not
//  6. TwiML reply rendered under the configured policy
//  7. 200 returned with Content-Type: application/xml
//
// Retried deliveries get the identical reply, which is what makes Twilio's
// timeout retries safe: answering a retry differently (or with an error)
// can cause message storms.
package gateway
