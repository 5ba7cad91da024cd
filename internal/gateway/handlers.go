package gateway

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pigeonhq/pigeon/internal/dedup"
	"github.com/pigeonhq/pigeon/internal/events"
	"github.com/pigeonhq/pigeon/internal/twilio"
	"github.com/pigeonhq/pigeon/internal/twiml"
)

// handleHealth handles GET /health (no auth). Stateless on purpose: as long
// as the process answers, it reports ok.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleMessage handles Twilio's inbound SMS webhook POST.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	// Enforce body size limit
	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	// A raw parse only; no payload interpretation happens until the request
	// is authenticated. The form params are an input to the signature.
	params, err := url.ParseQuery(string(body))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	signature := r.Header.Get(s.config.SignatureHeader)
	if err := s.verifier.Verify(s.callbackURL(r), params, signature); err != nil {
		authFailuresTotal.Inc()
		s.logger.Warn("webhook signature verification failed",
			"header", s.config.SignatureHeader,
			"missing", errors.Is(err, twilio.ErrSignatureMissing),
		)
		// Generic body - don't leak which check failed.
		s.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	msg, err := twilio.DecodeInbound(params)
	if err != nil {
		decodeFailuresTotal.Inc()
		var de *twilio.DecodeError
		if errors.As(err, &de) {
			s.logger.Warn("webhook decode failed", "field", de.Field, "reason", de.Reason)
			s.respondError(w, http.StatusBadRequest, de.Error())
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	// Side effects run once per logical message; a provider retry within
	// the retention window gets the identical reply and nothing else.
	switch s.dedupe.CheckAndRecord(msg.MessageSID, time.Now()) {
	case dedup.FirstSeen:
		messagesReceivedTotal.Inc()
		receipt := s.hub.Publish(events.TypeMessageReceived, msg)
		s.logger.Info("inbound message received",
			"from", msg.From,
			"to", msg.To,
			"body_len", len(msg.Body),
			"message_sid", msg.MessageSID,
			"account_sid", msg.AccountSID,
			"receipt_id", receipt,
		)
	case dedup.Duplicate:
		duplicateDeliveriesTotal.Inc()
		s.logger.Debug("duplicate delivery suppressed", "message_sid", msg.MessageSID)
	}

	doc := twiml.Synthesize(msg, s.policy)
	out, err := doc.Render()
	if err != nil {
		// Rendering a fixed document cannot fail on user input; reaching
		// this path is a programming defect worth alerting on.
		s.logger.Error("twiml render failed", "message_sid", msg.MessageSID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", twiml.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// callbackURL returns the URL Twilio signed against: the configured public
// URL when set, otherwise reconstructed from the request.
func (s *Server) callbackURL(r *http.Request) string {
	if s.config.CallbackURL != "" {
		return s.config.CallbackURL
	}

	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
