package twilio

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// E.164: leading +, up to 15 digits, no leading zero.
var e164Pattern = regexp.MustCompile(`^\+[1-9][0-9]{1,14}$`)

// Decode failure reasons.
const (
	ReasonMissing       = "missing"
	ReasonInvalidFormat = "invalid format"
)

// DecodeError reports a missing or malformed webhook field. Field names the
// offending form parameter exactly as the provider sends it.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("webhook field %s: %s", e.Field, e.Reason)
}

// requiredFields in the order they are validated, so error reporting is
// deterministic when several fields are bad at once.
var requiredFields = []string{"From", "To", "Body", "MessageSid", "AccountSid"}

// DecodeInbound parses a Twilio SMS webhook form into an InboundMessage.
//
// All five required fields must be present and non-empty after trimming;
// From and To must be E.164. Unknown extra parameters are ignored so new
// provider fields don't break decoding.
func DecodeInbound(form url.Values) (InboundMessage, error) {
	fields := make(map[string]string, len(requiredFields))
	for _, name := range requiredFields {
		v := strings.TrimSpace(form.Get(name))
		if v == "" {
			return InboundMessage{}, &DecodeError{Field: name, Reason: ReasonMissing}
		}
		fields[name] = v
	}

	for _, name := range []string{"From", "To"} {
		if !e164Pattern.MatchString(fields[name]) {
			return InboundMessage{}, &DecodeError{Field: name, Reason: ReasonInvalidFormat}
		}
	}

	return InboundMessage{
		From:       fields["From"],
		To:         fields["To"],
		Body:       fields["Body"],
		MessageSID: fields["MessageSid"],
		AccountSID: fields["AccountSid"],
	}, nil
}
