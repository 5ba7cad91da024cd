package twilio

import (
	"errors"
	"net/url"
	"testing"
)

func validForm() url.Values {
	return url.Values{
		"From":       {"+15551234567"},
		"To":         {"+15557654321"},
		"Body":       {"Hi"},
		"MessageSid": {"SM1"},
		"AccountSid": {"AC1"},
	}
}

func TestDecodeInbound_Valid(t *testing.T) {
	msg, err := DecodeInbound(validForm())
	if err != nil {
		t.Fatalf("DecodeInbound() error = %v", err)
	}

	if msg.From != "+15551234567" {
		t.Errorf("From = %q", msg.From)
	}
	if msg.To != "+15557654321" {
		t.Errorf("To = %q", msg.To)
	}
	if msg.Body != "Hi" {
		t.Errorf("Body = %q", msg.Body)
	}
	if msg.MessageSID != "SM1" {
		t.Errorf("MessageSID = %q", msg.MessageSID)
	}
	if msg.AccountSID != "AC1" {
		t.Errorf("AccountSID = %q", msg.AccountSID)
	}
}

func TestDecodeInbound_MissingFields(t *testing.T) {
	for _, field := range []string{"From", "To", "Body", "MessageSid", "AccountSid"} {
		t.Run(field, func(t *testing.T) {
			form := validForm()
			form.Del(field)

			_, err := DecodeInbound(form)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("DecodeInbound() error = %v, want *DecodeError", err)
			}
			if de.Field != field {
				t.Errorf("Field = %q, want %q", de.Field, field)
			}
			if de.Reason != ReasonMissing {
				t.Errorf("Reason = %q, want %q", de.Reason, ReasonMissing)
			}
		})
	}
}

func TestDecodeInbound_WhitespaceOnlyIsMissing(t *testing.T) {
	form := validForm()
	form.Set("Body", "   ")

	_, err := DecodeInbound(form)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("DecodeInbound() error = %v, want *DecodeError", err)
	}
	if de.Field != "Body" || de.Reason != ReasonMissing {
		t.Errorf("got %v, want Body missing", de)
	}
}

func TestDecodeInbound_InvalidPhoneNumbers(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"no plus prefix", "From", "15551234567"},
		{"letters", "From", "+1555CALLME"},
		{"leading zero", "To", "+05551234567"},
		{"too long", "To", "+1234567890123456"},
		{"bare plus", "From", "+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			form.Set(tt.field, tt.value)

			_, err := DecodeInbound(form)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("DecodeInbound() error = %v, want *DecodeError", err)
			}
			if de.Field != tt.field {
				t.Errorf("Field = %q, want %q", de.Field, tt.field)
			}
			if de.Reason != ReasonInvalidFormat {
				t.Errorf("Reason = %q, want %q", de.Reason, ReasonInvalidFormat)
			}
		})
	}
}

func TestDecodeInbound_IgnoresExtraFields(t *testing.T) {
	form := validForm()
	form.Set("NumMedia", "0")
	form.Set("SmsStatus", "received")
	form.Set("ApiVersion", "2010-04-01")

	msg, err := DecodeInbound(form)
	if err != nil {
		t.Fatalf("DecodeInbound() error = %v", err)
	}
	if msg.MessageSID != "SM1" {
		t.Errorf("MessageSID = %q, want SM1", msg.MessageSID)
	}
}

func TestDecodeInbound_TrimsValues(t *testing.T) {
	form := validForm()
	form.Set("MessageSid", "  SM1  ")

	msg, err := DecodeInbound(form)
	if err != nil {
		t.Fatalf("DecodeInbound() error = %v", err)
	}
	if msg.MessageSID != "SM1" {
		t.Errorf("MessageSID = %q, want trimmed SM1", msg.MessageSID)
	}
}
